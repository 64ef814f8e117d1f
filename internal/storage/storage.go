// Package storage keeps uploaded photo bytes on local disk or in an
// S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Supported values of Config.Backend.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

var (
	ErrNotFound   = errors.New("object not found")
	ErrInvalidKey = errors.New("invalid object key")
)

// Config is the blob storage configuration.
type Config struct {
	Backend  string `mapstructure:"backend"`
	LocalDir string `mapstructure:"local_dir"`

	S3Endpoint        string `mapstructure:"s3_endpoint"`
	S3AccessKey       string `mapstructure:"s3_access_key"`
	S3SecretAccessKey string `mapstructure:"s3_secret_access_key"`
	S3BucketName      string `mapstructure:"s3_bucket_name"`
	S3Region          string `mapstructure:"s3_region"`
	S3UseSSL          bool   `mapstructure:"s3_use_ssl"`
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
	ModTime     time.Time
}

// Store saves and serves photo blobs.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

// New creates the Store selected by cfg.Backend.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendLocal:
		return NewLocal(cfg.LocalDir)
	case BackendS3:
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}

// NewPhotoKey returns a unique key such as "photos/2025/06/<uuid>.jpg".
func NewPhotoKey(now time.Time, ext string) string {
	return path.Join("photos", now.UTC().Format("2006/01"), uuid.NewString()+strings.ToLower(ext))
}

// cleanKey rejects keys that are absolute or escape the storage root.
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned != key || cleaned == "." || strings.HasPrefix(cleaned, "../") || cleaned == ".." {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
