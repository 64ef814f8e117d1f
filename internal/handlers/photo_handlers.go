package handlers

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	_ "golang.org/x/image/webp"

	"github.com/James9446/patricia-james-sub001/internal/auth"
	"github.com/James9446/patricia-james-sub001/internal/database"
	"github.com/James9446/patricia-james-sub001/internal/models"
	"github.com/James9446/patricia-james-sub001/internal/storage"
)

const (
	defaultPageSize   = 24
	maxPageSize       = 100
	maxCaptionLength  = 500
	maxFilenameLength = 255
)

// photoExtensions lists the accepted sniffed content types.
var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// PhotoRecorder receives upload metrics.
type PhotoRecorder interface {
	PhotoUploaded(contentType string, size int64)
}

func mediaURL(key string) string {
	return "/media/" + key
}

func withURL(photos ...*models.Photo) {
	for _, p := range photos {
		p.URL = mediaURL(p.StorageKey)
	}
}

func viewerID(r *http.Request) int64 {
	if u := CurrentUser(r.Context()); u != nil {
		return u.ID
	}
	return 0
}

type photoPage struct {
	Photos []*models.Photo `json:"photos"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// ListPhotos returns a page of the gallery, newest first.
func ListPhotos(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := intQuery(r, "limit", defaultPageSize, 1, maxPageSize)
		if err != nil {
			writeError(w, r, err)
			return
		}
		offset, err := intQuery(r, "offset", 0, 0, 1<<20)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var userID int64
		if raw := r.URL.Query().Get("user_id"); raw != "" {
			if userID, err = strconv.ParseInt(raw, 10, 64); err != nil {
				writeError(w, r, badRequest("invalid user_id"))
				return
			}
		}

		photos, err := database.ListPhotos(r.Context(), db, database.PhotoFilter{
			CategorySlug: strings.TrimSpace(r.URL.Query().Get("category")),
			UserID:       userID,
			ViewerID:     viewerID(r),
			Limit:        limit,
			Offset:       offset,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		withURL(photos...)
		writeData(w, http.StatusOK, &photoPage{Photos: photos, Limit: limit, Offset: offset})
	}
}

// GetPhoto returns one photo with its counts.
func GetPhoto(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "photoID")
		if err != nil {
			writeError(w, r, err)
			return
		}
		photo, err := database.GetPhoto(r.Context(), db, id, viewerID(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		withURL(photo)
		writeData(w, http.StatusOK, photo)
	}
}

// UploadPhoto stores a multipart "photo" file and its metadata. The file is
// identified by content, not by its name or declared type.
func UploadPhoto(db *database.DB, store storage.Store, rec PhotoRecorder, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r.Context())
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				writeError(w, r, tooLarge(maxBytes))
				return
			}
			writeError(w, r, badRequest("invalid multipart form"))
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("photo")
		if err != nil {
			writeError(w, r, badRequest("photo file is required"))
			return
		}
		defer file.Close()
		if header.Size > maxBytes {
			writeError(w, r, tooLarge(maxBytes))
			return
		}
		data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
		if err != nil {
			writeError(w, r, err)
			return
		}
		if int64(len(data)) > maxBytes {
			writeError(w, r, tooLarge(maxBytes))
			return
		}
		if len(data) == 0 {
			writeError(w, r, badRequest("photo file is empty"))
			return
		}

		contentType := http.DetectContentType(data)
		ext, ok := photoExtensions[contentType]
		if !ok {
			writeError(w, r, badRequest("unsupported image type %q", contentType))
			return
		}
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			writeError(w, r, badRequest("could not read image"))
			return
		}

		caption := strings.TrimSpace(r.FormValue("caption"))
		if utf8.RuneCountInString(caption) > maxCaptionLength {
			writeError(w, r, badRequest("caption must be at most %d characters", maxCaptionLength))
			return
		}
		categoryID, err := categoryIDBySlug(r, db, r.FormValue("category"))
		if err != nil {
			writeError(w, r, err)
			return
		}

		key := storage.NewPhotoKey(time.Now().UTC(), ext)
		if err := store.Put(r.Context(), key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
			writeError(w, r, err)
			return
		}

		photo, err := database.CreatePhoto(r.Context(), db, &models.Photo{
			UserID:           user.ID,
			CategoryID:       categoryID,
			StorageKey:       key,
			OriginalFilename: originalFilename(header.Filename),
			ContentType:      contentType,
			SizeBytes:        int64(len(data)),
			Width:            cfg.Width,
			Height:           cfg.Height,
			Caption:          caption,
		})
		if err != nil {
			if derr := store.Delete(r.Context(), key); derr != nil {
				slog.Default().WarnContext(r.Context(), "failed to remove orphaned photo", "key", key, "err", derr)
			}
			writeError(w, r, err)
			return
		}

		rec.PhotoUploaded(contentType, photo.SizeBytes)
		withURL(photo)
		writeData(w, http.StatusCreated, photo)
	}
}

func originalFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	if utf8.RuneCountInString(name) > maxFilenameLength {
		name = string([]rune(name)[:maxFilenameLength])
	}
	return name
}

// categoryIDBySlug resolves an optional category slug. An empty slug means
// no category.
func categoryIDBySlug(r *http.Request, db *database.DB, slug string) (*int64, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	c, err := database.GetCategoryBySlug(r.Context(), db, slug)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, badRequest("unknown category %q", slug)
		}
		return nil, err
	}
	return &c.ID, nil
}

type updatePhotoRequest struct {
	Caption  *string `json:"caption"`
	Category *string `json:"category"`
}

// UpdatePhoto edits the caption or category of the caller's own photo.
func UpdatePhoto(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r.Context())
		id, err := idParam(r, "photoID")
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req updatePhotoRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		photo, err := database.GetPhoto(r.Context(), db, id, user.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if photo.UserID != user.ID {
			writeError(w, r, forbidden("only the uploader can edit this photo"))
			return
		}

		caption, categoryID := photo.Caption, photo.CategoryID
		if req.Caption != nil {
			caption = strings.TrimSpace(*req.Caption)
			if utf8.RuneCountInString(caption) > maxCaptionLength {
				writeError(w, r, badRequest("caption must be at most %d characters", maxCaptionLength))
				return
			}
		}
		if req.Category != nil {
			if categoryID, err = categoryIDBySlug(r, db, *req.Category); err != nil {
				writeError(w, r, err)
				return
			}
		}

		if err := database.UpdatePhoto(r.Context(), db, id, caption, categoryID); err != nil {
			writeError(w, r, err)
			return
		}
		photo, err = database.GetPhoto(r.Context(), db, id, user.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		withURL(photo)
		writeData(w, http.StatusOK, photo)
	}
}

// DeletePhoto hides a photo and removes its bytes. The uploader and the
// admin may delete.
func DeletePhoto(db *database.DB, store storage.Store, sessions *auth.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r.Context())
		admin := sessions.IsAdmin(r)
		if user == nil && !admin {
			writeError(w, r, errUnauthorized)
			return
		}
		id, err := idParam(r, "photoID")
		if err != nil {
			writeError(w, r, err)
			return
		}

		photo, err := database.GetPhoto(r.Context(), db, id, 0)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !admin && photo.UserID != user.ID {
			writeError(w, r, forbidden("only the uploader can delete this photo"))
			return
		}

		if err := database.SoftDeletePhoto(r.Context(), db, id); err != nil {
			writeError(w, r, err)
			return
		}
		if err := store.Delete(r.Context(), photo.StorageKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
			slog.Default().WarnContext(r.Context(), "failed to delete photo blob", "key", photo.StorageKey, "err", err)
		}
		writeMessage(w, http.StatusOK, "photo deleted")
	}
}

// LikePhoto adds the caller's like and returns the updated photo.
func LikePhoto(db *database.DB) http.HandlerFunc {
	return setLike(db, database.LikePhoto)
}

// UnlikePhoto removes the caller's like and returns the updated photo.
func UnlikePhoto(db *database.DB) http.HandlerFunc {
	return setLike(db, database.UnlikePhoto)
}

func setLike(db *database.DB, apply func(ctx context.Context, h database.Handler, photoID, userID int64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r.Context())
		id, err := idParam(r, "photoID")
		if err != nil {
			writeError(w, r, err)
			return
		}
		if _, err := database.GetPhoto(r.Context(), db, id, user.ID); err != nil {
			writeError(w, r, err)
			return
		}
		if err := apply(r.Context(), db, id, user.ID); err != nil {
			writeError(w, r, err)
			return
		}
		photo, err := database.GetPhoto(r.Context(), db, id, user.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		withURL(photo)
		writeData(w, http.StatusOK, photo)
	}
}

// ListCategories returns the gallery categories.
func ListCategories(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := database.ListCategories(r.Context(), db)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, categories)
	}
}

// ServeMedia streams stored photo bytes.
func ServeMedia(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "*")
		rc, info, err := store.Open(r.Context(), key)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
				http.NotFound(w, r)
				return
			}
			slog.Default().ErrorContext(r.Context(), "failed to open media", "key", key, "err", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		defer rc.Close()

		if info.ContentType != "" {
			w.Header().Set("Content-Type", info.ContentType)
		}
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		if rs, ok := rc.(io.ReadSeeker); ok {
			http.ServeContent(w, r, path.Base(key), info.ModTime, rs)
			return
		}
		if info.Size > 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
		}
		if _, err := io.Copy(w, rc); err != nil {
			slog.Default().WarnContext(r.Context(), "failed to stream media", "key", key, "err", err)
		}
	}
}
