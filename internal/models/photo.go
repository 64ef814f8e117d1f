package models

import "time"

// Category groups gallery photos, e.g. "ceremony" or "reception".
type Category struct {
	ID        int64  `db:"id" json:"id"`
	Slug      string `db:"slug" json:"slug"`
	Name      string `db:"name" json:"name"`
	SortOrder int    `db:"sort_order" json:"sort_order"`
}

// Photo is an uploaded gallery image. The bytes live in blob storage under
// StorageKey.
type Photo struct {
	ID               int64      `db:"id" json:"id"`
	UserID           int64      `db:"user_id" json:"user_id"`
	CategoryID       *int64     `db:"category_id" json:"category_id,omitempty"`
	StorageKey       string     `db:"storage_key" json:"-"`
	OriginalFilename string     `db:"original_filename" json:"original_filename"`
	ContentType      string     `db:"content_type" json:"content_type"`
	SizeBytes        int64      `db:"size_bytes" json:"size_bytes"`
	Width            int        `db:"width" json:"width"`
	Height           int        `db:"height" json:"height"`
	Caption          string     `db:"caption" json:"caption"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt        *time.Time `db:"deleted_at" json:"-"`

	// Populated by listing queries.
	UploaderName string  `db:"uploader_name" json:"uploader_name"`
	CategorySlug *string `db:"category_slug" json:"category,omitempty"`
	LikeCount    int     `db:"like_count" json:"like_count"`
	CommentCount int     `db:"comment_count" json:"comment_count"`
	LikedByMe    bool    `db:"liked_by_me" json:"liked_by_me"`
	URL          string  `db:"-" json:"url"`
}

// Comment is a guest's comment on a photo.
type Comment struct {
	ID        int64     `db:"id" json:"id"`
	PhotoID   int64     `db:"photo_id" json:"photo_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	UserName string `db:"user_name" json:"user_name"`
}
