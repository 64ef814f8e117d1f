package database

import (
	"context"
	"fmt"

	"github.com/James9446/patricia-james-sub001/internal/models"
)

// photoSelect expects the viewer's user ID as its first argument; liked_by_me
// is computed for that user (0 matches nobody).
const photoSelect = `
	SELECT p.id, p.user_id, p.category_id, p.storage_key, p.original_filename,
		p.content_type, p.size_bytes, p.width, p.height, p.caption,
		p.created_at, p.updated_at, p.deleted_at,
		u.name AS uploader_name,
		c.slug AS category_slug,
		(SELECT COUNT(*) FROM photo_likes l WHERE l.photo_id = p.id) AS like_count,
		(SELECT COUNT(*) FROM photo_comments pc WHERE pc.photo_id = p.id) AS comment_count,
		EXISTS (SELECT 1 FROM photo_likes ml WHERE ml.photo_id = p.id AND ml.user_id = ?) AS liked_by_me
	FROM photos p
	JOIN users u ON u.id = p.user_id
	LEFT JOIN photo_categories c ON c.id = p.category_id`

// PhotoFilter selects a page of the gallery.
type PhotoFilter struct {
	CategorySlug string
	UserID       int64
	ViewerID     int64
	Limit        int
	Offset       int
}

// CreatePhoto inserts photo metadata and returns the stored row.
func CreatePhoto(ctx context.Context, h Handler, photo *models.Photo) (*models.Photo, error) {
	var id int64
	err := h.QueryRowxContext(ctx, h.Rebind(`
		INSERT INTO photos (user_id, category_id, storage_key, original_filename,
			content_type, size_bytes, width, height, caption)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		photo.UserID, photo.CategoryID, photo.StorageKey, photo.OriginalFilename,
		photo.ContentType, photo.SizeBytes, photo.Width, photo.Height, photo.Caption,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to insert photo: %w", err)
	}
	return GetPhoto(ctx, h, id, photo.UserID)
}

// GetPhoto retrieves a visible photo with its like and comment counts.
func GetPhoto(ctx context.Context, h Handler, id, viewerID int64) (*models.Photo, error) {
	var p models.Photo
	err := h.GetContext(ctx, &p, h.Rebind(photoSelect+`
		WHERE p.id = ? AND p.deleted_at IS NULL`), viewerID, id)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// ListPhotos returns a page of visible photos, newest first.
func ListPhotos(ctx context.Context, h Handler, f PhotoFilter) ([]*models.Photo, error) {
	query := photoSelect + ` WHERE p.deleted_at IS NULL`
	args := []interface{}{f.ViewerID}
	if f.CategorySlug != "" {
		query += ` AND c.slug = ?`
		args = append(args, f.CategorySlug)
	}
	if f.UserID != 0 {
		query += ` AND p.user_id = ?`
		args = append(args, f.UserID)
	}
	query += ` ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	photos := []*models.Photo{}
	if err := h.SelectContext(ctx, &photos, h.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	return photos, nil
}

// UpdatePhoto changes the caption and category of a photo.
func UpdatePhoto(ctx context.Context, h Handler, id int64, caption string, categoryID *int64) error {
	res, err := h.ExecContext(ctx, h.Rebind(`
		UPDATE photos SET caption = ?, category_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL`), caption, categoryID, id)
	if err != nil {
		return fmt.Errorf("failed to update photo: %w", err)
	}
	return expectAffected(res)
}

// SoftDeletePhoto hides a photo from the gallery.
func SoftDeletePhoto(ctx context.Context, h Handler, id int64) error {
	res, err := h.ExecContext(ctx, h.Rebind(`
		UPDATE photos SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL`), id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return expectAffected(res)
}

// LikePhoto records a like. Liking twice is a no-op.
func LikePhoto(ctx context.Context, h Handler, photoID, userID int64) error {
	_, err := h.ExecContext(ctx, h.Rebind(`
		INSERT INTO photo_likes (photo_id, user_id) VALUES (?, ?)
		ON CONFLICT (photo_id, user_id) DO NOTHING`), photoID, userID)
	if err != nil {
		return fmt.Errorf("failed to like photo: %w", err)
	}
	return nil
}

// UnlikePhoto removes a like if present.
func UnlikePhoto(ctx context.Context, h Handler, photoID, userID int64) error {
	_, err := h.ExecContext(ctx, h.Rebind(`
		DELETE FROM photo_likes WHERE photo_id = ? AND user_id = ?`), photoID, userID)
	if err != nil {
		return fmt.Errorf("failed to unlike photo: %w", err)
	}
	return nil
}

// ListCategories returns all photo categories in display order.
func ListCategories(ctx context.Context, h Handler) ([]*models.Category, error) {
	categories := []*models.Category{}
	err := h.SelectContext(ctx, &categories, `
		SELECT id, slug, name, sort_order FROM photo_categories
		ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetCategoryBySlug retrieves a category by slug.
func GetCategoryBySlug(ctx context.Context, h Handler, slug string) (*models.Category, error) {
	var c models.Category
	err := h.GetContext(ctx, &c, h.Rebind(`
		SELECT id, slug, name, sort_order FROM photo_categories WHERE slug = ?`), slug)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}
