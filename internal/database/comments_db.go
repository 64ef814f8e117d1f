package database

import (
	"context"
	"fmt"

	"github.com/James9446/patricia-james-sub001/internal/models"
)

const commentSelect = `
	SELECT c.id, c.photo_id, c.user_id, c.body, c.created_at, c.updated_at, u.name AS user_name
	FROM photo_comments c
	JOIN users u ON u.id = c.user_id`

// CreateComment inserts a comment and returns it with the author's name.
func CreateComment(ctx context.Context, h Handler, photoID, userID int64, body string) (*models.Comment, error) {
	var id int64
	err := h.QueryRowxContext(ctx, h.Rebind(`
		INSERT INTO photo_comments (photo_id, user_id, body)
		VALUES (?, ?, ?)
		RETURNING id`), photoID, userID, body).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to insert comment: %w", err)
	}
	return GetComment(ctx, h, id)
}

// GetComment retrieves a comment by ID.
func GetComment(ctx context.Context, h Handler, id int64) (*models.Comment, error) {
	var c models.Comment
	if err := h.GetContext(ctx, &c, h.Rebind(commentSelect+` WHERE c.id = ?`), id); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// ListComments retrieves the comments of a photo, oldest first.
func ListComments(ctx context.Context, h Handler, photoID int64) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	err := h.SelectContext(ctx, &comments, h.Rebind(commentSelect+`
		WHERE c.photo_id = ?
		ORDER BY c.created_at ASC, c.id ASC`), photoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// UpdateComment replaces the body of a comment.
func UpdateComment(ctx context.Context, h Handler, id int64, body string) error {
	res, err := h.ExecContext(ctx, h.Rebind(`
		UPDATE photo_comments SET body = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`), body, id)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return expectAffected(res)
}

// DeleteComment removes a comment.
func DeleteComment(ctx context.Context, h Handler, id int64) error {
	res, err := h.ExecContext(ctx, h.Rebind(`DELETE FROM photo_comments WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return expectAffected(res)
}
