package database

import (
	"context"
	"fmt"
	"time"

	"github.com/James9446/patricia-james-sub001/internal/models"
)

// CreateSession stores a new login session.
func CreateSession(ctx context.Context, h Handler, token string, userID int64, expiresAt time.Time) error {
	_, err := h.ExecContext(ctx, h.Rebind(`
		INSERT INTO user_sessions (token, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)`), token, userID, expiresAt.UTC(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by token. Expiry is left to the caller.
func GetSession(ctx context.Context, h Handler, token string) (*models.Session, error) {
	var s models.Session
	err := h.GetContext(ctx, &s, h.Rebind(`
		SELECT token, user_id, expires_at, created_at
		FROM user_sessions WHERE token = ?`), token)
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// DeleteSession removes a session. Deleting a missing session is not an error.
func DeleteSession(ctx context.Context, h Handler, token string) error {
	_, err := h.ExecContext(ctx, h.Rebind(`DELETE FROM user_sessions WHERE token = ?`), token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteUserSessions removes every session of a user.
func DeleteUserSessions(ctx context.Context, h Handler, userID int64) error {
	_, err := h.ExecContext(ctx, h.Rebind(`DELETE FROM user_sessions WHERE user_id = ?`), userID)
	if err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions that expired before now and
// returns how many were removed.
func DeleteExpiredSessions(ctx context.Context, h Handler, now time.Time) (int64, error) {
	res, err := h.ExecContext(ctx, h.Rebind(`DELETE FROM user_sessions WHERE expires_at < ?`), now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
