package database

import (
	"context"
	"fmt"

	"github.com/James9446/patricia-james-sub001/internal/models"
)

const rsvpSelect = `
	SELECT r.id, r.user_id, r.partner_id, r.response_status, r.dietary, r.message,
		r.submitted_by, r.created_at, r.updated_at, u.name AS user_name
	FROM rsvps r
	JOIN users u ON u.id = r.user_id`

// UpsertRSVP inserts the RSVP of rsvp.UserID or replaces the existing one.
// There is at most one row per user.
func UpsertRSVP(ctx context.Context, h Handler, rsvp *models.RSVP) error {
	_, err := h.ExecContext(ctx, h.Rebind(`
		INSERT INTO rsvps (user_id, partner_id, response_status, dietary, message, submitted_by)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			partner_id = excluded.partner_id,
			response_status = excluded.response_status,
			dietary = excluded.dietary,
			message = excluded.message,
			submitted_by = excluded.submitted_by,
			updated_at = CURRENT_TIMESTAMP`),
		rsvp.UserID, rsvp.PartnerID, rsvp.ResponseStatus, rsvp.Dietary, rsvp.Message, rsvp.SubmittedBy)
	if err != nil {
		return fmt.Errorf("failed to upsert rsvp for user %d: %w", rsvp.UserID, err)
	}
	return nil
}

// GetRSVPByUserID retrieves the RSVP of a user.
func GetRSVPByUserID(ctx context.Context, h Handler, userID int64) (*models.RSVP, error) {
	var r models.RSVP
	if err := h.GetContext(ctx, &r, h.Rebind(rsvpSelect+` WHERE r.user_id = ?`), userID); err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

// ListRSVPs returns the RSVPs of all active users, most recent first.
func ListRSVPs(ctx context.Context, h Handler) ([]*models.RSVP, error) {
	rsvps := []*models.RSVP{}
	err := h.SelectContext(ctx, &rsvps, rsvpSelect+`
		WHERE u.deleted_at IS NULL
		ORDER BY r.updated_at DESC, r.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rsvps: %w", err)
	}
	return rsvps, nil
}

// GetStats summarizes the guest list and responses of active users.
func GetStats(ctx context.Context, h Handler) (*models.Stats, error) {
	var s models.Stats
	err := h.GetContext(ctx, &s, h.Rebind(`
		SELECT
			COUNT(*) AS guests,
			COALESCE(SUM(CASE WHEN u.account_status = ? THEN 1 ELSE 0 END), 0) AS registered,
			COALESCE(SUM(CASE WHEN r.response_status = ? THEN 1 ELSE 0 END), 0) AS attending,
			COALESCE(SUM(CASE WHEN r.response_status = ? THEN 1 ELSE 0 END), 0) AS not_attending,
			COALESCE(SUM(CASE WHEN r.response_status = ? THEN 1 ELSE 0 END), 0) AS pending,
			COALESCE(SUM(CASE WHEN r.id IS NULL THEN 1 ELSE 0 END), 0) AS no_response
		FROM users u
		LEFT JOIN rsvps r ON r.user_id = u.id
		WHERE u.deleted_at IS NULL`),
		models.AccountStatusRegistered, models.ResponseAttending,
		models.ResponseNotAttending, models.ResponsePending)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	return &s, nil
}
