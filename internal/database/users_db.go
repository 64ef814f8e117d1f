package database

import (
	"context"
	"fmt"

	"github.com/James9446/patricia-james-sub001/internal/models"
)

const userColumns = `id, name, email, password_hash, partner_id, plus_one_allowed,
	account_status, created_at, updated_at, deleted_at`

// CreateGuest inserts a user with account status guest. The name is stored
// normalized, next to its case-folded lookup key. partnerID only sets the new row's side of the link.
func CreateGuest(ctx context.Context, h Handler, name string, plusOneAllowed bool, partnerID *int64) (*models.User, error) {
	var id int64
	err := h.QueryRowxContext(ctx, h.Rebind(`
		INSERT INTO users (name, name_key, partner_id, plus_one_allowed, account_status)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`),
		models.NormalizeName(name), models.NameKey(name), partnerID, plusOneAllowed, models.AccountStatusGuest,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to insert guest: %w", err)
	}
	return GetUserByID(ctx, h, id)
}

// GetUserByID retrieves a user by ID, including soft-deleted ones.
func GetUserByID(ctx context.Context, h Handler, id int64) (*models.User, error) {
	var u models.User
	err := h.GetContext(ctx, &u, h.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// GetActiveUserByID retrieves a user that has not been deleted.
func GetActiveUserByID(ctx context.Context, h Handler, id int64) (*models.User, error) {
	var u models.User
	err := h.GetContext(ctx, &u, h.Rebind(`
		SELECT `+userColumns+` FROM users
		WHERE id = ? AND deleted_at IS NULL`), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// FindActiveUsersByName returns the non-deleted users whose name matches,
// ignoring case and extra whitespace.
func FindActiveUsersByName(ctx context.Context, h Handler, name string) ([]*models.User, error) {
	users := []*models.User{}
	err := h.SelectContext(ctx, &users, h.Rebind(`
		SELECT `+userColumns+` FROM users
		WHERE name_key = ? AND deleted_at IS NULL
		ORDER BY id`), models.NameKey(name))
	if err != nil {
		return nil, fmt.Errorf("failed to find users by name: %w", err)
	}
	return users, nil
}

// GetUserByEmail retrieves an active user by email address.
func GetUserByEmail(ctx context.Context, h Handler, email string) (*models.User, error) {
	var u models.User
	err := h.GetContext(ctx, &u, h.Rebind(`
		SELECT `+userColumns+` FROM users
		WHERE lower(email) = lower(?) AND deleted_at IS NULL`), email)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// RegisterUser sets credentials on a guest and flips its status to
// registered. ErrNotFound means the user is missing, deleted or already
// registered.
func RegisterUser(ctx context.Context, h Handler, id int64, email, passwordHash string) error {
	res, err := h.ExecContext(ctx, h.Rebind(`
		UPDATE users
		SET email = ?, password_hash = ?, account_status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND account_status = ? AND deleted_at IS NULL`),
		email, passwordHash, models.AccountStatusRegistered, id, models.AccountStatusGuest)
	if err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return expectAffected(res)
}

// UpdateGuest changes the editable guest attributes.
func UpdateGuest(ctx context.Context, h Handler, id int64, name string, plusOneAllowed bool) error {
	res, err := h.ExecContext(ctx, h.Rebind(`
		UPDATE users
		SET name = ?, name_key = ?, plus_one_allowed = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL`),
		models.NormalizeName(name), models.NameKey(name), plusOneAllowed, id)
	if err != nil {
		return fmt.Errorf("failed to update guest: %w", err)
	}
	return expectAffected(res)
}

// LinkPartners points a and b at each other. Run it inside a transaction
// together with UnlinkPartner calls for any previous partners.
func LinkPartners(ctx context.Context, h Handler, a, b int64) error {
	for _, id := range []int64{a, b} {
		if _, err := GetActiveUserByID(ctx, h, id); err != nil {
			return err
		}
	}
	for _, pair := range [][2]int64{{a, b}, {b, a}} {
		res, err := h.ExecContext(ctx, h.Rebind(`
			UPDATE users SET partner_id = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND deleted_at IS NULL`), pair[1], pair[0])
		if err != nil {
			return fmt.Errorf("failed to link partners: %w", err)
		}
		if err := expectAffected(res); err != nil {
			return err
		}
	}
	return nil
}

// UnlinkPartner clears the partner link of id on both sides, on the users
// and on their RSVPs.
func UnlinkPartner(ctx context.Context, h Handler, id int64) error {
	_, err := h.ExecContext(ctx, h.Rebind(`
		UPDATE users SET partner_id = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? OR partner_id = ?`), id, id)
	if err != nil {
		return fmt.Errorf("failed to unlink partner: %w", err)
	}
	_, err = h.ExecContext(ctx, h.Rebind(`
		UPDATE rsvps SET partner_id = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? OR partner_id = ?`), id, id)
	if err != nil {
		return fmt.Errorf("failed to unlink rsvp partner: %w", err)
	}
	return nil
}

// SoftDeleteUser marks a user deleted and drops their partner link and
// sessions. The row itself is kept.
func SoftDeleteUser(ctx context.Context, h Handler, id int64) error {
	if err := UnlinkPartner(ctx, h, id); err != nil {
		return err
	}
	res, err := h.ExecContext(ctx, h.Rebind(`
		UPDATE users
		SET account_status = ?, deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL`), models.AccountStatusDeleted, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if err := expectAffected(res); err != nil {
		return err
	}
	return DeleteUserSessions(ctx, h, id)
}

// ListGuests returns every active user with their partner's name and RSVP
// status, ordered by name.
func ListGuests(ctx context.Context, h Handler) ([]*models.GuestSummary, error) {
	guests := []*models.GuestSummary{}
	err := h.SelectContext(ctx, &guests, `
		SELECT u.id, u.name, u.email, u.password_hash, u.partner_id, u.plus_one_allowed,
			u.account_status, u.created_at, u.updated_at, u.deleted_at,
			p.name AS partner_name, r.response_status
		FROM users u
		LEFT JOIN users p ON p.id = u.partner_id
		LEFT JOIN rsvps r ON r.user_id = u.id
		WHERE u.deleted_at IS NULL
		ORDER BY u.name_key, u.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}
	return guests, nil
}

func expectAffected(res interface{ RowsAffected() (int64, error) }) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
