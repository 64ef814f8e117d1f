package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/James9446/patricia-james-sub001/internal/models"
)

func TestUpsertRSVP(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	guest := createTestGuest(t, db, "Rsvp Guest", false)

	t.Run("create", func(t *testing.T) {
		err := UpsertRSVP(ctx, db, &models.RSVP{
			UserID:         guest.ID,
			ResponseStatus: models.ResponseAttending,
			Dietary:        "vegetarian",
			Message:        "See you there",
			SubmittedBy:    &guest.ID,
		})
		require.NoError(t, err)

		r, err := GetRSVPByUserID(ctx, db, guest.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ResponseAttending, r.ResponseStatus)
		assert.Equal(t, "vegetarian", r.Dietary)
		assert.Equal(t, "Rsvp Guest", r.UserName)
		assert.Nil(t, r.PartnerID)
		assert.False(t, r.CreatedAt.IsZero())
	})

	t.Run("update keeps a single row", func(t *testing.T) {
		err := UpsertRSVP(ctx, db, &models.RSVP{
			UserID:         guest.ID,
			ResponseStatus: models.ResponseNotAttending,
		})
		require.NoError(t, err)

		r, err := GetRSVPByUserID(ctx, db, guest.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ResponseNotAttending, r.ResponseStatus)
		assert.Empty(t, r.Dietary)

		all, err := ListRSVPs(ctx, db)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := GetRSVPByUserID(ctx, db, 9999)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestGetStats(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	a := createTestGuest(t, db, "Stats A", false)
	b := createTestGuest(t, db, "Stats B", false)
	c := createTestGuest(t, db, "Stats C", false)
	createTestGuest(t, db, "Stats D", false)
	gone := createTestGuest(t, db, "Stats Gone", false)

	require.NoError(t, RegisterUser(ctx, db, a.ID, "a@example.com", "hash"))
	require.NoError(t, UpsertRSVP(ctx, db, &models.RSVP{UserID: a.ID, ResponseStatus: models.ResponseAttending}))
	require.NoError(t, UpsertRSVP(ctx, db, &models.RSVP{UserID: b.ID, ResponseStatus: models.ResponseNotAttending}))
	require.NoError(t, UpsertRSVP(ctx, db, &models.RSVP{UserID: c.ID, ResponseStatus: models.ResponsePending}))
	require.NoError(t, UpsertRSVP(ctx, db, &models.RSVP{UserID: gone.ID, ResponseStatus: models.ResponseAttending}))
	require.NoError(t, SoftDeleteUser(ctx, db, gone.ID))

	stats, err := GetStats(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{
		Guests:       4,
		Registered:   1,
		Attending:    1,
		NotAttending: 1,
		Pending:      1,
		NoResponse:   1,
	}, *stats)
}
