package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := createTestGuest(t, db, "Session User", false)
	now := time.Now().UTC()

	require.NoError(t, CreateSession(ctx, db, "live", user.ID, now.Add(time.Hour)))
	require.NoError(t, CreateSession(ctx, db, "stale", user.ID, now.Add(-time.Hour)))

	s, err := GetSession(ctx, db, "live")
	require.NoError(t, err)
	assert.Equal(t, user.ID, s.UserID)
	assert.False(t, s.Expired(now))
	assert.WithinDuration(t, now.Add(time.Hour), s.ExpiresAt, time.Second)

	n, err := DeleteExpiredSessions(ctx, db, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = GetSession(ctx, db, "stale")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, DeleteSession(ctx, db, "live"))
	_, err = GetSession(ctx, db, "live")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, DeleteSession(ctx, db, "never-existed"))
}
