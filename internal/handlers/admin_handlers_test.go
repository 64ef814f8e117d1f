package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/James9446/patricia-james-sub001/internal/models"
)

func TestAdminGuests(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.adminClient(t)

	var bride, groom, friend models.User

	t.Run("create", func(t *testing.T) {
		status, env := admin.call(http.MethodPost, "/api/admin/guests", map[string]interface{}{"name": "  "})
		assert.Equal(t, http.StatusBadRequest, status)

		status, env = admin.call(http.MethodPost, "/api/admin/guests", map[string]interface{}{"name": "Patricia  Smith"})
		require.Equal(t, http.StatusCreated, status, env.Message)
		decodeData(t, env, &bride)
		assert.Equal(t, "Patricia Smith", bride.Name)
		assert.Equal(t, models.AccountStatusGuest, bride.AccountStatus)

		status, env = admin.call(http.MethodPost, "/api/admin/guests", map[string]interface{}{
			"name": "James Jones", "partner_id": bride.ID,
		})
		require.Equal(t, http.StatusCreated, status, env.Message)
		decodeData(t, env, &groom)
		require.NotNil(t, groom.PartnerID)
		assert.Equal(t, bride.ID, *groom.PartnerID)

		status, _ = admin.call(http.MethodPost, "/api/admin/guests", map[string]interface{}{
			"name": "Third Wheel", "partner_id": bride.ID,
		})
		assert.Equal(t, http.StatusConflict, status)

		status, _ = admin.call(http.MethodPost, "/api/admin/guests", map[string]interface{}{
			"name": "Ghost Partner", "partner_id": 9999,
		})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("update", func(t *testing.T) {
		status, env := admin.call(http.MethodPost, "/api/admin/guests", map[string]interface{}{"name": "Riley Friend"})
		require.Equal(t, http.StatusCreated, status)
		decodeData(t, env, &friend)

		status, env = admin.call(http.MethodPatch, fmt.Sprintf("/api/admin/guests/%d", friend.ID), map[string]interface{}{
			"plus_one_allowed": true,
		})
		require.Equal(t, http.StatusOK, status, env.Message)
		decodeData(t, env, &friend)
		assert.True(t, friend.PlusOneAllowed)
		assert.Equal(t, "Riley Friend", friend.Name)

		status, _ = admin.call(http.MethodPatch, "/api/admin/guests/9999", map[string]interface{}{"name": "X"})
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("relink partner", func(t *testing.T) {
		path := fmt.Sprintf("/api/admin/guests/%d/partner", friend.ID)
		status, _ := admin.call(http.MethodPut, path, map[string]interface{}{"partner_id": friend.ID})
		assert.Equal(t, http.StatusBadRequest, status)

		status, env := admin.call(http.MethodPut, path, map[string]interface{}{"partner_id": groom.ID})
		require.Equal(t, http.StatusOK, status, env.Message)
		decodeData(t, env, &friend)
		require.NotNil(t, friend.PartnerID)
		assert.Equal(t, groom.ID, *friend.PartnerID)

		status, env = admin.call(http.MethodGet, "/api/admin/guests", nil)
		require.Equal(t, http.StatusOK, status)
		var guests []models.GuestSummary
		decodeData(t, env, &guests)
		byID := map[int64]models.GuestSummary{}
		for _, g := range guests {
			byID[g.ID] = g
		}
		assert.Nil(t, byID[bride.ID].PartnerID, "previous partner is unlinked")
		require.NotNil(t, byID[groom.ID].PartnerName)
		assert.Equal(t, "Riley Friend", *byID[groom.ID].PartnerName)

		status, env = admin.call(http.MethodPut, path, map[string]interface{}{"partner_id": nil})
		require.Equal(t, http.StatusOK, status)
		var unlinked models.User
		decodeData(t, env, &unlinked)
		assert.Equal(t, friend.ID, unlinked.ID)
		assert.Nil(t, unlinked.PartnerID)

		status, _ = admin.call(http.MethodPut, path, map[string]interface{}{"partner_id": 9999})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("delete", func(t *testing.T) {
		path := fmt.Sprintf("/api/admin/guests/%d", friend.ID)
		status, _ := admin.call(http.MethodDelete, path, nil)
		require.Equal(t, http.StatusOK, status)
		status, _ = admin.call(http.MethodDelete, path, nil)
		assert.Equal(t, http.StatusNotFound, status)

		status, _ = ts.newClient(t).call(http.MethodGet, lookupPath("Riley Friend"), nil)
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestAdminRSVPsAndStats(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.adminClient(t)
	guest := ts.newClient(t)

	a := createGuest(t, ts.db, "Guest One", false)
	createGuest(t, ts.db, "Guest Two", false)
	b := createGuest(t, ts.db, "Guest Three", false)

	for _, sub := range []map[string]interface{}{
		{"guest_id": a.ID, "response_status": "attending"},
		{"guest_id": b.ID, "response_status": "not_attending"},
	} {
		status, env := guest.call(http.MethodPost, "/api/rsvps", sub)
		require.Equal(t, http.StatusOK, status, env.Message)
	}

	status, env := admin.call(http.MethodGet, "/api/admin/rsvps", nil)
	require.Equal(t, http.StatusOK, status)
	var rsvps []models.RSVP
	decodeData(t, env, &rsvps)
	assert.Len(t, rsvps, 2)

	status, env = admin.call(http.MethodGet, "/api/admin/stats", nil)
	require.Equal(t, http.StatusOK, status)
	var stats models.Stats
	decodeData(t, env, &stats)
	assert.Equal(t, 3, stats.Guests)
	assert.Equal(t, 1, stats.Attending)
	assert.Equal(t, 1, stats.NotAttending)
	assert.Equal(t, 1, stats.NoResponse)
}
