package handlers

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/James9446/patricia-james-sub001/internal/database"
	"github.com/James9446/patricia-james-sub001/internal/models"
)

func lookupPath(name string) string {
	return "/api/guests/lookup?name=" + url.QueryEscape(name)
}

func TestLookupGuest(t *testing.T) {
	ts := setupTestServer(t)
	c := ts.newClient(t)
	patricia := createGuest(t, ts.db, "Patricia Smith", false)
	james := createGuest(t, ts.db, "James Jones", false)
	linkPartners(t, ts.db, patricia, james)

	t.Run("missing name", func(t *testing.T) {
		status, _ := c.call(http.MethodGet, "/api/guests/lookup", nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("unknown", func(t *testing.T) {
		status, env := c.call(http.MethodGet, lookupPath("Someone Else"), nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.False(t, env.Success)
	})

	t.Run("found with partner", func(t *testing.T) {
		status, env := c.call(http.MethodGet, lookupPath("  patricia SMITH"), nil)
		require.Equal(t, http.StatusOK, status)

		var party partyView
		decodeData(t, env, &party)
		assert.Equal(t, patricia.ID, party.Guest.ID)
		require.NotNil(t, party.Partner)
		assert.Equal(t, "James Jones", party.Partner.Name)
		assert.True(t, party.Guest.HasPartner)
		assert.Nil(t, party.GuestRSVP)
		assert.NotContains(t, string(env.Data), "email")
	})

	t.Run("ambiguous", func(t *testing.T) {
		createGuest(t, ts.db, "Sam Lee", false)
		createGuest(t, ts.db, "Sam Lee", false)
		status, _ := c.call(http.MethodGet, lookupPath("Sam Lee"), nil)
		assert.Equal(t, http.StatusConflict, status)
	})
}

func TestSubmitRSVP(t *testing.T) {
	ts := setupTestServer(t)
	c := ts.newClient(t)

	t.Run("invalid status", func(t *testing.T) {
		g := createGuest(t, ts.db, "Status Tester", false)
		status, _ := c.call(http.MethodPost, "/api/rsvps", map[string]interface{}{
			"guest_id": g.ID, "response_status": "maybe",
		})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("missing guest id", func(t *testing.T) {
		status, _ := c.call(http.MethodPost, "/api/rsvps", map[string]interface{}{
			"response_status": "attending",
		})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("unknown guest", func(t *testing.T) {
		status, _ := c.call(http.MethodPost, "/api/rsvps", map[string]interface{}{
			"guest_id": 9999, "response_status": "attending",
		})
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("couple answers together", func(t *testing.T) {
		a := createGuest(t, ts.db, "Alex Green", false)
		b := createGuest(t, ts.db, "Blair Green", false)
		linkPartners(t, ts.db, a, b)

		status, env := c.call(http.MethodPost, "/api/rsvps", map[string]interface{}{
			"guest_id":                a.ID,
			"response_status":         "attending",
			"dietary":                 "vegetarian",
			"include_partner":         true,
			"partner_response_status": "not_attending",
		})
		require.Equal(t, http.StatusOK, status, env.Message)

		var res submitView
		decodeData(t, env, &res)
		require.Len(t, res.RSVPs, 2)
		assert.Equal(t, models.ResponseAttending, res.RSVPs[0].ResponseStatus)
		assert.Equal(t, models.ResponseNotAttending, res.RSVPs[1].ResponseStatus)
		assert.False(t, res.PlusOneCreated)

		r, err := database.GetRSVPByUserID(context.Background(), ts.db, b.ID)
		require.NoError(t, err)
		require.NotNil(t, r.SubmittedBy)
		assert.Equal(t, a.ID, *r.SubmittedBy)
	})

	t.Run("partner requested without partner", func(t *testing.T) {
		g := createGuest(t, ts.db, "Single Guest", false)
		status, _ := c.call(http.MethodPost, "/api/rsvps", map[string]interface{}{
			"guest_id": g.ID, "response_status": "attending", "include_partner": true,
		})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("plus-one not allowed", func(t *testing.T) {
		g := createGuest(t, ts.db, "No Plus One", false)
		status, _ := c.call(http.MethodPost, "/api/rsvps", map[string]interface{}{
			"guest_id": g.ID, "response_status": "attending",
			"plus_one": map[string]string{"name": "Friend"},
		})
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("plus-one created", func(t *testing.T) {
		g := createGuest(t, ts.db, "Has Plus One", true)
		status, env := c.call(http.MethodPost, "/api/rsvps", map[string]interface{}{
			"guest_id": g.ID, "response_status": "attending",
			"plus_one": map[string]string{"name": "Jordan Guest", "dietary": "vegan"},
		})
		require.Equal(t, http.StatusOK, status, env.Message)

		var res submitView
		decodeData(t, env, &res)
		assert.True(t, res.PlusOneCreated)
		require.NotNil(t, res.PlusOne)
		assert.Equal(t, "Jordan Guest", res.PlusOne.Name)
		assert.True(t, res.Guest.HasPartner)

		status, env = c.call(http.MethodGet, lookupPath("Jordan Guest"), nil)
		require.Equal(t, http.StatusOK, status)
		var party partyView
		decodeData(t, env, &party)
		require.NotNil(t, party.GuestRSVP)
		assert.Equal(t, "vegan", party.GuestRSVP.Dietary)
	})
}

func TestMyRSVP(t *testing.T) {
	ts := setupTestServer(t)

	status, _ := ts.newClient(t).call(http.MethodGet, "/api/rsvps/me", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	c, guest := registeredClient(t, ts, "Morgan Reed", "morgan@example.com")
	status, env := c.call(http.MethodPost, "/api/rsvps", map[string]interface{}{
		"guest_id": guest.ID, "response_status": "not_attending", "message": "So sorry!",
	})
	require.Equal(t, http.StatusOK, status, env.Message)

	status, env = c.call(http.MethodGet, "/api/rsvps/me", nil)
	require.Equal(t, http.StatusOK, status)
	var party partyView
	decodeData(t, env, &party)
	require.NotNil(t, party.GuestRSVP)
	assert.Equal(t, models.ResponseNotAttending, party.GuestRSVP.ResponseStatus)
	assert.Equal(t, "So sorry!", party.GuestRSVP.Message)
}
