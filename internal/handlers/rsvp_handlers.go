package handlers

import (
	"net/http"
	"strings"

	"github.com/James9446/patricia-james-sub001/internal/models"
	"github.com/James9446/patricia-james-sub001/internal/rsvp"
)

// guestView is the public face of a user. Lookups are unauthenticated, so it
// never carries contact details.
type guestView struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	PlusOneAllowed bool   `json:"plus_one_allowed"`
	HasPartner     bool   `json:"has_partner"`
	Registered     bool   `json:"registered"`
}

func newGuestView(u *models.User) *guestView {
	if u == nil {
		return nil
	}
	return &guestView{
		ID:             u.ID,
		Name:           u.Name,
		PlusOneAllowed: u.PlusOneAllowed,
		HasPartner:     u.HasPartner(),
		Registered:     u.IsRegistered(),
	}
}

type partyView struct {
	Guest       *guestView   `json:"guest"`
	Partner     *guestView   `json:"partner,omitempty"`
	GuestRSVP   *models.RSVP `json:"guest_rsvp,omitempty"`
	PartnerRSVP *models.RSVP `json:"partner_rsvp,omitempty"`
}

func newPartyView(p *rsvp.Party) *partyView {
	return &partyView{
		Guest:       newGuestView(p.Guest),
		Partner:     newGuestView(p.Partner),
		GuestRSVP:   p.GuestRSVP,
		PartnerRSVP: p.PartnerRSVP,
	}
}

type submitView struct {
	Guest          *guestView     `json:"guest"`
	RSVPs          []*models.RSVP `json:"rsvps"`
	PlusOne        *guestView     `json:"plus_one,omitempty"`
	PlusOneCreated bool           `json:"plus_one_created"`
}

// LookupGuest finds a guest's party by name for the RSVP form.
func LookupGuest(svc *rsvp.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(r.URL.Query().Get("name"))
		if name == "" {
			writeError(w, r, badRequest("name is required"))
			return
		}

		party, err := svc.Lookup(r.Context(), name)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, newPartyView(party))
	}
}

// SubmitRSVP records a response for a guest found by LookupGuest.
func SubmitRSVP(svc *rsvp.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sub rsvp.Submission
		if err := decodeJSON(w, r, &sub); err != nil {
			writeError(w, r, err)
			return
		}
		if sub.GuestID <= 0 {
			writeError(w, r, badRequest("guest_id is required"))
			return
		}

		res, err := svc.Submit(r.Context(), sub)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Thank you, your RSVP has been recorded",
			Data: &submitView{
				Guest:          newGuestView(res.Guest),
				RSVPs:          res.RSVPs,
				PlusOne:        newGuestView(res.PlusOne),
				PlusOneCreated: res.PlusOneCreated,
			},
		})
	}
}

// MyRSVP returns the logged-in user's party and responses.
func MyRSVP(svc *rsvp.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		party, err := svc.Party(r.Context(), CurrentUser(r.Context()).ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, newPartyView(party))
	}
}
