package handlers

import (
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/James9446/patricia-james-sub001/internal/database"
	"github.com/James9446/patricia-james-sub001/internal/models"
)

const maxGuestNameLength = 100

// AdminListGuests returns every active guest with partner and RSVP status.
func AdminListGuests(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guests, err := database.ListGuests(r.Context(), db)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, guests)
	}
}

type createGuestRequest struct {
	Name           string `json:"name"`
	PlusOneAllowed bool   `json:"plus_one_allowed"`
	PartnerID      *int64 `json:"partner_id"`
}

func guestName(name string) (string, error) {
	name = models.NormalizeName(name)
	if name == "" {
		return "", badRequest("name is required")
	}
	if utf8.RuneCountInString(name) > maxGuestNameLength {
		return "", badRequest("name must be at most %d characters", maxGuestNameLength)
	}
	return name, nil
}

// AdminCreateGuest adds a guest to the list, optionally linked to an
// existing partner who has none yet.
func AdminCreateGuest(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createGuestRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		name, err := guestName(req.Name)
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := r.Context()
		var guest *models.User
		err = db.TransactionContext(ctx, func(tx *database.Tx) error {
			var partner *models.User
			if req.PartnerID != nil {
				partner, err = database.GetActiveUserByID(ctx, tx, *req.PartnerID)
				if errors.Is(err, database.ErrNotFound) {
					return badRequest("partner %d not found", *req.PartnerID)
				} else if err != nil {
					return err
				}
				if partner.HasPartner() {
					return conflict("partner is already linked to another guest")
				}
			}

			guest, err = database.CreateGuest(ctx, tx, name, req.PlusOneAllowed, nil)
			if err != nil {
				return err
			}
			if partner == nil {
				return nil
			}
			if err := database.LinkPartners(ctx, tx, guest.ID, partner.ID); err != nil {
				return err
			}
			guest, err = database.GetUserByID(ctx, tx, guest.ID)
			return err
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusCreated, guest)
	}
}

type updateGuestRequest struct {
	Name           *string `json:"name"`
	PlusOneAllowed *bool   `json:"plus_one_allowed"`
}

// AdminUpdateGuest changes a guest's name or plus-one allowance.
func AdminUpdateGuest(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "guestID")
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req updateGuestRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		ctx := r.Context()
		var guest *models.User
		err = db.TransactionContext(ctx, func(tx *database.Tx) error {
			current, err := database.GetActiveUserByID(ctx, tx, id)
			if err != nil {
				return err
			}
			name, plusOne := current.Name, current.PlusOneAllowed
			if req.Name != nil {
				if name, err = guestName(*req.Name); err != nil {
					return err
				}
			}
			if req.PlusOneAllowed != nil {
				plusOne = *req.PlusOneAllowed
			}
			if err := database.UpdateGuest(ctx, tx, id, name, plusOne); err != nil {
				return err
			}
			guest, err = database.GetUserByID(ctx, tx, id)
			return err
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, guest)
	}
}

// AdminDeleteGuest soft deletes a guest and unlinks their partner.
func AdminDeleteGuest(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "guestID")
		if err != nil {
			writeError(w, r, err)
			return
		}
		err = db.TransactionContext(r.Context(), func(tx *database.Tx) error {
			return database.SoftDeleteUser(r.Context(), tx, id)
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeMessage(w, http.StatusOK, "guest deleted")
	}
}

type setPartnerRequest struct {
	PartnerID *int64 `json:"partner_id"`
}

// AdminSetPartner links two guests to each other, replacing any previous
// links on either side. A null partner_id unlinks.
func AdminSetPartner(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "guestID")
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req setPartnerRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if req.PartnerID != nil && *req.PartnerID == id {
			writeError(w, r, badRequest("a guest cannot be their own partner"))
			return
		}

		ctx := r.Context()
		var guest *models.User
		err = db.TransactionContext(ctx, func(tx *database.Tx) error {
			if _, err := database.GetActiveUserByID(ctx, tx, id); err != nil {
				return err
			}
			if err := database.UnlinkPartner(ctx, tx, id); err != nil {
				return err
			}
			if req.PartnerID != nil {
				if _, err := database.GetActiveUserByID(ctx, tx, *req.PartnerID); err != nil {
					if errors.Is(err, database.ErrNotFound) {
						return badRequest("partner %d not found", *req.PartnerID)
					}
					return err
				}
				if err := database.UnlinkPartner(ctx, tx, *req.PartnerID); err != nil {
					return err
				}
				if err := database.LinkPartners(ctx, tx, id, *req.PartnerID); err != nil {
					return err
				}
			}
			guest, err = database.GetUserByID(ctx, tx, id)
			return err
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, guest)
	}
}

// AdminListRSVPs returns every recorded response.
func AdminListRSVPs(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rsvps, err := database.ListRSVPs(r.Context(), db)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, rsvps)
	}
}

// AdminStats returns the headcount summary.
func AdminStats(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.GetStats(r.Context(), db)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, stats)
	}
}
