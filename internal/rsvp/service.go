// Package rsvp implements the guest/partner/plus-one relationship rules and
// the derivation of RSVP rows from a submission.
package rsvp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/James9446/patricia-james-sub001/internal/database"
	"github.com/James9446/patricia-james-sub001/internal/models"
)

var (
	ErrGuestNotFound     = errors.New("guest not found")
	ErrAmbiguousGuest    = errors.New("more than one guest matches that name")
	ErrInvalidStatus     = errors.New("invalid response status")
	ErrNoPartner         = errors.New("guest has no partner on the invitation")
	ErrPlusOneNotAllowed = errors.New("guest is not invited with a plus-one")
	ErrPartnerConflict   = errors.New("guest is already linked to a different partner")
)

const (
	maxNameLength    = 100
	maxDietaryLength = 500
	maxMessageLength = 2000
)

// Notifier is told about every committed submission.
type Notifier interface {
	RSVPSubmitted(ctx context.Context, result *Result) error
}

// Recorder receives submission metrics.
type Recorder interface {
	RSVPSubmitted(status models.ResponseStatus, rows int, plusOneCreated bool)
}

// Party is a guest together with their partner and both existing RSVPs.
type Party struct {
	Guest       *models.User `json:"guest"`
	Partner     *models.User `json:"partner,omitempty"`
	GuestRSVP   *models.RSVP `json:"guest_rsvp,omitempty"`
	PartnerRSVP *models.RSVP `json:"partner_rsvp,omitempty"`
}

// PlusOne names the person a guest brings along.
type PlusOne struct {
	Name    string `json:"name"`
	Dietary string `json:"dietary"`
}

// Submission is one RSVP form as sent by a guest.
type Submission struct {
	GuestID        int64                 `json:"guest_id"`
	ResponseStatus models.ResponseStatus `json:"response_status"`
	Dietary        string                `json:"dietary"`
	Message        string                `json:"message"`

	// IncludePartner answers for the linked partner as well.
	IncludePartner bool `json:"include_partner"`
	// PartnerResponseStatus defaults to ResponseStatus when empty.
	PartnerResponseStatus models.ResponseStatus `json:"partner_response_status,omitempty"`
	PartnerDietary        string                `json:"partner_dietary"`

	PlusOne *PlusOne `json:"plus_one,omitempty"`
}

// Result is what a submission wrote.
type Result struct {
	Guest          *models.User   `json:"guest"`
	RSVPs          []*models.RSVP `json:"rsvps"`
	PlusOne        *models.User   `json:"plus_one,omitempty"`
	PlusOneCreated bool           `json:"plus_one_created"`
}

// Service coordinates guest lookups and RSVP submissions.
type Service struct {
	db       *database.DB
	logger   *slog.Logger
	notifier Notifier
	recorder Recorder
	timeout  time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets the notifier called after each submission.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// New creates a Service.
func New(db *database.DB, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		db:      db,
		logger:  logger.With("component", "rsvp"),
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup finds the active guest with the given name and returns their party.
func (s *Service) Lookup(ctx context.Context, name string) (*Party, error) {
	name = models.NormalizeName(name)
	if name == "" {
		return nil, ErrGuestNotFound
	}

	users, err := database.FindActiveUsersByName(ctx, s.db, name)
	if err != nil {
		return nil, err
	}
	switch len(users) {
	case 0:
		return nil, ErrGuestNotFound
	case 1:
	default:
		return nil, ErrAmbiguousGuest
	}

	return s.party(ctx, s.db, users[0])
}

// Party returns the party of a known user.
func (s *Service) Party(ctx context.Context, userID int64) (*Party, error) {
	guest, err := database.GetActiveUserByID(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, err
	}
	return s.party(ctx, s.db, guest)
}

func (s *Service) party(ctx context.Context, h database.Handler, guest *models.User) (*Party, error) {
	p := &Party{Guest: guest}

	var err error
	if p.GuestRSVP, err = optionalRSVP(ctx, h, guest.ID); err != nil {
		return nil, err
	}

	if guest.PartnerID != nil {
		partner, err := database.GetActiveUserByID(ctx, h, *guest.PartnerID)
		switch {
		case errors.Is(err, database.ErrNotFound):
			// dangling link to a deleted user
		case err != nil:
			return nil, err
		default:
			p.Partner = partner
			if p.PartnerRSVP, err = optionalRSVP(ctx, h, partner.ID); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

func optionalRSVP(ctx context.Context, h database.Handler, userID int64) (*models.RSVP, error) {
	r, err := database.GetRSVPByUserID(ctx, h, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	return r, err
}

// Submit records a submission. It writes one RSVP row for the guest and a
// second one when the guest answers for a partner or brings a plus-one.
// Nothing is written if any step fails.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Result, error) {
	if err := validate(&sub); err != nil {
		return nil, err
	}

	var res *Result
	err := s.db.TransactionContext(ctx, func(tx *database.Tx) error {
		var err error
		res, err = s.submit(ctx, tx, sub)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("rsvp submitted",
		"guest_id", res.Guest.ID,
		"status", sub.ResponseStatus,
		"rows", len(res.RSVPs),
		"plus_one_created", res.PlusOneCreated)

	if s.recorder != nil {
		s.recorder.RSVPSubmitted(sub.ResponseStatus, len(res.RSVPs), res.PlusOneCreated)
	}
	if s.notifier != nil {
		go s.notify(res)
	}
	return res, nil
}

func (s *Service) submit(ctx context.Context, tx *database.Tx, sub Submission) (*Result, error) {
	guest, err := database.GetActiveUserByID(ctx, tx, sub.GuestID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, err
	}

	res := &Result{Guest: guest}

	var partner *models.User
	partnerStatus := sub.ResponseStatus
	partnerDietary := sub.PartnerDietary

	switch {
	case sub.PlusOne != nil && sub.ResponseStatus == models.ResponseAttending:
		if !guest.PlusOneAllowed {
			return nil, ErrPlusOneNotAllowed
		}
		partner, res.PlusOneCreated, err = s.resolvePlusOne(ctx, tx, guest, sub.PlusOne.Name)
		if err != nil {
			return nil, err
		}
		res.PlusOne = partner
		partnerStatus = models.ResponseAttending
		partnerDietary = sub.PlusOne.Dietary

	case sub.IncludePartner:
		if guest.PartnerID == nil {
			return nil, ErrNoPartner
		}
		partner, err = database.GetActiveUserByID(ctx, tx, *guest.PartnerID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil, ErrNoPartner
			}
			return nil, err
		}
		if sub.PartnerResponseStatus != "" {
			partnerStatus = sub.PartnerResponseStatus
		}

	case guest.PartnerID != nil && sub.ResponseStatus != models.ResponseAttending:
		// A partner the guest said was coming does not outlast the guest's
		// own decline.
		var prev *models.RSVP
		partner, prev, err = s.escortedPartner(ctx, tx, guest)
		if err != nil {
			return nil, err
		}
		if prev != nil {
			partnerDietary = prev.Dietary
		}
	}

	guestRSVP := &models.RSVP{
		UserID:         guest.ID,
		ResponseStatus: sub.ResponseStatus,
		Dietary:        sub.Dietary,
		Message:        sub.Message,
		SubmittedBy:    &guest.ID,
	}
	if partner != nil {
		guestRSVP.PartnerID = &partner.ID
	}
	if err := database.UpsertRSVP(ctx, tx, guestRSVP); err != nil {
		return nil, err
	}

	written := []int64{guest.ID}
	if partner != nil {
		partnerRSVP := &models.RSVP{
			UserID:         partner.ID,
			PartnerID:      &guest.ID,
			ResponseStatus: partnerStatus,
			Dietary:        partnerDietary,
			Message:        sub.Message,
			SubmittedBy:    &guest.ID,
		}
		if err := database.UpsertRSVP(ctx, tx, partnerRSVP); err != nil {
			return nil, err
		}
		written = append(written, partner.ID)
	}

	for _, id := range written {
		r, err := database.GetRSVPByUserID(ctx, tx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to reload rsvp: %w", err)
		}
		res.RSVPs = append(res.RSVPs, r)
	}

	// Reload so the returned guest reflects a new partner link.
	if res.Guest, err = database.GetUserByID(ctx, tx, guest.ID); err != nil {
		return nil, err
	}
	return res, nil
}

// escortedPartner returns the guest's partner when the partner's current RSVP
// is an attending answer submitted by the guest, otherwise nil.
func (s *Service) escortedPartner(ctx context.Context, tx *database.Tx, guest *models.User) (*models.User, *models.RSVP, error) {
	partner, err := database.GetActiveUserByID(ctx, tx, *guest.PartnerID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	prev, err := optionalRSVP(ctx, tx, partner.ID)
	if err != nil {
		return nil, nil, err
	}
	if prev == nil || prev.ResponseStatus != models.ResponseAttending ||
		prev.SubmittedBy == nil || *prev.SubmittedBy != guest.ID {
		return nil, nil, nil
	}
	return partner, prev, nil
}

// resolvePlusOne returns the user behind a plus-one name, linking or creating
// it as needed. The returned bool reports whether a new user was inserted.
func (s *Service) resolvePlusOne(ctx context.Context, tx *database.Tx, guest *models.User, name string) (*models.User, bool, error) {
	if guest.PartnerID != nil {
		current, err := database.GetActiveUserByID(ctx, tx, *guest.PartnerID)
		switch {
		case errors.Is(err, database.ErrNotFound):
			// dangling link, treat the guest as unlinked
		case err != nil:
			return nil, false, err
		case models.SameName(current.Name, name):
			return current, false, nil
		default:
			return nil, false, ErrPartnerConflict
		}
	}

	matches, err := database.FindActiveUsersByName(ctx, tx, name)
	if err != nil {
		return nil, false, err
	}

	switch len(matches) {
	case 0:
		plusOne, err := database.CreateGuest(ctx, tx, name, false, &guest.ID)
		if err != nil {
			return nil, false, err
		}
		if err := database.LinkPartners(ctx, tx, guest.ID, plusOne.ID); err != nil {
			return nil, false, err
		}
		return plusOne, true, nil

	case 1:
		existing := matches[0]
		if existing.ID == guest.ID {
			return nil, false, ErrPartnerConflict
		}
		if existing.PartnerID != nil && *existing.PartnerID != guest.ID {
			return nil, false, ErrPartnerConflict
		}
		if err := database.LinkPartners(ctx, tx, guest.ID, existing.ID); err != nil {
			return nil, false, err
		}
		linked, err := database.GetUserByID(ctx, tx, existing.ID)
		return linked, false, err

	default:
		return nil, false, ErrAmbiguousGuest
	}
}

func (s *Service) notify(res *Result) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.notifier.RSVPSubmitted(ctx, res); err != nil {
		s.logger.Warn("rsvp notification failed", "guest_id", res.Guest.ID, "err", err)
	}
}

func validate(sub *Submission) error {
	if !sub.ResponseStatus.Valid() {
		return ErrInvalidStatus
	}
	if sub.PartnerResponseStatus != "" && !sub.PartnerResponseStatus.Valid() {
		return ErrInvalidStatus
	}

	sub.Dietary = strings.TrimSpace(sub.Dietary)
	sub.PartnerDietary = strings.TrimSpace(sub.PartnerDietary)
	sub.Message = strings.TrimSpace(sub.Message)
	if utf8.RuneCountInString(sub.Dietary) > maxDietaryLength || utf8.RuneCountInString(sub.PartnerDietary) > maxDietaryLength {
		return &ValidationError{Field: "dietary", Reason: fmt.Sprintf("must be at most %d characters", maxDietaryLength)}
	}
	if utf8.RuneCountInString(sub.Message) > maxMessageLength {
		return &ValidationError{Field: "message", Reason: fmt.Sprintf("must be at most %d characters", maxMessageLength)}
	}

	if sub.PlusOne != nil {
		sub.PlusOne.Name = models.NormalizeName(sub.PlusOne.Name)
		sub.PlusOne.Dietary = strings.TrimSpace(sub.PlusOne.Dietary)
		if sub.PlusOne.Name == "" {
			sub.PlusOne = nil
		} else if utf8.RuneCountInString(sub.PlusOne.Name) > maxNameLength {
			return &ValidationError{Field: "plus_one.name", Reason: fmt.Sprintf("must be at most %d characters", maxNameLength)}
		}
	}
	return nil
}

// ValidationError describes a rejected submission field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}
