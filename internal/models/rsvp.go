package models

import "time"

// ResponseStatus is a guest's answer to the invitation.
type ResponseStatus string

const (
	ResponseAttending    ResponseStatus = "attending"
	ResponseNotAttending ResponseStatus = "not_attending"
	ResponsePending      ResponseStatus = "pending"
)

// Valid reports whether s is one of the known statuses.
func (s ResponseStatus) Valid() bool {
	switch s {
	case ResponseAttending, ResponseNotAttending, ResponsePending:
		return true
	}
	return false
}

// RSVP is the response of a single person. PartnerID is set when the row was
// written as part of a couple's submission and points at the other person.
type RSVP struct {
	ID             int64          `db:"id" json:"id"`
	UserID         int64          `db:"user_id" json:"user_id"`
	PartnerID      *int64         `db:"partner_id" json:"partner_id,omitempty"`
	ResponseStatus ResponseStatus `db:"response_status" json:"response_status"`
	Dietary        string         `db:"dietary" json:"dietary"`
	Message        string         `db:"message" json:"message"`
	SubmittedBy    *int64         `db:"submitted_by" json:"submitted_by,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`

	// Populated by queries that join users.
	UserName string `db:"user_name" json:"user_name,omitempty"`
}

// GuestSummary is a row of the admin guest list.
type GuestSummary struct {
	User
	PartnerName    *string         `db:"partner_name" json:"partner_name,omitempty"`
	ResponseStatus *ResponseStatus `db:"response_status" json:"response_status,omitempty"`
}

// Stats is the headcount summary shown to the couple.
type Stats struct {
	Guests       int `db:"guests" json:"guests"`
	Registered   int `db:"registered" json:"registered"`
	Attending    int `db:"attending" json:"attending"`
	NotAttending int `db:"not_attending" json:"not_attending"`
	Pending      int `db:"pending" json:"pending"`
	NoResponse   int `db:"no_response" json:"no_response"`
}
