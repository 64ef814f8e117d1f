package models

import (
	"strings"
	"time"
)

// AccountStatus is the lifecycle state of a user row.
type AccountStatus string

const (
	AccountStatusGuest      AccountStatus = "guest"
	AccountStatusRegistered AccountStatus = "registered"
	AccountStatusDeleted    AccountStatus = "deleted"
)

// User is a person on the guest list. Email and password stay NULL until the
// guest registers. PartnerID links two users in both directions.
type User struct {
	ID             int64         `db:"id" json:"id"`
	Name           string        `db:"name" json:"name"`
	Email          *string       `db:"email" json:"email,omitempty"`
	PasswordHash   *string       `db:"password_hash" json:"-"`
	PartnerID      *int64        `db:"partner_id" json:"partner_id,omitempty"`
	PlusOneAllowed bool          `db:"plus_one_allowed" json:"plus_one_allowed"`
	AccountStatus  AccountStatus `db:"account_status" json:"account_status"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
	DeletedAt      *time.Time    `db:"deleted_at" json:"-"`
}

// IsRegistered reports whether the user has login credentials.
func (u *User) IsRegistered() bool {
	return u.AccountStatus == AccountStatusRegistered
}

// HasPartner reports whether the user is linked to another user.
func (u *User) HasPartner() bool {
	return u.PartnerID != nil
}

// NormalizeName trims and collapses inner whitespace so that
// "  Jane   Doe " and "Jane Doe" refer to the same guest.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// NameKey is the stored lookup form of a name: normalized and lower-cased
// with full Unicode case mapping, so "ZOË" and "zoë" share a key.
func NameKey(name string) string {
	return strings.ToLower(NormalizeName(name))
}

// SameName compares two names the way guest lookup does.
func SameName(a, b string) bool {
	return NameKey(a) == NameKey(b)
}
