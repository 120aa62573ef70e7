// Package models defines domain models for the plate tagging system.
package models

import (
	"strings"
	"time"
)

// User represents a registered driver account.
//
// Credit balances and the given/received counters are only mutated through
// single-statement conditional updates in the repository layer, never through
// read-modify-write on this struct.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;not null;size:255" json:"username"`

	// Registered vehicle identity. Both fields are empty for accounts
	// without a vehicle on file; such accounts can tag but never resolve
	// as a tag target.
	Plate        string `gorm:"size:8;index:idx_users_identity" json:"plate"`
	Jurisdiction string `gorm:"size:2;index:idx_users_identity" json:"jurisdiction"`

	PositiveCredits int `gorm:"not null;default:0" json:"positive_credits"`
	NegativeCredits int `gorm:"not null;default:0" json:"negative_credits"`

	Experience int64 `gorm:"not null;default:0" json:"experience"`
	Level      int   `gorm:"not null;default:1" json:"level"`

	PositiveReceived int64 `gorm:"not null;default:0" json:"positive_received"`
	NegativeReceived int64 `gorm:"not null;default:0" json:"negative_received"`
	TotalGiven       int64 `gorm:"not null;default:0" json:"total_given"`
	PositiveGiven    int64 `gorm:"not null;default:0" json:"positive_given"`
	NegativeGiven    int64 `gorm:"not null;default:0" json:"negative_given"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model.
func (User) TableName() string {
	return "users"
}

// HasIdentity reports whether the account has a vehicle on file.
func (u *User) HasIdentity() bool {
	return u.Plate != "" && u.Jurisdiction != ""
}

// IdentityKey returns the normalized identity key for the user's vehicle,
// or the empty string when no vehicle is on file.
func (u *User) IdentityKey() string {
	if !u.HasIdentity() {
		return ""
	}
	return IdentityKey(u.Jurisdiction, u.Plate)
}

// CreditsFor returns the credit balance for a tag polarity.
func (u *User) CreditsFor(p Polarity) int {
	if p == PolarityPositive {
		return u.PositiveCredits
	}
	return u.NegativeCredits
}

// Counters returns a snapshot of the cumulative counters the badge rule
// engine evaluates.
func (u *User) Counters() Counters {
	return Counters{
		TotalGiven:       u.TotalGiven,
		PositiveGiven:    u.PositiveGiven,
		NegativeGiven:    u.NegativeGiven,
		PositiveReceived: u.PositiveReceived,
		NegativeReceived: u.NegativeReceived,
		Experience:       u.Experience,
	}
}

// Counters is an immutable snapshot of a user's cumulative counters.
type Counters struct {
	TotalGiven       int64
	PositiveGiven    int64
	NegativeGiven    int64
	PositiveReceived int64
	NegativeReceived int64
	Experience       int64
}

// IdentityKey builds the normalized identity key for a jurisdiction + plate
// pair. Casing, spaces and dashes are insignificant: "ny ABC-123" and
// "NY abc123" map to the same key.
func IdentityKey(jurisdiction, plate string) string {
	return NormalizeJurisdiction(jurisdiction) + ":" + NormalizePlate(plate)
}

// NormalizePlate strips spaces and dashes and uppercases a plate string.
func NormalizePlate(plate string) string {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	plate = strings.ReplaceAll(plate, " ", "")
	return strings.ReplaceAll(plate, "-", "")
}

// NormalizeJurisdiction uppercases and trims a jurisdiction code.
func NormalizeJurisdiction(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
