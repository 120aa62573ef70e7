package models

import (
	"time"
)

// Polarity is the direction of a tag: praise or complaint.
type Polarity string

// Tag polarities.
const (
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
)

// Valid reports whether p is a known polarity.
func (p Polarity) Valid() bool {
	return p == PolarityPositive || p == PolarityNegative
}

// TagEvent represents one unit of driver feedback submitted against a target
// plate. Events are immutable once created; the client-generated UUID id
// doubles as the idempotency key for retried submissions.
type TagEvent struct {
	ID           string   `gorm:"primaryKey;size:36" json:"id"`
	Plate        string   `gorm:"not null;size:8;index:idx_tag_events_target" json:"plate"`
	Jurisdiction string   `gorm:"not null;size:2;index:idx_tag_events_target" json:"jurisdiction"`
	CreatorID    uint     `gorm:"not null;index" json:"creator_id"`
	Creator      User     `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Polarity     Polarity `gorm:"not null;size:8;index" json:"polarity"`
	Reason       string   `gorm:"type:text;not null" json:"reason"`

	// Optional submission coordinate. Both pointers are set or both are nil.
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for TagEvent model.
func (TagEvent) TableName() string {
	return "tag_events"
}

// HasCoordinate reports whether the event carries a geographic coordinate.
func (t *TagEvent) HasCoordinate() bool {
	return t.Latitude != nil && t.Longitude != nil
}

// TargetKey returns the normalized identity key of the tagged vehicle.
func (t *TagEvent) TargetKey() string {
	return IdentityKey(t.Jurisdiction, t.Plate)
}
