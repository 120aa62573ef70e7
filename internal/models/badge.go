package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Badge represents a catalog entry for an achievement users can earn.
// The catalog is read-only configuration; rows are seeded at boot and never
// mutated at runtime.
type Badge struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Icon        string          `gorm:"size:50" json:"icon"`
	Criteria    json.RawMessage `gorm:"type:jsonb" json:"criteria"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Badge model.
func (Badge) TableName() string {
	return "badges"
}

// DecodeCriteria parses and validates the badge's criteria document.
func (b *Badge) DecodeCriteria() (*BadgeCriteria, error) {
	var c BadgeCriteria
	if err := json.Unmarshal(b.Criteria, &c); err != nil {
		return nil, fmt.Errorf("badge %q: failed to parse criteria: %w", b.Name, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("badge %q: %w", b.Name, err)
	}
	return &c, nil
}

// CriteriaType discriminates the closed set of badge criteria variants.
type CriteriaType string

// Criteria variants.
const (
	// CriteriaCounter awards when a single cumulative counter reaches a
	// threshold.
	CriteriaCounter CriteriaType = "counter"
	// CriteriaBalanced awards when both received counters reach the
	// threshold and their difference stays within the closeness bound.
	CriteriaBalanced CriteriaType = "balanced"
)

// CounterKind names a cumulative counter a criterion can evaluate.
type CounterKind string

// Counter kinds.
const (
	CounterGiven            CounterKind = "given_count"
	CounterPositiveGiven    CounterKind = "positive_given_count"
	CounterPositiveReceived CounterKind = "positive_received_count"
	CounterNegativeReceived CounterKind = "negative_received_count"
	CounterExperience       CounterKind = "experience_earned"
)

// BadgeCriteria is the decoded criteria document.
//
// Type selects the variant: a counter criterion uses Counter + Threshold, a
// balanced criterion uses Threshold + Closeness against both received
// counters. Keeping the variant closed lets the evaluator switch be
// exhaustive instead of special-casing badge ids.
type BadgeCriteria struct {
	Type      CriteriaType `json:"type"`
	Counter   CounterKind  `json:"counter,omitempty"`
	Threshold int64        `json:"threshold"`
	Closeness int64        `json:"closeness,omitempty"`
}

// Validate checks the criteria document for structural errors.
func (c *BadgeCriteria) Validate() error {
	switch c.Type {
	case CriteriaCounter:
		switch c.Counter {
		case CounterGiven, CounterPositiveGiven, CounterPositiveReceived,
			CounterNegativeReceived, CounterExperience:
		default:
			return fmt.Errorf("unknown counter kind: %q", c.Counter)
		}
		if c.Threshold <= 0 {
			return fmt.Errorf("counter criteria requires a positive threshold, got %d", c.Threshold)
		}
	case CriteriaBalanced:
		if c.Threshold <= 0 {
			return fmt.Errorf("balanced criteria requires a positive threshold, got %d", c.Threshold)
		}
		if c.Closeness < 0 {
			return fmt.Errorf("balanced criteria requires a non-negative closeness bound, got %d", c.Closeness)
		}
	default:
		return fmt.Errorf("unknown criteria type: %q", c.Type)
	}
	return nil
}

// Value extracts the counter a kind refers to from a counters snapshot.
func (s Counters) Value(kind CounterKind) (int64, error) {
	switch kind {
	case CounterGiven:
		return s.TotalGiven, nil
	case CounterPositiveGiven:
		return s.PositiveGiven, nil
	case CounterPositiveReceived:
		return s.PositiveReceived, nil
	case CounterNegativeReceived:
		return s.NegativeReceived, nil
	case CounterExperience:
		return s.Experience, nil
	default:
		return 0, fmt.Errorf("unknown counter kind: %q", kind)
	}
}

// UserBadge represents a badge earned by a user. At most one row exists per
// (user, badge) pair and rows are never revoked.
type UserBadge struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"not null;index:idx_user_badges_pair,unique" json:"user_id"`
	User     User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	BadgeID  uint      `gorm:"not null;index:idx_user_badges_pair,unique" json:"badge_id"`
	Badge    Badge     `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
	EarnedAt time.Time `gorm:"not null" json:"earned_at"`
}

// TableName specifies the table name for UserBadge model.
func (UserBadge) TableName() string {
	return "user_badges"
}
