// Package validator checks prospective tag submissions against format and
// business rules before anything is persisted. It is pure: no side effects,
// deterministic output for a given request and submitter snapshot.
package validator

import (
	"fmt"
	"strings"

	"github.com/platewatch/platewatch/internal/models"
)

// Plate length bounds after normalization.
const (
	MinPlateLength = 3
	MaxPlateLength = 8
)

// Request is a raw tag submission as received from the caller.
type Request struct {
	TagID        string
	Plate        string
	Jurisdiction string
	Polarity     models.Polarity
	Reason       string
	Latitude     *float64
	Longitude    *float64
}

// Submission is a validated, normalized tag submission.
type Submission struct {
	TagID        string
	Plate        string // normalized
	Jurisdiction string // normalized
	Polarity     models.Polarity
	Reason       string // surrounding whitespace trimmed
	Latitude     *float64
	Longitude    *float64
}

// TargetKey returns the normalized identity key of the submission target.
func (s *Submission) TargetKey() string {
	return models.IdentityKey(s.Jurisdiction, s.Plate)
}

// Validate runs the rule chain in order and returns the normalized
// submission. The first failing rule wins; later rules are not evaluated.
func Validate(req Request, submitter *models.User) (*Submission, error) {
	jurisdiction := models.NormalizeJurisdiction(req.Jurisdiction)
	if !knownJurisdictions[jurisdiction] {
		return nil, fmt.Errorf("jurisdiction %q: %w", req.Jurisdiction, models.ErrInvalidJurisdiction)
	}

	plate := models.NormalizePlate(req.Plate)
	if len(plate) < MinPlateLength || len(plate) > MaxPlateLength {
		return nil, fmt.Errorf("plate %q: %w", req.Plate, models.ErrInvalidPlate)
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, models.ErrMissingReason
	}

	if !req.Polarity.Valid() {
		return nil, fmt.Errorf("polarity %q: %w", req.Polarity, models.ErrInvalidPolarity)
	}

	if submitter.HasIdentity() && submitter.IdentityKey() == models.IdentityKey(jurisdiction, plate) {
		return nil, models.ErrSelfTag
	}

	if submitter.CreditsFor(req.Polarity) <= 0 {
		return nil, fmt.Errorf("%s credits: %w", req.Polarity, models.ErrInsufficientBalance)
	}

	return &Submission{
		TagID:        req.TagID,
		Plate:        plate,
		Jurisdiction: jurisdiction,
		Polarity:     req.Polarity,
		Reason:       reason,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	}, nil
}

// knownJurisdictions is the recognized set of 2-letter codes: the 50 US
// states plus DC.
var knownJurisdictions = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true,
	"CO": true, "CT": true, "DE": true, "DC": true, "FL": true,
	"GA": true, "HI": true, "ID": true, "IL": true, "IN": true,
	"IA": true, "KS": true, "KY": true, "LA": true, "ME": true,
	"MD": true, "MA": true, "MI": true, "MN": true, "MS": true,
	"MO": true, "MT": true, "NE": true, "NV": true, "NH": true,
	"NJ": true, "NM": true, "NY": true, "NC": true, "ND": true,
	"OH": true, "OK": true, "OR": true, "PA": true, "RI": true,
	"SC": true, "SD": true, "TN": true, "TX": true, "UT": true,
	"VT": true, "VA": true, "WA": true, "WV": true, "WI": true,
	"WY": true,
}
