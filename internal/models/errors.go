package models

import "errors"

// Domain error taxonomy. Validation errors are deterministic and surface to
// the caller before any write; the remaining sentinels come out of the
// repository layer.
var (
	// ErrInvalidJurisdiction is returned when the jurisdiction code is not a
	// recognized 2-letter code.
	ErrInvalidJurisdiction = errors.New("jurisdiction code not recognized")
	// ErrInvalidPlate is returned when the normalized plate falls outside the
	// accepted length range.
	ErrInvalidPlate = errors.New("plate must be 3-8 characters")
	// ErrMissingReason is returned when the free-text reason is empty.
	ErrMissingReason = errors.New("reason must not be empty")
	// ErrInvalidPolarity is returned when the polarity is neither positive
	// nor negative.
	ErrInvalidPolarity = errors.New("polarity must be positive or negative")
	// ErrSelfTag is returned when the normalized target identity equals the
	// submitter's own identity.
	ErrSelfTag = errors.New("cannot tag your own vehicle")
	// ErrInsufficientBalance is returned when the submitter has no credits
	// left for the requested polarity.
	ErrInsufficientBalance = errors.New("no credits left for this tag type")

	// ErrDuplicateTag is returned when a tag event with the same id already
	// exists; retried submissions short-circuit on it.
	ErrDuplicateTag = errors.New("tag event already recorded")
	// ErrUserNotFound is returned when a user id or identity does not resolve.
	ErrUserNotFound = errors.New("user not found")
)
