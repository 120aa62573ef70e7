// Package tagging implements the tag submission pipeline: validation,
// ledger writes, progression update and badge evaluation, in that fixed
// order. Writes are independent remote calls with no cross-step atomicity;
// a failure surfaces to the caller without compensating earlier steps, and
// the client-generated tag id makes retries safe.
package tagging

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	prommetrics "github.com/platewatch/platewatch/internal/metrics"
	"github.com/platewatch/platewatch/internal/models"
	"github.com/platewatch/platewatch/internal/repository"
	"github.com/platewatch/platewatch/internal/service/progression"
	"github.com/platewatch/platewatch/internal/service/validator"
	"github.com/platewatch/platewatch/pkg/logger"
)

// UserRepository interface for the pipeline's user writes.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	GetByIdentity(jurisdiction, plate string) (*models.User, error)
	DebitCredit(userID uint, polarity models.Polarity) error
	IncrementReceived(userID uint, polarity models.Polarity) error
	IncrementGiven(userID uint, polarity models.Polarity) error
	AddExperience(userID uint, delta int) (int64, error)
	UpdateLevel(userID uint, level int) error
}

// TagRepository interface for tag event persistence.
type TagRepository interface {
	Create(tag *models.TagEvent) error
	Exists(id string) (bool, error)
}

// BadgeEvaluator runs the badge rule engine for a counters snapshot.
type BadgeEvaluator interface {
	EvaluateCounters(ctx context.Context, userID uint, counters models.Counters) ([]models.Badge, error)
}

// Request is a tag submission from the API layer. TagID is the optional
// client-generated idempotency key; a fresh UUID is assigned when empty.
type Request struct {
	TagID        string
	CreatorID    uint
	Plate        string
	Jurisdiction string
	Polarity     models.Polarity
	Reason       string
	Latitude     *float64
	Longitude    *float64
}

// Result is the outcome of an accepted submission.
type Result struct {
	TagID      string         `json:"tag_id"`
	Duplicate  bool           `json:"duplicate,omitempty"`
	ExpGained  int            `json:"exp_gained"`
	Experience int64          `json:"experience"`
	NewLevel   int            `json:"new_level"`
	LeveledUp  bool           `json:"leveled_up"`
	NewBadges  []models.Badge `json:"new_badges"`
}

// Service runs the submission pipeline.
type Service struct {
	users   UserRepository
	tags    TagRepository
	badges  BadgeEvaluator
	rewards progression.Rewards
	log     *logger.Logger
}

// NewService creates a new tagging service with concrete repositories.
func NewService(
	userRepo *repository.UserRepository,
	tagRepo *repository.TagRepository,
	badgeEvaluator BadgeEvaluator,
	rewards progression.Rewards,
	log *logger.Logger,
) *Service {
	return &Service{
		users:   userRepo,
		tags:    tagRepo,
		badges:  badgeEvaluator,
		rewards: rewards,
		log:     log,
	}
}

// NewServiceWithInterfaces creates a new tagging service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	users UserRepository,
	tags TagRepository,
	badges BadgeEvaluator,
	rewards progression.Rewards,
	log *logger.Logger,
) *Service {
	return &Service{
		users:   users,
		tags:    tags,
		badges:  badges,
		rewards: rewards,
		log:     log,
	}
}

// Submit processes one tag submission end to end.
//
// Pipeline order is fixed: validate, persist the tag, debit the submitter,
// credit the target (skipped silently when the plate resolves to nobody),
// bump given counters, apply experience and level, then evaluate badges.
// A duplicate tag id short-circuits before validation so a retried
// submission never double-applies ledger or progression effects. The check
// has to come first: a partial failure may already have consumed the
// submitter's last credit, and re-running the balance check would lock the
// retry out of the tag it is trying to finish reporting.
func (s *Service) Submit(ctx context.Context, req Request) (*Result, error) {
	if req.TagID != "" {
		exists, err := s.tags.Exists(req.TagID)
		if err != nil {
			return nil, fmt.Errorf("failed to check tag id %s: %w", req.TagID, err)
		}
		if exists {
			s.log.Info().
				Str("tag_id", req.TagID).
				Uint("creator_id", req.CreatorID).
				Msg("Duplicate tag id, submission already applied")
			return &Result{TagID: req.TagID, Duplicate: true}, nil
		}
	}

	submitter, err := s.users.GetByID(req.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load submitter: %w", err)
	}

	sub, err := validator.Validate(validator.Request{
		TagID:        req.TagID,
		Plate:        req.Plate,
		Jurisdiction: req.Jurisdiction,
		Polarity:     req.Polarity,
		Reason:       req.Reason,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	}, submitter)
	if err != nil {
		prommetrics.RecordValidationFailure(validationLabel(err))
		prommetrics.RecordTagSubmitted(string(req.Polarity), "rejected")
		return nil, err
	}

	tagID := sub.TagID
	if tagID == "" {
		tagID = uuid.NewString()
	}

	tag := &models.TagEvent{
		ID:           tagID,
		Plate:        sub.Plate,
		Jurisdiction: sub.Jurisdiction,
		CreatorID:    submitter.ID,
		Polarity:     sub.Polarity,
		Reason:       sub.Reason,
		Latitude:     sub.Latitude,
		Longitude:    sub.Longitude,
		CreatedAt:    time.Now(),
	}

	if err := s.tags.Create(tag); err != nil {
		// A concurrent retry can slip past the Exists check and lose the
		// insert race; treat it the same as the up-front duplicate.
		if errors.Is(err, models.ErrDuplicateTag) {
			s.log.Info().
				Str("tag_id", tagID).
				Uint("creator_id", submitter.ID).
				Msg("Duplicate tag id, submission already applied")
			return &Result{TagID: tagID, Duplicate: true}, nil
		}
		prommetrics.RecordTagSubmitted(string(sub.Polarity), "failed")
		return nil, fmt.Errorf("failed to persist tag event: %w", err)
	}

	// From here on the tag exists; failures leave partial state behind by
	// design and the caller retries with the same tag id.
	if err := s.users.DebitCredit(submitter.ID, sub.Polarity); err != nil {
		return nil, s.partialFailure(tagID, "debit", err)
	}
	prommetrics.RecordCreditSpent(string(sub.Polarity))

	if err := s.creditTarget(sub); err != nil {
		return nil, s.partialFailure(tagID, "credit target", err)
	}

	if err := s.users.IncrementGiven(submitter.ID, sub.Polarity); err != nil {
		return nil, s.partialFailure(tagID, "given counters", err)
	}

	award := s.rewards.Award(sub.Polarity, tag.HasCoordinate(), utf8.RuneCountInString(sub.Reason))
	newTotal, err := s.users.AddExperience(submitter.ID, award)
	if err != nil {
		return nil, s.partialFailure(tagID, "experience", err)
	}

	update := progression.Apply(newTotal-int64(award), award)
	if err := s.users.UpdateLevel(submitter.ID, update.Level); err != nil {
		return nil, s.partialFailure(tagID, "level", err)
	}

	prommetrics.ObserveExperienceAwarded(float64(award))
	if update.LeveledUp {
		prommetrics.RecordLevelUp()
	}

	fresh, err := s.users.GetByID(submitter.ID)
	if err != nil {
		return nil, s.partialFailure(tagID, "counter snapshot", err)
	}

	newBadges, err := s.badges.EvaluateCounters(ctx, submitter.ID, fresh.Counters())
	if err != nil {
		return nil, s.partialFailure(tagID, "badge evaluation", err)
	}

	prommetrics.RecordTagSubmitted(string(sub.Polarity), "accepted")

	s.log.Info().
		Str("tag_id", tagID).
		Uint("creator_id", submitter.ID).
		Str("polarity", string(sub.Polarity)).
		Int("exp_gained", award).
		Bool("leveled_up", update.LeveledUp).
		Int("new_badges", len(newBadges)).
		Msg("Tag submission processed")

	return &Result{
		TagID:      tagID,
		ExpGained:  award,
		Experience: update.Experience,
		NewLevel:   update.Level,
		LeveledUp:  update.LeveledUp,
		NewBadges:  newBadges,
	}, nil
}

// creditTarget increments the received counter of the resolved target. An
// unknown plate is a valid terminal state, not an error.
func (s *Service) creditTarget(sub *validator.Submission) error {
	target, err := s.users.GetByIdentity(sub.Jurisdiction, sub.Plate)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			prommetrics.RecordResolutionMiss()
			s.log.Debug().
				Str("target", sub.TargetKey()).
				Msg("Target plate does not resolve to a known user, credit skipped")
			return nil
		}
		return err
	}
	return s.users.IncrementReceived(target.ID, sub.Polarity)
}

// partialFailure logs and wraps a write failure that happened after the tag
// event was persisted.
func (s *Service) partialFailure(tagID, step string, err error) error {
	prommetrics.RecordTagSubmitted("", "partial_failure")
	s.log.Error().
		Err(err).
		Str("tag_id", tagID).
		Str("step", step).
		Msg("Submission write failed after tag was recorded")
	return fmt.Errorf("tag %s recorded but %s step failed: %w", tagID, step, err)
}

// validationLabel maps a validation error to a stable metric label.
func validationLabel(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidJurisdiction):
		return "invalid_jurisdiction"
	case errors.Is(err, models.ErrInvalidPlate):
		return "invalid_plate"
	case errors.Is(err, models.ErrMissingReason):
		return "missing_reason"
	case errors.Is(err, models.ErrInvalidPolarity):
		return "invalid_polarity"
	case errors.Is(err, models.ErrSelfTag):
		return "self_tag"
	case errors.Is(err, models.ErrInsufficientBalance):
		return "insufficient_balance"
	default:
		return "other"
	}
}
