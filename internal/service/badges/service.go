// Package badges provides badge evaluation and management services.
package badges

import (
	"context"
	"fmt"
	"time"

	prommetrics "github.com/platewatch/platewatch/internal/metrics"
	"github.com/platewatch/platewatch/internal/models"
	"github.com/platewatch/platewatch/internal/repository"
	"github.com/platewatch/platewatch/pkg/logger"
)

// BadgeRepository interface for badge operations.
type BadgeRepository interface {
	GetAll() ([]models.Badge, error)
	GetByID(id uint) (*models.Badge, error)
	GetOwnedBadgeIDs(userID uint) (map[uint]bool, error)
	AwardBadge(userID, badgeID uint) error
	GetUserBadges(userID uint) ([]models.UserBadge, error)
	GetUsersWithBadge(badgeID uint) ([]models.User, error)
	GetBadgeHoldersCount(badgeID uint) (int64, error)
}

// UserRepository interface for user operations.
type UserRepository interface {
	List() ([]models.User, error)
	GetByID(id uint) (*models.User, error)
}

// Service handles badge evaluation and awarding.
type Service struct {
	badgeRepo BadgeRepository
	userRepo  UserRepository
	log       *logger.Logger
}

// NewService creates a new badge service.
func NewService(badgeRepo *repository.BadgeRepository, userRepo *repository.UserRepository, log *logger.Logger) *Service {
	return &Service{
		badgeRepo: badgeRepo,
		userRepo:  userRepo,
		log:       log,
	}
}

// NewServiceWithInterfaces creates a new badge service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(badgeRepo BadgeRepository, userRepo UserRepository, log *logger.Logger) *Service {
	return &Service{
		badgeRepo: badgeRepo,
		userRepo:  userRepo,
		log:       log,
	}
}

// EvaluateCounters evaluates the catalog against a counters snapshot and
// awards every newly satisfied badge. This is the per-submission path: the
// snapshot is the user's post-ledger, post-progression state.
// Returns the newly awarded badges in catalog order.
func (s *Service) EvaluateCounters(ctx context.Context, userID uint, counters models.Counters) ([]models.Badge, error) {
	catalog, err := s.badgeRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to get badge catalog: %w", err)
	}

	owned, err := s.badgeRepo.GetOwnedBadgeIDs(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get owned badges: %w", err)
	}

	newlySatisfied, err := Evaluate(catalog, counters, owned)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate badges: %w", err)
	}

	var awarded []models.Badge
	for _, badge := range newlySatisfied {
		if err := s.AwardBadge(ctx, userID, &badge); err != nil {
			s.log.Error().
				Err(err).
				Uint("user_id", userID).
				Str("badge", badge.Name).
				Msg("Failed to award badge")
			continue
		}
		awarded = append(awarded, badge)

		s.log.Info().
			Uint("user_id", userID).
			Str("badge", badge.Name).
			Msg("Badge awarded")
	}

	return awarded, nil
}

// EvaluateUser evaluates all badges for a user from their stored counters.
func (s *Service) EvaluateUser(ctx context.Context, userID uint) ([]models.Badge, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return s.EvaluateCounters(ctx, userID, user.Counters())
}

// EvaluateAll sweeps the whole roster, awarding anything the per-submission
// path missed (failed pipelines, criteria added after the fact).
// Returns the number of badges awarded.
func (s *Service) EvaluateAll(ctx context.Context) (int, error) {
	s.log.Info().Msg("Starting badge sweep for all users")
	start := time.Now()

	users, err := s.userRepo.List()
	if err != nil {
		return 0, fmt.Errorf("failed to get users: %w", err)
	}

	awardsCount := 0
	for _, user := range users {
		awarded, err := s.EvaluateCounters(ctx, user.ID, user.Counters())
		if err != nil {
			s.log.Error().
				Err(err).
				Uint("user_id", user.ID).
				Msg("Failed to evaluate badges for user")
			continue
		}
		awardsCount += len(awarded)
	}

	s.log.Info().
		Int("users_evaluated", len(users)).
		Int("badges_awarded", awardsCount).
		Dur("duration", time.Since(start)).
		Msg("Badge sweep complete")

	return awardsCount, nil
}

// AwardBadge awards a badge to a user and records the award metrics.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) AwardBadge(ctx context.Context, userID uint, badge *models.Badge) error {
	if err := s.badgeRepo.AwardBadge(userID, badge.ID); err != nil {
		return err
	}

	prommetrics.RecordBadgeAwarded(badge.Name)

	count, _ := s.badgeRepo.GetBadgeHoldersCount(badge.ID)
	prommetrics.SetActiveBadgeHolders(badge.Name, int(count))

	return nil
}

// GetUserBadges retrieves all badges earned by a user.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetUserBadges(ctx context.Context, userID uint) ([]models.UserBadge, error) {
	return s.badgeRepo.GetUserBadges(userID)
}

// GetBadgeCatalog retrieves all available badges.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetBadgeCatalog(ctx context.Context) ([]models.Badge, error) {
	return s.badgeRepo.GetAll()
}

// GetBadgeByID retrieves a badge by its ID.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetBadgeByID(ctx context.Context, badgeID uint) (*models.Badge, error) {
	return s.badgeRepo.GetByID(badgeID)
}

// GetBadgeHolders retrieves users who have earned a specific badge.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetBadgeHolders(ctx context.Context, badgeID uint) ([]models.User, error) {
	return s.badgeRepo.GetUsersWithBadge(badgeID)
}
