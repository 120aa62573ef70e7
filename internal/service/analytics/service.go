package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/platewatch/platewatch/internal/cache"
	"github.com/platewatch/platewatch/internal/config"
	prommetrics "github.com/platewatch/platewatch/internal/metrics"
	"github.com/platewatch/platewatch/internal/models"
	"github.com/platewatch/platewatch/internal/repository"
	"github.com/platewatch/platewatch/pkg/logger"
)

// TagLister is the tag event read surface the views consume.
type TagLister interface {
	List(filter repository.TagFilter) ([]models.TagEvent, error)
}

// UserLister is the roster read surface the views consume.
type UserLister interface {
	List() ([]models.User, error)
}

// Service serves the aggregation views. Every view is computed from a full
// read of its inputs and cached as a JSON snapshot in Redis for the
// configured TTL, so results may trail very recent submissions by up to the
// TTL. The service never writes to the event log or roster.
type Service struct {
	tags        TagLister
	users       UserLister
	cache       cache.Cache
	regions     []Region
	ttl         time.Duration
	defaultTopN int
	loc         *time.Location
	now         func() time.Time
	log         *logger.Logger
}

// NewService creates a new analytics service with concrete repositories. The
// region table comes from the configured YAML file when one is set, otherwise
// the built-in table is used.
func NewService(
	tagRepo *repository.TagRepository,
	userRepo *repository.UserRepository,
	cacheClient cache.Cache,
	cfg *config.AnalyticsConfig,
	log *logger.Logger,
) (*Service, error) {
	regions := DefaultRegions()
	if cfg.RegionsFile != "" {
		loaded, err := LoadRegions(cfg.RegionsFile)
		if err != nil {
			return nil, err
		}
		regions = loaded
		log.Info().
			Str("file", cfg.RegionsFile).
			Int("regions", len(regions)).
			Msg("Loaded region table override")
	}

	loc, err := cfg.GetLocation()
	if err != nil {
		return nil, fmt.Errorf("invalid analytics timezone %q: %w", cfg.Timezone, err)
	}

	return &Service{
		tags:        tagRepo,
		users:       userRepo,
		cache:       cacheClient,
		regions:     regions,
		ttl:         cfg.CacheTTLDuration(),
		defaultTopN: cfg.DefaultTopN,
		loc:         loc,
		now:         time.Now,
		log:         log,
	}, nil
}

// NewServiceWithInterfaces creates a new analytics service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	tags TagLister,
	users UserLister,
	cacheClient cache.Cache,
	regions []Region,
	ttl time.Duration,
	defaultTopN int,
	loc *time.Location,
	now func() time.Time,
	log *logger.Logger,
) *Service {
	return &Service{
		tags:        tags,
		users:       users,
		cache:       cacheClient,
		regions:     regions,
		ttl:         ttl,
		defaultTopN: defaultTopN,
		loc:         loc,
		now:         now,
		log:         log,
	}
}

// PlateLeaderboard returns target plates ranked by tag count, optionally
// restricted to one polarity.
func (s *Service) PlateLeaderboard(ctx context.Context, polarity models.Polarity, direction SortDirection) ([]PlateCount, error) {
	if !direction.Valid() {
		direction = SortDesc
	}
	key := fmt.Sprintf("analytics:plates:%s:%s", polarity, direction)
	return cachedView(ctx, s, "plate_leaderboard", key, func() ([]PlateCount, error) {
		events, err := s.tags.List(repository.TagFilter{})
		if err != nil {
			return nil, err
		}
		return PlateLeaderboard(events, polarity, direction), nil
	})
}

// ExperienceLeaderboard returns users ranked by cumulative experience.
func (s *Service) ExperienceLeaderboard(ctx context.Context, direction SortDirection) ([]UserRank, error) {
	if !direction.Valid() {
		direction = SortDesc
	}
	key := fmt.Sprintf("analytics:experience:%s", direction)
	return cachedView(ctx, s, "experience_leaderboard", key, func() ([]UserRank, error) {
		users, err := s.users.List()
		if err != nil {
			return nil, err
		}
		return ExperienceLeaderboard(users, direction), nil
	})
}

// Regions returns the per-region tag counts.
func (s *Service) Regions(ctx context.Context) ([]RegionCount, error) {
	return cachedView(ctx, s, "regions", "analytics:regions", func() ([]RegionCount, error) {
		events, err := s.tags.List(repository.TagFilter{})
		if err != nil {
			return nil, err
		}
		return RegionBreakdown(events, s.regions), nil
	})
}

// HourlyHistogram returns tag counts bucketed by local hour of day.
func (s *Service) HourlyHistogram(ctx context.Context) (Histogram, error) {
	return cachedView(ctx, s, "hourly_histogram", "analytics:histogram:hourly", func() (Histogram, error) {
		events, err := s.tags.List(repository.TagFilter{})
		if err != nil {
			return Histogram{}, err
		}
		return HourHistogram(events, s.loc), nil
	})
}

// WeekdayHistogram returns tag counts over the trailing seven days bucketed
// by local weekday.
func (s *Service) WeekdayHistogram(ctx context.Context) (Histogram, error) {
	return cachedView(ctx, s, "weekday_histogram", "analytics:histogram:weekday", func() (Histogram, error) {
		now := s.now()
		events, err := s.tags.List(repository.TagFilter{Since: now.Add(-7 * 24 * time.Hour)})
		if err != nil {
			return Histogram{}, err
		}
		return WeekdayHistogram(events, now, s.loc), nil
	})
}

// TopTaggers returns the n most active taggers. A non-positive n falls back
// to the configured default.
func (s *Service) TopTaggers(ctx context.Context, n int) ([]TaggerCount, error) {
	if n <= 0 {
		n = s.defaultTopN
	}
	key := fmt.Sprintf("analytics:top_taggers:%d", n)
	return cachedView(ctx, s, "top_taggers", key, func() ([]TaggerCount, error) {
		events, err := s.tags.List(repository.TagFilter{})
		if err != nil {
			return nil, err
		}
		users, err := s.users.List()
		if err != nil {
			return nil, err
		}
		return TopTaggers(events, users, n), nil
	})
}

// TopReasons returns the n most common tag reasons by exact string.
func (s *Service) TopReasons(ctx context.Context, n int) ([]ReasonCount, error) {
	if n <= 0 {
		n = s.defaultTopN
	}
	key := fmt.Sprintf("analytics:top_reasons:%d", n)
	return cachedView(ctx, s, "top_reasons", key, func() ([]ReasonCount, error) {
		events, err := s.tags.List(repository.TagFilter{})
		if err != nil {
			return nil, err
		}
		return TopReasons(events, n), nil
	})
}

// Summary returns the scalar rollups over the full event history.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	return cachedView(ctx, s, "summary", "analytics:summary", func() (Summary, error) {
		events, err := s.tags.List(repository.TagFilter{})
		if err != nil {
			return Summary{}, err
		}
		return Summarize(events, s.now(), s.loc), nil
	})
}

// cachedView serves a view from the Redis snapshot when present, otherwise
// computes it and stores the result for the TTL. Cache failures degrade to a
// plain computation and never fail the request.
func cachedView[T any](ctx context.Context, s *Service, view, key string, compute func() (T, error)) (T, error) {
	var result T

	if cached, err := s.cache.Get(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("view", view).Msg("Analytics cache read failed")
	} else if cached != "" {
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			prommetrics.RecordCacheHit(view)
			return result, nil
		}
		s.log.Warn().Str("view", view).Msg("Discarding undecodable analytics cache entry")
	}
	prommetrics.RecordCacheMiss(view)

	start := time.Now()
	result, err := compute()
	if err != nil {
		return result, fmt.Errorf("failed to compute %s view: %w", view, err)
	}
	prommetrics.ObserveAnalyticsQuery(view, time.Since(start).Seconds())

	if data, err := json.Marshal(result); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			s.log.Warn().Err(err).Str("view", view).Msg("Analytics cache write failed")
		}
	}
	return result, nil
}
