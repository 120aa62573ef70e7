// Package scheduler runs the periodic badge sweep. The sweep re-evaluates
// the whole roster against the badge catalog and backfills awards that the
// per-submission evaluation missed, for example after a catalog change.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/platewatch/platewatch/internal/config"
	prommetrics "github.com/platewatch/platewatch/internal/metrics"
	"github.com/platewatch/platewatch/pkg/logger"
)

// BadgeSweeper re-evaluates every user and returns the number of new awards.
type BadgeSweeper interface {
	EvaluateAll(ctx context.Context) (int, error)
}

// Service handles the badge sweep schedule.
type Service struct {
	config *config.Config
	badges BadgeSweeper
	log    *logger.Logger
	cron   *cron.Cron
}

// NewService creates a new scheduler service.
func NewService(cfg *config.Config, badgeService BadgeSweeper, log *logger.Logger) *Service {
	return &Service{
		config: cfg,
		badges: badgeService,
		log:    log,
	}
}

// Start initializes and starts the cron scheduler.
func (s *Service) Start() error {
	if !s.config.Scheduler.Enabled {
		s.log.Info().Msg("Scheduler is disabled in configuration")
		return nil
	}

	location, err := s.config.Scheduler.GetLocation()
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.config.Scheduler.Timezone, err)
	}

	s.cron = cron.New(cron.WithLocation(location))

	if _, err := s.cron.AddFunc(s.config.Scheduler.BadgeSweepCron, func() {
		s.runBadgeSweep(context.Background())
	}); err != nil {
		return fmt.Errorf("failed to register badge sweep job: %w", err)
	}

	s.cron.Start()

	entries := s.cron.Entries()
	nextRun := ""
	if len(entries) > 0 {
		nextRun = entries[0].Next.Format(time.RFC3339)
	}

	s.log.Info().
		Str("schedule", s.config.Scheduler.BadgeSweepCron).
		Str("timezone", s.config.Scheduler.Timezone).
		Str("next_run", nextRun).
		Msg("Scheduler started successfully")

	return nil
}

// Stop gracefully shuts down the scheduler, waiting for a running sweep to
// finish.
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.log.Info().Msg("Scheduler stopped")
	}
}

// runBadgeSweep executes one badge sweep.
func (s *Service) runBadgeSweep(ctx context.Context) {
	start := time.Now()
	defer func() {
		prommetrics.ObserveBadgeSweepDuration(time.Since(start).Seconds())
	}()

	s.log.Info().Msg("Running badge sweep")

	awarded, err := s.badges.EvaluateAll(ctx)
	if err != nil {
		s.log.Error().
			Err(err).
			Dur("duration", time.Since(start)).
			Msg("Badge sweep failed")
		prommetrics.RecordBadgeSweepRun("error")
		return
	}

	s.log.Info().
		Int("awarded", awarded).
		Dur("duration", time.Since(start)).
		Msg("Badge sweep completed")
	prommetrics.RecordBadgeSweepRun("success")
}
