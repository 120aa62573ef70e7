package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewatch/platewatch/internal/config"
	"github.com/platewatch/platewatch/pkg/logger"
)

type mockBadgeSweeper struct {
	awarded int
	err     error
	calls   int
}

func (m *mockBadgeSweeper) EvaluateAll(_ context.Context) (int, error) {
	m.calls++
	return m.awarded, m.err
}

func testConfig(enabled bool) *config.Config {
	return &config.Config{
		Scheduler: config.SchedulerConfig{
			Enabled:        enabled,
			BadgeSweepCron: "30 3 * * *",
			Timezone:       "UTC",
		},
	}
}

func TestStart_Disabled(t *testing.T) {
	svc := NewService(testConfig(false), &mockBadgeSweeper{}, logger.Nop())
	require.NoError(t, svc.Start())
	assert.Nil(t, svc.cron)
	svc.Stop()
}

func TestStart_RegistersSweepJob(t *testing.T) {
	svc := NewService(testConfig(true), &mockBadgeSweeper{}, logger.Nop())
	require.NoError(t, svc.Start())
	defer svc.Stop()

	require.NotNil(t, svc.cron)
	entries := svc.cron.Entries()
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Next.IsZero())
}

func TestStart_InvalidTimezone(t *testing.T) {
	cfg := testConfig(true)
	cfg.Scheduler.Timezone = "Not/AZone"
	svc := NewService(cfg, &mockBadgeSweeper{}, logger.Nop())
	assert.Error(t, svc.Start())
}

func TestStart_InvalidCronExpression(t *testing.T) {
	cfg := testConfig(true)
	cfg.Scheduler.BadgeSweepCron = "not a cron line"
	svc := NewService(cfg, &mockBadgeSweeper{}, logger.Nop())
	assert.Error(t, svc.Start())
}

func TestRunBadgeSweep(t *testing.T) {
	sweeper := &mockBadgeSweeper{awarded: 3}
	svc := NewService(testConfig(true), sweeper, logger.Nop())

	svc.runBadgeSweep(context.Background())
	assert.Equal(t, 1, sweeper.calls)
}

func TestRunBadgeSweep_ErrorDoesNotPanic(t *testing.T) {
	sweeper := &mockBadgeSweeper{err: errors.New("db down")}
	svc := NewService(testConfig(true), sweeper, logger.Nop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.runBadgeSweep(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("badge sweep did not return")
	}
	assert.Equal(t, 1, sweeper.calls)
}
