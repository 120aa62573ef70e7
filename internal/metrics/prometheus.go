// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the tag processing engine.
var (
	// Counters.
	TagsSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tags_submitted_total",
			Help: "Total number of tag submissions processed",
		},
		[]string{"polarity", "status"},
	)

	ValidationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tag_validation_failures_total",
			Help: "Total number of tag submissions rejected by validation",
		},
		[]string{"reason"},
	)

	CreditsSpentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credits_spent_total",
			Help: "Total credits consumed by accepted tags",
		},
		[]string{"polarity"},
	)

	LevelUpsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "level_ups_total",
			Help: "Total number of level-up events",
		},
	)

	TargetResolutionMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "target_resolution_misses_total",
			Help: "Tags whose target plate did not resolve to a known user",
		},
	)

	// Histograms.
	ExperienceAwarded = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "experience_awarded",
			Help:    "Experience points awarded per accepted tag",
			Buckets: prometheus.LinearBuckets(25, 5, 5), // 25 to 45
		},
	)

	AnalyticsQueryDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analytics_query_duration_seconds",
			Help:    "Time taken to compute an analytics view",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
		},
		[]string{"view"},
	)

	// Gauges.
	AnalyticsCacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_cache_hits_total",
			Help: "Analytics requests served from the Redis snapshot cache",
		},
		[]string{"view"},
	)

	AnalyticsCacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_cache_misses_total",
			Help: "Analytics requests that recomputed the view",
		},
		[]string{"view"},
	)

	// Badge gamification metrics.
	BadgesAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "badges_awarded_total",
			Help: "Total number of badges awarded",
		},
		[]string{"badge_name"},
	)

	ActiveBadgeHolders = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "active_badge_holders",
			Help: "Current number of users holding each badge",
		},
		[]string{"badge_name"},
	)

	BadgeSweepJobsRunTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "badge_sweep_jobs_run_total",
			Help: "Total badge sweep job executions",
		},
		[]string{"status"},
	)

	BadgeSweepDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "badge_sweep_duration_seconds",
			Help:    "Time taken to execute a full badge sweep",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1s to ~1024s
		},
	)
)

// RecordTagSubmitted records a processed tag submission.
func RecordTagSubmitted(polarity, status string) {
	TagsSubmittedTotal.WithLabelValues(polarity, status).Inc()
}

// RecordValidationFailure records a rejected submission by reason.
func RecordValidationFailure(reason string) {
	ValidationFailuresTotal.WithLabelValues(reason).Inc()
}

// RecordCreditSpent records a consumed credit.
func RecordCreditSpent(polarity string) {
	CreditsSpentTotal.WithLabelValues(polarity).Inc()
}

// RecordLevelUp records a level-up event.
func RecordLevelUp() {
	LevelUpsTotal.Inc()
}

// RecordResolutionMiss records a tag against an unknown plate.
func RecordResolutionMiss() {
	TargetResolutionMissesTotal.Inc()
}

// ObserveExperienceAwarded observes an experience award.
func ObserveExperienceAwarded(points float64) {
	ExperienceAwarded.Observe(points)
}

// ObserveAnalyticsQuery observes the duration of an analytics computation.
func ObserveAnalyticsQuery(view string, seconds float64) {
	AnalyticsQueryDurationSeconds.WithLabelValues(view).Observe(seconds)
}

// RecordCacheHit records an analytics cache hit.
func RecordCacheHit(view string) {
	AnalyticsCacheHitsTotal.WithLabelValues(view).Inc()
}

// RecordCacheMiss records an analytics cache miss.
func RecordCacheMiss(view string) {
	AnalyticsCacheMissesTotal.WithLabelValues(view).Inc()
}

// RecordBadgeAwarded records a badge award event.
func RecordBadgeAwarded(badgeName string) {
	BadgesAwardedTotal.WithLabelValues(badgeName).Inc()
}

// SetActiveBadgeHolders sets the number of holders for a badge.
func SetActiveBadgeHolders(badgeName string, count int) {
	ActiveBadgeHolders.WithLabelValues(badgeName).Set(float64(count))
}

// RecordBadgeSweepRun records a badge sweep job execution.
func RecordBadgeSweepRun(status string) {
	BadgeSweepJobsRunTotal.WithLabelValues(status).Inc()
}

// ObserveBadgeSweepDuration observes the duration of a badge sweep job.
func ObserveBadgeSweepDuration(seconds float64) {
	BadgeSweepDurationSeconds.Observe(seconds)
}
