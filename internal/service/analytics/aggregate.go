// Package analytics derives read-only views from the tag event history and
// user roster: leaderboards, region clustering, time histograms, top-N
// rankings and scalar rollups. The aggregation functions in this file are
// pure; the Service wraps them with storage access and a snapshot cache.
package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/platewatch/platewatch/internal/models"
)

// SortDirection orders leaderboard output.
type SortDirection string

// Supported sort directions.
const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Valid reports whether the direction is one of the supported values.
func (d SortDirection) Valid() bool {
	return d == SortAsc || d == SortDesc
}

// PlateCount is one leaderboard row for a target identity.
type PlateCount struct {
	Jurisdiction string `json:"jurisdiction"`
	Plate        string `json:"plate"`
	Total        int    `json:"total"`
	Positive     int    `json:"positive"`
	Negative     int    `json:"negative"`
}

// PlateLeaderboard groups events by target identity and sorts groups by
// count. An empty polarity counts every event; otherwise only events of that
// polarity contribute to Total. Ties keep first-seen order: the sort is
// stable and groups enter the slice in event order.
func PlateLeaderboard(events []models.TagEvent, polarity models.Polarity, direction SortDirection) []PlateCount {
	index := make(map[string]int)
	rows := make([]PlateCount, 0)

	for _, event := range events {
		if polarity != "" && event.Polarity != polarity {
			continue
		}
		key := event.TargetKey()
		i, ok := index[key]
		if !ok {
			i = len(rows)
			index[key] = i
			rows = append(rows, PlateCount{
				Jurisdiction: event.Jurisdiction,
				Plate:        event.Plate,
			})
		}
		rows[i].Total++
		if event.Polarity == models.PolarityPositive {
			rows[i].Positive++
		} else {
			rows[i].Negative++
		}
	}

	sort.SliceStable(rows, func(a, b int) bool {
		if direction == SortAsc {
			return rows[a].Total < rows[b].Total
		}
		return rows[a].Total > rows[b].Total
	})
	return rows
}

// UserRank is one experience leaderboard row.
type UserRank struct {
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
	Experience int64  `json:"experience"`
	Level      int    `json:"level"`
}

// ExperienceLeaderboard sorts the roster by cumulative experience. Ties keep
// roster order.
func ExperienceLeaderboard(users []models.User, direction SortDirection) []UserRank {
	rows := make([]UserRank, 0, len(users))
	for _, user := range users {
		rows = append(rows, UserRank{
			UserID:     user.ID,
			Username:   user.Username,
			Experience: user.Experience,
			Level:      user.Level,
		})
	}

	sort.SliceStable(rows, func(a, b int) bool {
		if direction == SortAsc {
			return rows[a].Experience < rows[b].Experience
		}
		return rows[a].Experience > rows[b].Experience
	})
	return rows
}

// RegionCount is the aggregate for one named region.
type RegionCount struct {
	Region   string `json:"region"`
	Total    int    `json:"total"`
	Positive int    `json:"positive"`
	Negative int    `json:"negative"`
}

// RegionBreakdown buckets coordinate-carrying events into the region table.
// Every region appears in the output in table order, zero counts included.
// Events without a coordinate, or outside every box, are excluded here but
// still count in all other aggregates.
func RegionBreakdown(events []models.TagEvent, regions []Region) []RegionCount {
	rows := make([]RegionCount, len(regions))
	index := make(map[string]int, len(regions))
	for i, region := range regions {
		rows[i] = RegionCount{Region: region.Name}
		index[region.Name] = i
	}

	for _, event := range events {
		if !event.HasCoordinate() {
			continue
		}
		name, ok := Classify(regions, *event.Latitude, *event.Longitude)
		if !ok {
			continue
		}
		i := index[name]
		rows[i].Total++
		if event.Polarity == models.PolarityPositive {
			rows[i].Positive++
		} else {
			rows[i].Negative++
		}
	}
	return rows
}

// Histogram is a fixed-width bucket count with the index of the busiest
// bucket. Ties on the peak go to the earliest bucket.
type Histogram struct {
	Counts []int `json:"counts"`
	Peak   int   `json:"peak"`
}

func histogram(size int, bucket func(time.Time) int, events []models.TagEvent, keep func(time.Time) bool) Histogram {
	counts := make([]int, size)
	for _, event := range events {
		if keep != nil && !keep(event.CreatedAt) {
			continue
		}
		counts[bucket(event.CreatedAt)]++
	}

	peak := 0
	for i, count := range counts {
		if count > counts[peak] {
			peak = i
		}
	}
	return Histogram{Counts: counts, Peak: peak}
}

// HourHistogram buckets events by local hour of day, 24 buckets.
func HourHistogram(events []models.TagEvent, loc *time.Location) Histogram {
	return histogram(24, func(t time.Time) int {
		return t.In(loc).Hour()
	}, events, nil)
}

// WeekdayHistogram buckets the trailing seven days of events by local
// weekday. Bucket 0 is Sunday, matching time.Weekday.
func WeekdayHistogram(events []models.TagEvent, now time.Time, loc *time.Location) Histogram {
	cutoff := now.Add(-7 * 24 * time.Hour)
	return histogram(7, func(t time.Time) int {
		return int(t.In(loc).Weekday())
	}, events, func(t time.Time) bool {
		return !t.Before(cutoff)
	})
}

// TaggerCount is one "most active taggers" row.
type TaggerCount struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Count    int    `json:"count"`
}

// TopTaggers counts events per creator, sorts descending and truncates to n.
// Ties keep first-seen order. Usernames are resolved from the roster; an
// unknown creator id keeps an empty username rather than dropping the row.
func TopTaggers(events []models.TagEvent, users []models.User, n int) []TaggerCount {
	names := make(map[uint]string, len(users))
	for _, user := range users {
		names[user.ID] = user.Username
	}

	index := make(map[uint]int)
	rows := make([]TaggerCount, 0)
	for _, event := range events {
		i, ok := index[event.CreatorID]
		if !ok {
			i = len(rows)
			index[event.CreatorID] = i
			rows = append(rows, TaggerCount{
				UserID:   event.CreatorID,
				Username: names[event.CreatorID],
			})
		}
		rows[i].Count++
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].Count > rows[b].Count
	})
	return truncate(rows, n)
}

// ReasonCount is one "top reasons" row.
type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// TopReasons groups events by their exact reason string, trimmed of
// surrounding whitespace, sorts descending and truncates to n. Grouping is
// deliberately exact: near-duplicate phrasings stay separate rows.
func TopReasons(events []models.TagEvent, n int) []ReasonCount {
	index := make(map[string]int)
	rows := make([]ReasonCount, 0)
	for _, event := range events {
		reason := strings.TrimSpace(event.Reason)
		if reason == "" {
			continue
		}
		i, ok := index[reason]
		if !ok {
			i = len(rows)
			index[reason] = i
			rows = append(rows, ReasonCount{Reason: reason})
		}
		rows[i].Count++
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].Count > rows[b].Count
	})
	return truncate(rows, n)
}

func truncate[T any](rows []T, n int) []T {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}

// Summary holds the scalar rollups over the full event history.
type Summary struct {
	TotalTags       int `json:"total_tags"`
	PositiveTags    int `json:"positive_tags"`
	NegativeTags    int `json:"negative_tags"`
	PositivePercent int `json:"positive_percent"`
	TagsToday       int `json:"tags_today"`
	TagsLast7Days   int `json:"tags_last_7_days"`
	TagsLast30Days  int `json:"tags_last_30_days"`
}

// Summarize computes totals, the positive percentage and rolling activity
// windows. "Today" starts at local midnight; the 7 and 30 day windows are
// measured back from now.
func Summarize(events []models.TagEvent, now time.Time, loc *time.Location) Summary {
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	week := now.Add(-7 * 24 * time.Hour)
	month := now.Add(-30 * 24 * time.Hour)

	var summary Summary
	for _, event := range events {
		summary.TotalTags++
		if event.Polarity == models.PolarityPositive {
			summary.PositiveTags++
		} else {
			summary.NegativeTags++
		}
		if !event.CreatedAt.Before(midnight) {
			summary.TagsToday++
		}
		if !event.CreatedAt.Before(week) {
			summary.TagsLast7Days++
		}
		if !event.CreatedAt.Before(month) {
			summary.TagsLast30Days++
		}
	}

	if summary.TotalTags > 0 {
		ratio := float64(summary.PositiveTags) / float64(summary.TotalTags) * 100
		summary.PositivePercent = int(math.Round(ratio))
	}
	return summary
}
