package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/platewatch/platewatch/internal/models"
	"github.com/platewatch/platewatch/internal/service/analytics"
)

// GetPlateLeaderboard returns target plates ranked by tag count.
// GET /api/v1/leaderboard/plates?polarity=negative&sort=desc&limit=10.
func (h *Handler) GetPlateLeaderboard(c *gin.Context) {
	polarity, ok := h.parsePolarity(c)
	if !ok {
		return
	}
	direction, ok := h.parseSort(c)
	if !ok {
		return
	}
	limit, err := h.parseLimit(c, 0)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.analyticsService.PlateLeaderboard(c.Request.Context(), polarity, direction)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get plate leaderboard")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve leaderboard")
		return
	}

	totalPlates := len(rows)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard":  rows,
		"polarity":     string(polarity),
		"sort":         string(direction),
		"total_plates": totalPlates,
		"generated_at": time.Now().UTC(),
	})
}

// GetExperienceLeaderboard returns users ranked by experience.
// GET /api/v1/leaderboard/experience?sort=desc&limit=10.
func (h *Handler) GetExperienceLeaderboard(c *gin.Context) {
	direction, ok := h.parseSort(c)
	if !ok {
		return
	}
	limit, err := h.parseLimit(c, 0)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.analyticsService.ExperienceLeaderboard(c.Request.Context(), direction)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get experience leaderboard")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve leaderboard")
		return
	}

	totalUsers := len(rows)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard":  rows,
		"sort":         string(direction),
		"total_users":  totalUsers,
		"generated_at": time.Now().UTC(),
	})
}

// GetRegions returns per-region tag counts.
// GET /api/v1/analytics/regions.
func (h *Handler) GetRegions(c *gin.Context) {
	rows, err := h.analyticsService.Regions(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get region breakdown")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve region breakdown")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"regions":      rows,
		"generated_at": time.Now().UTC(),
	})
}

// GetHourlyHistogram returns tag counts by hour of day.
// GET /api/v1/analytics/histogram/hourly.
func (h *Handler) GetHourlyHistogram(c *gin.Context) {
	histogram, err := h.analyticsService.HourlyHistogram(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get hourly histogram")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve histogram")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"histogram":    histogram,
		"bucket":       "hour_of_day",
		"generated_at": time.Now().UTC(),
	})
}

// GetWeekdayHistogram returns tag counts by weekday over the trailing week.
// GET /api/v1/analytics/histogram/weekday.
func (h *Handler) GetWeekdayHistogram(c *gin.Context) {
	histogram, err := h.analyticsService.WeekdayHistogram(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get weekday histogram")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve histogram")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"histogram":    histogram,
		"bucket":       "weekday",
		"window_days":  7,
		"generated_at": time.Now().UTC(),
	})
}

// GetTopTaggers returns the most active taggers.
// GET /api/v1/analytics/top-taggers?limit=10.
func (h *Handler) GetTopTaggers(c *gin.Context) {
	limit, err := h.parseLimit(c, 0)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.analyticsService.TopTaggers(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get top taggers")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve top taggers")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"taggers":      rows,
		"generated_at": time.Now().UTC(),
	})
}

// GetTopReasons returns the most common tag reasons.
// GET /api/v1/analytics/top-reasons?limit=10.
func (h *Handler) GetTopReasons(c *gin.Context) {
	limit, err := h.parseLimit(c, 0)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.analyticsService.TopReasons(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get top reasons")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve top reasons")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reasons":      rows,
		"generated_at": time.Now().UTC(),
	})
}

// GetSummary returns the scalar rollups.
// GET /api/v1/analytics/summary.
func (h *Handler) GetSummary(c *gin.Context) {
	summary, err := h.analyticsService.Summary(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get summary")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve summary")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary":      summary,
		"generated_at": time.Now().UTC(),
	})
}

// parsePolarity reads the optional polarity query parameter. On an invalid
// value it writes the error response and returns false.
func (h *Handler) parsePolarity(c *gin.Context) (models.Polarity, bool) {
	raw := c.Query("polarity")
	if raw == "" {
		return "", true
	}
	polarity := models.Polarity(raw)
	if !polarity.Valid() {
		h.errorResponse(c, http.StatusBadRequest, "invalid polarity: "+raw+" (valid: positive, negative)")
		return "", false
	}
	return polarity, true
}

// parseSort reads the optional sort query parameter, defaulting to desc.
func (h *Handler) parseSort(c *gin.Context) (analytics.SortDirection, bool) {
	raw := c.DefaultQuery("sort", string(analytics.SortDesc))
	direction := analytics.SortDirection(raw)
	if !direction.Valid() {
		h.errorResponse(c, http.StatusBadRequest, "invalid sort: "+raw+" (valid: asc, desc)")
		return "", false
	}
	return direction, true
}
