// Package api provides the REST handlers for tag submission, the
// leaderboard and analytics views, user stats and the badge catalog.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/platewatch/platewatch/internal/models"
	"github.com/platewatch/platewatch/internal/service/analytics"
	"github.com/platewatch/platewatch/internal/service/badges"
	"github.com/platewatch/platewatch/internal/service/tagging"
	"github.com/platewatch/platewatch/pkg/logger"
)

// TaggingService interface for tag submission.
type TaggingService interface {
	Submit(ctx context.Context, req tagging.Request) (*tagging.Result, error)
}

// AnalyticsService interface for the aggregation views.
type AnalyticsService interface {
	PlateLeaderboard(ctx context.Context, polarity models.Polarity, direction analytics.SortDirection) ([]analytics.PlateCount, error)
	ExperienceLeaderboard(ctx context.Context, direction analytics.SortDirection) ([]analytics.UserRank, error)
	Regions(ctx context.Context) ([]analytics.RegionCount, error)
	HourlyHistogram(ctx context.Context) (analytics.Histogram, error)
	WeekdayHistogram(ctx context.Context) (analytics.Histogram, error)
	TopTaggers(ctx context.Context, n int) ([]analytics.TaggerCount, error)
	TopReasons(ctx context.Context, n int) ([]analytics.ReasonCount, error)
	Summary(ctx context.Context) (analytics.Summary, error)
}

// BadgeService interface for badge operations.
type BadgeService interface {
	GetUserBadges(ctx context.Context, userID uint) ([]models.UserBadge, error)
	GetBadgeCatalog(ctx context.Context) ([]models.Badge, error)
	GetBadgeByID(ctx context.Context, badgeID uint) (*models.Badge, error)
	GetBadgeHolders(ctx context.Context, badgeID uint) ([]models.User, error)
}

// UserGetter interface for user profile reads.
type UserGetter interface {
	GetByID(id uint) (*models.User, error)
}

// Handler handles API requests.
type Handler struct {
	taggingService   TaggingService
	analyticsService AnalyticsService
	badgeService     BadgeService
	users            UserGetter
	log              *logger.Logger
}

// NewHandler creates a new API handler.
func NewHandler(
	taggingService *tagging.Service,
	analyticsService *analytics.Service,
	badgeService *badges.Service,
	users UserGetter,
	log *logger.Logger,
) *Handler {
	return &Handler{
		taggingService:   taggingService,
		analyticsService: analyticsService,
		badgeService:     badgeService,
		users:            users,
		log:              log,
	}
}

// NewHandlerWithInterfaces creates a new API handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(
	taggingService TaggingService,
	analyticsService AnalyticsService,
	badgeService BadgeService,
	users UserGetter,
	log *logger.Logger,
) *Handler {
	return &Handler{
		taggingService:   taggingService,
		analyticsService: analyticsService,
		badgeService:     badgeService,
		users:            users,
		log:              log,
	}
}

// GetUserStats returns a user's progression counters.
// GET /api/v1/users/:id/stats.
func (h *Handler) GetUserStats(c *gin.Context) {
	userID, err := h.parseIDParam(c, "user")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.GetByID(userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to get user")
		h.errorResponse(c, http.StatusNotFound, "User not found")
		return
	}

	userBadges, err := h.badgeService.GetUserBadges(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to get user badges")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve user statistics")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":           user.ID,
		"username":          user.Username,
		"experience":        user.Experience,
		"level":             user.Level,
		"positive_credits":  user.PositiveCredits,
		"negative_credits":  user.NegativeCredits,
		"positive_received": user.PositiveReceived,
		"negative_received": user.NegativeReceived,
		"total_given":       user.TotalGiven,
		"positive_given":    user.PositiveGiven,
		"negative_given":    user.NegativeGiven,
		"badge_count":       len(userBadges),
		"generated_at":      time.Now().UTC(),
	})
}

// GetUserBadges returns badges earned by a specific user.
// GET /api/v1/users/:id/badges.
func (h *Handler) GetUserBadges(c *gin.Context) {
	userID, err := h.parseIDParam(c, "user")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	userBadges, err := h.badgeService.GetUserBadges(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to get user badges")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve user badges")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":      userID,
		"badges":       userBadges,
		"total_badges": len(userBadges),
		"generated_at": time.Now().UTC(),
	})
}

// GetBadgeCatalog returns all defined badges.
// GET /api/v1/badges.
func (h *Handler) GetBadgeCatalog(c *gin.Context) {
	catalog, err := h.badgeService.GetBadgeCatalog(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get badge catalog")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve badge catalog")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"badges":       catalog,
		"total_badges": len(catalog),
		"generated_at": time.Now().UTC(),
	})
}

// GetBadgeByID returns details for a specific badge.
// GET /api/v1/badges/:id.
func (h *Handler) GetBadgeByID(c *gin.Context) {
	badgeID, err := h.parseIDParam(c, "badge")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	badge, err := h.badgeService.GetBadgeByID(c.Request.Context(), badgeID)
	if err != nil {
		h.log.Error().Err(err).Uint("badge_id", badgeID).Msg("Failed to get badge")
		h.errorResponse(c, http.StatusNotFound, "Badge not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"badge":        badge,
		"generated_at": time.Now().UTC(),
	})
}

// GetBadgeHolders returns users who have earned a specific badge.
// GET /api/v1/badges/:id/holders?limit=50.
func (h *Handler) GetBadgeHolders(c *gin.Context) {
	badgeID, err := h.parseIDParam(c, "badge")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	limit, err := h.parseLimit(c, 50)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	holders, err := h.badgeService.GetBadgeHolders(c.Request.Context(), badgeID)
	if err != nil {
		h.log.Error().Err(err).Uint("badge_id", badgeID).Msg("Failed to get badge holders")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve badge holders")
		return
	}

	totalHolders := len(holders)
	if limit > 0 && len(holders) > limit {
		holders = holders[:limit]
	}

	c.JSON(http.StatusOK, gin.H{
		"badge_id":      badgeID,
		"holders":       holders,
		"total_holders": totalHolders,
		"generated_at":  time.Now().UTC(),
	})
}

// Helper functions

// parseIDParam extracts and validates the :id URL parameter.
func (h *Handler) parseIDParam(c *gin.Context, kind string) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s ID: %s", kind, idStr)
	}
	return uint(id), nil
}

// parseLimit extracts and validates the limit query parameter.
func (h *Handler) parseLimit(c *gin.Context, defaultLimit int) (int, error) {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return defaultLimit, nil
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return 0, fmt.Errorf("invalid limit parameter: %s", limitStr)
	}
	if limit < 1 {
		return 0, fmt.Errorf("limit must be greater than 0")
	}
	if limit > 1000 {
		return 0, fmt.Errorf("limit cannot exceed 1000")
	}
	return limit, nil
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
