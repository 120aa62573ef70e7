package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with all API routes. The health func
// reports the state of the backing store; a nil func means always healthy.
func NewRouter(handler *Handler, health func() error, environment string) *gin.Engine {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		if health != nil {
			if err := health(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/tags", handler.SubmitTag)

		v1.GET("/leaderboard/plates", handler.GetPlateLeaderboard)
		v1.GET("/leaderboard/experience", handler.GetExperienceLeaderboard)

		v1.GET("/analytics/regions", handler.GetRegions)
		v1.GET("/analytics/histogram/hourly", handler.GetHourlyHistogram)
		v1.GET("/analytics/histogram/weekday", handler.GetWeekdayHistogram)
		v1.GET("/analytics/top-taggers", handler.GetTopTaggers)
		v1.GET("/analytics/top-reasons", handler.GetTopReasons)
		v1.GET("/analytics/summary", handler.GetSummary)

		v1.GET("/users/:id/stats", handler.GetUserStats)
		v1.GET("/users/:id/badges", handler.GetUserBadges)

		v1.GET("/badges", handler.GetBadgeCatalog)
		v1.GET("/badges/:id", handler.GetBadgeByID)
		v1.GET("/badges/:id/holders", handler.GetBadgeHolders)
	}

	return router
}
