package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gleanerhq/gleaner/config"
	"github.com/gleanerhq/gleaner/models"
)

// Version is the service version reported by the health endpoint.
const Version = "0.1.0"

// Health returns a handler for GET /api/v1/health.
func Health(cfg *config.Config, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  "healthy",
			Version: Version,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Scrapers: map[string]string{
				models.ModeStatic:  availability(cfg.Scraper.EnableStatic),
				models.ModeDynamic: availability(cfg.Scraper.EnableDynamic),
			},
		})
	}
}

func availability(enabled bool) string {
	if enabled {
		return "available"
	}
	return "unavailable"
}
