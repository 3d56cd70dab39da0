package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/canopyhq/harvester/models"
	"github.com/canopyhq/harvester/session"
)

// Health returns a handler for GET /api/v1/health.
//
// The browser being down is not degraded by itself: it relaunches lazily on
// the next fetch. Degraded means the browser has pages open but stopped
// responding, which a restart of the process clears.
func Health(s *session.Session, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := s.Stats()

		status := "healthy"
		if !stats.BrowserLive && stats.ActivePages > 0 {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Session: stats,
			Version: "0.1.0",
		})
	}
}
