// Package health provides health check endpoint handler.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/kurukatsu/internal/database/database"
)

const checkTimeout = 5 * time.Second

// Handler handles health check requests.
type Handler struct {
	db     *gorm.DB
	redis  redis.UniversalClient
	logger *zap.SugaredLogger
}

// New creates a new health handler instance. redisClient may be nil when the
// count bridge is disabled.
func New(db *gorm.DB, redisClient redis.UniversalClient, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		db:     db,
		redis:  redisClient,
		logger: logger,
	}
}

// Response represents health check response.
type Response struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

// Check handles GET /health request.
func (h *Handler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	resp := Response{Status: "ok", Components: map[string]string{}}

	if err := database.HealthCheck(ctx, h.db); err != nil {
		h.logger.Warnw("health check failed", "component", "database", "error", err)
		resp.Status = "unhealthy"
		resp.Components["database"] = "down"
	} else {
		resp.Components["database"] = "up"
	}

	// redis only carries cross-node count relays, so losing it degrades
	// rather than fails the node
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			h.logger.Warnw("health check failed", "component", "redis", "error", err)
			resp.Components["redis"] = "down"
			if resp.Status == "ok" {
				resp.Status = "degraded"
			}
		} else {
			resp.Components["redis"] = "up"
		}
	}

	status := http.StatusOK
	if resp.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
