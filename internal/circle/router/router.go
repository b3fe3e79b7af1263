// Package router provides circle module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/kurukatsu/internal/circle/handler"
	"github.com/festy23/kurukatsu/internal/circle/service"
	"github.com/festy23/kurukatsu/internal/events"
	"github.com/festy23/kurukatsu/internal/metrics"
)

// RegisterRoutes registers circle module routes on an authenticated group.
func RegisterRoutes(
	r gin.IRoutes,
	db *gorm.DB,
	subscriber events.Subscriber,
	m *metrics.Metrics,
	allowedOrigins []string,
	logger *zap.SugaredLogger,
) {
	svc := service.New(db, subscriber, m, logger)
	h := handler.New(svc, logger, allowedOrigins)

	r.POST("/circles", h.CreateCircle)
	r.GET("/circles/:circle_id", h.GetCircle)
	r.GET("/circles/:circle_id/counts", h.GetCounts)
	r.GET("/circles/:circle_id/counts/stream", h.StreamCounts)
	r.GET("/circles/:circle_id/permission", h.CheckPermission)
}
