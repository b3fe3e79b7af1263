// Package router provides join request module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/kurukatsu/internal/events"
	"github.com/festy23/kurukatsu/internal/joinrequest/handler"
	"github.com/festy23/kurukatsu/internal/joinrequest/service"
	"github.com/festy23/kurukatsu/internal/metrics"
	"github.com/festy23/kurukatsu/internal/notify"
)

// RegisterRoutes registers join request module routes on an authenticated group.
func RegisterRoutes(
	r gin.IRoutes,
	db *gorm.DB,
	publisher events.Publisher,
	notifier notify.Notifier,
	m *metrics.Metrics,
	logger *zap.SugaredLogger,
) {
	svc := service.New(db, publisher, notifier, m, logger)
	h := handler.New(svc, logger)

	r.POST("/circles/:circle_id/join-requests", h.Submit)
	r.GET("/circles/:circle_id/join-requests", h.ListPending)
	r.POST("/circles/:circle_id/join-requests/:request_id/approve", h.Approve)
	r.POST("/circles/:circle_id/join-requests/:request_id/reject", h.Reject)
	r.DELETE("/circles/:circle_id/join-requests/:request_id", h.Withdraw)
}
