// Package router provides member module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/kurukatsu/internal/events"
	"github.com/festy23/kurukatsu/internal/member/handler"
	"github.com/festy23/kurukatsu/internal/member/service"
	"github.com/festy23/kurukatsu/internal/metrics"
	"github.com/festy23/kurukatsu/internal/notify"
)

// RegisterRoutes registers member module routes on an authenticated group.
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

	r.GET("/circles/:circle_id/members", h.ListMembers)
	r.GET("/circles/:circle_id/members/:user_id/role", h.GetRole)
	r.PUT("/circles/:circle_id/members/:user_id/role", h.ChangeRole)
	r.DELETE("/circles/:circle_id/members/:user_id", h.RemoveMember)
	r.POST("/circles/:circle_id/leave", h.Leave)
	r.POST("/circles/:circle_id/leadership/transfer", h.TransferLeadership)
}
