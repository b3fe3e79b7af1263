// Package router provides statistics module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/kurukatsu/internal/statistics/handler"
	"github.com/festy23/kurukatsu/internal/statistics/service"
)

// RegisterRoutes registers statistics module routes on an authenticated group.
func RegisterRoutes(r gin.IRoutes, db *gorm.DB, logger *zap.SugaredLogger) {
	svc := service.New(db, logger)
	h := handler.New(svc, logger)

	r.GET("/circles/:circle_id/statistics", h.GetCircleStatistics)
}
