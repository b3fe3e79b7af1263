// Package handler provides HTTP handlers for statistics endpoints.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	circleModel "github.com/festy23/kurukatsu/internal/circle/model"
	memberModel "github.com/festy23/kurukatsu/internal/member/model"
	"github.com/festy23/kurukatsu/internal/middleware"
	"github.com/festy23/kurukatsu/internal/statistics/service"
)

// Handler handles HTTP requests for statistics endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new statistics handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// GetCircleStatistics handles GET /circles/:circle_id/statistics request.
func (h *Handler) GetCircleStatistics(c *gin.Context) {
	circleID := c.Param("circle_id")
	resp, err := h.service.GetCircleStatistics(c.Request.Context(), circleID, middleware.ActorID(c))
	if err != nil {
		switch {
		case errors.Is(err, memberModel.ErrPermissionDenied):
			errorResponse(c, "FORBIDDEN", "insufficient role for this operation", http.StatusForbidden)
		case errors.Is(err, circleModel.ErrCircleNotFound):
			errorResponse(c, "NOT_FOUND", "circle not found", http.StatusNotFound)
		default:
			h.logger.Errorw("error getting circle statistics", "circle_id", circleID, "error", err)
			errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
