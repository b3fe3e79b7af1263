// Package handler provides HTTP handlers for circle endpoints.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	circleModel "github.com/festy23/kurukatsu/internal/circle/model"
	"github.com/festy23/kurukatsu/internal/circle/service"
	memberModel "github.com/festy23/kurukatsu/internal/member/model"
	"github.com/festy23/kurukatsu/internal/middleware"
	"github.com/festy23/kurukatsu/internal/validation"
)

// Handler handles HTTP requests for circle endpoints.
type Handler struct {
	service  service.Service
	logger   *zap.SugaredLogger
	upgrader websocketUpgrader
}

// New creates a new circle handler instance. allowedOrigins restricts
// websocket upgrades; empty allows any origin.
func New(svc service.Service, logger *zap.SugaredLogger, allowedOrigins []string) *Handler {
	return &Handler{
		service:  svc,
		logger:   logger,
		upgrader: newUpgrader(allowedOrigins),
	}
}

// CreateCircle handles POST /circles request.
func (h *Handler) CreateCircle(c *gin.Context) {
	var req circleModel.CreateCircleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", validation.Message(err), http.StatusBadRequest)
		return
	}

	actorID := middleware.ActorID(c)
	resp, err := h.service.CreateCircle(c.Request.Context(), actorID, &req)
	if err != nil {
		if errors.Is(err, circleModel.ErrInvalidCircleName) {
			errorResponse(c, "INVALID_REQUEST", "name is required", http.StatusBadRequest)
			return
		}
		h.logger.Errorw("error creating circle", "user_id", actorID, "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetCircle handles GET /circles/:circle_id request.
func (h *Handler) GetCircle(c *gin.Context) {
	circleID := c.Param("circle_id")

	resp, err := h.service.GetCircle(c.Request.Context(), circleID)
	if err != nil {
		if errors.Is(err, circleModel.ErrCircleNotFound) {
			notFoundResponse(c, "circle not found")
			return
		}
		h.logger.Errorw("error getting circle", "circle_id", circleID, "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetCounts handles GET /circles/:circle_id/counts request.
func (h *Handler) GetCounts(c *gin.Context) {
	circleID := c.Param("circle_id")

	resp, err := h.service.GetCounts(c.Request.Context(), circleID, middleware.ActorID(c))
	if err != nil {
		if errors.Is(err, circleModel.ErrCircleNotFound) {
			notFoundResponse(c, "circle not found")
			return
		}
		h.logger.Errorw("error getting counts", "circle_id", circleID, "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CheckPermission handles GET /circles/:circle_id/permission?role= request.
func (h *Handler) CheckPermission(c *gin.Context) {
	circleID := c.Param("circle_id")

	required, err := memberModel.ParseRole(c.Query("role"))
	if err != nil {
		errorResponse(c, "INVALID_REQUEST", "role must be one of leader, admin, member", http.StatusBadRequest)
		return
	}

	resp, err := h.service.CheckPermission(c.Request.Context(), circleID, middleware.ActorID(c), required)
	if err != nil {
		if errors.Is(err, memberModel.ErrInvalidRole) {
			errorResponse(c, "INVALID_REQUEST", "role must be one of leader, admin, member", http.StatusBadRequest)
			return
		}
		h.logger.Errorw("error checking permission", "circle_id", circleID, "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, resp)
}
