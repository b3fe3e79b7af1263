// Package handler provides HTTP handlers for user endpoints.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/kurukatsu/internal/middleware"
	"github.com/festy23/kurukatsu/internal/user/model"
	"github.com/festy23/kurukatsu/internal/user/service"
	"github.com/festy23/kurukatsu/internal/validation"
)

// Handler handles HTTP requests for user endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new user handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// GetProfile handles GET /users/me request.
func (h *Handler) GetProfile(c *gin.Context) {
	userID := middleware.ActorID(c)

	resp, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			notFoundResponse(c, "profile not found")
			return
		}
		if errors.Is(err, model.ErrInvalidUserID) {
			errorResponse(c, "UNAUTHORIZED", "missing actor", http.StatusUnauthorized)
			return
		}
		h.logger.Errorw("error getting profile", "user_id", userID, "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpsertProfile handles PUT /users/me request.
// An omitted email falls back to the token's email claim.
func (h *Handler) UpsertProfile(c *gin.Context) {
	var req model.UpsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", validation.Message(err), http.StatusBadRequest)
		return
	}
	if req.Email == "" {
		req.Email = middleware.ActorEmail(c)
	}

	userID := middleware.ActorID(c)
	resp, err := h.service.UpsertProfile(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidName) {
			errorResponse(c, "INVALID_REQUEST", "name is required", http.StatusBadRequest)
			return
		}
		if errors.Is(err, model.ErrInvalidUserID) {
			errorResponse(c, "UNAUTHORIZED", "missing actor", http.StatusUnauthorized)
			return
		}
		h.logger.Errorw("error saving profile", "user_id", userID, "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, resp)
}
