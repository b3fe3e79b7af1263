// Package handler provides HTTP handlers for join request endpoints.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	circleModel "github.com/festy23/kurukatsu/internal/circle/model"
	"github.com/festy23/kurukatsu/internal/joinrequest/model"
	"github.com/festy23/kurukatsu/internal/joinrequest/service"
	memberModel "github.com/festy23/kurukatsu/internal/member/model"
	"github.com/festy23/kurukatsu/internal/middleware"
	userModel "github.com/festy23/kurukatsu/internal/user/model"
	"github.com/festy23/kurukatsu/internal/validation"
)

// Handler handles HTTP requests for join request endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new join request handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Submit handles POST /circles/:circle_id/join-requests request.
func (h *Handler) Submit(c *gin.Context) {
	var req model.SubmitRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			errorResponse(c, "INVALID_REQUEST", validation.Message(err), http.StatusBadRequest)
			return
		}
	}
	if req.Email == "" {
		req.Email = middleware.ActorEmail(c)
	}

	resp, err := h.service.Submit(c.Request.Context(), c.Param("circle_id"), middleware.ActorID(c), &req)
	if err != nil {
		h.handleError(c, "submitting join request", err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListPending handles GET /circles/:circle_id/join-requests request.
func (h *Handler) ListPending(c *gin.Context) {
	resp, err := h.service.ListPending(c.Request.Context(), c.Param("circle_id"), middleware.ActorID(c))
	if err != nil {
		h.handleError(c, "listing join requests", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Approve handles POST /circles/:circle_id/join-requests/:request_id/approve request.
func (h *Handler) Approve(c *gin.Context) {
	resp, err := h.service.Approve(
		c.Request.Context(),
		c.Param("circle_id"),
		c.Param("request_id"),
		middleware.ActorID(c),
	)
	if err != nil {
		h.handleError(c, "approving join request", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reject handles POST /circles/:circle_id/join-requests/:request_id/reject request.
func (h *Handler) Reject(c *gin.Context) {
	resp, err := h.service.Reject(
		c.Request.Context(),
		c.Param("circle_id"),
		c.Param("request_id"),
		middleware.ActorID(c),
	)
	if err != nil {
		h.handleError(c, "rejecting join request", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Withdraw handles DELETE /circles/:circle_id/join-requests/:request_id request.
func (h *Handler) Withdraw(c *gin.Context) {
	resp, err := h.service.Withdraw(
		c.Request.Context(),
		c.Param("circle_id"),
		c.Param("request_id"),
		middleware.ActorID(c),
	)
	if err != nil {
		h.handleError(c, "withdrawing join request", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) handleError(c *gin.Context, action string, err error) {
	switch {
	case errors.Is(err, memberModel.ErrPermissionDenied):
		forbiddenResponse(c, "insufficient role for this operation")
	case errors.Is(err, model.ErrJoinRequestNotFound):
		notFoundResponse(c, "join request not found")
	case errors.Is(err, circleModel.ErrCircleNotFound):
		notFoundResponse(c, "circle not found")
	case errors.Is(err, model.ErrJoinRequestExists):
		errorResponse(c, "JOIN_REQUEST_EXISTS", err.Error(), http.StatusConflict)
	case errors.Is(err, model.ErrAlreadyMember):
		errorResponse(c, "ALREADY_MEMBER", err.Error(), http.StatusConflict)
	case errors.Is(err, model.ErrJoinRequestNotPending):
		errorResponse(c, "NOT_PENDING", err.Error(), http.StatusConflict)
	case errors.Is(err, userModel.ErrInvalidUserID):
		errorResponse(c, "UNAUTHORIZED", "missing actor", http.StatusUnauthorized)
	default:
		h.logger.Errorw("error "+action, "circle_id", c.Param("circle_id"), "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
	}
}
