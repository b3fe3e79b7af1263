// Package handler provides HTTP handlers for member endpoints.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	circleModel "github.com/festy23/kurukatsu/internal/circle/model"
	"github.com/festy23/kurukatsu/internal/member/model"
	"github.com/festy23/kurukatsu/internal/member/service"
	"github.com/festy23/kurukatsu/internal/middleware"
	"github.com/festy23/kurukatsu/internal/validation"
)

// Handler handles HTTP requests for member endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new member handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// GetRole handles GET /circles/:circle_id/members/:user_id/role request.
func (h *Handler) GetRole(c *gin.Context) {
	resp, err := h.service.GetRole(c.Request.Context(), c.Param("circle_id"), c.Param("user_id"))
	if err != nil {
		h.handleError(c, "getting role", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListMembers handles GET /circles/:circle_id/members request.
func (h *Handler) ListMembers(c *gin.Context) {
	resp, err := h.service.ListMembers(c.Request.Context(), c.Param("circle_id"), middleware.ActorID(c))
	if err != nil {
		h.handleError(c, "listing members", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ChangeRole handles PUT /circles/:circle_id/members/:user_id/role request.
func (h *Handler) ChangeRole(c *gin.Context) {
	var req model.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", validation.Message(err), http.StatusBadRequest)
		return
	}

	resp, err := h.service.ChangeRole(
		c.Request.Context(),
		c.Param("circle_id"),
		middleware.ActorID(c),
		c.Param("user_id"),
		req.Role,
	)
	if err != nil {
		h.handleError(c, "changing role", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RemoveMember handles DELETE /circles/:circle_id/members/:user_id request.
func (h *Handler) RemoveMember(c *gin.Context) {
	err := h.service.RemoveMember(c.Request.Context(), c.Param("circle_id"), middleware.ActorID(c), c.Param("user_id"))
	if err != nil {
		h.handleError(c, "removing member", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Leave handles POST /circles/:circle_id/leave request.
func (h *Handler) Leave(c *gin.Context) {
	if err := h.service.Leave(c.Request.Context(), c.Param("circle_id"), middleware.ActorID(c)); err != nil {
		h.handleError(c, "leaving circle", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// TransferLeadership handles POST /circles/:circle_id/leadership/transfer request.
func (h *Handler) TransferLeadership(c *gin.Context) {
	var req model.TransferLeadershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", validation.Message(err), http.StatusBadRequest)
		return
	}

	resp, err := h.service.TransferLeadership(
		c.Request.Context(),
		c.Param("circle_id"),
		middleware.ActorID(c),
		req.NomineeID,
	)
	if err != nil {
		h.handleError(c, "transferring leadership", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// handleError maps member errors to responses.
func (h *Handler) handleError(c *gin.Context, action string, err error) {
	switch {
	case errors.Is(err, model.ErrPermissionDenied):
		forbiddenResponse(c, "insufficient role for this operation")
	case errors.Is(err, model.ErrNotLeader):
		forbiddenResponse(c, err.Error())
	case errors.Is(err, model.ErrCannotModifyLeader), errors.Is(err, model.ErrLeaderViaTransferOnly):
		forbiddenResponse(c, err.Error())
	case errors.Is(err, model.ErrMemberNotFound):
		notFoundResponse(c, "member not found")
	case errors.Is(err, circleModel.ErrCircleNotFound):
		notFoundResponse(c, "circle not found")
	case errors.Is(err, model.ErrLeaderCannotLeave):
		errorResponse(c, "LEADER_CANNOT_LEAVE", err.Error(), http.StatusConflict)
	case errors.Is(err, model.ErrSelfTarget), errors.Is(err, model.ErrInvalidRole):
		errorResponse(c, "INVALID_REQUEST", err.Error(), http.StatusBadRequest)
	default:
		h.logger.Errorw("error "+action, "circle_id", c.Param("circle_id"), "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
	}
}
