// Package permission evaluates circle roles against a required minimum.
package permission

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/festy23/kurukatsu/internal/member/model"
	"github.com/festy23/kurukatsu/internal/member/repository"
	"github.com/festy23/kurukatsu/internal/metrics"
)

// Checker authorizes circle actions by role.
type Checker interface {
	// CheckPermission reports whether userID holds at least required in circleID.
	// A missing member record or circle yields false, not an error.
	CheckPermission(ctx context.Context, circleID, userID string, required model.Role) (bool, error)

	// Require returns the user's role, or ErrPermissionDenied when it is below required.
	Require(ctx context.Context, circleID, userID string, required model.Role) (model.Role, error)
}

type checker struct {
	members repository.Repository
	logger  *zap.SugaredLogger
}

// New creates a checker reading roles from members.
func New(members repository.Repository, logger *zap.SugaredLogger) Checker {
	return &checker{members: members, logger: logger}
}

// CheckPermission reports whether userID holds at least required in circleID.
func (c *checker) CheckPermission(ctx context.Context, circleID, userID string, required model.Role) (bool, error) {
	_, err := c.Require(ctx, circleID, userID, required)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, model.ErrPermissionDenied):
		return false, nil
	default:
		return false, err
	}
}

// Require returns the user's role if it satisfies required.
func (c *checker) Require(ctx context.Context, circleID, userID string, required model.Role) (model.Role, error) {
	var role model.Role
	member, err := c.members.Get(ctx, circleID, userID)
	switch {
	case err == nil:
		role = member.Role
	case errors.Is(err, model.ErrMemberNotFound):
	default:
		c.logger.Errorw("Require failed to read role", "circle_id", circleID, "user_id", userID, "error", err)
		return "", err
	}

	if !role.AtLeast(required) {
		c.logger.Debugw("Require denied",
			"circle_id", circleID,
			"user_id", userID,
			"role", role,
			"required", required,
		)
		return role, model.ErrPermissionDenied
	}
	return role, nil
}

// Outcome classifies err for workflow metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, model.ErrPermissionDenied), errors.Is(err, model.ErrNotLeader):
		return metrics.OutcomeDenied
	default:
		return metrics.OutcomeError
	}
}
