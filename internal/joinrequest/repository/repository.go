// Package repository provides data access layer for join requests.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/kurukatsu/internal/database/database"
	"github.com/festy23/kurukatsu/internal/joinrequest/model"
)

// Repository defines the interface for join request data access operations.
type Repository interface {
	// Create inserts a pending request. A second pending request for the same
	// circle and user fails with ErrJoinRequestExists.
	Create(ctx context.Context, request *model.JoinRequest) error

	// Get finds a request by id within a circle.
	Get(ctx context.Context, circleID, requestID string) (*model.JoinRequest, error)

	// FindPending returns the user's pending request for the circle, or ErrJoinRequestNotFound.
	FindPending(ctx context.Context, circleID, userID string) (*model.JoinRequest, error)

	// ListPending returns pending requests oldest first.
	ListPending(ctx context.Context, circleID string) ([]*model.JoinRequest, error)

	// CountPending returns the number of pending requests of the circle.
	CountPending(ctx context.Context, circleID string) (int64, error)

	// Decide moves a pending request to status. It fails with
	// ErrJoinRequestNotPending if the request was already decided.
	Decide(ctx context.Context, circleID, requestID string, status model.Status, decidedBy string) (*model.JoinRequest, error)
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new join request repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

// Create inserts a pending request.
func (r *repository) Create(ctx context.Context, request *model.JoinRequest) error {
	r.logger.Debugw("Create called",
		"request_id", request.RequestID,
		"circle_id", request.CircleID,
		"user_id", request.UserID,
	)

	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		if database.IsUniqueViolation(err) {
			r.logger.Debugw("Create duplicate pending request", "circle_id", request.CircleID, "user_id", request.UserID)
			return model.ErrJoinRequestExists
		}
		r.logger.Errorw("Create database error", "request_id", request.RequestID, "error", err)
		return err
	}

	r.logger.Infow("Create completed", "request_id", request.RequestID, "circle_id", request.CircleID)
	return nil
}

// Get finds a request by id within a circle.
func (r *repository) Get(ctx context.Context, circleID, requestID string) (*model.JoinRequest, error) {
	var request model.JoinRequest
	err := r.db.WithContext(ctx).
		Where("circle_id = ? AND request_id = ?", circleID, requestID).
		First(&request).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Debugw("Get join request not found", "circle_id", circleID, "request_id", requestID)
			return nil, model.ErrJoinRequestNotFound
		}
		r.logger.Errorw("Get database error", "circle_id", circleID, "request_id", requestID, "error", err)
		return nil, err
	}

	return &request, nil
}

// FindPending returns the user's pending request for the circle.
func (r *repository) FindPending(ctx context.Context, circleID, userID string) (*model.JoinRequest, error) {
	var request model.JoinRequest
	err := r.db.WithContext(ctx).
		Where("circle_id = ? AND user_id = ? AND status = ?", circleID, userID, model.StatusPending).
		First(&request).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrJoinRequestNotFound
		}
		r.logger.Errorw("FindPending database error", "circle_id", circleID, "user_id", userID, "error", err)
		return nil, err
	}

	return &request, nil
}

// ListPending returns pending requests oldest first.
func (r *repository) ListPending(ctx context.Context, circleID string) ([]*model.JoinRequest, error) {
	r.logger.Debugw("ListPending called", "circle_id", circleID)

	var requests []*model.JoinRequest
	err := r.db.WithContext(ctx).
		Where("circle_id = ? AND status = ?", circleID, model.StatusPending).
		Order("requested_at").
		Order("request_id").
		Find(&requests).Error

	if err != nil {
		r.logger.Errorw("ListPending database error", "circle_id", circleID, "error", err)
		return nil, err
	}

	if requests == nil {
		requests = []*model.JoinRequest{}
	}

	r.logger.Debugw("ListPending completed", "circle_id", circleID, "count", len(requests))
	return requests, nil
}

// CountPending returns the number of pending requests of the circle.
func (r *repository) CountPending(ctx context.Context, circleID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.JoinRequest{}).
		Where("circle_id = ? AND status = ?", circleID, model.StatusPending).
		Count(&count).Error

	if err != nil {
		r.logger.Errorw("CountPending database error", "circle_id", circleID, "error", err)
		return 0, err
	}
	return count, nil
}

// Decide updates status only while the request is still pending, so two
// concurrent decisions cannot both succeed.
func (r *repository) Decide(
	ctx context.Context,
	circleID, requestID string,
	status model.Status,
	decidedBy string,
) (*model.JoinRequest, error) {
	r.logger.Debugw("Decide called", "circle_id", circleID, "request_id", requestID, "status", status)

	if !status.Terminal() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidDecision, status)
	}

	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.JoinRequest{}).
		Where("circle_id = ? AND request_id = ? AND status = ?", circleID, requestID, model.StatusPending).
		Updates(map[string]interface{}{
			"status":     status,
			"decided_at": now,
			"decided_by": decidedBy,
		})

	if result.Error != nil {
		r.logger.Errorw("Decide database error", "circle_id", circleID, "request_id", requestID, "error", result.Error)
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		if _, err := r.Get(ctx, circleID, requestID); err != nil {
			return nil, err
		}
		r.logger.Debugw("Decide request already decided", "circle_id", circleID, "request_id", requestID)
		return nil, model.ErrJoinRequestNotPending
	}

	r.logger.Infow("Decide completed", "circle_id", circleID, "request_id", requestID, "status", status)
	return r.Get(ctx, circleID, requestID)
}
