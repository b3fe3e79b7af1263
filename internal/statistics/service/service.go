// Package service provides business logic layer for statistics module.
package service

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	circleModel "github.com/festy23/kurukatsu/internal/circle/model"
	circleRepo "github.com/festy23/kurukatsu/internal/circle/repository"
	memberModel "github.com/festy23/kurukatsu/internal/member/model"
	memberRepo "github.com/festy23/kurukatsu/internal/member/repository"
	"github.com/festy23/kurukatsu/internal/permission"
	"github.com/festy23/kurukatsu/internal/statistics/model"
	"github.com/festy23/kurukatsu/internal/statistics/repository"
)

// Service defines the interface for statistics business logic operations.
type Service interface {
	// GetCircleStatistics returns member and join request figures. Admin or leader only.
	GetCircleStatistics(ctx context.Context, circleID, actorID string) (*model.CircleStatisticsResponse, error)
}

type service struct {
	repo        repository.Repository
	circles     circleRepo.Repository
	permissions permission.Checker
	logger      *zap.SugaredLogger
}

// New creates a new statistics service instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Service {
	return &service{
		repo:        repository.New(db, logger),
		circles:     circleRepo.New(db, logger),
		permissions: permission.New(memberRepo.New(db, logger), logger),
		logger:      logger,
	}
}

// GetCircleStatistics returns member and join request figures for the circle.
func (s *service) GetCircleStatistics(
	ctx context.Context,
	circleID, actorID string,
) (*model.CircleStatisticsResponse, error) {
	s.logger.Debugw("GetCircleStatistics called", "circle_id", circleID, "user_id", actorID)

	exists, err := s.circles.Exists(ctx, circleID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, circleModel.ErrCircleNotFound
	}

	if _, err := s.permissions.Require(ctx, circleID, actorID, memberModel.RoleAdmin); err != nil {
		return nil, err
	}

	members, err := s.repo.GetMemberStatistics(ctx, circleID)
	if err != nil {
		s.logger.Errorw("GetCircleStatistics failed", "circle_id", circleID, "error", err)
		return nil, err
	}

	requests, err := s.repo.GetJoinRequestStatistics(ctx, circleID)
	if err != nil {
		s.logger.Errorw("GetCircleStatistics failed", "circle_id", circleID, "error", err)
		return nil, err
	}

	s.logger.Infow("GetCircleStatistics completed", "circle_id", circleID, "members", members.Total)
	return &model.CircleStatisticsResponse{
		Statistics: model.CircleStatistics{
			CircleID:     circleID,
			Members:      *members,
			JoinRequests: *requests,
		},
	}, nil
}
