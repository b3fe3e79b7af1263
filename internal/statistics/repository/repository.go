// Package repository provides data access layer for statistics module.
package repository

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	joinRequestModel "github.com/festy23/kurukatsu/internal/joinrequest/model"
	memberModel "github.com/festy23/kurukatsu/internal/member/model"
	"github.com/festy23/kurukatsu/internal/statistics/model"
)

// Repository defines the interface for statistics data access operations.
type Repository interface {
	// GetMemberStatistics counts the circle's members by role.
	GetMemberStatistics(ctx context.Context, circleID string) (*model.MemberStatistics, error)

	// GetJoinRequestStatistics counts the circle's join requests by status.
	GetJoinRequestStatistics(ctx context.Context, circleID string) (*model.JoinRequestStatistics, error)
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new statistics repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{
		db:     db,
		logger: logger,
	}
}

// GetMemberStatistics counts the circle's members by role.
func (r *repository) GetMemberStatistics(ctx context.Context, circleID string) (*model.MemberStatistics, error) {
	r.logger.Debugw("GetMemberStatistics called", "circle_id", circleID)

	var rows []struct {
		Role  memberModel.Role `gorm:"column:role"`
		Count int64            `gorm:"column:member_count"`
	}

	err := r.db.WithContext(ctx).
		Model(&memberModel.Member{}).
		Select("role, COUNT(*) AS member_count").
		Where("circle_id = ?", circleID).
		Group("role").
		Scan(&rows).Error

	if err != nil {
		r.logger.Errorw("GetMemberStatistics database error", "circle_id", circleID, "error", err)
		return nil, err
	}

	stats := &model.MemberStatistics{}
	for _, row := range rows {
		count := int(row.Count)
		stats.Total += count
		switch row.Role {
		case memberModel.RoleLeader:
			stats.Leaders = count
		case memberModel.RoleAdmin:
			stats.Admins = count
		case memberModel.RoleMember:
			stats.Members = count
		}
	}

	r.logger.Debugw("GetMemberStatistics completed", "circle_id", circleID, "total", stats.Total)
	return stats, nil
}

// GetJoinRequestStatistics counts the circle's join requests by status.
func (r *repository) GetJoinRequestStatistics(
	ctx context.Context,
	circleID string,
) (*model.JoinRequestStatistics, error) {
	r.logger.Debugw("GetJoinRequestStatistics called", "circle_id", circleID)

	var result struct {
		Total     int64 `gorm:"column:total"`
		Pending   int64 `gorm:"column:pending"`
		Approved  int64 `gorm:"column:approved"`
		Rejected  int64 `gorm:"column:rejected"`
		Withdrawn int64 `gorm:"column:withdrawn"`
	}

	err := r.db.WithContext(ctx).
		Model(&joinRequestModel.JoinRequest{}).
		Select(`
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS approved,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS rejected,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS withdrawn
		`,
			joinRequestModel.StatusPending,
			joinRequestModel.StatusApproved,
			joinRequestModel.StatusRejected,
			joinRequestModel.StatusWithdrawn,
		).
		Where("circle_id = ?", circleID).
		Scan(&result).Error

	if err != nil {
		r.logger.Errorw("GetJoinRequestStatistics database error", "circle_id", circleID, "error", err)
		return nil, err
	}

	stats := &model.JoinRequestStatistics{
		Total:     int(result.Total),
		Pending:   int(result.Pending),
		Approved:  int(result.Approved),
		Rejected:  int(result.Rejected),
		Withdrawn: int(result.Withdrawn),
	}
	if decided := stats.Approved + stats.Rejected; decided > 0 {
		stats.ApprovalRate = float64(stats.Approved) / float64(decided)
	}

	r.logger.Debugw("GetJoinRequestStatistics completed", "circle_id", circleID, "total", stats.Total)
	return stats, nil
}
