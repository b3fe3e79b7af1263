// Package repository provides the role store: circle member records.
package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/festy23/kurukatsu/internal/member/model"
)

// Repository defines the interface for member data access operations.
type Repository interface {
	// SetRole creates or overwrites the member record. No hierarchy checks are done here.
	SetRole(ctx context.Context, circleID, userID string, role model.Role, assignedBy string) (*model.Member, error)

	// Get returns the member record or ErrMemberNotFound.
	Get(ctx context.Context, circleID, userID string) (*model.Member, error)

	// List returns members ordered leader, admin, member, then by join time.
	List(ctx context.Context, circleID string) ([]*model.Member, error)

	// Count returns the number of members in the circle.
	Count(ctx context.Context, circleID string) (int64, error)

	// Delete removes the member record. Missing records are not an error.
	Delete(ctx context.Context, circleID, userID string) error
}

// roleOrder sorts leader first, then admins, then members.
const roleOrder = "CASE role WHEN 'leader' THEN 0 WHEN 'admin' THEN 1 ELSE 2 END"

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new member repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

// SetRole upserts the member record keyed by (circle_id, user_id).
// joined_at is kept from the existing record on update.
func (r *repository) SetRole(
	ctx context.Context,
	circleID, userID string,
	role model.Role,
	assignedBy string,
) (*model.Member, error) {
	r.logger.Debugw("SetRole called", "circle_id", circleID, "user_id", userID, "role", role)

	now := time.Now()
	member := model.Member{
		CircleID:   circleID,
		UserID:     userID,
		Role:       role,
		JoinedAt:   now,
		AssignedAt: now,
		AssignedBy: assignedBy,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "circle_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "assigned_at", "assigned_by"}),
		}).
		Create(&member).Error

	if err != nil {
		r.logger.Errorw("SetRole database error", "circle_id", circleID, "user_id", userID, "error", err)
		return nil, err
	}

	r.logger.Infow("SetRole completed", "circle_id", circleID, "user_id", userID, "role", role)
	return r.Get(ctx, circleID, userID)
}

// Get finds a member record by circle and user.
func (r *repository) Get(ctx context.Context, circleID, userID string) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).
		Where("circle_id = ? AND user_id = ?", circleID, userID).
		First(&member).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Debugw("Get member not found", "circle_id", circleID, "user_id", userID)
			return nil, model.ErrMemberNotFound
		}
		r.logger.Errorw("Get database error", "circle_id", circleID, "user_id", userID, "error", err)
		return nil, err
	}

	return &member, nil
}

// List returns the circle's members, highest role first.
func (r *repository) List(ctx context.Context, circleID string) ([]*model.Member, error) {
	r.logger.Debugw("List called", "circle_id", circleID)

	var members []*model.Member
	err := r.db.WithContext(ctx).
		Where("circle_id = ?", circleID).
		Order(roleOrder).
		Order("joined_at").
		Order("user_id").
		Find(&members).Error

	if err != nil {
		r.logger.Errorw("List database error", "circle_id", circleID, "error", err)
		return nil, err
	}

	if members == nil {
		members = []*model.Member{}
	}

	r.logger.Debugw("List completed", "circle_id", circleID, "count", len(members))
	return members, nil
}

// Count returns the number of members in the circle.
func (r *repository) Count(ctx context.Context, circleID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Member{}).
		Where("circle_id = ?", circleID).
		Count(&count).Error

	if err != nil {
		r.logger.Errorw("Count database error", "circle_id", circleID, "error", err)
		return 0, err
	}
	return count, nil
}

// Delete removes the member record.
func (r *repository) Delete(ctx context.Context, circleID, userID string) error {
	r.logger.Debugw("Delete called", "circle_id", circleID, "user_id", userID)

	result := r.db.WithContext(ctx).
		Where("circle_id = ? AND user_id = ?", circleID, userID).
		Delete(&model.Member{})

	if result.Error != nil {
		r.logger.Errorw("Delete database error", "circle_id", circleID, "user_id", userID, "error", result.Error)
		return result.Error
	}

	r.logger.Infow("Delete completed", "circle_id", circleID, "user_id", userID, "deleted", result.RowsAffected)
	return nil
}
