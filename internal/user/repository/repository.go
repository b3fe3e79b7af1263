// Package repository provides data access layer for user module.
package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/festy23/kurukatsu/internal/user/model"
)

// Repository defines the interface for user data access operations.
type Repository interface {
	// GetByID finds user by user_id with both circle lists populated.
	GetByID(ctx context.Context, userID string) (*model.User, error)

	// Upsert creates the profile or overwrites its editable fields.
	Upsert(ctx context.Context, user *model.User) (*model.User, error)

	// CircleIDs returns the circle ids linked to the user with the given kind.
	CircleIDs(ctx context.Context, userID string, kind model.LinkKind) ([]string, error)

	// AddJoinedCircle adds circleID to the user's joined circles. Idempotent.
	AddJoinedCircle(ctx context.Context, userID, circleID string) error

	// RemoveJoinedCircle removes circleID from the user's joined circles. Idempotent.
	RemoveJoinedCircle(ctx context.Context, userID, circleID string) error

	// AddAdminCircle adds circleID to the user's admin circles. Idempotent.
	AddAdminCircle(ctx context.Context, userID, circleID string) error

	// RemoveAdminCircle removes circleID from the user's admin circles. Idempotent.
	RemoveAdminCircle(ctx context.Context, userID, circleID string) error
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new user repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

// GetByID finds user by user_id.
func (r *repository) GetByID(ctx context.Context, userID string) (*model.User, error) {
	r.logger.Debugw("GetByID called", "user_id", userID)

	var user model.User
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Debugw("GetByID user not found", "user_id", userID)
			return nil, model.ErrUserNotFound
		}
		r.logger.Errorw("GetByID database error", "user_id", userID, "error", err)
		return nil, err
	}

	if user.JoinedCircleIDs, err = r.CircleIDs(ctx, userID, model.LinkJoined); err != nil {
		return nil, err
	}
	if user.AdminCircleIDs, err = r.CircleIDs(ctx, userID, model.LinkAdmin); err != nil {
		return nil, err
	}

	return &user, nil
}

// Upsert inserts the profile or updates its editable columns on conflict.
func (r *repository) Upsert(ctx context.Context, user *model.User) (*model.User, error) {
	r.logger.Debugw("Upsert called", "user_id", user.UserID)

	user.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "email", "university", "grade", "profile_image_url", "updated_at",
			}),
		}).
		Create(user).Error

	if err != nil {
		r.logger.Errorw("Upsert database error", "user_id", user.UserID, "error", err)
		return nil, err
	}

	r.logger.Infow("Upsert completed", "user_id", user.UserID)
	return r.GetByID(ctx, user.UserID)
}

// CircleIDs returns linked circle ids ordered by link time.
func (r *repository) CircleIDs(ctx context.Context, userID string, kind model.LinkKind) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.CircleLink{}).
		Where("user_id = ? AND kind = ?", userID, kind).
		Order("created_at, circle_id").
		Pluck("circle_id", &ids).Error

	if err != nil {
		r.logger.Errorw("CircleIDs database error", "user_id", userID, "kind", kind, "error", err)
		return nil, err
	}

	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// AddJoinedCircle adds circleID to the user's joined circles.
func (r *repository) AddJoinedCircle(ctx context.Context, userID, circleID string) error {
	return r.addLink(ctx, userID, circleID, model.LinkJoined)
}

// RemoveJoinedCircle removes circleID from the user's joined circles.
func (r *repository) RemoveJoinedCircle(ctx context.Context, userID, circleID string) error {
	return r.removeLink(ctx, userID, circleID, model.LinkJoined)
}

// AddAdminCircle adds circleID to the user's admin circles.
func (r *repository) AddAdminCircle(ctx context.Context, userID, circleID string) error {
	return r.addLink(ctx, userID, circleID, model.LinkAdmin)
}

// RemoveAdminCircle removes circleID from the user's admin circles.
func (r *repository) RemoveAdminCircle(ctx context.Context, userID, circleID string) error {
	return r.removeLink(ctx, userID, circleID, model.LinkAdmin)
}

func (r *repository) addLink(ctx context.Context, userID, circleID string, kind model.LinkKind) error {
	link := model.CircleLink{
		UserID:    userID,
		CircleID:  circleID,
		Kind:      kind,
		CreatedAt: time.Now(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&link).Error

	if err != nil {
		r.logger.Errorw("addLink database error", "user_id", userID, "circle_id", circleID, "kind", kind, "error", err)
		return err
	}

	r.logger.Debugw("addLink completed", "user_id", userID, "circle_id", circleID, "kind", kind)
	return nil
}

func (r *repository) removeLink(ctx context.Context, userID, circleID string, kind model.LinkKind) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND circle_id = ? AND kind = ?", userID, circleID, kind).
		Delete(&model.CircleLink{}).Error

	if err != nil {
		r.logger.Errorw("removeLink database error", "user_id", userID, "circle_id", circleID, "kind", kind, "error", err)
		return err
	}

	r.logger.Debugw("removeLink completed", "user_id", userID, "circle_id", circleID, "kind", kind)
	return nil
}
