// Package repository provides data access layer for circle module.
package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/kurukatsu/internal/circle/model"
)

// Repository defines the interface for circle data access operations.
type Repository interface {
	// Create inserts a new circle.
	Create(ctx context.Context, circle *model.Circle) error

	// GetByID finds circle by circle_id.
	GetByID(ctx context.Context, circleID string) (*model.Circle, error)

	// Exists reports whether the circle exists.
	Exists(ctx context.Context, circleID string) (bool, error)

	// UpdateLeader writes the denormalised leader fields.
	UpdateLeader(ctx context.Context, circleID string, fields model.LeaderFields) error
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new circle repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

// Create inserts a new circle.
func (r *repository) Create(ctx context.Context, circle *model.Circle) error {
	r.logger.Debugw("Create called", "circle_id", circle.CircleID, "name", circle.Name)

	if err := r.db.WithContext(ctx).Create(circle).Error; err != nil {
		r.logger.Errorw("Create database error", "circle_id", circle.CircleID, "error", err)
		return err
	}

	r.logger.Infow("Create completed", "circle_id", circle.CircleID)
	return nil
}

// GetByID finds circle by circle_id.
func (r *repository) GetByID(ctx context.Context, circleID string) (*model.Circle, error) {
	r.logger.Debugw("GetByID called", "circle_id", circleID)

	var circle model.Circle
	err := r.db.WithContext(ctx).
		Where("circle_id = ?", circleID).
		First(&circle).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Debugw("GetByID circle not found", "circle_id", circleID)
			return nil, model.ErrCircleNotFound
		}
		r.logger.Errorw("GetByID database error", "circle_id", circleID, "error", err)
		return nil, err
	}

	return &circle, nil
}

// Exists reports whether the circle exists.
func (r *repository) Exists(ctx context.Context, circleID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Circle{}).
		Where("circle_id = ?", circleID).
		Count(&count).Error

	if err != nil {
		r.logger.Errorw("Exists database error", "circle_id", circleID, "error", err)
		return false, err
	}
	return count > 0, nil
}

// UpdateLeader writes leader_id, leader_name, contact_info and, when
// provided, university_name.
func (r *repository) UpdateLeader(ctx context.Context, circleID string, fields model.LeaderFields) error {
	r.logger.Debugw("UpdateLeader called", "circle_id", circleID, "leader_id", fields.LeaderID)

	updates := map[string]interface{}{
		"leader_id":    fields.LeaderID,
		"leader_name":  fields.LeaderName,
		"contact_info": fields.ContactInfo,
		"updated_at":   time.Now(),
	}
	if fields.UniversityName != "" {
		updates["university_name"] = fields.UniversityName
	}

	result := r.db.WithContext(ctx).
		Model(&model.Circle{}).
		Where("circle_id = ?", circleID).
		Updates(updates)

	if result.Error != nil {
		r.logger.Errorw("UpdateLeader database error", "circle_id", circleID, "error", result.Error)
		return result.Error
	}

	if result.RowsAffected == 0 {
		r.logger.Debugw("UpdateLeader circle not found", "circle_id", circleID)
		return model.ErrCircleNotFound
	}

	r.logger.Infow("UpdateLeader completed", "circle_id", circleID, "leader_id", fields.LeaderID)
	return nil
}
