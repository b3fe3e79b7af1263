// Package service provides business logic layer for user module.
package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/festy23/kurukatsu/internal/user/model"
	"github.com/festy23/kurukatsu/internal/user/repository"
	"github.com/festy23/kurukatsu/pkg/sanitize"
)

// Service defines the interface for user business logic operations.
type Service interface {
	// GetProfile returns the profile with its circle lists.
	GetProfile(ctx context.Context, userID string) (*model.ProfileResponse, error)

	// UpsertProfile creates or updates the caller's profile.
	UpsertProfile(ctx context.Context, userID string, req *model.UpsertProfileRequest) (*model.ProfileResponse, error)
}

type service struct {
	repo   repository.Repository
	logger *zap.SugaredLogger
}

// New creates a new user service instance.
func New(repo repository.Repository, logger *zap.SugaredLogger) Service {
	return &service{repo: repo, logger: logger}
}

// GetProfile returns the profile with its circle lists.
func (s *service) GetProfile(ctx context.Context, userID string) (*model.ProfileResponse, error) {
	s.logger.Debugw("GetProfile called", "user_id", userID)

	if userID == "" {
		return nil, model.ErrInvalidUserID
	}

	user, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, model.ErrUserNotFound) {
		user, err = s.bareProfile(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	return &model.ProfileResponse{User: user}, nil
}

// bareProfile serves a user who never saved a profile but already holds
// circle links, e.g. an applicant admitted without one.
func (s *service) bareProfile(ctx context.Context, userID string) (*model.User, error) {
	joined, err := s.repo.CircleIDs(ctx, userID, model.LinkJoined)
	if err != nil {
		return nil, err
	}
	admin, err := s.repo.CircleIDs(ctx, userID, model.LinkAdmin)
	if err != nil {
		return nil, err
	}
	if len(joined) == 0 && len(admin) == 0 {
		return nil, model.ErrUserNotFound
	}

	s.logger.Debugw("GetProfile serving links without profile", "user_id", userID)
	return &model.User{UserID: userID, JoinedCircleIDs: joined, AdminCircleIDs: admin}, nil
}

// UpsertProfile stores display fields with markup stripped. Circle lists are
// never written here; they follow membership changes.
func (s *service) UpsertProfile(
	ctx context.Context,
	userID string,
	req *model.UpsertProfileRequest,
) (*model.ProfileResponse, error) {
	s.logger.Debugw("UpsertProfile called", "user_id", userID)

	if userID == "" {
		return nil, model.ErrInvalidUserID
	}

	user := &model.User{
		UserID:          userID,
		Name:            sanitize.Text(req.Name),
		Email:           req.Email,
		University:      sanitize.Text(req.University),
		Grade:           sanitize.Text(req.Grade),
		ProfileImageURL: req.ProfileImageURL,
	}
	if user.Name == "" {
		s.logger.Debugw("UpsertProfile validation failed", "user_id", userID, "error", "empty name")
		return nil, model.ErrInvalidName
	}

	saved, err := s.repo.Upsert(ctx, user)
	if err != nil {
		s.logger.Errorw("UpsertProfile failed", "user_id", userID, "error", err)
		return nil, err
	}

	s.logger.Infow("UpsertProfile completed", "user_id", userID)
	return &model.ProfileResponse{User: saved}, nil
}
