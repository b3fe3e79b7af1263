// Package service provides the join request workflow.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	circleModel "github.com/festy23/kurukatsu/internal/circle/model"
	circleRepo "github.com/festy23/kurukatsu/internal/circle/repository"
	"github.com/festy23/kurukatsu/internal/events"
	"github.com/festy23/kurukatsu/internal/joinrequest/model"
	"github.com/festy23/kurukatsu/internal/joinrequest/repository"
	memberModel "github.com/festy23/kurukatsu/internal/member/model"
	memberRepo "github.com/festy23/kurukatsu/internal/member/repository"
	"github.com/festy23/kurukatsu/internal/metrics"
	"github.com/festy23/kurukatsu/internal/notify"
	"github.com/festy23/kurukatsu/internal/permission"
	userModel "github.com/festy23/kurukatsu/internal/user/model"
	userRepo "github.com/festy23/kurukatsu/internal/user/repository"
	"github.com/festy23/kurukatsu/pkg/sanitize"
)

// Service defines the interface for join request operations.
type Service interface {
	// Submit files a pending request for userID.
	Submit(ctx context.Context, circleID, userID string, req *model.SubmitRequest) (*model.JoinRequestResponse, error)

	// Approve admits the applicant as a member.
	Approve(ctx context.Context, circleID, requestID, actorID string) (*model.JoinRequestResponse, error)

	// Reject declines the request without creating a member.
	Reject(ctx context.Context, circleID, requestID, actorID string) (*model.JoinRequestResponse, error)

	// Withdraw lets the applicant cancel their own pending request.
	Withdraw(ctx context.Context, circleID, requestID, actorID string) (*model.JoinRequestResponse, error)

	// ListPending returns the circle's pending requests, oldest first.
	ListPending(ctx context.Context, circleID, actorID string) (*model.ListPendingResponse, error)
}

type service struct {
	repo      repository.Repository
	members   memberRepo.Repository
	db        *gorm.DB
	publisher events.Publisher
	notifier  notify.Notifier
	metrics   *metrics.Metrics
	logger    *zap.SugaredLogger
}

// New creates a new join request service instance.
func New(
	db *gorm.DB,
	publisher events.Publisher,
	notifier notify.Notifier,
	m *metrics.Metrics,
	logger *zap.SugaredLogger,
) Service {
	return &service{
		repo:      repository.New(db, logger),
		members:   memberRepo.New(db, logger),
		db:        db,
		publisher: publisher,
		notifier:  notifier,
		metrics:   m,
		logger:    logger,
	}
}

// txScope holds repositories bound to one transaction.
type txScope struct {
	requests    repository.Repository
	members     memberRepo.Repository
	users       userRepo.Repository
	circles     circleRepo.Repository
	permissions permission.Checker
}

func (s *service) inTx(ctx context.Context, fn func(tx *txScope) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		members := memberRepo.New(tx, s.logger)
		return fn(&txScope{
			requests:    repository.New(tx, s.logger),
			members:     members,
			users:       userRepo.New(tx, s.logger),
			circles:     circleRepo.New(tx, s.logger),
			permissions: permission.New(members, s.logger),
		})
	})
}

// Submit files a pending request. Snapshot fields left empty are filled from
// the applicant's stored profile.
func (s *service) Submit(
	ctx context.Context,
	circleID, userID string,
	req *model.SubmitRequest,
) (resp *model.JoinRequestResponse, err error) {
	s.logger.Debugw("Submit called", "circle_id", circleID, "user_id", userID)
	defer func() { s.metrics.IncWorkflow("submit", permission.Outcome(err)) }()

	if userID == "" {
		return nil, userModel.ErrInvalidUserID
	}

	request := &model.JoinRequest{
		RequestID:   uuid.NewString(),
		CircleID:    circleID,
		UserID:      userID,
		Name:        sanitize.Text(req.Name),
		University:  sanitize.Text(req.University),
		Grade:       sanitize.Text(req.Grade),
		Email:       req.Email,
		Status:      model.StatusPending,
		RequestedAt: time.Now(),
	}

	err = s.inTx(ctx, func(tx *txScope) error {
		exists, err := tx.circles.Exists(ctx, circleID)
		if err != nil {
			return err
		}
		if !exists {
			return circleModel.ErrCircleNotFound
		}

		_, err = tx.members.Get(ctx, circleID, userID)
		switch {
		case err == nil:
			return model.ErrAlreadyMember
		case !errors.Is(err, memberModel.ErrMemberNotFound):
			return err
		}

		_, err = tx.requests.FindPending(ctx, circleID, userID)
		switch {
		case err == nil:
			return model.ErrJoinRequestExists
		case !errors.Is(err, model.ErrJoinRequestNotFound):
			return err
		}

		profile, err := tx.users.GetByID(ctx, userID)
		switch {
		case err == nil:
			fillFromProfile(request, profile)
		case !errors.Is(err, userModel.ErrUserNotFound):
			return err
		}

		return tx.requests.Create(ctx, request)
	})
	if err != nil {
		s.logger.Debugw("Submit failed", "circle_id", circleID, "user_id", userID, "error", err)
		return nil, err
	}

	s.publishPendingCount(ctx, circleID)
	s.logger.Infow("Submit completed", "circle_id", circleID, "user_id", userID, "request_id", request.RequestID)
	return &model.JoinRequestResponse{JoinRequest: request}, nil
}

func fillFromProfile(request *model.JoinRequest, profile *userModel.User) {
	if request.Name == "" {
		request.Name = profile.Name
	}
	if request.University == "" {
		request.University = profile.University
	}
	if request.Grade == "" {
		request.Grade = profile.Grade
	}
	if request.Email == "" {
		request.Email = profile.Email
	}
}

// Approve creates the member record (unless the applicant already has one,
// so no role is downgraded), links the circle to the applicant's profile and
// marks the request approved, all in one transaction.
func (s *service) Approve(
	ctx context.Context,
	circleID, requestID, actorID string,
) (resp *model.JoinRequestResponse, err error) {
	s.logger.Debugw("Approve called", "circle_id", circleID, "request_id", requestID, "user_id", actorID)
	defer func() { s.metrics.IncWorkflow("approve", permission.Outcome(err)) }()

	var (
		decided    *model.JoinRequest
		circleName string
	)
	err = s.inTx(ctx, func(tx *txScope) error {
		if _, err := tx.permissions.Require(ctx, circleID, actorID, memberModel.RoleAdmin); err != nil {
			return err
		}

		circle, err := tx.circles.GetByID(ctx, circleID)
		if err != nil {
			return err
		}
		circleName = circle.Name

		request, err := tx.requests.Get(ctx, circleID, requestID)
		if err != nil {
			return err
		}
		if request.Status.Terminal() {
			return model.ErrJoinRequestNotPending
		}

		_, err = tx.members.Get(ctx, circleID, request.UserID)
		switch {
		case errors.Is(err, memberModel.ErrMemberNotFound):
			if _, err := tx.members.SetRole(ctx, circleID, request.UserID, memberModel.RoleMember, actorID); err != nil {
				return err
			}
		case err != nil:
			return err
		}

		if err := tx.users.AddJoinedCircle(ctx, request.UserID, circleID); err != nil {
			return err
		}

		decided, err = tx.requests.Decide(ctx, circleID, requestID, model.StatusApproved, actorID)
		return err
	})
	if err != nil {
		s.logger.Debugw("Approve failed", "circle_id", circleID, "request_id", requestID, "error", err)
		return nil, err
	}

	s.publishPendingCount(ctx, circleID)
	s.publishMemberCount(ctx, circleID)
	s.notifier.Notify(notify.Notification{
		UserID:   decided.UserID,
		CircleID: circleID,
		Kind:     notify.KindJoinRequestApproved,
		Title:    "Join request approved",
		Body:     fmt.Sprintf("Welcome to %s!", circleName),
	})

	s.logger.Infow("Approve completed", "circle_id", circleID, "request_id", requestID, "applicant_id", decided.UserID)
	return &model.JoinRequestResponse{JoinRequest: decided}, nil
}

// Reject marks the request rejected. No member record is created.
func (s *service) Reject(
	ctx context.Context,
	circleID, requestID, actorID string,
) (resp *model.JoinRequestResponse, err error) {
	s.logger.Debugw("Reject called", "circle_id", circleID, "request_id", requestID, "user_id", actorID)
	defer func() { s.metrics.IncWorkflow("reject", permission.Outcome(err)) }()

	var (
		decided    *model.JoinRequest
		circleName string
	)
	err = s.inTx(ctx, func(tx *txScope) error {
		if _, err := tx.permissions.Require(ctx, circleID, actorID, memberModel.RoleAdmin); err != nil {
			return err
		}

		circle, err := tx.circles.GetByID(ctx, circleID)
		if err != nil {
			return err
		}
		circleName = circle.Name

		decided, err = tx.requests.Decide(ctx, circleID, requestID, model.StatusRejected, actorID)
		return err
	})
	if err != nil {
		s.logger.Debugw("Reject failed", "circle_id", circleID, "request_id", requestID, "error", err)
		return nil, err
	}

	s.publishPendingCount(ctx, circleID)
	s.notifier.Notify(notify.Notification{
		UserID:   decided.UserID,
		CircleID: circleID,
		Kind:     notify.KindJoinRequestRejected,
		Title:    "Join request declined",
		Body:     fmt.Sprintf("Your request to join %s was declined.", circleName),
	})

	s.logger.Infow("Reject completed", "circle_id", circleID, "request_id", requestID, "applicant_id", decided.UserID)
	return &model.JoinRequestResponse{JoinRequest: decided}, nil
}

// Withdraw is only allowed for the applicant.
func (s *service) Withdraw(
	ctx context.Context,
	circleID, requestID, actorID string,
) (resp *model.JoinRequestResponse, err error) {
	s.logger.Debugw("Withdraw called", "circle_id", circleID, "request_id", requestID, "user_id", actorID)
	defer func() { s.metrics.IncWorkflow("withdraw", permission.Outcome(err)) }()

	var decided *model.JoinRequest
	err = s.inTx(ctx, func(tx *txScope) error {
		request, err := tx.requests.Get(ctx, circleID, requestID)
		if err != nil {
			return err
		}
		if request.UserID != actorID {
			return memberModel.ErrPermissionDenied
		}

		decided, err = tx.requests.Decide(ctx, circleID, requestID, model.StatusWithdrawn, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishPendingCount(ctx, circleID)
	s.logger.Infow("Withdraw completed", "circle_id", circleID, "request_id", requestID)
	return &model.JoinRequestResponse{JoinRequest: decided}, nil
}

// ListPending requires admin or leader.
func (s *service) ListPending(ctx context.Context, circleID, actorID string) (*model.ListPendingResponse, error) {
	s.logger.Debugw("ListPending called", "circle_id", circleID, "user_id", actorID)

	checker := permission.New(s.members, s.logger)
	if _, err := checker.Require(ctx, circleID, actorID, memberModel.RoleAdmin); err != nil {
		s.metrics.IncWorkflow("list_pending", permission.Outcome(err))
		return nil, err
	}

	requests, err := s.repo.ListPending(ctx, circleID)
	if err != nil {
		return nil, err
	}
	return &model.ListPendingResponse{CircleID: circleID, Requests: requests}, nil
}

func (s *service) publishPendingCount(ctx context.Context, circleID string) {
	count, err := s.repo.CountPending(ctx, circleID)
	if err != nil {
		s.logger.Warnw("publishPendingCount failed", "circle_id", circleID, "error", err)
		return
	}
	s.publisher.Publish(events.Event{CircleID: circleID, Kind: events.KindJoinRequestCount, Value: count})
}

func (s *service) publishMemberCount(ctx context.Context, circleID string) {
	count, err := s.members.Count(ctx, circleID)
	if err != nil {
		s.logger.Warnw("publishMemberCount failed", "circle_id", circleID, "error", err)
		return
	}
	s.publisher.Publish(events.Event{CircleID: circleID, Kind: events.KindMemberCount, Value: count})
}
