// Package service provides business logic layer for circle module.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	circleModel "github.com/festy23/kurukatsu/internal/circle/model"
	"github.com/festy23/kurukatsu/internal/circle/repository"
	"github.com/festy23/kurukatsu/internal/events"
	joinRequestRepo "github.com/festy23/kurukatsu/internal/joinrequest/repository"
	memberModel "github.com/festy23/kurukatsu/internal/member/model"
	memberRepo "github.com/festy23/kurukatsu/internal/member/repository"
	"github.com/festy23/kurukatsu/internal/metrics"
	"github.com/festy23/kurukatsu/internal/permission"
	userModel "github.com/festy23/kurukatsu/internal/user/model"
	userRepo "github.com/festy23/kurukatsu/internal/user/repository"
	"github.com/festy23/kurukatsu/pkg/sanitize"
)

// Service defines the interface for circle business logic operations.
type Service interface {
	// CreateCircle creates a circle led by actorID.
	CreateCircle(ctx context.Context, actorID string, req *circleModel.CreateCircleRequest) (*circleModel.CircleResponse, error)

	// GetCircle returns a circle by id.
	GetCircle(ctx context.Context, circleID string) (*circleModel.CircleResponse, error)

	// GetCounts returns the live counts visible to actorID.
	GetCounts(ctx context.Context, circleID, actorID string) (*circleModel.Counts, error)

	// CheckPermission reports whether actorID holds at least required.
	CheckPermission(
		ctx context.Context,
		circleID, actorID string,
		required memberModel.Role,
	) (*circleModel.PermissionResponse, error)

	// Watch opens a count stream for a member of the circle.
	Watch(ctx context.Context, circleID, actorID string) (*Watch, error)
}

// Watch is an open count stream. Snapshot is read after subscribing, so no
// change between the two is lost.
type Watch struct {
	Snapshot *circleModel.Counts
	Events   <-chan events.Event
	Cancel   func()
	// Admin is false for plain members, who do not see pending request counts.
	Admin bool
}

// Visible reports whether the watcher may see events of kind.
func (w *Watch) Visible(kind events.Kind) bool {
	return w.Admin || kind != events.KindJoinRequestCount
}

type service struct {
	repo        repository.Repository
	members     memberRepo.Repository
	requests    joinRequestRepo.Repository
	permissions permission.Checker
	subscriber  events.Subscriber
	db          *gorm.DB
	metrics     *metrics.Metrics
	logger      *zap.SugaredLogger
}

// New creates a new circle service instance.
func New(db *gorm.DB, subscriber events.Subscriber, m *metrics.Metrics, logger *zap.SugaredLogger) Service {
	members := memberRepo.New(db, logger)
	return &service{
		repo:        repository.New(db, logger),
		members:     members,
		requests:    joinRequestRepo.New(db, logger),
		permissions: permission.New(members, logger),
		subscriber:  subscriber,
		db:          db,
		metrics:     m,
		logger:      logger,
	}
}

// CreateCircle creates the circle, the actor's leader record and both profile
// links in one transaction. Leader display fields come from the actor's
// profile unless given in the request.
func (s *service) CreateCircle(
	ctx context.Context,
	actorID string,
	req *circleModel.CreateCircleRequest,
) (resp *circleModel.CircleResponse, err error) {
	s.logger.Debugw("CreateCircle called", "user_id", actorID)
	defer func() { s.metrics.IncWorkflow("create_circle", permission.Outcome(err)) }()

	if actorID == "" {
		return nil, userModel.ErrInvalidUserID
	}

	name := sanitize.Text(req.Name)
	if name == "" {
		return nil, circleModel.ErrInvalidCircleName
	}

	now := time.Now()
	circle := &circleModel.Circle{
		CircleID:       uuid.NewString(),
		Name:           name,
		LeaderID:       actorID,
		ContactInfo:    sanitize.Text(req.ContactInfo),
		UniversityName: sanitize.Text(req.UniversityName),
		Description:    sanitize.Text(req.Description),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txUsers := userRepo.New(tx, s.logger)
		txMembers := memberRepo.New(tx, s.logger)

		profile, err := txUsers.GetByID(ctx, actorID)
		switch {
		case err == nil:
			circle.LeaderName = profile.Name
			if circle.ContactInfo == "" {
				circle.ContactInfo = profile.Email
			}
			if circle.UniversityName == "" {
				circle.UniversityName = profile.University
			}
		case errors.Is(err, userModel.ErrUserNotFound):
		default:
			return err
		}

		if err := repository.New(tx, s.logger).Create(ctx, circle); err != nil {
			return err
		}
		if _, err := txMembers.SetRole(ctx, circle.CircleID, actorID, memberModel.RoleLeader, actorID); err != nil {
			return err
		}
		if err := txUsers.AddJoinedCircle(ctx, actorID, circle.CircleID); err != nil {
			return err
		}
		return txUsers.AddAdminCircle(ctx, actorID, circle.CircleID)
	})
	if err != nil {
		s.logger.Errorw("CreateCircle failed", "user_id", actorID, "error", err)
		return nil, err
	}

	s.logger.Infow("CreateCircle completed", "circle_id", circle.CircleID, "user_id", actorID)
	return &circleModel.CircleResponse{Circle: circle}, nil
}

// GetCircle returns a circle by id.
func (s *service) GetCircle(ctx context.Context, circleID string) (*circleModel.CircleResponse, error) {
	circle, err := s.repo.GetByID(ctx, circleID)
	if err != nil {
		return nil, err
	}
	return &circleModel.CircleResponse{Circle: circle}, nil
}

// GetCounts returns the member count to anyone, and the pending request
// count to admins and the leader.
func (s *service) GetCounts(ctx context.Context, circleID, actorID string) (*circleModel.Counts, error) {
	exists, err := s.repo.Exists(ctx, circleID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, circleModel.ErrCircleNotFound
	}

	admin, err := s.permissions.CheckPermission(ctx, circleID, actorID, memberModel.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return s.counts(ctx, circleID, admin)
}

func (s *service) counts(ctx context.Context, circleID string, admin bool) (*circleModel.Counts, error) {
	members, err := s.members.Count(ctx, circleID)
	if err != nil {
		return nil, err
	}

	counts := &circleModel.Counts{CircleID: circleID, Members: members}
	if admin {
		pending, err := s.requests.CountPending(ctx, circleID)
		if err != nil {
			return nil, err
		}
		counts.PendingRequests = &pending
	}
	return counts, nil
}

// CheckPermission reports whether actorID holds at least required.
func (s *service) CheckPermission(
	ctx context.Context,
	circleID, actorID string,
	required memberModel.Role,
) (*circleModel.PermissionResponse, error) {
	if !required.Valid() {
		return nil, memberModel.ErrInvalidRole
	}

	allowed, err := s.permissions.CheckPermission(ctx, circleID, actorID, required)
	if err != nil {
		return nil, err
	}

	return &circleModel.PermissionResponse{
		CircleID:     circleID,
		UserID:       actorID,
		RequiredRole: string(required),
		Allowed:      allowed,
	}, nil
}

// Watch subscribes before reading the snapshot.
func (s *service) Watch(ctx context.Context, circleID, actorID string) (*Watch, error) {
	role, err := s.permissions.Require(ctx, circleID, actorID, memberModel.RoleMember)
	if err != nil {
		return nil, err
	}
	admin := role.AtLeast(memberModel.RoleAdmin)

	ch, cancel := s.subscriber.Subscribe(circleID)
	snapshot, err := s.counts(ctx, circleID, admin)
	if err != nil {
		cancel()
		return nil, err
	}

	s.logger.Debugw("Watch started", "circle_id", circleID, "user_id", actorID)
	return &Watch{Snapshot: snapshot, Events: ch, Cancel: cancel, Admin: admin}, nil
}
