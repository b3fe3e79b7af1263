// Package service provides business logic layer for member module:
// role changes, removals and leadership transfer.
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	circleModel "github.com/festy23/kurukatsu/internal/circle/model"
	circleRepo "github.com/festy23/kurukatsu/internal/circle/repository"
	"github.com/festy23/kurukatsu/internal/events"
	"github.com/festy23/kurukatsu/internal/member/model"
	"github.com/festy23/kurukatsu/internal/member/repository"
	"github.com/festy23/kurukatsu/internal/metrics"
	"github.com/festy23/kurukatsu/internal/notify"
	"github.com/festy23/kurukatsu/internal/permission"
	userModel "github.com/festy23/kurukatsu/internal/user/model"
	userRepo "github.com/festy23/kurukatsu/internal/user/repository"
)

// Service defines the interface for member business logic operations.
type Service interface {
	// GetRole returns the user's role in the circle.
	GetRole(ctx context.Context, circleID, userID string) (*model.RoleResponse, error)

	// ListMembers lists the circle's members for one of its members.
	ListMembers(ctx context.Context, circleID, actorID string) (*model.ListMembersResponse, error)

	// ChangeRole sets target's role to admin or member.
	ChangeRole(ctx context.Context, circleID, actorID, targetID string, role model.Role) (*model.MemberResponse, error)

	// RemoveMember removes target from the circle.
	RemoveMember(ctx context.Context, circleID, actorID, targetID string) error

	// Leave removes the actor from the circle.
	Leave(ctx context.Context, circleID, actorID string) error

	// TransferLeadership hands the leader role from actor to nominee.
	TransferLeadership(ctx context.Context, circleID, actorID, nomineeID string) (*model.TransferLeadershipResponse, error)
}

type service struct {
	repo      repository.Repository
	db        *gorm.DB
	publisher events.Publisher
	notifier  notify.Notifier
	metrics   *metrics.Metrics
	logger    *zap.SugaredLogger
}

// New creates a new member service instance.
func New(
	db *gorm.DB,
	publisher events.Publisher,
	notifier notify.Notifier,
	m *metrics.Metrics,
	logger *zap.SugaredLogger,
) Service {
	return &service{
		repo:      repository.New(db, logger),
		db:        db,
		publisher: publisher,
		notifier:  notifier,
		metrics:   m,
		logger:    logger,
	}
}

// txScope holds repositories bound to one transaction.
type txScope struct {
	members     repository.Repository
	users       userRepo.Repository
	circles     circleRepo.Repository
	permissions permission.Checker
}

func (s *service) inTx(ctx context.Context, fn func(tx *txScope) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		members := repository.New(tx, s.logger)
		return fn(&txScope{
			members:     members,
			users:       userRepo.New(tx, s.logger),
			circles:     circleRepo.New(tx, s.logger),
			permissions: permission.New(members, s.logger),
		})
	})
}

// GetRole returns the user's role in the circle or ErrMemberNotFound.
func (s *service) GetRole(ctx context.Context, circleID, userID string) (*model.RoleResponse, error) {
	member, err := s.repo.Get(ctx, circleID, userID)
	if err != nil {
		return nil, err
	}
	return &model.RoleResponse{CircleID: circleID, UserID: userID, Role: member.Role}, nil
}

// ListMembers requires the actor to be a member.
func (s *service) ListMembers(ctx context.Context, circleID, actorID string) (*model.ListMembersResponse, error) {
	s.logger.Debugw("ListMembers called", "circle_id", circleID, "user_id", actorID)

	if _, err := permission.New(s.repo, s.logger).Require(ctx, circleID, actorID, model.RoleMember); err != nil {
		return nil, err
	}

	members, err := s.repo.List(ctx, circleID)
	if err != nil {
		return nil, err
	}
	return &model.ListMembersResponse{CircleID: circleID, Members: members}, nil
}

// ChangeRole sets target's role. Admins may not touch other admins or grant
// admin; only the leader can.
func (s *service) ChangeRole(
	ctx context.Context,
	circleID, actorID, targetID string,
	role model.Role,
) (resp *model.MemberResponse, err error) {
	s.logger.Debugw("ChangeRole called", "circle_id", circleID, "user_id", actorID, "target_id", targetID, "role", role)
	defer func() { s.metrics.IncWorkflow("change_role", permission.Outcome(err)) }()

	if !role.Valid() {
		return nil, model.ErrInvalidRole
	}
	if role == model.RoleLeader {
		return nil, model.ErrLeaderViaTransferOnly
	}

	var updated *model.Member
	err = s.inTx(ctx, func(tx *txScope) error {
		actorRole, err := tx.permissions.Require(ctx, circleID, actorID, model.RoleAdmin)
		if err != nil {
			return err
		}
		if actorID == targetID {
			return model.ErrSelfTarget
		}

		target, err := tx.members.Get(ctx, circleID, targetID)
		if err != nil {
			return err
		}
		if target.Role == model.RoleLeader {
			return model.ErrCannotModifyLeader
		}
		if (role.IsAdmin() || target.Role.IsAdmin()) && actorRole != model.RoleLeader {
			return model.ErrPermissionDenied
		}

		if updated, err = tx.members.SetRole(ctx, circleID, targetID, role, actorID); err != nil {
			return err
		}
		if role.IsAdmin() {
			return tx.users.AddAdminCircle(ctx, targetID, circleID)
		}
		return tx.users.RemoveAdminCircle(ctx, targetID, circleID)
	})
	if err != nil {
		s.logger.Debugw("ChangeRole failed", "circle_id", circleID, "target_id", targetID, "error", err)
		return nil, err
	}

	s.notifier.Notify(notify.Notification{
		UserID:   targetID,
		CircleID: circleID,
		Kind:     notify.KindRoleChanged,
		Title:    "Your role has changed",
		Body:     fmt.Sprintf("You are now %s of the circle.", role),
	})

	s.logger.Infow("ChangeRole completed", "circle_id", circleID, "target_id", targetID, "role", role)
	return &model.MemberResponse{Member: updated}, nil
}

// RemoveMember requires the actor to outrank the target.
func (s *service) RemoveMember(ctx context.Context, circleID, actorID, targetID string) (err error) {
	s.logger.Debugw("RemoveMember called", "circle_id", circleID, "user_id", actorID, "target_id", targetID)
	defer func() { s.metrics.IncWorkflow("remove_member", permission.Outcome(err)) }()

	err = s.inTx(ctx, func(tx *txScope) error {
		actorRole, err := tx.permissions.Require(ctx, circleID, actorID, model.RoleAdmin)
		if err != nil {
			return err
		}
		if actorID == targetID {
			return model.ErrSelfTarget
		}

		target, err := tx.members.Get(ctx, circleID, targetID)
		if err != nil {
			return err
		}
		if target.Role == model.RoleLeader {
			return model.ErrCannotModifyLeader
		}
		if actorRole.Rank() <= target.Role.Rank() {
			return model.ErrPermissionDenied
		}

		return removeMember(ctx, tx, circleID, targetID)
	})
	if err != nil {
		s.logger.Debugw("RemoveMember failed", "circle_id", circleID, "target_id", targetID, "error", err)
		return err
	}

	s.publishMemberCount(ctx, circleID)
	s.notifier.Notify(notify.Notification{
		UserID:   targetID,
		CircleID: circleID,
		Kind:     notify.KindMemberRemoved,
		Title:    "Removed from circle",
		Body:     "You have been removed from the circle.",
	})

	s.logger.Infow("RemoveMember completed", "circle_id", circleID, "target_id", targetID)
	return nil
}

// Leave removes the actor. The leader must transfer leadership first.
func (s *service) Leave(ctx context.Context, circleID, actorID string) (err error) {
	s.logger.Debugw("Leave called", "circle_id", circleID, "user_id", actorID)
	defer func() { s.metrics.IncWorkflow("leave", permission.Outcome(err)) }()

	err = s.inTx(ctx, func(tx *txScope) error {
		member, err := tx.members.Get(ctx, circleID, actorID)
		if err != nil {
			return err
		}
		if member.Role == model.RoleLeader {
			return model.ErrLeaderCannotLeave
		}
		return removeMember(ctx, tx, circleID, actorID)
	})
	if err != nil {
		return err
	}

	s.publishMemberCount(ctx, circleID)
	s.logger.Infow("Leave completed", "circle_id", circleID, "user_id", actorID)
	return nil
}

// removeMember deletes the record and both profile links whatever the prior role.
func removeMember(ctx context.Context, tx *txScope, circleID, userID string) error {
	if err := tx.members.Delete(ctx, circleID, userID); err != nil {
		return err
	}
	if err := tx.users.RemoveJoinedCircle(ctx, userID, circleID); err != nil {
		return err
	}
	return tx.users.RemoveAdminCircle(ctx, userID, circleID)
}

// TransferLeadership runs all steps in one transaction, so a failure at any
// step leaves the circle with its original leader.
func (s *service) TransferLeadership(
	ctx context.Context,
	circleID, actorID, nomineeID string,
) (resp *model.TransferLeadershipResponse, err error) {
	s.logger.Debugw("TransferLeadership called", "circle_id", circleID, "user_id", actorID, "nominee_id", nomineeID)
	defer func() { s.metrics.IncWorkflow("transfer_leadership", permission.Outcome(err)) }()

	err = s.inTx(ctx, func(tx *txScope) error {
		if _, err := tx.permissions.Require(ctx, circleID, actorID, model.RoleLeader); err != nil {
			if errors.Is(err, model.ErrPermissionDenied) {
				return model.ErrNotLeader
			}
			return err
		}
		if nomineeID == actorID {
			return model.ErrSelfTarget
		}
		if _, err := tx.members.Get(ctx, circleID, nomineeID); err != nil {
			return err
		}

		fields := circleModel.LeaderFields{LeaderID: nomineeID}
		profile, err := tx.users.GetByID(ctx, nomineeID)
		switch {
		case err == nil:
			fields.LeaderName = profile.Name
			fields.ContactInfo = profile.Email
			fields.UniversityName = profile.University
		case errors.Is(err, userModel.ErrUserNotFound):
		default:
			return err
		}

		if err := tx.circles.UpdateLeader(ctx, circleID, fields); err != nil {
			return err
		}
		if _, err := tx.members.SetRole(ctx, circleID, nomineeID, model.RoleLeader, actorID); err != nil {
			return err
		}
		if err := tx.users.AddAdminCircle(ctx, nomineeID, circleID); err != nil {
			return err
		}
		if _, err := tx.members.SetRole(ctx, circleID, actorID, model.RoleMember, actorID); err != nil {
			return err
		}
		return tx.users.RemoveAdminCircle(ctx, actorID, circleID)
	})
	if err != nil {
		if !errors.Is(err, model.ErrNotLeader) && !errors.Is(err, model.ErrSelfTarget) &&
			!errors.Is(err, model.ErrMemberNotFound) && !errors.Is(err, circleModel.ErrCircleNotFound) {
			s.logger.Errorw("TransferLeadership failed", "circle_id", circleID, "nominee_id", nomineeID, "error", err)
		}
		return nil, err
	}

	for _, n := range []notify.Notification{
		{
			UserID: nomineeID,
			Title:  "You are now the leader",
			Body:   "Leadership of the circle has been transferred to you.",
		},
		{
			UserID: actorID,
			Title:  "Leadership transferred",
			Body:   "You have handed over leadership of the circle.",
		},
	} {
		n.CircleID = circleID
		n.Kind = notify.KindLeadershipTransferred
		s.notifier.Notify(n)
	}

	s.logger.Infow("TransferLeadership completed", "circle_id", circleID, "leader_id", nomineeID, "former_leader_id", actorID)
	return &model.TransferLeadershipResponse{
		CircleID:       circleID,
		LeaderID:       nomineeID,
		FormerLeaderID: actorID,
	}, nil
}

func (s *service) publishMemberCount(ctx context.Context, circleID string) {
	count, err := s.repo.Count(ctx, circleID)
	if err != nil {
		s.logger.Warnw("publishMemberCount failed", "circle_id", circleID, "error", err)
		return
	}
	s.publisher.Publish(events.Event{CircleID: circleID, Kind: events.KindMemberCount, Value: count})
}
