package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	joinRequestModel "github.com/festy23/kurukatsu/internal/joinrequest/model"
	memberModel "github.com/festy23/kurukatsu/internal/member/model"
	"github.com/festy23/kurukatsu/internal/testutil"
)

func seedMember(t *testing.T, db *gorm.DB, circleID, userID string, role memberModel.Role) {
	t.Helper()
	now := time.Now()
	require.NoError(t, db.Create(&memberModel.Member{
		CircleID: circleID, UserID: userID, Role: role, JoinedAt: now, AssignedAt: now,
	}).Error)
}

func seedRequest(t *testing.T, db *gorm.DB, circleID, requestID string, status joinRequestModel.Status) {
	t.Helper()
	require.NoError(t, db.Create(&joinRequestModel.JoinRequest{
		RequestID:   requestID,
		CircleID:    circleID,
		UserID:      "applicant-" + requestID,
		Status:      status,
		RequestedAt: time.Now(),
	}).Error)
}

func TestRepository_GetMemberStatistics(t *testing.T) {
	db := testutil.NewDB(t)
	repo := New(db, testutil.Logger(t))
	ctx := context.Background()

	t.Run("empty circle", func(t *testing.T) {
		stats, err := repo.GetMemberStatistics(ctx, "C1")
		require.NoError(t, err)
		assert.Equal(t, 0, stats.Total)
	})

	seedMember(t, db, "C1", "U1", memberModel.RoleLeader)
	seedMember(t, db, "C1", "U2", memberModel.RoleAdmin)
	seedMember(t, db, "C1", "U3", memberModel.RoleMember)
	seedMember(t, db, "C1", "U4", memberModel.RoleMember)
	seedMember(t, db, "C2", "U5", memberModel.RoleLeader)

	t.Run("counts by role", func(t *testing.T) {
		stats, err := repo.GetMemberStatistics(ctx, "C1")
		require.NoError(t, err)
		assert.Equal(t, 4, stats.Total)
		assert.Equal(t, 1, stats.Leaders)
		assert.Equal(t, 1, stats.Admins)
		assert.Equal(t, 2, stats.Members)
	})
}

func TestRepository_GetJoinRequestStatistics(t *testing.T) {
	db := testutil.NewDB(t)
	repo := New(db, testutil.Logger(t))
	ctx := context.Background()

	t.Run("no requests", func(t *testing.T) {
		stats, err := repo.GetJoinRequestStatistics(ctx, "C1")
		require.NoError(t, err)
		assert.Equal(t, 0, stats.Total)
		assert.Zero(t, stats.ApprovalRate)
	})

	seedRequest(t, db, "C1", "R1", joinRequestModel.StatusPending)
	seedRequest(t, db, "C1", "R2", joinRequestModel.StatusApproved)
	seedRequest(t, db, "C1", "R3", joinRequestModel.StatusApproved)
	seedRequest(t, db, "C1", "R4", joinRequestModel.StatusApproved)
	seedRequest(t, db, "C1", "R5", joinRequestModel.StatusRejected)
	seedRequest(t, db, "C1", "R6", joinRequestModel.StatusWithdrawn)
	seedRequest(t, db, "C2", "R7", joinRequestModel.StatusRejected)

	t.Run("counts by status", func(t *testing.T) {
		stats, err := repo.GetJoinRequestStatistics(ctx, "C1")
		require.NoError(t, err)
		assert.Equal(t, 6, stats.Total)
		assert.Equal(t, 1, stats.Pending)
		assert.Equal(t, 3, stats.Approved)
		assert.Equal(t, 1, stats.Rejected)
		assert.Equal(t, 1, stats.Withdrawn)
		assert.InDelta(t, 0.75, stats.ApprovalRate, 1e-9)
	})
}
