package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	circleModel "github.com/festy23/kurukatsu/internal/circle/model"
	circleRepo "github.com/festy23/kurukatsu/internal/circle/repository"
	memberModel "github.com/festy23/kurukatsu/internal/member/model"
	memberRepo "github.com/festy23/kurukatsu/internal/member/repository"
	"github.com/festy23/kurukatsu/internal/testutil"
)

func TestService_GetCircleStatistics(t *testing.T) {
	db := testutil.NewDB(t)
	logger := testutil.Logger(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, circleRepo.New(db, logger).Create(ctx, &circleModel.Circle{
		CircleID: "C1", Name: "Tennis", LeaderID: "U1", CreatedAt: now, UpdatedAt: now,
	}))
	members := memberRepo.New(db, logger)
	for userID, role := range map[string]memberModel.Role{
		"U1": memberModel.RoleLeader,
		"U2": memberModel.RoleAdmin,
		"U3": memberModel.RoleMember,
	} {
		_, err := members.SetRole(ctx, "C1", userID, role, "seed")
		require.NoError(t, err)
	}

	svc := New(db, logger)

	tests := []struct {
		name     string
		circleID string
		actorID  string
		wantErr  error
	}{
		{name: "leader", circleID: "C1", actorID: "U1"},
		{name: "admin", circleID: "C1", actorID: "U2"},
		{name: "member denied", circleID: "C1", actorID: "U3", wantErr: memberModel.ErrPermissionDenied},
		{name: "outsider denied", circleID: "C1", actorID: "U9", wantErr: memberModel.ErrPermissionDenied},
		{name: "unknown circle", circleID: "C404", actorID: "U1", wantErr: circleModel.ErrCircleNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.GetCircleStatistics(ctx, tt.circleID, tt.actorID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "C1", resp.Statistics.CircleID)
			assert.Equal(t, 3, resp.Statistics.Members.Total)
			assert.Equal(t, 1, resp.Statistics.Members.Leaders)
			assert.Equal(t, 0, resp.Statistics.JoinRequests.Total)
		})
	}
}
