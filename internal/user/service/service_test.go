package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festy23/kurukatsu/internal/testutil"
	"github.com/festy23/kurukatsu/internal/user/model"
	"github.com/festy23/kurukatsu/internal/user/repository"
)

func setupService(t *testing.T) (Service, repository.Repository) {
	db := testutil.NewDB(t)
	logger := testutil.Logger(t)
	repo := repository.New(db, logger)
	return New(repo, logger), repo
}

func TestService_UpsertProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and sanitises", func(t *testing.T) {
		svc, _ := setupService(t)

		resp, err := svc.UpsertProfile(ctx, "U1", &model.UpsertProfileRequest{
			Name:       "<b>Taro</b><script>alert(1)</script>",
			Email:      "taro@example.com",
			University: "Tokyo &amp; Co",
			Grade:      "2",
		})
		require.NoError(t, err)
		assert.Equal(t, "Taro", resp.User.Name)
		assert.Equal(t, "Tokyo & Co", resp.User.University)
		assert.Equal(t, "taro@example.com", resp.User.Email)
		assert.Empty(t, resp.User.JoinedCircleIDs)
		assert.NotNil(t, resp.User.JoinedCircleIDs)
	})

	t.Run("updates and keeps circle links", func(t *testing.T) {
		svc, repo := setupService(t)

		_, err := svc.UpsertProfile(ctx, "U1", &model.UpsertProfileRequest{Name: "Taro"})
		require.NoError(t, err)
		require.NoError(t, repo.AddJoinedCircle(ctx, "U1", "C1"))

		resp, err := svc.UpsertProfile(ctx, "U1", &model.UpsertProfileRequest{Name: "Taro Yamada", Grade: "3"})
		require.NoError(t, err)
		assert.Equal(t, "Taro Yamada", resp.User.Name)
		assert.Equal(t, "3", resp.User.Grade)
		assert.Equal(t, []string{"C1"}, resp.User.JoinedCircleIDs)
	})

	t.Run("name of only markup", func(t *testing.T) {
		svc, _ := setupService(t)

		_, err := svc.UpsertProfile(ctx, "U1", &model.UpsertProfileRequest{Name: "<i></i>"})
		assert.ErrorIs(t, err, model.ErrInvalidName)
	})

	t.Run("empty user id", func(t *testing.T) {
		svc, _ := setupService(t)

		_, err := svc.UpsertProfile(ctx, "", &model.UpsertProfileRequest{Name: "Taro"})
		assert.ErrorIs(t, err, model.ErrInvalidUserID)
	})
}

func TestService_GetProfile(t *testing.T) {
	ctx := context.Background()
	svc, repo := setupService(t)

	_, err := svc.GetProfile(ctx, "U1")
	assert.ErrorIs(t, err, model.ErrUserNotFound)

	_, err = svc.GetProfile(ctx, "")
	assert.ErrorIs(t, err, model.ErrInvalidUserID)

	_, err = svc.UpsertProfile(ctx, "U1", &model.UpsertProfileRequest{Name: "Taro"})
	require.NoError(t, err)
	require.NoError(t, repo.AddJoinedCircle(ctx, "U1", "C1"))
	require.NoError(t, repo.AddAdminCircle(ctx, "U1", "C1"))

	resp, err := svc.GetProfile(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, []string{"C1"}, resp.User.JoinedCircleIDs)
	assert.Equal(t, []string{"C1"}, resp.User.AdminCircleIDs)
}

func TestService_GetProfile_LinksWithoutProfile(t *testing.T) {
	ctx := context.Background()
	svc, repo := setupService(t)

	require.NoError(t, repo.AddJoinedCircle(ctx, "U2", "C1"))

	resp, err := svc.GetProfile(ctx, "U2")
	require.NoError(t, err)
	assert.Equal(t, "U2", resp.User.UserID)
	assert.Empty(t, resp.User.Name)
	assert.Equal(t, []string{"C1"}, resp.User.JoinedCircleIDs)
	assert.Empty(t, resp.User.AdminCircleIDs)

	require.NoError(t, repo.RemoveJoinedCircle(ctx, "U2", "C1"))
	_, err = svc.GetProfile(ctx, "U2")
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}
