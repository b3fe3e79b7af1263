package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festy23/kurukatsu/internal/testutil"
	"github.com/festy23/kurukatsu/internal/user/model"
)

func setupRepo(t *testing.T) Repository {
	t.Helper()
	return New(testutil.NewDB(t), testutil.Logger(t))
}

func TestRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		repo := setupRepo(t)

		user, err := repo.GetByID(ctx, "ghost")
		assert.ErrorIs(t, err, model.ErrUserNotFound)
		assert.Nil(t, user)
	})

	t.Run("populates circle lists", func(t *testing.T) {
		repo := setupRepo(t)
		_, err := repo.Upsert(ctx, &model.User{UserID: "u1", Name: "Taro"})
		require.NoError(t, err)
		require.NoError(t, repo.AddJoinedCircle(ctx, "u1", "c1"))
		require.NoError(t, repo.AddJoinedCircle(ctx, "u1", "c2"))
		require.NoError(t, repo.AddAdminCircle(ctx, "u1", "c2"))

		user, err := repo.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "Taro", user.Name)
		assert.ElementsMatch(t, []string{"c1", "c2"}, user.JoinedCircleIDs)
		assert.Equal(t, []string{"c2"}, user.AdminCircleIDs)
	})
}

func TestRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	created, err := repo.Upsert(ctx, &model.User{
		UserID:     "u1",
		Name:       "Taro",
		Email:      "taro@example.ac.jp",
		University: "Tokyo University",
		Grade:      "2",
	})
	require.NoError(t, err)
	assert.Equal(t, "Taro", created.Name)
	assert.Empty(t, created.JoinedCircleIDs)

	updated, err := repo.Upsert(ctx, &model.User{
		UserID:     "u1",
		Name:       "Taro Yamada",
		Email:      "taro@example.ac.jp",
		University: "Kyoto University",
		Grade:      "3",
	})
	require.NoError(t, err)
	assert.Equal(t, "Taro Yamada", updated.Name)
	assert.Equal(t, "Kyoto University", updated.University)
	assert.Equal(t, "3", updated.Grade)
}

func TestRepository_LinksAreIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	require.NoError(t, repo.AddJoinedCircle(ctx, "u1", "c1"))
	require.NoError(t, repo.AddJoinedCircle(ctx, "u1", "c1"))
	require.NoError(t, repo.AddAdminCircle(ctx, "u1", "c1"))
	require.NoError(t, repo.AddAdminCircle(ctx, "u1", "c1"))

	joined, err := repo.CircleIDs(ctx, "u1", model.LinkJoined)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, joined)

	require.NoError(t, repo.RemoveAdminCircle(ctx, "u1", "c1"))
	require.NoError(t, repo.RemoveAdminCircle(ctx, "u1", "c1"))

	admin, err := repo.CircleIDs(ctx, "u1", model.LinkAdmin)
	require.NoError(t, err)
	assert.Empty(t, admin)

	joined, err = repo.CircleIDs(ctx, "u1", model.LinkJoined)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, joined, "removing the admin link keeps the joined link")

	require.NoError(t, repo.RemoveJoinedCircle(ctx, "u1", "c1"))
	joined, err = repo.CircleIDs(ctx, "u1", model.LinkJoined)
	require.NoError(t, err)
	assert.Empty(t, joined)
}
