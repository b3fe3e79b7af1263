package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festy23/kurukatsu/internal/joinrequest/model"
	"github.com/festy23/kurukatsu/internal/testutil"
)

func setupRepo(t *testing.T) Repository {
	t.Helper()
	return New(testutil.NewDB(t), testutil.Logger(t))
}

func pending(id, circleID, userID string, at time.Time) *model.JoinRequest {
	return &model.JoinRequest{
		RequestID:   id,
		CircleID:    circleID,
		UserID:      userID,
		Name:        "Taro",
		University:  "Tokyo University",
		Grade:       "1",
		Status:      model.StatusPending,
		RequestedAt: at,
	}
}

func TestRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate pending request", func(t *testing.T) {
		repo := setupRepo(t)
		require.NoError(t, repo.Create(ctx, pending("r1", "c1", "u2", time.Now())))

		err := repo.Create(ctx, pending("r2", "c1", "u2", time.Now()))
		assert.ErrorIs(t, err, model.ErrJoinRequestExists)
	})

	t.Run("new request after decision", func(t *testing.T) {
		repo := setupRepo(t)
		require.NoError(t, repo.Create(ctx, pending("r1", "c1", "u2", time.Now())))
		_, err := repo.Decide(ctx, "c1", "r1", model.StatusRejected, "u1")
		require.NoError(t, err)

		assert.NoError(t, repo.Create(ctx, pending("r2", "c1", "u2", time.Now())))
	})

	t.Run("same user in different circles", func(t *testing.T) {
		repo := setupRepo(t)
		require.NoError(t, repo.Create(ctx, pending("r1", "c1", "u2", time.Now())))
		assert.NoError(t, repo.Create(ctx, pending("r2", "c2", "u2", time.Now())))
	})
}

func TestRepository_GetAndFindPending(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	require.NoError(t, repo.Create(ctx, pending("r1", "c1", "u2", time.Now())))

	request, err := repo.Get(ctx, "c1", "r1")
	require.NoError(t, err)
	assert.Equal(t, "Taro", request.Name)

	_, err = repo.Get(ctx, "c2", "r1")
	assert.ErrorIs(t, err, model.ErrJoinRequestNotFound, "request ids are scoped to their circle")

	found, err := repo.FindPending(ctx, "c1", "u2")
	require.NoError(t, err)
	assert.Equal(t, "r1", found.RequestID)

	_, err = repo.FindPending(ctx, "c1", "u3")
	assert.ErrorIs(t, err, model.ErrJoinRequestNotFound)
}

func TestRepository_ListAndCountPending(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	base := time.Now()

	require.NoError(t, repo.Create(ctx, pending("r-late", "c1", "u3", base.Add(time.Minute))))
	require.NoError(t, repo.Create(ctx, pending("r-early", "c1", "u2", base)))
	require.NoError(t, repo.Create(ctx, pending("r-decided", "c1", "u4", base)))
	require.NoError(t, repo.Create(ctx, pending("r-other", "c2", "u2", base)))
	_, err := repo.Decide(ctx, "c1", "r-decided", model.StatusApproved, "u1")
	require.NoError(t, err)

	requests, err := repo.ListPending(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, "r-early", requests[0].RequestID)
	assert.Equal(t, "r-late", requests[1].RequestID)

	count, err := repo.CountPending(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRepository_Decide(t *testing.T) {
	ctx := context.Background()

	t.Run("records audit fields", func(t *testing.T) {
		repo := setupRepo(t)
		require.NoError(t, repo.Create(ctx, pending("r1", "c1", "u2", time.Now())))

		decided, err := repo.Decide(ctx, "c1", "r1", model.StatusApproved, "u1")
		require.NoError(t, err)
		assert.Equal(t, model.StatusApproved, decided.Status)
		assert.Equal(t, "u1", decided.DecidedBy)
		require.NotNil(t, decided.DecidedAt)
	})

	t.Run("second decision fails", func(t *testing.T) {
		repo := setupRepo(t)
		require.NoError(t, repo.Create(ctx, pending("r1", "c1", "u2", time.Now())))
		_, err := repo.Decide(ctx, "c1", "r1", model.StatusApproved, "u1")
		require.NoError(t, err)

		_, err = repo.Decide(ctx, "c1", "r1", model.StatusRejected, "u1")
		assert.ErrorIs(t, err, model.ErrJoinRequestNotPending)

		request, err := repo.Get(ctx, "c1", "r1")
		require.NoError(t, err)
		assert.Equal(t, model.StatusApproved, request.Status)
	})

	t.Run("decision must end the request", func(t *testing.T) {
		repo := setupRepo(t)
		require.NoError(t, repo.Create(ctx, pending("r1", "c1", "u2", time.Now())))

		for _, status := range []model.Status{model.StatusPending, "archived"} {
			_, err := repo.Decide(ctx, "c1", "r1", status, "u1")
			assert.ErrorIs(t, err, model.ErrInvalidDecision, status)
		}

		request, err := repo.Get(ctx, "c1", "r1")
		require.NoError(t, err)
		assert.Equal(t, model.StatusPending, request.Status)
		assert.Nil(t, request.DecidedAt)
	})

	t.Run("unknown request", func(t *testing.T) {
		repo := setupRepo(t)

		_, err := repo.Decide(ctx, "c1", "missing", model.StatusApproved, "u1")
		assert.ErrorIs(t, err, model.ErrJoinRequestNotFound)
	})
}
