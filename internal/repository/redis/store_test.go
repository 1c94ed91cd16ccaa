package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"inquiry-backend/internal/domain"
	repo "inquiry-backend/internal/repository/redis"
	"inquiry-backend/pkg/redis"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests need a live server: REDIS_TEST_URL=redis://localhost:6379/15
func connect(t *testing.T) context.Context {
	t.Helper()
	if os.Getenv("REDIS_TEST_URL") == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	return context.Background()
}

func TestRedisStores(t *testing.T) {
	ctx := connect(t)
	client, err := redis.Connect(ctx, redis.Config{URL: os.Getenv("REDIS_TEST_URL")})
	require.NoError(t, err)
	defer client.Close()

	t.Run("Should round-trip attempts", func(t *testing.T) {
		store := repo.NewAttemptStore(client, time.Minute, time.Minute)
		a := &domain.Attempt{ID: uuid.NewString(), State: domain.StateFailed, Input: domain.Inquiry{Name: "An"},
			LastFailure: &domain.Failure{Kind: domain.FailureDispatch, Detail: "boom"}}
		require.NoError(t, store.Save(ctx, a))

		got, err := store.Load(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, a.Input, got.Input)
		assert.Equal(t, "boom", got.LastFailure.Detail)

		require.NoError(t, store.Delete(ctx, a.ID))
		_, err = store.Load(ctx, a.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Should hold the attempt lock exclusively", func(t *testing.T) {
		store := repo.NewAttemptStore(client, time.Minute, time.Minute)
		id := uuid.NewString()

		unlock, err := store.Lock(ctx, id)
		require.NoError(t, err)
		_, err = store.Lock(ctx, id)
		assert.ErrorIs(t, err, domain.ErrDispatchInFlight)

		unlock()
		unlock2, err := store.Lock(ctx, id)
		require.NoError(t, err)
		unlock2()
	})

	t.Run("Should mark, check and clear", func(t *testing.T) {
		store := repo.NewMarkerStore(client, time.Minute)
		clientID := uuid.NewString()
		at := time.Now().Truncate(time.Millisecond)

		require.NoError(t, store.Mark(ctx, clientID, at))
		m, err := store.Check(ctx, clientID)
		require.NoError(t, err)
		assert.True(t, m.Submitted)
		assert.True(t, at.Equal(m.At))

		require.NoError(t, store.Clear(ctx, clientID))
		m, err = store.Check(ctx, clientID)
		require.NoError(t, err)
		assert.False(t, m.Submitted)
	})

	t.Run("Should block after repeated login failures", func(t *testing.T) {
		guard := repo.NewLoginGuard(client, domain.LoginGuardConfig{MaxAttempts: 2, Window: time.Minute, BlockFor: time.Minute})
		user, ip := uuid.NewString(), uuid.NewString()

		blocked, attempts, err := guard.RecordFailure(ctx, user, ip)
		require.NoError(t, err)
		assert.False(t, blocked)
		assert.Equal(t, 1, attempts)

		blocked, _, err = guard.RecordFailure(ctx, user, ip)
		require.NoError(t, err)
		assert.True(t, blocked)

		isBlocked, err := guard.IsBlocked(ctx, user, "")
		require.NoError(t, err)
		assert.True(t, isBlocked)

		require.NoError(t, guard.Clear(ctx, user, ip))
	})
}
