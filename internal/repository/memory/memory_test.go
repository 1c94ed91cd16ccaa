package memory

import (
	"context"
	"testing"
	"time"

	"inquiry-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	store := NewAttemptStore(10 * time.Minute)
	store.now = func() time.Time { return now }

	t.Run("Should return copies", func(t *testing.T) {
		a := &domain.Attempt{ID: "a1", State: domain.StateFailed, LastFailure: &domain.Failure{Detail: "x"}}
		require.NoError(t, store.Save(ctx, a))
		a.LastFailure.Detail = "mutated"

		got, err := store.Load(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, "x", got.LastFailure.Detail)
	})

	t.Run("Should expire attempts after the TTL", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, &domain.Attempt{ID: "a2"}))
		now = now.Add(11 * time.Minute)

		_, err := store.Load(ctx, "a2")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Should sweep expired entries", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, &domain.Attempt{ID: "a3"}))
		now = now.Add(time.Hour)
		store.Sweep()
		assert.Empty(t, store.entries)
	})

	t.Run("Should allow one lock holder at a time", func(t *testing.T) {
		unlock, err := store.Lock(ctx, "a4")
		require.NoError(t, err)

		_, err = store.Lock(ctx, "a4")
		assert.ErrorIs(t, err, domain.ErrDispatchInFlight)

		unlock()
		unlock() // second call is a no-op

		unlock, err = store.Lock(ctx, "a4")
		require.NoError(t, err)
		unlock()
	})
}

func TestMarkerStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	store := NewMarkerStore(time.Minute)
	store.now = func() time.Time { return now }

	t.Run("Should report a fresh marker", func(t *testing.T) {
		require.NoError(t, store.Mark(ctx, "c1", now))
		now = now.Add(30 * time.Second)

		m, err := store.Check(ctx, "c1")
		require.NoError(t, err)
		assert.True(t, m.Submitted)
	})

	t.Run("Should ignore a stale marker", func(t *testing.T) {
		now = now.Add(time.Minute)
		m, err := store.Check(ctx, "c1")
		require.NoError(t, err)
		assert.False(t, m.Submitted)
	})

	t.Run("Should clear markers", func(t *testing.T) {
		require.NoError(t, store.Mark(ctx, "c2", now))
		require.NoError(t, store.Clear(ctx, "c2"))
		m, err := store.Check(ctx, "c2")
		require.NoError(t, err)
		assert.False(t, m.Submitted)
	})

	t.Run("Should sweep markers that were never checked", func(t *testing.T) {
		require.NoError(t, store.Mark(ctx, "c3", now))
		require.NoError(t, store.Mark(ctx, "c4", now.Add(-2*time.Minute)))
		store.Sweep()
		assert.Len(t, store.markers, 1)
		assert.Contains(t, store.markers, "c3")
	})
}

func TestStartJanitor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	markers := NewMarkerStore(time.Minute)
	markers.now = func() time.Time { return now }
	require.NoError(t, markers.Mark(ctx, "c1", now.Add(-time.Hour)))

	guard := NewLoginGuard(domain.LoginGuardConfig{MaxAttempts: 1, Window: time.Minute, BlockFor: time.Minute})
	guard.now = func() time.Time { return now.Add(-time.Hour) }
	_, _, err := guard.RecordFailure(ctx, "staff", "10.0.0.1")
	require.NoError(t, err)
	guard.now = func() time.Time { return now }

	StartJanitor(ctx, 10*time.Millisecond, markers, guard)

	assert.Eventually(t, func() bool {
		markers.mu.Lock()
		defer markers.mu.Unlock()
		guard.mu.Lock()
		defer guard.mu.Unlock()
		return len(markers.markers) == 0 && len(guard.failures) == 0 && len(guard.blocks) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestInquiryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInquiryRepository(2)

	for _, id := range []string{"x", "y", "z"} {
		require.NoError(t, repo.Create(ctx, &domain.ArchivedInquiry{AttemptID: id}))
	}

	t.Run("Should keep only the newest entries", func(t *testing.T) {
		items, total, err := repo.List(ctx, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, items, 2)
		assert.Equal(t, "z", items[0].AttemptID)
		assert.Equal(t, "y", items[1].AttemptID)
	})

	t.Run("Should not archive an attempt twice", func(t *testing.T) {
		inq := &domain.ArchivedInquiry{AttemptID: "z"}
		require.NoError(t, repo.Create(ctx, inq))
		assert.Equal(t, int64(3), inq.ID)
		_, total, _ := repo.List(ctx, 10, 0)
		assert.Equal(t, int64(2), total)
	})

	t.Run("Should page with offset", func(t *testing.T) {
		items, _, err := repo.List(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "y", items[0].AttemptID)
	})
}

func TestLoginGuard(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	guard := NewLoginGuard(domain.LoginGuardConfig{MaxAttempts: 2, Window: time.Minute, BlockFor: 5 * time.Minute})
	guard.now = func() time.Time { return now }

	blocked, attempts, err := guard.RecordFailure(ctx, "staff", "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, blocked)
	assert.Equal(t, 1, attempts)

	t.Run("Should reset the count once the window passes", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		blocked, attempts, err := guard.RecordFailure(ctx, "staff", "10.0.0.1")
		require.NoError(t, err)
		assert.False(t, blocked)
		assert.Equal(t, 1, attempts)
	})

	t.Run("Should block the user and the IP", func(t *testing.T) {
		blocked, _, err := guard.RecordFailure(ctx, "staff", "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, blocked)

		isBlocked, _ := guard.IsBlocked(ctx, "staff", "")
		assert.True(t, isBlocked)
		isBlocked, _ = guard.IsBlocked(ctx, "other", "10.0.0.1")
		assert.True(t, isBlocked)
	})

	t.Run("Should lift the block after BlockFor", func(t *testing.T) {
		now = now.Add(6 * time.Minute)
		isBlocked, _ := guard.IsBlocked(ctx, "staff", "10.0.0.1")
		assert.False(t, isBlocked)
	})

	t.Run("Should clear counters", func(t *testing.T) {
		_, _, _ = guard.RecordFailure(ctx, "staff", "10.0.0.1")
		require.NoError(t, guard.Clear(ctx, "staff", "10.0.0.1"))
		blocked, attempts, _ := guard.RecordFailure(ctx, "staff", "10.0.0.1")
		assert.False(t, blocked)
		assert.Equal(t, 1, attempts)
	})
}
