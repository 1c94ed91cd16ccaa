// Package memory holds single-process stores used when Redis or Postgres are not configured.
package memory

import (
	"context"
	"sync"
	"time"

	"inquiry-backend/internal/domain"
)

type attemptEntry struct {
	attempt   domain.Attempt
	expiresAt time.Time
}

// AttemptStore keeps attempts in a map with a sliding TTL
type AttemptStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]attemptEntry
	locks   map[string]struct{}
	now     func() time.Time
}

// NewAttemptStore creates an in-memory attempt store
func NewAttemptStore(ttl time.Duration) *AttemptStore {
	return &AttemptStore{
		ttl:     ttl,
		entries: make(map[string]attemptEntry),
		locks:   make(map[string]struct{}),
		now:     time.Now,
	}
}

func cloneAttempt(a domain.Attempt) domain.Attempt {
	if a.LastFailure != nil {
		f := *a.LastFailure
		a.LastFailure = &f
	}
	return a
}

func (s *AttemptStore) Load(ctx context.Context, id string) (*domain.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || s.now().After(e.expiresAt) {
		delete(s.entries, id)
		return nil, domain.ErrNotFound
	}
	a := cloneAttempt(e.attempt)
	return &a, nil
}

func (s *AttemptStore) Save(ctx context.Context, a *domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[a.ID] = attemptEntry{attempt: cloneAttempt(*a), expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *AttemptStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
	return nil
}

func (s *AttemptStore) Lock(ctx context.Context, id string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, held := s.locks[id]; held {
		return nil, domain.ErrDispatchInFlight
	}
	s.locks[id] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.locks, id)
			s.mu.Unlock()
		})
	}, nil
}

// Sweep drops expired attempts
func (s *AttemptStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}

// Sweeper drops expired entries from an in-memory store
type Sweeper interface {
	Sweep()
}

// StartJanitor sweeps the given stores every interval until ctx is done
func StartJanitor(ctx context.Context, interval time.Duration, stores ...Sweeper) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, s := range stores {
					s.Sweep()
				}
			}
		}
	}()
}
