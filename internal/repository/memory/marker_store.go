package memory

import (
	"context"
	"sync"
	"time"

	"inquiry-backend/internal/domain"
)

// MarkerStore keeps "just submitted" markers per client
type MarkerStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	markers map[string]time.Time
	now     func() time.Time
}

// NewMarkerStore creates a marker store whose markers are fresh for ttl
func NewMarkerStore(ttl time.Duration) *MarkerStore {
	return &MarkerStore{
		ttl:     ttl,
		markers: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (s *MarkerStore) Mark(ctx context.Context, clientID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.markers[clientID] = at
	return nil
}

func (s *MarkerStore) Check(ctx context.Context, clientID string) (domain.Marker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	at, ok := s.markers[clientID]
	if !ok {
		return domain.Marker{}, nil
	}
	if s.now().Sub(at) >= s.ttl {
		delete(s.markers, clientID)
		return domain.Marker{}, nil
	}
	return domain.Marker{Submitted: true, At: at}, nil
}

func (s *MarkerStore) Clear(ctx context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.markers, clientID)
	return nil
}

// Sweep drops markers that were never consumed
func (s *MarkerStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, at := range s.markers {
		if now.Sub(at) >= s.ttl {
			delete(s.markers, id)
		}
	}
}
