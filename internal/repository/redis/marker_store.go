package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"inquiry-backend/internal/domain"

	goredis "github.com/redis/go-redis/v9"
)

const markerKeyPrefix = "inq:marker:"

type markerStore struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewMarkerStore creates a marker store; markers expire after ttl
func NewMarkerStore(client *goredis.Client, ttl time.Duration) domain.MarkerStore {
	return &markerStore{client: client, ttl: ttl}
}

func (s *markerStore) Mark(ctx context.Context, clientID string, at time.Time) error {
	v := strconv.FormatInt(at.UnixMilli(), 10)
	if err := s.client.Set(ctx, markerKeyPrefix+clientID, v, s.ttl).Err(); err != nil {
		return fmt.Errorf("set marker: %w", err)
	}
	return nil
}

func (s *markerStore) Check(ctx context.Context, clientID string) (domain.Marker, error) {
	v, err := s.client.Get(ctx, markerKeyPrefix+clientID).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return domain.Marker{}, nil
		}
		return domain.Marker{}, fmt.Errorf("get marker: %w", err)
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		// unreadable timestamp still means the form was submitted
		return domain.Marker{Submitted: true}, nil
	}
	return domain.Marker{Submitted: true, At: time.UnixMilli(ms)}, nil
}

func (s *markerStore) Clear(ctx context.Context, clientID string) error {
	return s.client.Del(ctx, markerKeyPrefix+clientID).Err()
}
