// Package redis stores attempts and submission markers in Redis so several
// API instances can share one form session.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inquiry-backend/internal/domain"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const (
	attemptKeyPrefix = "inq:attempt:"
	lockKeyPrefix    = "inq:lock:"
)

// unlockScript deletes the lock only if it still holds our token
const unlockScript = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`

type attemptStore struct {
	client  *goredis.Client
	ttl     time.Duration
	lockTTL time.Duration
}

// NewAttemptStore creates a Redis attempt store. lockTTL must exceed the longest dispatch.
func NewAttemptStore(client *goredis.Client, ttl, lockTTL time.Duration) domain.AttemptStore {
	return &attemptStore{client: client, ttl: ttl, lockTTL: lockTTL}
}

func (s *attemptStore) Load(ctx context.Context, id string) (*domain.Attempt, error) {
	raw, err := s.client.Get(ctx, attemptKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("load attempt: %w", err)
	}

	var a domain.Attempt
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode attempt: %w", err)
	}
	return &a, nil
}

func (s *attemptStore) Save(ctx context.Context, a *domain.Attempt) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode attempt: %w", err)
	}
	if err := s.client.Set(ctx, attemptKeyPrefix+a.ID, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save attempt: %w", err)
	}
	return nil
}

func (s *attemptStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, attemptKeyPrefix+id).Err()
}

func (s *attemptStore) Lock(ctx context.Context, id string) (func(), error) {
	key := lockKeyPrefix + id
	token := uuid.NewString()

	ok, err := s.client.SetNX(ctx, key, token, s.lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("lock attempt: %w", err)
	}
	if !ok {
		return nil, domain.ErrDispatchInFlight
	}

	return func() {
		// the request may already be cancelled; release regardless
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = s.client.Eval(rctx, unlockScript, []string{key}, token).Err()
	}, nil
}
