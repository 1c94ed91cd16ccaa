package redis

import (
	"context"
	"errors"
	"fmt"

	"inquiry-backend/internal/domain"

	goredis "github.com/redis/go-redis/v9"
)

const (
	failLoginUserPrefix    = "inq:login:fail:user:"
	failLoginIPPrefix      = "inq:login:fail:ip:"
	blockedLoginUserPrefix = "inq:login:blocked:user:"
	blockedLoginIPPrefix   = "inq:login:blocked:ip:"
)

// KEYS[1] = counter key, ARGV[1] = TTL in seconds
// Returns the count after increment
const incrWithTTLScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`

type loginGuard struct {
	client *goredis.Client
	cfg    domain.LoginGuardConfig
}

// NewLoginGuard creates a lockout shared by every instance using client
func NewLoginGuard(client *goredis.Client, cfg domain.LoginGuardConfig) domain.LoginGuard {
	def := domain.DefaultLoginGuardConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.BlockFor <= 0 {
		cfg.BlockFor = def.BlockFor
	}
	return &loginGuard{client: client, cfg: cfg}
}

func (g *loginGuard) IsBlocked(ctx context.Context, username, ip string) (bool, error) {
	keys := []string{blockedLoginUserPrefix + username}
	if ip != "" {
		keys = append(keys, blockedLoginIPPrefix+ip)
	}
	n, err := g.client.Exists(ctx, keys...).Result()
	if err != nil {
		return false, fmt.Errorf("check login block: %w", err)
	}
	return n > 0, nil
}

func (g *loginGuard) RecordFailure(ctx context.Context, username, ip string) (bool, int, error) {
	ttl := int(g.cfg.Window.Seconds())

	count, err := g.increment(ctx, failLoginUserPrefix+username, ttl)
	if err != nil {
		return false, 0, fmt.Errorf("count login failure: %w", err)
	}
	ipCount := 0
	if ip != "" {
		// best effort
		ipCount, _ = g.increment(ctx, failLoginIPPrefix+ip, ttl)
	}

	if count < g.cfg.MaxAttempts && ipCount < g.cfg.MaxAttempts {
		return false, count, nil
	}

	pipe := g.client.TxPipeline()
	if count >= g.cfg.MaxAttempts {
		pipe.Set(ctx, blockedLoginUserPrefix+username, "1", g.cfg.BlockFor)
	}
	if ipCount >= g.cfg.MaxAttempts {
		pipe.Set(ctx, blockedLoginIPPrefix+ip, "1", g.cfg.BlockFor)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return true, count, fmt.Errorf("create login block: %w", err)
	}
	return true, count, nil
}

func (g *loginGuard) increment(ctx context.Context, key string, ttlSeconds int) (int, error) {
	result, err := g.client.Eval(ctx, incrWithTTLScript, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, err
	}
	count, ok := result.(int64)
	if !ok {
		return 0, errors.New("unexpected result type from Lua script")
	}
	return int(count), nil
}

func (g *loginGuard) Clear(ctx context.Context, username, ip string) error {
	keys := []string{failLoginUserPrefix + username}
	if ip != "" {
		keys = append(keys, failLoginIPPrefix+ip)
	}
	if err := g.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("clear login failures: %w", err)
	}
	return nil
}
