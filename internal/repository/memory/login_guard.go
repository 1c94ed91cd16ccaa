package memory

import (
	"context"
	"sync"
	"time"

	"inquiry-backend/internal/domain"
)

type failureWindow struct {
	count   int
	expires time.Time
}

// LoginGuard is the single-instance lockout used when Redis is not configured
type LoginGuard struct {
	mu       sync.Mutex
	cfg      domain.LoginGuardConfig
	failures map[string]failureWindow
	blocks   map[string]time.Time
	now      func() time.Time
}

func NewLoginGuard(cfg domain.LoginGuardConfig) *LoginGuard {
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
	return &LoginGuard{
		cfg:      cfg,
		failures: make(map[string]failureWindow),
		blocks:   make(map[string]time.Time),
		now:      time.Now,
	}
}

func guardKeys(username, ip string) []string {
	keys := []string{"user:" + username}
	if ip != "" {
		keys = append(keys, "ip:"+ip)
	}
	return keys
}

func (g *LoginGuard) IsBlocked(ctx context.Context, username, ip string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for _, k := range guardKeys(username, ip) {
		until, ok := g.blocks[k]
		if !ok {
			continue
		}
		if now.Before(until) {
			return true, nil
		}
		delete(g.blocks, k)
	}
	return false, nil
}

func (g *LoginGuard) RecordFailure(ctx context.Context, username, ip string) (bool, int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	blocked := false
	userCount := 0
	for i, k := range guardKeys(username, ip) {
		w := g.failures[k]
		if !now.Before(w.expires) {
			w = failureWindow{expires: now.Add(g.cfg.Window)}
		}
		w.count++
		g.failures[k] = w

		if i == 0 {
			userCount = w.count
		}
		if w.count >= g.cfg.MaxAttempts {
			g.blocks[k] = now.Add(g.cfg.BlockFor)
			blocked = true
		}
	}
	return blocked, userCount, nil
}

func (g *LoginGuard) Clear(ctx context.Context, username, ip string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, k := range guardKeys(username, ip) {
		delete(g.failures, k)
	}
	return nil
}

// Sweep drops closed failure windows and lifted blocks
func (g *LoginGuard) Sweep() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for k, w := range g.failures {
		if !now.Before(w.expires) {
			delete(g.failures, k)
		}
	}
	for k, until := range g.blocks {
		if !now.Before(until) {
			delete(g.blocks, k)
		}
	}
}
