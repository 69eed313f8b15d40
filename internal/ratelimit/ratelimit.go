// Package ratelimit throttles abusable endpoints with fixed-window counters.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "usertemplate:ratelimit:"

// Limiter decides whether one more hit on key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// counter is the part of the redis client the limiter relies on.
type counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	ExpireNX(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisLimiter shares its counters across every server instance.
type RedisLimiter struct {
	client counter
	limit  int
	window time.Duration
}

// NewRedisClient connects to addr, which may carry a redis:// scheme.
func NewRedisClient(addr, password string, db int) *redis.Client {
	addr = strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window}
}

// Allow counts the hit and fails closed when redis is unreachable. The
// expiry is armed with NX on every hit, so a key whose first EXPIRE was lost
// still gets one on the next request.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	cacheKey := keyPrefix + key
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit counter: %w", err)
	}
	if err := r.client.ExpireNX(ctx, cacheKey, r.window).Err(); err != nil {
		return false, fmt.Errorf("rate limit expiry: %w", err)
	}
	return count <= int64(r.limit), nil
}

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter keeps counters in process. Suitable for a single instance.
type MemoryLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	windows map[string]*window
	// nextSweep bounds full-map scans to one per window length.
	nextSweep time.Time
}

func NewMemoryLimiter(limit int, w time.Duration) *MemoryLimiter {
	return &MemoryLimiter{limit: limit, window: w, now: time.Now, windows: make(map[string]*window)}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if !now.Before(m.nextSweep) {
		m.sweep(now)
		m.nextSweep = now.Add(m.window)
	}
	w, ok := m.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(m.window)}
		m.windows[key] = w
	}
	w.count++
	return w.count <= m.limit, nil
}

// sweep drops elapsed windows. Caller holds mu.
func (m *MemoryLimiter) sweep(now time.Time) {
	for k, w := range m.windows {
		if !now.Before(w.resetAt) {
			delete(m.windows, k)
		}
	}
}

// Nop allows everything.
type Nop struct{}

func (Nop) Allow(context.Context, string) (bool, error) { return true, nil }
