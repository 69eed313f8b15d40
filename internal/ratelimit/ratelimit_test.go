package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	counts    map[string]int64
	expires   map[string]time.Duration
	err       error
	expireErr error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (f *fakeCounter) Incr(_ context.Context, key string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounter) ExpireNX(_ context.Context, key string, d time.Duration) *redis.BoolCmd {
	if f.expireErr != nil {
		return redis.NewBoolResult(false, f.expireErr)
	}
	if _, ok := f.expires[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.expires[key] = d
	return redis.NewBoolResult(true, nil)
}

func TestRedisLimiter_Allow(t *testing.T) {
	fc := newFakeCounter()
	l := &RedisLimiter{client: fc, limit: 2, window: time.Minute}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "forgot:a@mail.com")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, "forgot:a@mail.com")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.Allow(ctx, "forgot:b@mail.com")
	require.NoError(t, err)
	assert.True(t, ok, "keys are independent")

	assert.Equal(t, time.Minute, fc.expires[keyPrefix+"forgot:a@mail.com"])
}

func TestRedisLimiter_FailsClosed(t *testing.T) {
	fc := newFakeCounter()
	fc.err = errors.New("connection refused")
	l := &RedisLimiter{client: fc, limit: 5, window: time.Minute}

	ok, err := l.Allow(context.Background(), "k")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRedisLimiter_ExpiryRearmedAfterFailure(t *testing.T) {
	fc := newFakeCounter()
	fc.expireErr = errors.New("i/o timeout")
	l := &RedisLimiter{client: fc, limit: 5, window: time.Minute}
	ctx := context.Background()

	ok, err := l.Allow(ctx, "k")
	require.Error(t, err)
	assert.False(t, ok)
	assert.NotContains(t, fc.expires, keyPrefix+"k")

	fc.expireErr = nil
	ok, err = l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Minute, fc.expires[keyPrefix+"k"], "second hit arms the missing expiry")
	assert.Equal(t, int64(2), fc.counts[keyPrefix+"k"])
}

func TestMemoryLimiter_SweepsOncePerWindow(t *testing.T) {
	start := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	l := NewMemoryLimiter(5, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = l.Allow(ctx, "a")
	_, _ = l.Allow(ctx, "b")
	now = start.Add(30 * time.Second)
	_, _ = l.Allow(ctx, "c")
	assert.Len(t, l.windows, 3)

	// a and b have elapsed; nothing scans the map until the sweep is due
	now = start.Add(time.Minute)
	_, _ = l.Allow(ctx, "c")
	assert.Len(t, l.windows, 1)
	assert.Contains(t, l.windows, "c")
	assert.Equal(t, start.Add(2*time.Minute), l.nextSweep)
}

func TestMemoryLimiter_WindowResets(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(1, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "k")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "k")
	assert.False(t, ok)

	now = now.Add(time.Minute)
	ok, _ = l.Allow(ctx, "k")
	assert.True(t, ok)
	assert.Len(t, l.windows, 1)
}

func TestNop(t *testing.T) {
	ok, err := Nop{}.Allow(context.Background(), "anything")
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestNewRedisClient_StripsScheme(t *testing.T) {
	c := NewRedisClient("redis://localhost:6379", "", 0)
	defer c.Close()
	assert.Equal(t, "localhost:6379", c.Options().Addr)
}
