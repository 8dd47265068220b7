package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func TestMemoryLimiter_RejectsOverLimitAndResets(t *testing.T) {
	clock := newClock()
	l := NewMemoryLimiter(time.Minute, clock.Now)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "openai", 3)
		require.NoError(t, err)
		assert.True(t, ok, "call %d", i+1)
	}

	ok, _ := l.Allow(ctx, "openai", 3)
	assert.False(t, ok, "call N+1 is rejected")
	assert.Equal(t, 0, l.Remaining("openai", 3))

	clock.Advance(59 * time.Second)
	ok, _ = l.Allow(ctx, "openai", 3)
	assert.False(t, ok, "still inside the window")

	clock.Advance(time.Second)
	ok, _ = l.Allow(ctx, "openai", 3)
	assert.False(t, ok, "exactly one window elapsed")

	clock.Advance(time.Millisecond)
	ok, _ = l.Allow(ctx, "openai", 3)
	assert.True(t, ok, "window elapsed")
	assert.Equal(t, 2, l.Remaining("openai", 3))
}

func TestMemoryLimiter_ProvidersAreIndependent(t *testing.T) {
	l := NewMemoryLimiter(time.Minute, newClock().Now)
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "openai", 1)
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "openai", 1)
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "anthropic", 1)
	assert.True(t, ok)
}

func TestMemoryLimiter_ZeroLimitNeverAllows(t *testing.T) {
	l := NewMemoryLimiter(0, nil)
	ok, err := l.Allow(context.Background(), "openai", 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryLimiter_Concurrent(t *testing.T) {
	l := NewMemoryLimiter(time.Minute, newClock().Now)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow(ctx, "openai", 10); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, allowed)
}
