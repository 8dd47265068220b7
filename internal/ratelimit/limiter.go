// Package ratelimit enforces per-provider call ceilings over fixed windows.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// DefaultWindow is the length of one counting window.
const DefaultWindow = 60 * time.Second

// Limiter checks and consumes one call from a provider's window.
type Limiter interface {
	// Allow reports whether one more call fits in the current window and, if
	// so, counts it. A limit of zero or less never allows.
	Allow(ctx context.Context, provider string, limit int) (bool, error)
}

// A window resets once strictly more than its length has elapsed since its
// first call.
type window struct {
	start time.Time
	count int
}

// MemoryLimiter keeps windows in process memory.
type MemoryLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	now     func() time.Time
	windows map[string]*window
}

// NewMemoryLimiter returns a limiter with the given window length and clock.
// A nil clock uses time.Now.
func NewMemoryLimiter(length time.Duration, now func() time.Time) *MemoryLimiter {
	if length <= 0 {
		length = DefaultWindow
	}
	if now == nil {
		now = time.Now
	}
	return &MemoryLimiter{
		window:  length,
		now:     now,
		windows: make(map[string]*window),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, provider string, limit int) (bool, error) {
	if limit <= 0 {
		return false, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[provider]
	if !ok || now.Sub(w.start) > l.window {
		w = &window{start: now}
		l.windows[provider] = w
	}
	if w.count >= limit {
		return false, nil
	}
	w.count++
	return true, nil
}

// Remaining returns how many calls are left in provider's current window.
func (l *MemoryLimiter) Remaining(provider string, limit int) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[provider]
	if !ok || l.now().Sub(w.start) > l.window {
		return limit
	}
	if rem := limit - w.count; rem > 0 {
		return rem
	}
	return 0
}
