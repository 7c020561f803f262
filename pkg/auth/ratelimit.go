package auth

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyRequests means the caller has exhausted its request budget
// for the current window.
var ErrTooManyRequests = errors.New("too many requests")

// RateLimiter bounds how often a caller may hit the generation
// endpoints. Implementations must be safe for concurrent use by
// multiple goroutines.
type RateLimiter interface {
	// Allow counts one request for the caller identified by key and
	// returns ErrTooManyRequests when the caller is over budget.
	Allow(ctx context.Context, key string) error
}

// InProcessLimiter is a fixed-window rate limiter that tracks request
// counts per caller in memory. Counter entries persist for the process
// lifetime, so the map grows with the number of distinct callers;
// multi-instance deployments need a shared backend instead.
type InProcessLimiter struct {
	rpm    int
	window time.Duration

	mu       sync.Mutex
	counters map[string]*counter
}

type counter struct {
	count    int
	windowAt time.Time
}

// NewInProcessLimiter creates a limiter allowing rpm requests per
// caller per minute. rpm <= 0 disables limiting.
func NewInProcessLimiter(rpm int) *InProcessLimiter {
	return &InProcessLimiter{
		rpm:      rpm,
		window:   time.Minute,
		counters: make(map[string]*counter),
	}
}

// Allow checks if the request fits the caller's current window.
// An empty key is never limited.
func (l *InProcessLimiter) Allow(_ context.Context, key string) error {
	if l.rpm <= 0 || key == "" {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	c, ok := l.counters[key]
	if !ok || now.Sub(c.windowAt) >= l.window {
		// New window.
		l.counters[key] = &counter{count: 1, windowAt: now}
		return nil
	}

	c.count++
	if c.count > l.rpm {
		return ErrTooManyRequests
	}

	return nil
}
