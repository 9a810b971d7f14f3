// Package ratelimit guards the email sign-in route with a sliding
// window keyed by caller IP. The window store is redis; the feature is
// optional and absent-safe.
package ratelimit

import (
	"context"
	"time"
)

// Result describes one limiter check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter counts events in a trailing interval.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// LimiterFunc adapts a function to the Limiter interface.
type LimiterFunc func(ctx context.Context, key string) (Result, error)

// Allow implements Limiter.
func (f LimiterFunc) Allow(ctx context.Context, key string) (Result, error) {
	return f(ctx, key)
}
