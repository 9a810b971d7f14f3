package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SlidingWindow is a redis-backed limiter: a sorted set per key holds
// one member per event, trimmed to the trailing window on every check.
// Increment and count run in one transactional pipeline, so concurrent
// callers observe a consistent window.
type SlidingWindow struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// SlidingWindowOption configures the limiter.
type SlidingWindowOption func(*SlidingWindow)

// WithKeyPrefix namespaces the redis keys (default "ratelimit").
func WithKeyPrefix(prefix string) SlidingWindowOption {
	return func(s *SlidingWindow) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewSlidingWindow creates a limiter allowing limit events per window.
func NewSlidingWindow(client *redis.Client, limit int, window time.Duration, opts ...SlidingWindowOption) *SlidingWindow {
	s := &SlidingWindow{
		client: client,
		limit:  limit,
		window: window,
		prefix: "ratelimit",
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// Allow implements Limiter. The event is always recorded; exceeding
// callers extend their own window, which is the behavior we want for
// abusive senders.
func (s *SlidingWindow) Allow(ctx context.Context, key string) (Result, error) {
	now := time.Now()
	windowStart := now.Add(-s.window)
	redisKey := s.prefix + ":" + key

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart.UnixMicro(), 10))
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixMicro()),
		Member: uuid.NewString(),
	})
	card := pipe.ZCard(ctx, redisKey)
	pipe.Expire(ctx, redisKey, s.window)

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return Result{}, err
	}

	count := int(card.Val())
	remaining := s.limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   count <= s.limit,
		Remaining: remaining,
		ResetAt:   now.Add(s.window),
	}, nil
}
