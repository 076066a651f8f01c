// Package ratelimit implements a fixed-window request limiter on Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result describes one admission decision.
type Result struct {
	Allowed    bool
	Limit      int64
	Remaining  int64
	RetryAfter time.Duration
}

// Limiter admits at most limit hits per key within each window. The window
// starts at the first hit and the counter key expires with it.
type Limiter struct {
	rdb    redis.Cmdable
	limit  int64
	window time.Duration
	prefix string
}

func NewLimiter(rdb redis.Cmdable, limit int, window time.Duration, prefix string) *Limiter {
	return &Limiter{rdb: rdb, limit: int64(limit), window: window, prefix: prefix}
}

func (l *Limiter) key(k string) string {
	return fmt.Sprintf("%s:ratelimit:%s", l.prefix, k)
}

// Allow counts a hit for k. On a Redis failure the error is returned together
// with an allowing Result so callers can fail open.
func (l *Limiter) Allow(ctx context.Context, k string) (Result, error) {
	key := l.key(k)
	open := Result{Allowed: true, Limit: l.limit, Remaining: l.limit}

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return open, fmt.Errorf("redis incr: %w", err)
	}

	if count == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return open, fmt.Errorf("redis expire: %w", err)
		}
	}

	if count <= l.limit {
		return Result{Allowed: true, Limit: l.limit, Remaining: l.limit - count}, nil
	}

	ttl, err := l.rdb.TTL(ctx, key).Result()
	if err != nil || ttl <= 0 {
		ttl = l.window
	}
	return Result{Allowed: false, Limit: l.limit, Remaining: 0, RetryAfter: ttl}, nil
}
