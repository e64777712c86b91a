// Package ratelimit implements a Redis fixed-window request limiter.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter allows at most Limit hits per key within each Window.
type Limiter struct {
	rdb    *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

// New returns a limiter. A nil client yields a limiter that allows everything.
func New(rdb *redis.Client, prefix string, limit int64, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, prefix: prefix, limit: limit, window: window}
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if l == nil || l.rdb == nil {
		return true, nil
	}
	k := fmt.Sprintf("ratelimit:%s:%s", l.prefix, key)

	n, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", l.prefix, err)
	}
	// The first hit opens the window.
	if n == 1 {
		if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
			return false, fmt.Errorf("rate limit %s: %w", l.prefix, err)
		}
	}
	return n <= l.limit, nil
}
