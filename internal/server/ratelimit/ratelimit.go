// Package ratelimit implements the fixed-window request limits of the
// ingestion endpoint, in Redis when one is configured and in memory
// otherwise.
package ratelimit

import (
	"context"
	"time"
)

// Result is the outcome of one Allow call. RetryAfter is set only when the
// request was refused.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter counts requests per key in fixed windows.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

func decide(count int64, limit int, ttl time.Duration) Result {
	if count > int64(limit) {
		return Result{Allowed: false, Remaining: 0, RetryAfter: ttl}
	}
	return Result{Allowed: true, Remaining: limit - int(count)}
}
