package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter counts with INCR on one key per window; the first request of
// a window sets the key's expiry.
type RedisLimiter struct {
	client redis.Cmdable
	limit  int
	period time.Duration
	prefix string
}

func NewRedisLimiter(client redis.Cmdable, limit int, period time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, period: period, prefix: "lifesync:ratelimit:"}
}

// NewRedisClient opens a client for the given address.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	k := l.prefix + key

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return Result{}, fmt.Errorf("redis incr: %w", err)
	}

	ttl, err := l.client.PTTL(ctx, k).Result()
	if err != nil {
		return Result{}, fmt.Errorf("redis pttl: %w", err)
	}
	// A key without expiry is a fresh window, or one whose EXPIRE was lost.
	if count == 1 || ttl < 0 {
		if err := l.client.PExpire(ctx, k, l.period).Err(); err != nil {
			return Result{}, fmt.Errorf("redis expire: %w", err)
		}
		ttl = l.period
	}

	return decide(count, l.limit, ttl), nil
}
