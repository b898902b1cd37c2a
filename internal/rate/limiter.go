package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds limiter tuning parameters. Limit <= 0 disables limiting.
type Config struct {
	Limit  int
	Window time.Duration
}

// Limiter enforces fixed-window admission limits using Redis counters shared by every
// process pointed at the same server.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a rate [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// Enabled reports whether the limiter admits a bounded number of hits per window.
func (l *Limiter) Enabled() bool {
	return l != nil && l.config.Limit > 0 && l.config.Window > 0
}

// Allow records one hit against key and returns ErrRateLimited once the window's
// budget is exhausted.
func (l *Limiter) Allow(ctx context.Context, key string) error {
	if !l.Enabled() {
		return nil
	}

	count, err := l.incrementWithTTL(ctx, key, l.config.Window)
	if err != nil {
		return err
	}
	if count > int64(l.config.Limit) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}
