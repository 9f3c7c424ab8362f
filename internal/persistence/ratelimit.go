package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter counts login attempts per key in a fixed Redis window.
type LoginLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewLoginLimiter builds a limiter over the shared Redis client.
func NewLoginLimiter(r *Redis, limit int, window time.Duration) *LoginLimiter {
	var client *redis.Client
	if r != nil {
		client = r.Client
	}
	return &LoginLimiter{client: client, limit: limit, window: window}
}

// Allow reports whether another attempt for the key is within the limit.
// Without a Redis client everything is allowed.
func (l *LoginLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l == nil || l.client == nil || l.limit <= 0 {
		return true, nil
	}

	counterKey := fmt.Sprintf("login_attempts:%s", key)
	count, err := l.client.Incr(ctx, counterKey).Result()
	if err != nil {
		return true, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, counterKey, l.window).Err(); err != nil {
			return true, err
		}
	}
	return count <= int64(l.limit), nil
}
