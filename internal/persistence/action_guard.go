package persistence

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisActionGuard admits each action key once per window across every
// console instance sharing the Redis database.
type RedisActionGuard struct {
	client redis.Cmdable
	prefix string
	window time.Duration
}

// NewRedisActionGuard builds a guard on client.
func NewRedisActionGuard(client redis.Cmdable, prefix string, window time.Duration) *RedisActionGuard {
	if window <= 0 {
		window = 2 * time.Second
	}
	return &RedisActionGuard{client: client, prefix: prefix, window: window}
}

// Acquire claims key with SET NX. It reports false when the key is held.
func (g *RedisActionGuard) Acquire(ctx context.Context, key string) (bool, error) {
	return g.client.SetNX(ctx, g.prefix+key, 1, g.window).Result()
}
