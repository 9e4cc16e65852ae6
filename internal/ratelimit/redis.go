package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// Redis is a fixed-window limiter shared by every process using the same server.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (l *Redis) Allow(ctx context.Context, key string, policy Policy) (bool, time.Duration, error) {
	id := redisKeyPrefix + policy.String() + ":" + key

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, id)
	pipe.ExpireNX(ctx, id, policy.Window)
	ttl := pipe.PTTL(ctx, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to record rate limit hit: %w", err)
	}

	if incr.Val() > int64(policy.Limit) {
		retryAfter := ttl.Val()
		if retryAfter <= 0 {
			retryAfter = policy.Window
		}
		return false, retryAfter, nil
	}
	return true, 0, nil
}
