package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitRepository counts events per key in fixed windows.
type RateLimitRepository struct {
	client *redis.Client
	prefix string
}

func NewRateLimitRepository(client *redis.Client, prefix string) *RateLimitRepository {
	return &RateLimitRepository{client: client, prefix: prefix}
}

// Hit increments the counter for key and returns the new count and the
// time left in the window. The window starts with the first hit.
func (r *RateLimitRepository) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if r.client == nil {
		return 0, 0, nil
	}
	full := r.prefix + key

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, full)
		pipe.ExpireNX(ctx, full, window)
		ttl = pipe.TTL(ctx, full)
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("rate limit hit %s: %w", key, err)
	}
	return incr.Val(), ttl.Val(), nil
}

func (r *RateLimitRepository) Enabled() bool {
	return r.client != nil
}
