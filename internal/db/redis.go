package db

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient parses redisURL (redis:// or rediss://) and waits until the
// server answers PING. WithMaxConns sets the client pool size.
func NewRedisClient(ctx context.Context, redisURL string, opts ...Option) (*redis.Client, error) {
	o := apply(opts)
	ropts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}
	if o.maxConns > 0 {
		ropts.PoolSize = int(o.maxConns)
	}
	ropts.ClientName = "marketplace-service"

	rdb := redis.NewClient(ropts)
	err = retry(ctx, "redis", o, func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
