package infra

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// OptionalRedisClient configures a Redis client and verifies connectivity.
// An empty URL returns nil without error: Redis only backs the idempotency
// replay cache and login rate limiting, both of which degrade gracefully.
func OptionalRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}
