// Package redis constructs the go-redis client from application
// configuration and verifies connectivity at startup.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/phrazzld/prime-api/internal/config"
	"github.com/redis/go-redis/v9"
)

// connectTimeout bounds the startup connectivity check.
const connectTimeout = 5 * time.Second

// NewClient creates a Redis client from the configured URL and pings the
// server once so misconfiguration fails at startup instead of on the first
// request.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}
