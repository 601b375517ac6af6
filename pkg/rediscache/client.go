// Package rediscache wraps go-redis/v9 as an optional secondary mirror
// of the on-disk scraped-corpus JSON cache (SPEC_FULL.md §4): a
// deployment convenience for warm starts across replicas, never
// consulted at query time.
package rediscache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marmitar/MC426-backend/pkg/config"
)

// Client wraps a go-redis client and implements scrape.Mirror.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates a Redis client and verifies the connection with a PING.
// Callers should treat a non-nil error as "Redis unavailable, mirror
// disabled" rather than a fatal startup error.
func New(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{rdb: rdb, ttl: cfg.TTL}, nil
}

// Set mirrors a cache-key/value pair with the configured TTL (0 means
// no expiry). It satisfies the scrape.Mirror interface.
func (c *Client) Set(ctx context.Context, key string, value []byte) error {
	return c.rdb.Set(ctx, key, value, c.ttl).Err()
}

// Close closes the underlying Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping sends a PING to Redis and returns any error, used by health checks.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
