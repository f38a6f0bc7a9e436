package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps a Redis connection used for the token revocation set and for
// read-through caching of area detail lookups. Every entry it holds can be
// rebuilt from the database, so connectivity errors degrade to cache misses
// instead of failing the request. A nil *Client behaves like an always-empty
// cache, which keeps tests and cache-less deployments working without
// conditionals at call sites.
type Client struct {
	client *redis.Client
}

// New creates a new Redis client.
func New(addr, password string, db int) *Client {
	return &Client{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// Ping reports whether the Redis backend is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Get returns the stored value, or nil on a miss. An unreachable backend
// reads as a miss.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	res, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// redis.Nil and transport errors alike: treat as absent.
		return nil, nil
	}
	return res, nil
}

// Set stores a value with a TTL. Write failures are dropped; the next Get
// falls through to the database.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return nil
	}
	_ = c.client.Set(ctx, key, value, ttl).Err()
	return nil
}

// Delete removes a key, ignoring errors for keys that are already gone.
func (c *Client) Delete(ctx context.Context, key string) error {
	if c == nil || c.client == nil {
		return nil
	}
	_ = c.client.Del(ctx, key).Err()
	return nil
}
