// Package cache provides the optional Redis-backed tree cache and the
// scheduled warmer that keeps it populated.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/zulandar/stagedocs/internal/telemetry"
	"github.com/zulandar/stagedocs/internal/tree"
)

// DefaultTTL applies when no TTL is configured.
const DefaultTTL = 5 * time.Minute

// TreeCache stores built trees as JSON. Redis failures are logged and
// treated as misses so a cache outage never fails a request.
type TreeCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

// NewTreeCache connects to redisURL and verifies it with a ping.
func NewTreeCache(redisURL string, ttl time.Duration, log *logrus.Logger) (*TreeCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("cache: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache: connect to redis: %w", err)
	}
	return NewTreeCacheWithClient(client, ttl, log), nil
}

// NewTreeCacheWithClient wraps an existing client.
func NewTreeCacheWithClient(client *redis.Client, ttl time.Duration, log *logrus.Logger) *TreeCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = telemetry.DiscardLogger()
	}
	return &TreeCache{client: client, ttl: ttl, log: log}
}

// Get returns the cached tree for key.
func (c *TreeCache) Get(ctx context.Context, key string) (tree.Tree, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache get failed")
		return nil, false
	}
	var t tree.Tree
	if err := json.Unmarshal(data, &t); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache entry unreadable, dropping")
		c.Delete(ctx, key)
		return nil, false
	}
	if t == nil {
		t = tree.Tree{}
	}
	return t, true
}

// Set stores t under key with the configured TTL.
func (c *TreeCache) Set(ctx context.Context, key string, t tree.Tree) {
	data, err := json.Marshal(t)
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache encode failed")
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache set failed")
	}
}

// Delete drops key.
func (c *TreeCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache delete failed")
	}
}

// Ping checks that Redis is reachable.
func (c *TreeCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *TreeCache) Close() error {
	return c.client.Close()
}
