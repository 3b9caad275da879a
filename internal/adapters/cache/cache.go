// Package cache provides short-TTL memoization of composed results on
// top of the durable key-value store.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/okian/salesboard/internal/adapters/kvstore"
	"github.com/okian/salesboard/pkg/metrics"
)

// Cache memoizes JSON-encodable values of one type under a named
// namespace. TTL enforcement is delegated to the underlying store, so a
// Redis-backed cache survives process restarts.
type Cache[V any] struct {
	store kvstore.Store
	name  string
	ttl   time.Duration
}

// New creates a cache namespace with the given TTL.
func New[V any](store kvstore.Store, name string, ttl time.Duration) *Cache[V] {
	return &Cache[V]{store: store, name: name, ttl: ttl}
}

func (c *Cache[V]) key(key string) string { return "cache:" + c.name + ":" + key }

// Get returns the cached value for key if present and fresh.
func (c *Cache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var v V
	raw, ok, err := c.store.Get(ctx, c.key(key))
	if err != nil {
		return v, false, fmt.Errorf("cache %s get: %w", c.name, err)
	}
	if !ok {
		metrics.RecordCacheMiss(c.name)
		return v, false, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		// A corrupt entry behaves like a miss; the next Set repairs it.
		metrics.RecordCacheMiss(c.name)
		return v, false, nil
	}
	metrics.RecordCacheHit(c.name)
	return v, true, nil
}

// Set stores v under key for the cache TTL.
func (c *Cache[V]) Set(ctx context.Context, key string, v V) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache %s encode: %w", c.name, err)
	}
	if err := c.store.Set(ctx, c.key(key), raw, c.ttl); err != nil {
		return fmt.Errorf("cache %s set: %w", c.name, err)
	}
	return nil
}

// Delete drops the entry for key.
func (c *Cache[V]) Delete(ctx context.Context, key string) error {
	if err := c.store.Del(ctx, c.key(key)); err != nil {
		return fmt.Errorf("cache %s delete: %w", c.name, err)
	}
	return nil
}
