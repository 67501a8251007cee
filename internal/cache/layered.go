package cache

import (
	"context"
	"errors"
	"time"
)

// LayeredCache checks a fast local layer before a shared remote layer
type LayeredCache struct {
	local  Cache
	remote Cache
}

// NewLayeredCache creates a new layered cache
func NewLayeredCache(local, remote Cache) *LayeredCache {
	return &LayeredCache{local: local, remote: remote}
}

// Get checks the local layer first and promotes remote hits
func (c *LayeredCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if val, found := c.local.Get(ctx, key); found {
		return val, true
	}
	if val, found := c.remote.Get(ctx, key); found {
		_ = c.local.Set(ctx, key, val, 0)
		return val, true
	}
	return nil, false
}

// Set stores a value in both layers
func (c *LayeredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.local.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return c.remote.Set(ctx, key, value, ttl)
}

// Delete removes a value from both layers
func (c *LayeredCache) Delete(ctx context.Context, key string) error {
	return errors.Join(c.local.Delete(ctx, key), c.remote.Delete(ctx, key))
}

// Clear empties both layers
func (c *LayeredCache) Clear(ctx context.Context) error {
	return errors.Join(c.local.Clear(ctx), c.remote.Clear(ctx))
}
