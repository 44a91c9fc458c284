package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Yiling-J/theine-go"
)

const defaultMaxCacheEntries = 10_000

// InMemoryCache is a process-local Cache backed by theine. Suitable for a
// single instance; use the redis backend when cached part values must be
// shared across a fleet.
type InMemoryCache struct {
	store      *theine.Cache[string, []byte]
	maxEntries int64
	closeOnce  sync.Once
}

var _ Cache = (*InMemoryCache)(nil)

// InMemoryOpt configures an InMemoryCache.
type InMemoryOpt func(*InMemoryCache)

// WithMaxEntries overrides the eviction bound.
func WithMaxEntries(n int64) InMemoryOpt {
	return func(c *InMemoryCache) {
		c.maxEntries = n
	}
}

// NewInMemoryCache builds an in-memory TTL cache.
func NewInMemoryCache(opts ...InMemoryOpt) (*InMemoryCache, error) {
	c := &InMemoryCache{
		maxEntries: defaultMaxCacheEntries,
	}
	for _, opt := range opts {
		opt(c)
	}

	store, err := theine.NewBuilder[string, []byte](c.maxEntries).Build()
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	c.store = store

	return c, nil
}

func (c *InMemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, ok := c.store.Get(key)
	if !ok {
		return nil, false, nil
	}
	return value, true, nil
}

func (c *InMemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.store.SetWithTTL(key, value, 1, ttl)
	return nil
}

func (c *InMemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		c.store.Delete(key)
	}
	return nil
}

func (c *InMemoryCache) Close() error {
	c.closeOnce.Do(func() {
		c.store.Close()
	})
	return nil
}
