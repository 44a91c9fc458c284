package telemetry

import (
	"context"
	"time"

	"github.com/partstream/partstream/pkg/cache"
)

// InstrumentedCache decorates a Cache with hit/miss counters. Cached parts
// see the wrapped cache; the response shape is unaffected.
type InstrumentedCache struct {
	inner   cache.Cache
	metrics *Metrics
}

var _ cache.Cache = (*InstrumentedCache)(nil)

// NewInstrumentedCache wraps inner so lookups are counted on metrics.
func NewInstrumentedCache(inner cache.Cache, metrics *Metrics) *InstrumentedCache {
	return &InstrumentedCache{inner: inner, metrics: metrics}
}

func (c *InstrumentedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok, err := c.inner.Get(ctx, key)
	if err == nil {
		if ok {
			c.metrics.CacheHits.Inc()
		} else {
			c.metrics.CacheMisses.Inc()
		}
	}
	return value, ok, err
}

func (c *InstrumentedCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.inner.Set(ctx, key, value, ttl)
}

func (c *InstrumentedCache) Delete(ctx context.Context, keys ...string) error {
	return c.inner.Delete(ctx, keys...)
}

func (c *InstrumentedCache) Close() error {
	return c.inner.Close()
}
