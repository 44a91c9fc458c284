// Package cache defines the external key-value store consulted by cached
// parts, with in-memory and redis backends. Cached values are disposable
// recomputable artifacts, not source of truth: writes are last-writer-wins
// with a TTL and no transactional guarantee.
package cache

import (
	"context"
	"time"
)

// Cache is a generic byte-value cache with per-entry TTL.
type Cache interface {
	// Get returns the value for the given key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for the given TTL, overwriting any
	// previous value.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the specified keys. A key is ignored if it does not
	// exist.
	Delete(ctx context.Context, keys ...string) error

	// Close cleans up any residual resources before returning.
	Close() error
}
