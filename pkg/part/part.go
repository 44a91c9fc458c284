// Package part models the named, independently evaluable units of a
// progressive response, and the ordered list a delivery operates over.
package part

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/partstream/partstream/pkg/cache"
)

// Producer computes a part's value. reqCtx is the opaque caller context
// (an authenticated identity, request parameters) threaded through every
// producer in a delivery. The returned value must be JSON-serializable.
type Producer func(ctx context.Context, reqCtx any) (any, error)

// Kind is the closed set of part variants, resolved once at construction.
type Kind int

const (
	// KindStatic is a precomputed literal value.
	KindStatic Kind = iota

	// KindFunction is a producer-backed value, lazy or eager.
	KindFunction

	// KindCached is a producer-backed value that consults an external
	// cache before invoking the producer, writing the result back with a
	// TTL.
	KindCached
)

func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindFunction:
		return "function"
	case KindCached:
		return "cached"
	default:
		return "unknown"
	}
}

// Part is one named unit of a progressive response. Parts are constructed
// fresh per request and evaluated at most once per request; computed values
// never travel inside cursors.
type Part struct {
	name      string
	kind      Kind
	value     any
	producer  Producer
	lazy      bool
	dependsOn []string
	timeout   time.Duration

	fallback    any
	hasFallback bool

	cacheKey string
	cacheTTL time.Duration
	store    cache.Cache

	mu       sync.Mutex
	memoized bool
	memo     any
}

// Option configures a producer-backed part.
type Option func(*Part)

// WithDependsOn records informational dependency metadata surfaced by the
// manifest. Evaluation order is not affected.
func WithDependsOn(names ...string) Option {
	return func(p *Part) {
		p.dependsOn = names
	}
}

// WithFallback substitutes the given value for the part's slot when the
// producer fails, instead of an error payload. The failure is still logged
// and counted by the assembler.
func WithFallback(value any) Option {
	return func(p *Part) {
		p.fallback = value
		p.hasFallback = true
	}
}

// WithTimeout bounds this part's producer call, overriding the deliverer's
// default part timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Part) {
		p.timeout = d
	}
}

// WithCacheKey overrides the derived cache key of a cached part.
func WithCacheKey(key string) Option {
	return func(p *Part) {
		p.cacheKey = key
	}
}

// NewStatic builds a part holding a precomputed value. Static parts are
// never lazy.
func NewStatic(name string, value any) *Part {
	return &Part{
		name:  name,
		kind:  KindStatic,
		value: value,
	}
}

// NewFunction builds a producer-backed part. Lazy parts invoke the producer
// at most once per part instance and memoize the value; eager parts invoke
// it on every evaluation.
func NewFunction(name string, producer Producer, lazy bool, opts ...Option) *Part {
	p := &Part{
		name:     name,
		kind:     KindFunction,
		producer: producer,
		lazy:     lazy,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewCached builds a producer-backed part that consults store before
// invoking the producer and writes the result back with the given TTL.
// The cache key defaults to "partstream:<name>". Cached parts are lazy.
func NewCached(name string, producer Producer, store cache.Cache, ttl time.Duration, opts ...Option) *Part {
	p := &Part{
		name:     name,
		kind:     KindCached,
		producer: producer,
		lazy:     true,
		store:    store,
		cacheTTL: ttl,
		cacheKey: "partstream:" + name,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the part's unique name within its list.
func (p *Part) Name() string { return p.name }

// Kind returns the part's variant.
func (p *Part) Kind() Kind { return p.kind }

// Lazy reports whether evaluation memoizes.
func (p *Part) Lazy() bool { return p.lazy }

// DependsOn returns the informational dependency metadata.
func (p *Part) DependsOn() []string { return p.dependsOn }

// Timeout returns the per-part evaluation bound, zero meaning the
// deliverer's default applies.
func (p *Part) Timeout() time.Duration { return p.timeout }

// Fallback returns the configured fallback value, if any.
func (p *Part) Fallback() (any, bool) { return p.fallback, p.hasFallback }

// Evaluate resolves the part's value. Producer failures propagate to the
// caller; isolation policy lives in the assembler, not here.
func (p *Part) Evaluate(ctx context.Context, reqCtx any) (any, error) {
	switch p.kind {
	case KindStatic:
		return p.value, nil
	case KindFunction:
		if !p.lazy {
			return p.producer(ctx, reqCtx)
		}
		return p.evaluateMemoized(ctx, reqCtx, p.producer)
	case KindCached:
		return p.evaluateMemoized(ctx, reqCtx, p.evaluateThroughCache)
	default:
		return nil, fmt.Errorf("part %q: unknown kind %d", p.name, p.kind)
	}
}

// evaluateMemoized invokes fn at most once per part instance, memoizing
// success only. Failures propagate and a later call may retry.
func (p *Part) evaluateMemoized(ctx context.Context, reqCtx any, fn Producer) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.memoized {
		return p.memo, nil
	}

	value, err := fn(ctx, reqCtx)
	if err != nil {
		return nil, err
	}

	p.memo = value
	p.memoized = true
	return value, nil
}

func (p *Part) evaluateThroughCache(ctx context.Context, reqCtx any) (any, error) {
	raw, ok, err := p.store.Get(ctx, p.cacheKey)
	if err == nil && ok {
		var value any
		if err := json.Unmarshal(raw, &value); err == nil {
			return value, nil
		}
		// Undecodable entries are treated as missing and overwritten.
	}

	value, err := p.producer(ctx, reqCtx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(value); err == nil {
		// A failed write only costs a recomputation on the next request.
		_ = p.store.Set(ctx, p.cacheKey, raw, p.cacheTTL)
	}

	return value, nil
}
