package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

// ErrAddrMissing is returned when no redis addresses are configured.
var ErrAddrMissing = errors.New("redis addresses must be specified")

// RedisCache is a Cache backed by a redis deployment, for cached part
// values shared across server instances.
type RedisCache struct {
	addrs    []string
	username string
	password string
	db       int
	client   redis.UniversalClient
}

var _ Cache = (*RedisCache)(nil)

// RedisOpt configures a RedisCache.
type RedisOpt func(*RedisCache)

// WithAddr sets one or more comma-separated redis addresses.
func WithAddr(addrs string) RedisOpt {
	return func(c *RedisCache) {
		c.addrs = strings.Split(addrs, ",")
	}
}

// WithCredentials sets the redis username and password.
func WithCredentials(username, password string) RedisOpt {
	return func(c *RedisCache) {
		c.username = username
		c.password = password
	}
}

// WithDB selects the redis logical database.
func WithDB(db int) RedisOpt {
	return func(c *RedisCache) {
		c.db = db
	}
}

// NewRedisCache connects to redis and verifies liveness with a bounded
// exponential backoff before returning.
func NewRedisCache(ctx context.Context, opts ...RedisOpt) (*RedisCache, error) {
	c := &RedisCache{}
	for _, opt := range opts {
		opt(c)
	}

	if len(c.addrs) == 0 {
		return nil, ErrAddrMissing
	}

	c.client = redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    c.addrs,
		Username: c.username,
		Password: c.password,
		DB:       c.db,
	})

	ping := func() error {
		return c.client.Ping(ctx).Err()
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(ping, policy); err != nil {
		_ = c.client.Close()
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}

	return c, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Purge removes every key matching the given pattern and returns how many
// were deleted. Used by the clear-cache command to flush a part namespace.
func (c *RedisCache) Purge(ctx context.Context, pattern string) (int64, error) {
	var removed int64

	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, err
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return removed, err
	}

	return removed, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
