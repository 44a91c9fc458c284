package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInMemoryCacheSetGet(t *testing.T) {
	c, err := NewInMemoryCache()
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Set(ctx, "analytics", []byte(`{"revenue":100}`), time.Minute))

	got, ok, err := c.Get(ctx, "analytics")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte(`{"revenue":100}`), got)
}

func TestInMemoryCacheOverwrite(t *testing.T) {
	c, err := NewInMemoryCache()
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("old"), time.Minute))
	require.NoError(t, c.Set(ctx, "k", []byte("new"), time.Minute))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("new"), got)
}

func TestInMemoryCacheTTLExpiry(t *testing.T) {
	c, err := NewInMemoryCache()
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "ephemeral", []byte("v"), 20*time.Millisecond))

	require.Eventually(t, func() bool {
		_, ok, err := c.Get(ctx, "ephemeral")
		return err == nil && !ok
	}, time.Second, 10*time.Millisecond)
}

func TestInMemoryCacheDelete(t *testing.T) {
	c, err := NewInMemoryCache()
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.Delete(ctx, "k", "never-existed"))

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestInMemoryCacheCloseIsIdempotent(t *testing.T) {
	c, err := NewInMemoryCache()
	require.NoError(t, err)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}
