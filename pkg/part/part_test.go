package part

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/partstream/partstream/pkg/cache"
)

func TestStaticEvaluate(t *testing.T) {
	p := NewStatic("meta", map[string]any{"version": "v1"})

	require.Equal(t, "meta", p.Name())
	require.Equal(t, KindStatic, p.Kind())
	require.False(t, p.Lazy())

	got, err := p.Evaluate(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"version": "v1"}, got)
}

func TestLazyMemoizesSuccess(t *testing.T) {
	var calls atomic.Int32
	p := NewFunction("orders", func(ctx context.Context, reqCtx any) (any, error) {
		calls.Add(1)
		return "order-data", nil
	}, true)

	for i := 0; i < 3; i++ {
		got, err := p.Evaluate(context.Background(), nil)
		require.NoError(t, err)
		require.Equal(t, "order-data", got)
	}

	require.Equal(t, int32(1), calls.Load())
}

func TestLazyDoesNotMemoizeFailure(t *testing.T) {
	var calls atomic.Int32
	fail := true
	p := NewFunction("flaky", func(ctx context.Context, reqCtx any) (any, error) {
		calls.Add(1)
		if fail {
			return nil, errors.New("boom")
		}
		return "ok", nil
	}, true)

	_, err := p.Evaluate(context.Background(), nil)
	require.Error(t, err)

	fail = false
	got, err := p.Evaluate(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, "ok", got)
	require.Equal(t, int32(2), calls.Load())
}

func TestEagerReinvokes(t *testing.T) {
	var calls atomic.Int32
	p := NewFunction("clock", func(ctx context.Context, reqCtx any) (any, error) {
		return calls.Add(1), nil
	}, false)

	first, err := p.Evaluate(context.Background(), nil)
	require.NoError(t, err)
	second, err := p.Evaluate(context.Background(), nil)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestProducerReceivesRequestContext(t *testing.T) {
	p := NewFunction("echo", func(ctx context.Context, reqCtx any) (any, error) {
		return reqCtx, nil
	}, false)

	got, err := p.Evaluate(context.Background(), "user-77")
	require.NoError(t, err)
	require.Equal(t, "user-77", got)
}

func TestCachedPartPopulatesAndHits(t *testing.T) {
	store, err := cache.NewInMemoryCache()
	require.NoError(t, err)
	defer store.Close()

	var calls atomic.Int32
	producer := func(ctx context.Context, reqCtx any) (any, error) {
		calls.Add(1)
		return map[string]any{"revenue": float64(100)}, nil
	}

	ctx := context.Background()

	first := NewCached("analytics", producer, store, time.Minute)
	got, err := first.Evaluate(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"revenue": float64(100)}, got)
	require.Equal(t, int32(1), calls.Load())

	// A fresh part instance, as on the next request, must hit the cache.
	second := NewCached("analytics", producer, store, time.Minute)
	got, err = second.Evaluate(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"revenue": float64(100)}, got)
	require.Equal(t, int32(1), calls.Load())
}

func TestCachedPartCustomKey(t *testing.T) {
	store, err := cache.NewInMemoryCache()
	require.NoError(t, err)
	defer store.Close()

	p := NewCached("analytics", func(ctx context.Context, reqCtx any) (any, error) {
		return "fresh", nil
	}, store, time.Minute, WithCacheKey("partstream:analytics:user-9"))

	_, err = p.Evaluate(context.Background(), nil)
	require.NoError(t, err)

	_, ok, err := store.Get(context.Background(), "partstream:analytics:user-9")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCachedPartFailurePropagates(t *testing.T) {
	store, err := cache.NewInMemoryCache()
	require.NoError(t, err)
	defer store.Close()

	p := NewCached("analytics", func(ctx context.Context, reqCtx any) (any, error) {
		return nil, errors.New("upstream down")
	}, store, time.Minute)

	_, err = p.Evaluate(context.Background(), nil)
	require.Error(t, err)

	_, ok, err := store.Get(context.Background(), "partstream:analytics")
	require.NoError(t, err)
	require.False(t, ok, "failures must not be written to the cache")
}
