package delivery

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/partstream/partstream/pkg/config"
	"github.com/partstream/partstream/pkg/part"
)

func TestFetchByKeys(t *testing.T) {
	d := newTestDeliverer(t, nil)

	list, err := part.NewBuilder().
		Static("meta", "m").
		Lazy("orders", func(ctx context.Context, reqCtx any) (any, error) { return "order-data", nil }).
		Lazy("analytics", func(ctx context.Context, reqCtx any) (any, error) { return "analytics-data", nil }).
		Build()
	require.NoError(t, err)

	env, err := d.Fetch(context.Background(), list, []string{"meta", "orders"}, nil)
	require.NoError(t, err)

	require.Equal(t, []string{"meta", "orders"}, env.RequestedKeys)
	require.Equal(t, map[string]any{"meta": "m", "orders": "order-data"}, env.Results)
	require.False(t, env.Timestamp.IsZero())
}

func TestFetchNotFoundIsPerItem(t *testing.T) {
	d := newTestDeliverer(t, nil)

	list, err := part.NewBuilder().
		Static("A", "a-value").
		Build()
	require.NoError(t, err)

	env, err := d.Fetch(context.Background(), list, []string{"A", "nonexistent"}, nil)
	require.NoError(t, err, "a missing key is a per-item condition, not a request failure")

	require.Equal(t, "a-value", env.Results["A"])

	slot, ok := env.Results["nonexistent"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "not_found", slot["type"])
	require.Contains(t, slot["error"], "nonexistent")
}

func TestFetchTooManyKeysRejectedBeforeEvaluation(t *testing.T) {
	d := newTestDeliverer(t, func(c *config.Config) { c.MaxKeysPerRequest = 2 })

	var evaluations atomic.Int32
	counting := func(ctx context.Context, reqCtx any) (any, error) {
		evaluations.Add(1)
		return nil, nil
	}

	list, err := part.NewBuilder().
		Lazy("a", counting).
		Lazy("b", counting).
		Lazy("c", counting).
		Build()
	require.NoError(t, err)

	_, err = d.Fetch(context.Background(), list, []string{"a", "b", "c"}, nil)
	require.ErrorIs(t, err, ErrTooManyKeys)
	require.Equal(t, int32(0), evaluations.Load(), "rejection must happen before any producer runs")
}

func TestFetchDeduplicatesKeys(t *testing.T) {
	d := newTestDeliverer(t, func(c *config.Config) { c.MaxKeysPerRequest = 2 })

	var evaluations atomic.Int32
	list, err := part.NewBuilder().
		Eager("a", func(ctx context.Context, reqCtx any) (any, error) {
			evaluations.Add(1)
			return "v", nil
		}).
		Build()
	require.NoError(t, err)

	// Duplicates collapse to one distinct key, so the bound is respected
	// and the producer runs once.
	env, err := d.Fetch(context.Background(), list, []string{"a", "a", "a"}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, env.RequestedKeys)
	require.Equal(t, int32(1), evaluations.Load())
}

func TestFetchIsolatesPartFailures(t *testing.T) {
	d := newTestDeliverer(t, nil)

	list, err := part.NewBuilder().
		Lazy("good", func(ctx context.Context, reqCtx any) (any, error) { return "ok", nil }).
		Lazy("bad", func(ctx context.Context, reqCtx any) (any, error) { return nil, errors.New("boom") }).
		Build()
	require.NoError(t, err)

	env, err := d.Fetch(context.Background(), list, []string{"good", "bad"}, nil)
	require.NoError(t, err)

	require.Equal(t, "ok", env.Results["good"])
	slot, ok := env.Results["bad"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "loading_error", slot["type"])
}

func TestFetchIgnoresEmptyKeys(t *testing.T) {
	d := newTestDeliverer(t, nil)

	list, err := part.NewBuilder().
		Static("a", 1).
		Build()
	require.NoError(t, err)

	env, err := d.Fetch(context.Background(), list, []string{"", "a", ""}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, env.RequestedKeys)
}

func TestFetchIsCursorFree(t *testing.T) {
	d := newTestDeliverer(t, func(c *config.Config) { c.ChunkSize = 1 })

	list, err := part.NewBuilder().
		Static("a", 1).
		Static("b", 2).
		Static("c", 3).
		Build()
	require.NoError(t, err)

	// Key access reaches any position regardless of chunking.
	env, err := d.Fetch(context.Background(), list, []string{"c"}, nil)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"c": 3}, env.Results)

	// And is idempotent across calls.
	again, err := d.Fetch(context.Background(), list, []string{"c"}, nil)
	require.NoError(t, err)
	require.Equal(t, env.Results, again.Results)
}
