package delivery

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/partstream/partstream/pkg/part"
)

// Fetch evaluates only the named parts, independent of chunk position. No
// cursor is involved: repeated calls with the same keys are idempotent
// modulo part-level caching. A nonexistent key is a per-item condition
// reported under that key, not a request-level failure.
func (d *Deliverer) Fetch(ctx context.Context, list *part.List, keys []string, reqCtx any) (*KeyedEnvelope, error) {
	ctx, span := d.tracer.Start(ctx, "Fetch")
	defer span.End()

	requestID := ulid.Make().String()

	requested := dedupe(keys)
	if len(requested) > d.maxKeys {
		return nil, fmt.Errorf("%w: %d keys requested, maximum is %d", ErrTooManyKeys, len(requested), d.maxKeys)
	}

	var found []*part.Part
	results := make(map[string]any, len(requested))
	for _, key := range requested {
		p, ok := list.Get(key)
		if !ok {
			results[key] = errorPayload(fmt.Sprintf("part %q not found", key), errTypeNotFound)
			continue
		}
		found = append(found, p)
	}

	slots := make([]slot, len(found))
	if d.concurrency <= 1 || len(found) <= 1 {
		for i, p := range found {
			slots[i] = d.evaluateSlot(ctx, p, reqCtx, requestID)
		}
	} else {
		workers := pool.New().WithMaxGoroutines(d.concurrency)
		for i, p := range found {
			i, p := i, p
			workers.Go(func() {
				slots[i] = d.evaluateSlot(ctx, p, reqCtx, requestID)
			})
		}
		workers.Wait()
	}

	for _, s := range slots {
		results[s.name] = s.value
	}

	d.logger.Debug("fetched parts by key",
		zap.String("request_id", requestID),
		zap.Strings("requested_keys", requested),
	)

	return &KeyedEnvelope{
		Results:       results,
		RequestedKeys: requested,
		Timestamp:     d.now().UTC(),
	}, nil
}

// dedupe removes repeated names while preserving first-seen order.
func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
