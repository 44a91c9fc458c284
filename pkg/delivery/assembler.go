package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/partstream/partstream/pkg/part"
	"github.com/partstream/partstream/pkg/telemetry"
)

// slot is one evaluated window position: the part's name paired with its
// value or error payload.
type slot struct {
	name  string
	value any
}

// evaluateWindow evaluates the given parts, isolating failures per part.
// The returned slots preserve window order regardless of completion order.
func (d *Deliverer) evaluateWindow(ctx context.Context, window []*part.Part, reqCtx any, requestID string) []slot {
	slots := make([]slot, len(window))

	if d.concurrency <= 1 || len(window) <= 1 {
		for i, p := range window {
			slots[i] = d.evaluateSlot(ctx, p, reqCtx, requestID)
		}
		return slots
	}

	workers := pool.New().WithMaxGoroutines(d.concurrency)
	for i, p := range window {
		i, p := i, p
		workers.Go(func() {
			slots[i] = d.evaluateSlot(ctx, p, reqCtx, requestID)
		})
	}
	workers.Wait()

	return slots
}

// evaluateSlot runs one part through its timeout bound and classifies the
// outcome. One part's failure never affects its siblings.
func (d *Deliverer) evaluateSlot(ctx context.Context, p *part.Part, reqCtx any, requestID string) slot {
	ctx, span := d.tracer.Start(ctx, "EvaluatePart")
	span.SetAttributes(
		attribute.String("part", p.Name()),
		attribute.String("kind", p.Kind().String()),
	)
	defer span.End()

	started := time.Now()
	value, err := d.evaluateWithTimeout(ctx, p, reqCtx)
	d.metrics.PartDuration.Observe(time.Since(started).Seconds())

	if err == nil {
		d.metrics.PartsEvaluated.WithLabelValues(telemetry.StatusOK).Inc()
		return slot{name: p.Name(), value: value}
	}

	d.logger.Warn("part evaluation failed",
		zap.String("request_id", requestID),
		zap.String("part", p.Name()),
		zap.Error(err),
	)

	if fallback, ok := p.Fallback(); ok {
		d.metrics.PartsEvaluated.WithLabelValues(telemetry.StatusFallback).Inc()
		return slot{name: p.Name(), value: fallback}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		d.metrics.PartsEvaluated.WithLabelValues(telemetry.StatusTimeout).Inc()
		return slot{
			name:  p.Name(),
			value: errorPayload(fmt.Sprintf("timed out loading %s", p.Name()), errTypeTimeout),
		}
	}

	d.metrics.PartsEvaluated.WithLabelValues(telemetry.StatusError).Inc()
	return slot{
		name:  p.Name(),
		value: errorPayload(fmt.Sprintf("failed to load %s", p.Name()), errTypeLoading),
	}
}

// evaluateWithTimeout bounds a producer call with the part's own timeout,
// or the deliverer default. The producer runs in its own goroutine so a
// deadline fires even when the producer ignores its context; an abandoned
// producer finishes in the background with nowhere to deliver.
func (d *Deliverer) evaluateWithTimeout(ctx context.Context, p *part.Part, reqCtx any) (any, error) {
	timeout := d.partTimeout
	if p.Timeout() > 0 {
		timeout = p.Timeout()
	}
	if timeout <= 0 {
		return p.Evaluate(ctx, reqCtx)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		value any
		err   error
	}
	done := make(chan outcome, 1)

	go func() {
		value, err := p.Evaluate(ctx, reqCtx)
		done <- outcome{value: value, err: err}
	}()

	select {
	case o := <-done:
		return o.value, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
