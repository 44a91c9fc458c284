// Package delivery implements chunked delivery of a part list: the
// continuation engine resolving cursors to windows, the assembler that
// evaluates a window with per-part error isolation, and the key-based
// accessor for random access by part name.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/partstream/partstream/pkg/config"
	"github.com/partstream/partstream/pkg/cursor"
	"github.com/partstream/partstream/pkg/logger"
	"github.com/partstream/partstream/pkg/part"
	"github.com/partstream/partstream/pkg/telemetry"
)

// ErrTooManyKeys indicates a key-based call requesting more distinct names
// than the configured bound. Client-caused; rejected before any part is
// evaluated.
var ErrTooManyKeys = errors.New("too many keys requested")

// Deliverer drives progressive delivery over a part list. It is safe for
// concurrent use; all mutable state lives in the per-request part list.
type Deliverer struct {
	codec       *cursor.Codec
	chunkSize   int
	maxKeys     int
	concurrency int
	partTimeout time.Duration

	logger  logger.Logger
	metrics *telemetry.Metrics
	tracer  trace.Tracer
	now     func() time.Time
}

// Opt configures a Deliverer beyond its Config.
type Opt func(*Deliverer)

// WithLogger attaches a structured logger. Defaults to a noop logger.
func WithLogger(l logger.Logger) Opt {
	return func(d *Deliverer) {
		d.logger = l
	}
}

// WithMetrics attaches prometheus collectors. Defaults to collectors on a
// throwaway registry.
func WithMetrics(m *telemetry.Metrics) Opt {
	return func(d *Deliverer) {
		d.metrics = m
	}
}

// WithClock overrides the time source. For tests.
func WithClock(now func() time.Time) Opt {
	return func(d *Deliverer) {
		d.now = now
	}
}

// New builds a Deliverer from cfg. Configuration errors are fatal here, at
// initialization, never at request time.
func New(cfg *config.Config, opts ...Opt) (*Deliverer, error) {
	if err := cfg.Verify(); err != nil {
		return nil, err
	}

	codec, err := cursor.NewCodec(cfg.Secret,
		cursor.WithTTL(cfg.CursorTTL),
		cursor.WithMaxTokenSize(cfg.MaxCursorSize),
	)
	if err != nil {
		return nil, err
	}

	d := &Deliverer{
		codec:       codec,
		chunkSize:   cfg.ChunkSize,
		maxKeys:     cfg.MaxKeysPerRequest,
		concurrency: cfg.EvaluationConcurrency,
		partTimeout: cfg.PartTimeout,
		logger:      logger.NewNoopLogger(),
		tracer:      otel.Tracer("partstream/delivery"),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.metrics == nil {
		d.metrics = telemetry.NewMetrics(nil)
	}

	return d, nil
}

// Codec exposes the deliverer's cursor codec, for operational tooling that
// inspects or mints cursors out of band.
func (d *Deliverer) Codec() *cursor.Codec {
	return d.codec
}

// Request carries the per-call inputs of a cursor-flow delivery.
type Request struct {
	// Cursor is the raw continuation token from the previous response, or
	// empty on the first call.
	Cursor string

	// Context is the opaque caller context handed to every producer.
	Context any

	// CursorContext seeds carry-through values (a user id, filter state)
	// into issued cursors on a first request. Ignored when Cursor is set:
	// the decoded cursor's own context wins.
	CursorContext map[string]any

	// ChunkSize optionally overrides the configured window size for this
	// call. Zero or negative falls back to the configured default.
	ChunkSize int
}

// Deliver resolves the window the request points at, evaluates it and
// assembles the envelope. Cursor errors abort the whole request before any
// part is evaluated; per-part failures never do.
func (d *Deliverer) Deliver(ctx context.Context, list *part.List, req Request) (*Envelope, error) {
	ctx, span := d.tracer.Start(ctx, "Deliver")
	defer span.End()

	requestID := ulid.Make().String()

	start := 0
	carry := req.CursorContext

	if req.Cursor != "" {
		payload, err := d.codec.Decode(req.Cursor)
		if err != nil {
			d.observeCursorFailure(err, requestID)
			return nil, err
		}
		start = payload.Position
		if payload.Context != nil {
			carry = payload.Context
		}
	}

	chunkSize := d.chunkSize
	if req.ChunkSize > 0 {
		chunkSize = req.ChunkSize
	}

	total := list.Len()
	end := start + chunkSize
	if end > total {
		end = total
	}

	// A stale cursor pointing past the end of a shrunk list is a valid
	// terminal state: empty window, no continuation.
	window := list.Slice(start, end)

	slots := d.evaluateWindow(ctx, window, req.Context, requestID)

	results := make([]Result, len(slots))
	for i, slot := range slots {
		results[i] = Result{slot.name: slot.value}
	}

	var token *string
	if end < total {
		next, err := d.codec.Encode(cursor.Payload{Position: end, Context: carry})
		if err != nil {
			return nil, fmt.Errorf("delivery: encode continuation: %w", err)
		}
		token = &next
	}

	d.logger.Debug("delivered window",
		zap.String("request_id", requestID),
		zap.Int("start", start),
		zap.Int("end", end),
		zap.Int("total_parts", total),
		zap.Bool("has_more", token != nil),
	)

	return &Envelope{
		Results: results,
		Cursor:  token,
		Meta: Meta{
			TotalParts:       total,
			CurrentChunkSize: len(results),
			HasMore:          token != nil,
			Timestamp:        d.now().UTC(),
		},
	}, nil
}

// Manifest reflects the part list's shape without evaluating anything,
// keyed by part name.
func (d *Deliverer) Manifest(list *part.List) map[string]part.Info {
	manifest := make(map[string]part.Info, list.Len())
	for _, info := range list.Manifest() {
		manifest[info.Name] = info
	}
	return manifest
}

func (d *Deliverer) observeCursorFailure(err error, requestID string) {
	reason := telemetry.ReasonInvalid
	if errors.Is(err, cursor.ErrCursorExpired) {
		reason = telemetry.ReasonExpired
	}
	d.metrics.CursorFailures.WithLabelValues(reason).Inc()
	d.logger.Warn("rejected cursor",
		zap.String("request_id", requestID),
		zap.String("reason", reason),
	)
}
