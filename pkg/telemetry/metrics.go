// Package telemetry exposes the prometheus metrics emitted by the delivery
// engine. Components receive a *Metrics by injection; there is no ambient
// global registry.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "partstream"

// Part evaluation statuses reported on PartsEvaluated.
const (
	StatusOK       = "ok"
	StatusError    = "error"
	StatusTimeout  = "timeout"
	StatusFallback = "fallback"
)

// Cursor failure reasons reported on CursorFailures.
const (
	ReasonInvalid = "invalid"
	ReasonExpired = "expired"
)

// Metrics holds the collectors for one delivery engine instance.
type Metrics struct {
	// PartsEvaluated counts producer invocations by terminal status.
	PartsEvaluated *prometheus.CounterVec

	// PartDuration observes wall time of individual part evaluations.
	PartDuration prometheus.Histogram

	// CursorFailures counts rejected cursors by classification.
	CursorFailures *prometheus.CounterVec

	// CacheHits and CacheMisses count cached part lookups.
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

// NewMetrics registers the partstream collectors against reg. A nil reg
// registers against a throwaway registry, useful in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		PartsEvaluated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parts_evaluated_total",
			Help:      "Number of part evaluations by terminal status.",
		}, []string{"status"}),

		PartDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "part_evaluation_duration_seconds",
			Help:      "Wall time of individual part evaluations.",
			Buckets:   prometheus.DefBuckets,
		}),

		CursorFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cursor_failures_total",
			Help:      "Number of rejected cursors by classification.",
		}, []string{"reason"}),

		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Number of cached part lookups served from the cache.",
		}),

		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Number of cached part lookups that missed.",
		}),
	}
}
