package policy

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records policy outcomes through the otel metric API. With no
// meter provider installed the instruments are no-ops.
type Metrics struct {
	hits      metric.Int64Counter
	misses    metric.Int64Counter
	fallbacks metric.Int64Counter
	refreshes metric.Int64Counter
}

// NewMetrics registers the policy instruments on the global meter.
func NewMetrics() *Metrics {
	meter := otel.Meter("voiceverse-agent/policy")
	m := &Metrics{}

	m.hits, _ = meter.Int64Counter(
		"policy_store_hits_total",
		metric.WithDescription("Requests answered from the store"),
		metric.WithUnit("{request}"),
	)
	m.misses, _ = meter.Int64Counter(
		"policy_store_misses_total",
		metric.WithDescription("Requests with no usable stored entry"),
		metric.WithUnit("{request}"),
	)
	m.fallbacks, _ = meter.Int64Counter(
		"policy_store_fallbacks_total",
		metric.WithDescription("Network failures answered from the store"),
		metric.WithUnit("{request}"),
	)
	m.refreshes, _ = meter.Int64Counter(
		"policy_background_refreshes_total",
		metric.WithDescription("Successful background refresh writes"),
		metric.WithUnit("{refresh}"),
	)
	return m
}

// RecordHit counts a store hit for a strategy.
func (m *Metrics) RecordHit(ctx context.Context, strategy string) {
	if m.hits != nil {
		m.hits.Add(ctx, 1, metric.WithAttributes(attribute.String("strategy", strategy)))
	}
}

// RecordMiss counts a store miss for a strategy.
func (m *Metrics) RecordMiss(ctx context.Context, strategy string) {
	if m.misses != nil {
		m.misses.Add(ctx, 1, metric.WithAttributes(attribute.String("strategy", strategy)))
	}
}

// RecordFallback counts a store fallback after a network failure.
func (m *Metrics) RecordFallback(ctx context.Context, strategy string) {
	if m.fallbacks != nil {
		m.fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("strategy", strategy)))
	}
}

// RecordRefresh counts a successful background refresh.
func (m *Metrics) RecordRefresh(ctx context.Context) {
	if m.refreshes != nil {
		m.refreshes.Add(ctx, 1)
	}
}
