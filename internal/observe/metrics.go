// Package observe holds the OpenTelemetry instruments shared by the input
// session and the bridge. A nil *Metrics is valid and records nothing.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/kobzarvs/qtranslit"

// Metrics holds every instrument recorded by qtranslit.
type Metrics struct {
	// Requests counts transliteration requests sent, by trigger ("debounce", "delimiter").
	Requests metric.Int64Counter
	// StaleResponses counts replies dropped by the generation check.
	StaleResponses metric.Int64Counter
	// Commits counts text written into a surface, by kind ("candidate", "fallback").
	Commits metric.Int64Counter
	// ProviderRequests counts upstream calls by language and status.
	ProviderRequests metric.Int64Counter
	// ProviderDuration tracks upstream latency.
	ProviderDuration metric.Float64Histogram
}

var latencyBuckets = []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	met := &Metrics{}
	var err error
	if met.Requests, err = m.Int64Counter("qtranslit.requests",
		metric.WithDescription("Transliteration requests issued by trigger."),
	); err != nil {
		return nil, err
	}
	if met.StaleResponses, err = m.Int64Counter("qtranslit.responses.stale",
		metric.WithDescription("Responses discarded because a newer generation exists."),
	); err != nil {
		return nil, err
	}
	if met.Commits, err = m.Int64Counter("qtranslit.commits",
		metric.WithDescription("Text commits into a surface by kind."),
	); err != nil {
		return nil, err
	}
	if met.ProviderRequests, err = m.Int64Counter("qtranslit.provider.requests",
		metric.WithDescription("Upstream provider calls by language and status."),
	); err != nil {
		return nil, err
	}
	if met.ProviderDuration, err = m.Float64Histogram("qtranslit.provider.duration",
		metric.WithDescription("Upstream provider latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns instruments bound to the global meter provider.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

func (m *Metrics) RecordRequest(ctx context.Context, trigger string) {
	if m == nil {
		return
	}
	m.Requests.Add(ctx, 1, metric.WithAttributes(attribute.String("trigger", trigger)))
}

func (m *Metrics) RecordStale(ctx context.Context) {
	if m == nil {
		return
	}
	m.StaleResponses.Add(ctx, 1)
}

func (m *Metrics) RecordCommit(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.Commits.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) RecordProvider(ctx context.Context, language string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("language", language),
		attribute.String("status", status),
	)
	m.ProviderRequests.Add(ctx, 1, attrs)
	m.ProviderDuration.Record(ctx, d.Seconds(), attrs)
}
