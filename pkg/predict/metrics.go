package predict

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/bastiangx/swipeserve/pkg/predict"

// Outcomes recorded per source call.
const (
	OutcomeOK          = "ok"
	OutcomeEmpty       = "empty"
	OutcomeError       = "error"
	OutcomeTimeout     = "timeout"
	OutcomePanic       = "panic"
	OutcomeUnavailable = "unavailable"
)

// Metrics holds the orchestrator's instruments.
type Metrics struct {
	// Requests counts source calls by source and outcome.
	Requests metric.Int64Counter
	// Duration tracks source call latency in seconds by source.
	Duration metric.Float64Histogram
}

var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5,
}

// NewMetrics creates the instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Requests, err = m.Int64Counter("swipeserve.predict.requests",
		metric.WithDescription("Prediction source calls by source and outcome."),
	); err != nil {
		return nil, err
	}
	if met.Duration, err = m.Float64Histogram("swipeserve.predict.duration",
		metric.WithDescription("Latency of prediction source calls."),
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

// DefaultMetrics returns metrics on the global meter provider.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("predict: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

func (m *Metrics) record(ctx context.Context, source, outcome string, elapsed time.Duration) {
	m.Requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("outcome", outcome),
	))
	if outcome != OutcomeUnavailable {
		m.Duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
			attribute.String("source", source),
		))
	}
}
