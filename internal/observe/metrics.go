// Package observe provides observability primitives for cadence: OpenTelemetry
// metrics with a Prometheus exporter bridge so batch runs driven by an
// external pipeline can still be scraped via a standard /metrics endpoint.
//
// A package-level default [Metrics] instance ([DefaultMetrics]) is provided
// for convenience; tests should use [NewMetrics] with a custom
// [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all cadence metrics.
const meterName = "github.com/phonetica/cadence"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use; the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// DetectDuration tracks wall-clock latency of one full detection pass.
	DetectDuration metric.Float64Histogram

	// AudioDuration tracks the duration of the analysed audio in seconds.
	AudioDuration metric.Float64Histogram

	// SentencesDetected counts sentences emitted. Use with attribute:
	//   attribute.String("source", ...)
	SentencesDetected metric.Int64Counter

	// DecodeErrors counts failed decode attempts.
	DecodeErrors metric.Int64Counter
}

// detectLatencyBuckets defines histogram bucket boundaries (in seconds) for
// batch detection passes over buffers from a few seconds to podcast length.
var detectLatencyBuckets = []float64{
	0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60,
}

// audioDurationBuckets covers typical input lengths in seconds.
var audioDurationBuckets = []float64{
	1, 5, 15, 60, 300, 900, 1800, 3600, 7200,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.DetectDuration, err = m.Float64Histogram("cadence.detect.duration",
		metric.WithDescription("Latency of one sentence detection pass."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(detectLatencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.AudioDuration, err = m.Float64Histogram("cadence.audio.duration",
		metric.WithDescription("Duration of the analysed audio."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(audioDurationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SentencesDetected, err = m.Int64Counter("cadence.sentences.detected",
		metric.WithDescription("Number of sentences emitted."),
	); err != nil {
		return nil, err
	}
	if met.DecodeErrors, err = m.Int64Counter("cadence.decode.errors",
		metric.WithDescription("Number of failed audio decode attempts."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the process-wide [Metrics] instance backed by the
// global OTel meter provider. Instruments are created lazily on first call;
// creation errors surface as no-op instruments.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		m, err := NewMetrics(otel.GetMeterProvider())
		if err != nil {
			m = &Metrics{}
		}
		defaultMetrics = m
	})
	return defaultMetrics
}

// RecordDetection records the instruments of one completed detection pass.
// Nil-safe on a zero Metrics value: unset instruments are skipped.
func (m *Metrics) RecordDetection(ctx context.Context, source string, detectSeconds, audioSeconds float64, sentences int) {
	attrs := metric.WithAttributes(attribute.String("source", source))
	if m.DetectDuration != nil {
		m.DetectDuration.Record(ctx, detectSeconds, attrs)
	}
	if m.AudioDuration != nil {
		m.AudioDuration.Record(ctx, audioSeconds, attrs)
	}
	if m.SentencesDetected != nil {
		m.SentencesDetected.Add(ctx, int64(sentences), attrs)
	}
}
