package observe

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNewMetrics_RecordsThroughProvider(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	ctx := context.Background()
	m.RecordDetection(ctx, "a.wav", 0.25, 12, 3)
	m.DecodeErrors.Add(ctx, 1)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(rm.ScopeMetrics) != 1 {
		t.Fatalf("got %d instrumentation scopes, want 1", len(rm.ScopeMetrics))
	}

	byName := map[string]bool{}
	for _, inst := range rm.ScopeMetrics[0].Metrics {
		byName[inst.Name] = true
	}
	for _, want := range []string{
		"cadence.detect.duration",
		"cadence.audio.duration",
		"cadence.sentences.detected",
		"cadence.decode.errors",
	} {
		if !byName[want] {
			t.Errorf("instrument %q recorded nothing", want)
		}
	}
}

func TestRecordDetection_ZeroValueSafe(t *testing.T) {
	var m Metrics
	// Must not panic with no instruments initialised.
	m.RecordDetection(context.Background(), "a.wav", 0.1, 2, 1)
}

func TestDefaultMetrics_Singleton(t *testing.T) {
	if DefaultMetrics() != DefaultMetrics() {
		t.Error("DefaultMetrics returned distinct instances")
	}
}
