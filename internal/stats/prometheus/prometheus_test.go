package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/zstreamio/zstream/internal/stats"
)

// findFamily gathers the registry and returns the named metric family,
// or nil if it was never registered.
func findFamily(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func TestNew_DefaultRegistry(t *testing.T) {
	c := New(nil)
	if c == nil {
		t.Fatal("New(nil) returned nil")
	}
	if c.registry == nil {
		t.Error("registry should not be nil")
	}
}

func TestNew_CustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)
	if c.registry != reg {
		t.Error("registry should be the custom registry")
	}
}

func TestCollector_IncCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.IncCounter(stats.MetricCompressBytesIn, 5)
	c.IncCounter(stats.MetricCompressBytesIn, 3)

	fam := findFamily(t, reg, stats.MetricCompressBytesIn)
	if fam == nil {
		t.Fatalf("counter %s not found in registry", stats.MetricCompressBytesIn)
	}
	if len(fam.GetMetric()) == 0 {
		t.Fatal("counter has no metrics")
	}
	if val := fam.GetMetric()[0].GetCounter().GetValue(); val != 8 {
		t.Errorf("counter value = %v, want 8", val)
	}
}

func TestCollector_SetGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.SetGauge("zstream_open_streams", 42)

	fam := findFamily(t, reg, "zstream_open_streams")
	if fam == nil {
		t.Fatal("gauge zstream_open_streams not found in registry")
	}
	if len(fam.GetMetric()) == 0 {
		t.Fatal("gauge has no metrics")
	}
	if val := fam.GetMetric()[0].GetGauge().GetValue(); val != 42 {
		t.Errorf("gauge value = %v, want 42", val)
	}
}

func TestCollector_ObserveHistogram_RatioBuckets(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.ObserveHistogram(stats.MetricCompressionRatio, 0.04)
	c.ObserveHistogram(stats.MetricCompressionRatio, 0.35)
	c.ObserveHistogram(stats.MetricCompressionRatio, 1.02)

	fam := findFamily(t, reg, stats.MetricCompressionRatio)
	if fam == nil {
		t.Fatalf("histogram %s not found in registry", stats.MetricCompressionRatio)
	}
	h := fam.GetMetric()[0].GetHistogram()
	if got := h.GetSampleCount(); got != 3 {
		t.Errorf("histogram count = %v, want 3", got)
	}
	if got := len(h.GetBucket()); got != len(ratioBuckets) {
		t.Errorf("histogram buckets = %d, want %d", got, len(ratioBuckets))
	}
}

func TestCollector_ReuseMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.IncCounter(stats.MetricChecksumErrors, 1)
	c.IncCounter(stats.MetricChecksumErrors, 1)
	c.IncCounter(stats.MetricChecksumErrors, 1)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	count := 0
	for _, f := range families {
		if f.GetName() == stats.MetricChecksumErrors {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected 1 metric named %s, got %d", stats.MetricChecksumErrors, count)
	}
}

func TestCollector_ConcurrentAccess(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				c.IncCounter(stats.MetricCompressStreams, 1)
				c.SetGauge("zstream_open_streams", int64(j))
				c.ObserveHistogram(stats.MetricCompressionRatio, float64(j)/100)
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	counter := findFamily(t, reg, stats.MetricCompressStreams)
	if counter == nil {
		t.Fatalf("%s not found", stats.MetricCompressStreams)
	}
	if val := counter.GetMetric()[0].GetCounter().GetValue(); val != 1000 { // 10 goroutines * 100 increments
		t.Errorf("counter value = %v, want 1000", val)
	}

	histogram := findFamily(t, reg, stats.MetricCompressionRatio)
	if histogram == nil {
		t.Fatalf("%s not found", stats.MetricCompressionRatio)
	}
	if count := histogram.GetMetric()[0].GetHistogram().GetSampleCount(); count != 1000 {
		t.Errorf("histogram count = %v, want 1000", count)
	}
}

func TestCollector_AlreadyRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()

	// Pre-register a counter with the same name and help. The registry
	// treats a help mismatch as a different metric, so reuse helpFor.
	existingCounter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: stats.MetricHeaderErrors,
		Help: helpFor(stats.MetricHeaderErrors),
	})
	reg.MustRegister(existingCounter)
	existingCounter.Add(100)

	// Create collector and use the same metric name.
	c := New(reg)
	c.IncCounter(stats.MetricHeaderErrors, 5)

	fam := findFamily(t, reg, stats.MetricHeaderErrors)
	if fam == nil {
		t.Fatalf("%s not found", stats.MetricHeaderErrors)
	}
	// 100 from the pre-registered counter plus 5 from the collector.
	if val := fam.GetMetric()[0].GetCounter().GetValue(); val != 105 {
		t.Errorf("counter value = %v, want 105", val)
	}
}
