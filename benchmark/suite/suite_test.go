package suite

import (
	"context"
	"math"
	"testing"

	"github.com/zstreamio/zstream"
)

func testConfig() Config {
	return Config{
		Backends:   []string{"klauspost", "stdlib"},
		Formats:    []zstream.Format{zstream.Gzip, zstream.Zlib},
		Levels:     []zstream.Level{zstream.BestSpeed},
		Corpora:    []string{"zeroes", "random"},
		Size:       4096,
		Iterations: 3,
	}
}

func TestRunner_Run(t *testing.T) {
	r, err := NewRunner(testConfig())
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}

	results, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// 2 backends * 2 formats * 1 level * 2 corpora.
	if len(results) != 8 {
		t.Fatalf("Run() returned %d cases, want 8", len(results))
	}

	for _, res := range results {
		if len(res.Samples) != 3 {
			t.Errorf("%s: %d samples, want 3", res.Name(), len(res.Samples))
		}
		if res.InputBytes != 4096 {
			t.Errorf("%s: InputBytes = %d, want 4096", res.Name(), res.InputBytes)
		}
		if res.OutputBytes <= 0 {
			t.Errorf("%s: OutputBytes = %d, want > 0", res.Name(), res.OutputBytes)
		}
		switch res.Corpus {
		case "zeroes":
			if res.Ratio() > 0.1 {
				t.Errorf("%s: ratio = %.3f, want < 0.1 for zeroes", res.Name(), res.Ratio())
			}
		case "random":
			if res.Ratio() < 0.9 {
				t.Errorf("%s: ratio = %.3f, want > 0.9 for random", res.Name(), res.Ratio())
			}
		}
	}
}

func TestRunner_Run_Cancelled(t *testing.T) {
	r, err := NewRunner(testConfig())
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Run(ctx); err == nil {
		t.Error("Run() with cancelled context succeeded, want error")
	}
}

func TestNewRunner_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "no_backends", mutate: func(c *Config) { c.Backends = nil }},
		{name: "no_formats", mutate: func(c *Config) { c.Formats = nil }},
		{name: "no_levels", mutate: func(c *Config) { c.Levels = nil }},
		{name: "no_corpora", mutate: func(c *Config) { c.Corpora = nil }},
		{name: "zero_size", mutate: func(c *Config) { c.Size = 0 }},
		{name: "zero_iterations", mutate: func(c *Config) { c.Iterations = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			if _, err := NewRunner(cfg); err == nil {
				t.Error("NewRunner() succeeded, want error")
			}
		})
	}
}

func TestRunner_Run_UnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Backends = []string{"zstd"}
	r, err := NewRunner(cfg)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	if _, err := r.Run(context.Background()); err == nil {
		t.Error("Run() with unknown backend succeeded, want error")
	}
}

func TestComputeMetrics(t *testing.T) {
	result := &CaseResult{
		Backend:     "klauspost",
		Format:      zstream.Gzip,
		Level:       zstream.BestSpeed,
		Corpus:      "text",
		InputBytes:  1 << 20,
		OutputBytes: 1 << 18,
		Samples: []Sample{
			{CompressNanos: 4e6, DecompressNanos: 2e6},
			{CompressNanos: 5e6, DecompressNanos: 2e6},
			{CompressNanos: 6e6, DecompressNanos: 3e6},
		},
	}

	m := ComputeMetrics(result)

	if m.Ratio != 0.25 {
		t.Errorf("Ratio = %v, want 0.25", m.Ratio)
	}
	// 1 MiB in 5e6 ns is 200 MiB/s.
	if math.Abs(m.CompressMBps.Median-200) > 0.001 {
		t.Errorf("CompressMBps.Median = %v, want 200", m.CompressMBps.Median)
	}
	if m.CompressMBps.Min > m.CompressMBps.Mean || m.CompressMBps.Mean > m.CompressMBps.Max {
		t.Errorf("mean %v outside [min %v, max %v]", m.CompressMBps.Mean, m.CompressMBps.Min, m.CompressMBps.Max)
	}
	if math.Abs(m.DecompressMBps.Max-500) > 0.001 {
		t.Errorf("DecompressMBps.Max = %v, want 500", m.DecompressMBps.Max)
	}
}

func TestCaseResult_Name(t *testing.T) {
	res := &CaseResult{
		Backend: "stdlib",
		Format:  zstream.Zlib,
		Level:   zstream.Level(6),
		Corpus:  "text",
	}
	if got, want := res.Name(), "text/zlib/6/stdlib"; got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}
}
