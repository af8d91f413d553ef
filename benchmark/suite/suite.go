// Package suite runs compression benchmark grids across backends,
// formats, levels and corpora, collecting throughput samples and
// compressed sizes for later analysis.
package suite

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/zstreamio/zstream"
	"github.com/zstreamio/zstream/benchmark/corpus"
)

// Config describes the benchmark grid. Every combination of backend,
// format, level and corpus becomes one case.
type Config struct {
	Backends   []string
	Formats    []zstream.Format
	Levels     []zstream.Level
	Corpora    []string
	Size       int // Uncompressed payload size per case.
	Iterations int // Timed samples per case.
}

// Sample holds one timed compress and decompress round.
type Sample struct {
	CompressNanos   int64
	DecompressNanos int64
}

// CaseResult holds the measurements for one grid case.
type CaseResult struct {
	Backend     string
	Format      zstream.Format
	Level       zstream.Level
	Corpus      string
	InputBytes  int64
	OutputBytes int64
	Samples     []Sample
}

// Ratio returns compressed size over input size.
func (c *CaseResult) Ratio() float64 {
	if c.InputBytes == 0 {
		return 0
	}
	return float64(c.OutputBytes) / float64(c.InputBytes)
}

// CompressMBps returns one throughput sample per iteration, in
// mebibytes of input per second.
func (c *CaseResult) CompressMBps() []float64 {
	out := make([]float64, len(c.Samples))
	for i, s := range c.Samples {
		out[i] = throughput(c.InputBytes, s.CompressNanos)
	}
	return out
}

// DecompressMBps returns one throughput sample per iteration, in
// mebibytes of output per second.
func (c *CaseResult) DecompressMBps() []float64 {
	out := make([]float64, len(c.Samples))
	for i, s := range c.Samples {
		out[i] = throughput(c.InputBytes, s.DecompressNanos)
	}
	return out
}

// Name identifies the case in reports, e.g. "text/gzip/6/klauspost".
func (c *CaseResult) Name() string {
	return fmt.Sprintf("%s/%s/%d/%s", c.Corpus, c.Format, c.Level, c.Backend)
}

func throughput(bytes, nanos int64) float64 {
	if nanos <= 0 {
		nanos = 1
	}
	return float64(bytes) / float64(nanos) * 1e9 / (1 << 20)
}

// Runner executes a benchmark grid.
type Runner struct {
	cfg Config
}

// NewRunner validates the config and creates a Runner.
func NewRunner(cfg Config) (*Runner, error) {
	if len(cfg.Backends) == 0 {
		return nil, fmt.Errorf("suite: no backends configured")
	}
	if len(cfg.Formats) == 0 {
		return nil, fmt.Errorf("suite: no formats configured")
	}
	if len(cfg.Levels) == 0 {
		return nil, fmt.Errorf("suite: no levels configured")
	}
	if len(cfg.Corpora) == 0 {
		return nil, fmt.Errorf("suite: no corpora configured")
	}
	if cfg.Size <= 0 {
		return nil, fmt.Errorf("suite: payload size must be positive, got %d", cfg.Size)
	}
	if cfg.Iterations <= 0 {
		return nil, fmt.Errorf("suite: iterations must be positive, got %d", cfg.Iterations)
	}
	return &Runner{cfg: cfg}, nil
}

// Run executes every case in the grid. Results appear in corpus,
// format, level, backend order.
func (r *Runner) Run(ctx context.Context) ([]*CaseResult, error) {
	var results []*CaseResult
	for _, corpusName := range r.cfg.Corpora {
		data, err := corpus.Generate(corpusName, r.cfg.Size)
		if err != nil {
			return nil, err
		}
		for _, format := range r.cfg.Formats {
			for _, level := range r.cfg.Levels {
				for _, backend := range r.cfg.Backends {
					if err := ctx.Err(); err != nil {
						return nil, err
					}
					res, err := r.runCase(backend, format, level, corpusName, data)
					if err != nil {
						return nil, err
					}
					results = append(results, res)
				}
			}
		}
	}
	return results, nil
}

func (r *Runner) runCase(backend string, format zstream.Format, level zstream.Level, corpusName string, data []byte) (*CaseResult, error) {
	res := &CaseResult{
		Backend:    backend,
		Format:     format,
		Level:      level,
		Corpus:     corpusName,
		InputBytes: int64(len(data)),
		Samples:    make([]Sample, 0, r.cfg.Iterations),
	}

	opts := []zstream.Option{
		zstream.WithBackend(backend),
		zstream.WithLevel(level),
	}

	var compressed bytes.Buffer
	compressed.Grow(len(data) + 64)

	for i := 0; i < r.cfg.Iterations; i++ {
		compressed.Reset()

		start := time.Now()
		zw, err := zstream.NewWriter(&compressed, format, opts...)
		if err != nil {
			return nil, fmt.Errorf("suite: %s: %w", res.Name(), err)
		}
		if _, err := zw.Write(data); err != nil {
			return nil, fmt.Errorf("suite: %s: compress: %w", res.Name(), err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("suite: %s: compress: %w", res.Name(), err)
		}
		compressNanos := time.Since(start).Nanoseconds()

		start = time.Now()
		zr, err := zstream.NewReader(bytes.NewReader(compressed.Bytes()), format, zstream.WithBackend(backend))
		if err != nil {
			return nil, fmt.Errorf("suite: %s: decompress: %w", res.Name(), err)
		}
		n, err := io.Copy(io.Discard, zr)
		if err != nil {
			return nil, fmt.Errorf("suite: %s: decompress: %w", res.Name(), err)
		}
		decompressNanos := time.Since(start).Nanoseconds()

		if n != int64(len(data)) {
			return nil, fmt.Errorf("suite: %s: roundtrip returned %d bytes, want %d", res.Name(), n, len(data))
		}

		res.Samples = append(res.Samples, Sample{
			CompressNanos:   compressNanos,
			DecompressNanos: decompressNanos,
		})
	}
	res.OutputBytes = int64(compressed.Len())

	return res, nil
}
