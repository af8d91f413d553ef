// Package main provides the zstream-bench CLI tool for benchmarking
// compression backends against each other.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zstreamio/zstream"
	"github.com/zstreamio/zstream/benchmark/analysis"
	"github.com/zstreamio/zstream/benchmark/corpus"
	"github.com/zstreamio/zstream/benchmark/reporting"
	"github.com/zstreamio/zstream/benchmark/suite"
)

var (
	backendNames []string
	formatNames  []string
	levels       []int
	corpora      []string
	payloadSize  int
	iterations   int
	outputFormat string
	outputFile   string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "zstream-bench",
	Short: "Benchmark compression backends for zstream",
	Long: `zstream-bench compares compression backends across formats, levels
and payload types.

It measures compression and decompression throughput on deterministic
corpora and reports whether the difference between two backends is
statistically significant.

Examples:
  # Compare the default backends
  zstream-bench run

  # Benchmark one backend at two levels on large payloads
  zstream-bench run --backends klauspost --levels 1,9 --size 16777216

  # Output as markdown report
  zstream-bench run --format markdown --output report.md`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the benchmark grid",
	RunE:  runBenchmark,
}

func init() {
	runCmd.Flags().StringSliceVarP(&backendNames, "backends", "b", zstream.Backends(), "backends to compare")
	runCmd.Flags().StringSliceVar(&formatNames, "formats", []string{"gzip"}, "formats to benchmark: gzip, zlib, raw")
	runCmd.Flags().IntSliceVarP(&levels, "levels", "l", []int{1, 6, 9}, "compression levels to benchmark")
	runCmd.Flags().StringSliceVar(&corpora, "corpora", corpus.Names(), "corpora to benchmark")
	runCmd.Flags().IntVar(&payloadSize, "size", 1<<20, "uncompressed payload size in bytes")
	runCmd.Flags().IntVarP(&iterations, "iterations", "n", 20, "timed samples per case")
	runCmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format: text, markdown")
	runCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	formats := make([]zstream.Format, 0, len(formatNames))
	for _, name := range formatNames {
		f, err := zstream.ParseFormat(name)
		if err != nil {
			return err
		}
		formats = append(formats, f)
	}

	levelValues := make([]zstream.Level, 0, len(levels))
	for _, l := range levels {
		levelValues = append(levelValues, zstream.Level(l))
	}

	cfg := suite.Config{
		Backends:   backendNames,
		Formats:    formats,
		Levels:     levelValues,
		Corpora:    corpora,
		Size:       payloadSize,
		Iterations: iterations,
	}

	runner, err := suite.NewRunner(cfg)
	if err != nil {
		return err
	}

	cases := len(cfg.Backends) * len(cfg.Formats) * len(cfg.Levels) * len(cfg.Corpora)
	if verbose {
		fmt.Fprintf(os.Stderr, "Running %d cases (%d iterations each)...\n", cases, iterations)
	}

	results, err := runner.Run(context.Background())
	if err != nil {
		return err
	}

	// Compare the first two backends over the pooled compression
	// throughput samples of the shared grid.
	var comparison *analysis.BackendComparison
	if len(backendNames) >= 2 {
		pooled := poolCompressSamples(results)
		comparison = analysis.CompareBackends(
			backendNames[0], pooled[backendNames[0]],
			backendNames[1], pooled[backendNames[1]],
			10000, // Bootstrap iterations.
			0.95,  // 95% confidence.
		)
	}

	var output io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	switch outputFormat {
	case "markdown":
		return writeMarkdownReport(output, cfg, results, comparison)
	default:
		return writeTextReport(output, cfg, results, comparison)
	}
}

func poolCompressSamples(results []*suite.CaseResult) map[string][]float64 {
	pooled := make(map[string][]float64)
	for _, res := range results {
		pooled[res.Backend] = append(pooled[res.Backend], res.CompressMBps()...)
	}
	return pooled
}

func writeTextReport(w io.Writer, cfg suite.Config, results []*suite.CaseResult, comp *analysis.BackendComparison) error {
	fmt.Fprintf(w, "zstream Backend Benchmark\n")
	fmt.Fprintf(w, "=========================\n\n")
	fmt.Fprintf(w, "Payload: %d bytes\n", cfg.Size)
	fmt.Fprintf(w, "Iterations: %d\n", cfg.Iterations)
	fmt.Fprintf(w, "Cases: %d\n\n", len(results))

	fmt.Fprintf(w, "Results:\n")
	fmt.Fprintf(w, "--------\n\n")

	for _, res := range results {
		m := suite.ComputeMetrics(res)
		fmt.Fprintf(w, "%s:\n", res.Name())
		fmt.Fprintf(w, "  Ratio:           %.3f\n", m.Ratio)
		fmt.Fprintf(w, "  Compress MiB/s:  %.1f (p90 %.1f)\n", m.CompressMBps.Median, m.CompressMBps.P90)
		fmt.Fprintf(w, "  Decompress MiB/s: %.1f (p90 %.1f)\n\n", m.DecompressMBps.Median, m.DecompressMBps.P90)
	}

	if comp != nil {
		fmt.Fprintf(w, "Comparison:\n")
		fmt.Fprintf(w, "-----------\n\n")
		fmt.Fprintln(w, comp.Summary())
	}
	return nil
}

func writeMarkdownReport(w io.Writer, cfg suite.Config, results []*suite.CaseResult, comp *analysis.BackendComparison) error {
	report := reporting.NewMarkdownReport(w)
	report.WriteHeader("zstream Backend Benchmark")
	report.WriteMethodology(cfg)
	report.WriteSummaryTable(results)
	report.WriteThroughputChart(results)
	if comp != nil {
		report.WriteComparison(comp)
	}
	report.WriteFooter()
	return nil
}
