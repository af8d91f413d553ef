// Package reporting provides report generation for benchmark results.
package reporting

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/zstreamio/zstream/benchmark/analysis"
	"github.com/zstreamio/zstream/benchmark/suite"
)

// MarkdownReport generates benchmark reports in Markdown format.
type MarkdownReport struct {
	w io.Writer
}

// NewMarkdownReport creates a new Markdown report writer.
func NewMarkdownReport(w io.Writer) *MarkdownReport {
	return &MarkdownReport{w: w}
}

// WriteHeader writes the report header.
func (r *MarkdownReport) WriteHeader(title string) {
	fmt.Fprintf(r.w, "# %s\n\n", title)
	fmt.Fprintf(r.w, "Generated: %s\n\n", time.Now().Format(time.RFC3339))
}

// WriteMethodology writes the methodology section.
func (r *MarkdownReport) WriteMethodology(cfg suite.Config) {
	fmt.Fprintln(r.w, "## Methodology")
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "- **Payload size:** %d bytes per case\n", cfg.Size)
	fmt.Fprintf(r.w, "- **Iterations:** %d timed samples per case\n", cfg.Iterations)
	fmt.Fprintf(r.w, "- **Corpora:** %s\n", strings.Join(cfg.Corpora, ", "))
	fmt.Fprintln(r.w, "- **Metric:** Throughput in MiB/s of uncompressed data (higher is better)")
	fmt.Fprintln(r.w, "- **Statistical tests:** Mann-Whitney U (non-parametric), Cohen's d effect size")
	fmt.Fprintln(r.w)
}

// WriteSummaryTable writes the per-case summary table.
func (r *MarkdownReport) WriteSummaryTable(results []*suite.CaseResult) {
	fmt.Fprintln(r.w, "## Summary")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "| Corpus | Format | Level | Backend | Ratio | Compress MiB/s | Decompress MiB/s |")
	fmt.Fprintln(r.w, "|--------|--------|-------|---------|-------|----------------|------------------|")

	for _, res := range results {
		m := suite.ComputeMetrics(res)
		fmt.Fprintf(r.w, "| %s | %s | %d | %s | %.3f | %.1f | %.1f |\n",
			res.Corpus, res.Format, res.Level, res.Backend,
			m.Ratio, m.CompressMBps.Median, m.DecompressMBps.Median)
	}
	fmt.Fprintln(r.w)
}

// WriteComparison writes a detailed backend comparison section.
func (r *MarkdownReport) WriteComparison(comp *analysis.BackendComparison) {
	fmt.Fprintf(r.w, "## %s vs %s\n\n", comp.Backend1, comp.Backend2)

	fmt.Fprintln(r.w, "### Descriptive Statistics")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "| Metric | "+comp.Backend1+" | "+comp.Backend2+" |")
	fmt.Fprintln(r.w, "|--------|"+strings.Repeat("-", len(comp.Backend1)+2)+"|"+strings.Repeat("-", len(comp.Backend2)+2)+"|")
	fmt.Fprintf(r.w, "| Mean MiB/s | %.1f | %.1f |\n", comp.Stats1.Mean, comp.Stats2.Mean)
	fmt.Fprintf(r.w, "| Median MiB/s | %.1f | %.1f |\n", comp.Stats1.Median, comp.Stats2.Median)
	fmt.Fprintf(r.w, "| Std Dev | %.1f | %.1f |\n", comp.Stats1.StdDev, comp.Stats2.StdDev)
	fmt.Fprintf(r.w, "| Min | %.1f | %.1f |\n", comp.Stats1.Min, comp.Stats2.Min)
	fmt.Fprintf(r.w, "| Max | %.1f | %.1f |\n", comp.Stats1.Max, comp.Stats2.Max)
	fmt.Fprintln(r.w)

	fmt.Fprintln(r.w, "### Statistical Analysis")
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "- **Mann-Whitney U:** %.2f (z=%.2f, p=%.4f)\n",
		comp.MannWhitney.U, comp.MannWhitney.Z, comp.MannWhitney.PValue)
	fmt.Fprintf(r.w, "- **Effect size (Cohen's d):** %.2f (%s)\n",
		comp.EffectSize.CohensD, comp.EffectSize.Interpretation)
	fmt.Fprintf(r.w, "- **%.0f%% CI for mean difference:** [%.1f, %.1f] MiB/s\n",
		comp.BootstrapCI.Confidence*100, comp.BootstrapCI.LowerBound, comp.BootstrapCI.UpperBound)
	fmt.Fprintln(r.w)

	fmt.Fprintln(r.w, "### Conclusion")
	fmt.Fprintln(r.w)
	if comp.WinnerConfident {
		fmt.Fprintf(r.w, "**%s** is significantly faster than %s ",
			comp.Winner, otherBackend(comp.Winner, comp.Backend1, comp.Backend2))
		fmt.Fprintf(r.w, "(p < 0.05, effect size: %s).\n", comp.EffectSize.Interpretation)
	} else {
		fmt.Fprintln(r.w, "No statistically significant throughput difference detected between backends (p >= 0.05).")
	}
	fmt.Fprintln(r.w)
}

func otherBackend(winner, b1, b2 string) string {
	if winner == b1 {
		return b2
	}
	return b1
}

// WriteThroughputChart writes an ASCII chart of median compression
// throughput per case.
func (r *MarkdownReport) WriteThroughputChart(results []*suite.CaseResult) {
	fmt.Fprintln(r.w, "## Compression Throughput")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "```")

	labelWidth := 0
	medians := make([]float64, len(results))
	var maxMBps float64
	for i, res := range results {
		if n := len(res.Name()); n > labelWidth {
			labelWidth = n
		}
		medians[i] = suite.ComputeMetrics(res).CompressMBps.Median
		if medians[i] > maxMBps {
			maxMBps = medians[i]
		}
	}

	const width = 40
	for i, res := range results {
		barLen := 0
		if maxMBps > 0 {
			barLen = int(medians[i] / maxMBps * width)
		}
		bar := strings.Repeat("█", barLen)
		fmt.Fprintf(r.w, "%-*s │ %s %.1f\n", labelWidth, res.Name(), bar, medians[i])
	}

	fmt.Fprintln(r.w, "```")
	fmt.Fprintln(r.w)
}

// WriteFooter writes the report footer.
func (r *MarkdownReport) WriteFooter() {
	fmt.Fprintln(r.w, "---")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "*Report generated by zstream-bench*")
}
