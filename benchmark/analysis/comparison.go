package analysis

import (
	"fmt"
)

// BackendComparison contains a full statistical comparison of two
// backends over the same benchmark grid. Samples are throughput
// measurements in MiB/s, so larger means faster.
type BackendComparison struct {
	Backend1        string
	Backend2        string
	Stats1          *DescriptiveStats
	Stats2          *DescriptiveStats
	MannWhitney     *MannWhitneyResult
	EffectSize      *EffectSize
	BootstrapCI     *BootstrapResult
	Winner          string // Backend with higher mean throughput, or "tie".
	WinnerConfident bool   // True if statistically significant.
}

// CompareBackends performs a full statistical comparison between two
// backends' throughput samples.
func CompareBackends(
	backend1 string, sample1 []float64,
	backend2 string, sample2 []float64,
	bootstrapIterations int,
	confidence float64,
) *BackendComparison {
	mw := MannWhitneyU(sample1, sample2)
	es := ComputeEffectSize(sample1, sample2)
	bs := BootstrapConfidenceInterval(sample1, sample2, bootstrapIterations, confidence)

	stats1 := Describe(sample1)
	stats2 := Describe(sample2)

	var winner string
	var confident bool
	switch {
	case stats1.Mean > stats2.Mean:
		winner = backend1
		confident = mw.Significant
	case stats2.Mean > stats1.Mean:
		winner = backend2
		confident = mw.Significant
	default:
		winner = "tie"
	}

	return &BackendComparison{
		Backend1:        backend1,
		Backend2:        backend2,
		Stats1:          stats1,
		Stats2:          stats2,
		MannWhitney:     mw,
		EffectSize:      es,
		BootstrapCI:     bs,
		Winner:          winner,
		WinnerConfident: confident,
	}
}

// Summary returns a human-readable summary of the comparison.
func (c *BackendComparison) Summary() string {
	sig := "not statistically significant"
	if c.MannWhitney.Significant {
		sig = fmt.Sprintf("statistically significant (p=%.4f)", c.MannWhitney.PValue)
	}

	return fmt.Sprintf(
		"%s vs %s:\n"+
			"  %s: mean=%.1f MiB/s, median=%.1f, std=%.1f\n"+
			"  %s: mean=%.1f MiB/s, median=%.1f, std=%.1f\n"+
			"  Difference: %.1f MiB/s (%.1f%%)\n"+
			"  Effect size: %.2f (%s)\n"+
			"  Result: %s, %s",
		c.Backend1, c.Backend2,
		c.Backend1, c.Stats1.Mean, c.Stats1.Median, c.Stats1.StdDev,
		c.Backend2, c.Stats2.Mean, c.Stats2.Median, c.Stats2.StdDev,
		c.Stats1.Mean-c.Stats2.Mean,
		safePctDiff(c.Stats1.Mean, c.Stats2.Mean),
		c.EffectSize.CohensD, c.EffectSize.Interpretation,
		c.Winner, sig,
	)
}

func safePctDiff(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return (a - b) / b * 100
}
