package suite

import (
	"sort"
)

// Distribution summarizes a set of throughput samples.
type Distribution struct {
	Mean   float64
	Median float64
	P90    float64
	Min    float64
	Max    float64
}

// Metrics contains computed metrics for one case.
type Metrics struct {
	Ratio          float64
	CompressMBps   Distribution
	DecompressMBps Distribution
}

// ComputeMetrics computes detailed metrics from a case result.
func ComputeMetrics(result *CaseResult) *Metrics {
	return &Metrics{
		Ratio:          result.Ratio(),
		CompressMBps:   summarize(result.CompressMBps()),
		DecompressMBps: summarize(result.DecompressMBps()),
	}
}

func summarize(samples []float64) Distribution {
	if len(samples) == 0 {
		return Distribution{}
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	return Distribution{
		Mean:   sum / float64(len(sorted)),
		Median: percentile(sorted, 50),
		P90:    percentile(sorted, 90),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * p / 100)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
