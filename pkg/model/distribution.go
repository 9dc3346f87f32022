package model

import "sort"

// DistributionSnapshot is a point-in-time quantile summary of a sample set.
// The aggregator passes it through unchanged.
type DistributionSnapshot struct {
	Count float64 `json:"count"`
	Total float64 `json:"total"`
	P01   int64   `json:"p01"`
	P05   int64   `json:"p05"`
	P10   int64   `json:"p10"`
	P25   int64   `json:"p25"`
	P50   int64   `json:"p50"`
	P75   int64   `json:"p75"`
	P90   int64   `json:"p90"`
	P95   int64   `json:"p95"`
	P99   int64   `json:"p99"`
	Min   int64   `json:"min"`
	Max   int64   `json:"max"`
	Avg   float64 `json:"avg"`
}

// Distribution accumulates samples (e.g. per-split scheduling times) and
// produces quantile snapshots. Not safe for concurrent use.
type Distribution struct {
	samples []int64
	total   int64
}

// NewDistribution creates an empty distribution.
func NewDistribution() *Distribution {
	return &Distribution{}
}

// Add records one sample.
func (d *Distribution) Add(value int64) {
	d.samples = append(d.samples, value)
	d.total += value
}

// Count returns the number of recorded samples.
func (d *Distribution) Count() int {
	return len(d.samples)
}

// Snapshot computes the quantile summary of the samples recorded so far.
func (d *Distribution) Snapshot() DistributionSnapshot {
	n := len(d.samples)
	if n == 0 {
		return DistributionSnapshot{}
	}

	sorted := make([]int64, n)
	copy(sorted, d.samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	quantile := func(q float64) int64 {
		idx := int(q * float64(n-1))
		return sorted[idx]
	}

	return DistributionSnapshot{
		Count: float64(n),
		Total: float64(d.total),
		P01:   quantile(0.01),
		P05:   quantile(0.05),
		P10:   quantile(0.10),
		P25:   quantile(0.25),
		P50:   quantile(0.50),
		P75:   quantile(0.75),
		P90:   quantile(0.90),
		P95:   quantile(0.95),
		P99:   quantile(0.99),
		Min:   sorted[0],
		Max:   sorted[n-1],
		Avg:   float64(d.total) / float64(n),
	}
}
