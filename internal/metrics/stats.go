package metrics

import (
	"math"
	"sort"
)

// median returns the middle value of an unsorted sample. Even-length samples
// average the two central elements; an empty sample returns 0.
func median(sample []float64) float64 {
	n := len(sample)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, sample)
	sort.Float64s(sorted)

	mid := n / 2
	if n%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// percentile returns the p-th percentile of an unsorted sample using the
// nearest-rank method: index = ceil(p/100 × n) − 1, clamped to the sample
// bounds. For a 3-element sample and p=90 this picks index 2, the maximum.
// An empty sample returns 0.
func percentile(sample []float64, p float64) float64 {
	n := len(sample)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, sample)
	sort.Float64s(sorted)

	idx := int(math.Ceil(p/100*float64(n))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return sorted[idx]
}
