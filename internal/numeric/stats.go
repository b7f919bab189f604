// Package numeric provides small, dependency-free statistical helpers
// shared by every pipeline: min-max normalization, Shannon entropy, and
// the Gini coefficient. Kept deliberately free of any numerical library
// per the design note that the clustering and effort engines must be
// pure-arithmetic.
package numeric

import (
	"math"
	"sort"
)

// MinMax rescales values to [0,1]. A singleton or constant slice
// normalizes every element to 0.
func MinMax(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	span := hi - lo
	if span == 0 {
		return out // all zero
	}

	for i, v := range values {
		out[i] = (v - lo) / span
	}

	return out
}

// MinMaxScalar rescales a single value against the observed [lo,hi] range.
// Returns 0 when the range is degenerate.
func MinMaxScalar(v, lo, hi float64) float64 {
	span := hi - lo
	if span == 0 {
		return 0
	}

	return (v - lo) / span
}

// Entropy computes the Shannon entropy (base 2) of a probability
// distribution. Values that are zero or negative are skipped (0 log 0 = 0
// by convention).
func Entropy(probabilities []float64) float64 {
	var h float64

	for _, p := range probabilities {
		if p <= 0 {
			continue
		}

		h -= p * math.Log2(p)
	}

	return h
}

// Gini computes the Gini coefficient of a non-negative distribution,
// in [0,1]. Returns 0 for fewer than two values or an all-zero
// distribution.
func Gini(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum, weightedSum float64

	for i, v := range sorted {
		sum += v
		weightedSum += float64(i+1) * v
	}

	if sum == 0 {
		return 0
	}

	// G = (2*sum(i*x_i))/(n*sum(x_i)) - (n+1)/n, for 1-indexed ascending x.
	return (2*weightedSum)/(float64(n)*sum) - float64(n+1)/float64(n)
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// Clamp01 clamps v into [0,1].
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
