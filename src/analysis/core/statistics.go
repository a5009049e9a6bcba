package core

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Rolling series helpers. Outputs are aligned with their input and hold NaN
// where the trailing window is not yet full.

// -----------------------------------------------------------------------------

// NaNs returns a slice of n NaN values.
func NaNs(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// -----------------------------------------------------------------------------

// RollingMean is the simple moving average over window values.
func RollingMean(values []float64, window int) []float64 {
	out := NaNs(len(values))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		out[i] = stat.Mean(values[i-window+1:i+1], nil)
	}
	return out
}

// -----------------------------------------------------------------------------

// RollingStd is the sample (n-1) standard deviation over window values.
func RollingStd(values []float64, window int) []float64 {
	out := NaNs(len(values))
	if window < 2 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		out[i] = stat.StdDev(values[i-window+1:i+1], nil)
	}
	return out
}

// -----------------------------------------------------------------------------

// Diff returns values[i] - values[i-lag].
func Diff(values []float64, lag int) []float64 {
	out := NaNs(len(values))
	for i := lag; i < len(values); i++ {
		out[i] = values[i] - values[i-lag]
	}
	return out
}

// -----------------------------------------------------------------------------

// PctChange returns the relative change from the previous value. A zero
// previous value yields ±Inf (or NaN for 0/0), callers filter non-finite rows.
func PctChange(values []float64) []float64 {
	out := NaNs(len(values))
	for i := 1; i < len(values); i++ {
		out[i] = values[i]/values[i-1] - 1
	}
	return out
}

// -----------------------------------------------------------------------------

// EMA is the recursive exponential average with alpha = 2/(span+1), seeded
// with the first value. NaN inputs before the first finite value are skipped.
func EMA(values []float64, span int) []float64 {
	out := NaNs(len(values))
	alpha := 2.0 / (float64(span) + 1.0)

	started := false
	prev := 0.0
	for i, v := range values {
		if math.IsNaN(v) {
			if started {
				out[i] = prev
			}
			continue
		}
		if !started {
			prev = v
			started = true
		} else {
			prev = alpha*v + (1-alpha)*prev
		}
		out[i] = prev
	}
	return out
}

// -----------------------------------------------------------------------------

// IsFinite reports whether v is neither NaN nor ±Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// -----------------------------------------------------------------------------

// RSquared is the coefficient of determination of predicted against actual.
// A constant target scores 1 when fitted exactly and 0 otherwise.
func RSquared(actual, predicted []float64) float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return math.NaN()
	}

	mean := stat.Mean(actual, nil)
	var ssRes, ssTot float64
	for i, y := range actual {
		ssRes += (y - predicted[i]) * (y - predicted[i])
		ssTot += (y - mean) * (y - mean)
	}

	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}
