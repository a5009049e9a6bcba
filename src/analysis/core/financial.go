package core

import (
	"math"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------

// Round2 rounds a price to cents, half away from zero on the decimal value.
func Round2(v float64) float64 {
	if !IsFinite(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// -----------------------------------------------------------------------------

// NullRound2 rounds v to cents, or returns null when v is not finite.
func NullRound2(v float64) null.Float {
	if !IsFinite(v) {
		return null.Float{}
	}
	return null.FloatFrom(Round2(v))
}

// -----------------------------------------------------------------------------

// CalculateChangePercent returns the change from previous to current in percent.
func CalculateChangePercent(current, previous float64) float64 {
	if previous == 0 {
		return 0.0
	}
	return (current - previous) / previous * 100
}

// -----------------------------------------------------------------------------

// Column extracts one numeric field from each row.
func Column[T any](rows []T, pick func(T) float64) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = pick(r)
	}
	return out
}

// -----------------------------------------------------------------------------

// MinMax returns the smallest and largest finite value.
func MinMax(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if !IsFinite(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
