package forecast

import "stock-predictor/src/analysis/core"

// MinMaxScaler maps values linearly onto [0, 1] using the range seen in Fit.
type MinMaxScaler struct {
	Min   float64
	Scale float64
}

// -----------------------------------------------------------------------------

// FitMinMax learns the range of values. A constant series gets scale 1 so
// that transforming it yields zeros instead of dividing by zero.
func FitMinMax(values []float64) *MinMaxScaler {
	lo, hi := core.MinMax(values)
	scale := hi - lo
	if scale == 0 || !core.IsFinite(scale) {
		scale = 1
	}
	if !core.IsFinite(lo) {
		lo = 0
	}
	return &MinMaxScaler{Min: lo, Scale: scale}
}

// -----------------------------------------------------------------------------

func (s *MinMaxScaler) Transform(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - s.Min) / s.Scale
	}
	return out
}

// -----------------------------------------------------------------------------

func (s *MinMaxScaler) Inverse(v float64) float64 {
	return v*s.Scale + s.Min
}

// -----------------------------------------------------------------------------

func (s *MinMaxScaler) InverseAll(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = s.Inverse(v)
	}
	return out
}
