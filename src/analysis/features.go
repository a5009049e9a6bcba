package analysis

import (
	"fmt"

	"stock-predictor/src/analysis/core"
	"stock-predictor/src/helpers"
	"stock-predictor/src/models"
)

// FeatureNames lists the engineered features in model column order.
var FeatureNames = []string{
	"MA5", "MA20", "MA50",
	"Price_Change", "Price_Change_5d",
	"Volatility",
	"Volume_Change", "Volume_MA5",
	"RSI",
}

// MinFeatureBars is the shortest series the feature builder accepts.
const MinFeatureBars = 30

// -----------------------------------------------------------------------------

// BuildFeatures computes the feature columns and keeps only the dates where
// every feature is finite. The MA50 window alone drops the first 49 bars.
func BuildFeatures(bars []models.MBar) ([]models.MFeatureRow, error) {
	if len(bars) < MinFeatureBars {
		return nil, helpers.NewInsufficientDataError("Insufficient data for prediction")
	}

	closes := core.Column(bars, func(b models.MBar) float64 { return b.Close })
	volumes := core.Column(bars, func(b models.MBar) float64 { return b.Volume })

	columns := [][]float64{
		core.RollingMean(closes, 5),
		core.RollingMean(closes, 20),
		core.RollingMean(closes, 50),
		core.Diff(closes, 1),
		core.Diff(closes, 5),
		core.RollingStd(closes, 10),
		core.PctChange(volumes),
		core.RollingMean(volumes, 5),
		RSI(closes, RSIPeriod),
	}
	if len(columns) != len(FeatureNames) {
		panic(fmt.Sprintf("feature columns (%d) and names (%d) out of sync", len(columns), len(FeatureNames)))
	}

	rows := make([]models.MFeatureRow, 0, len(bars))
	for i, bar := range bars {
		values := make([]float64, len(columns))
		complete := core.IsFinite(bar.Close)
		for j, col := range columns {
			values[j] = col[i]
			if !core.IsFinite(col[i]) {
				complete = false
			}
		}
		if !complete {
			continue
		}
		rows = append(rows, models.MFeatureRow{Date: bar.Date, Close: bar.Close, Features: values})
	}

	if len(rows) == 0 {
		return nil, helpers.NewInsufficientDataError("Insufficient data for prediction")
	}
	return rows, nil
}
