package analysis

import (
	"math"

	"stock-predictor/src/analysis/core"
	"stock-predictor/src/helpers"
	"stock-predictor/src/models"
	"stock-predictor/src/utils"
)

// Indicator windows.
const (
	RSIPeriod  = 14
	MACDFast   = 12
	MACDSlow   = 26
	MACDSignal = 9
)

// IndicatorSeries holds every indicator aligned with the input closes.
type IndicatorSeries struct {
	MA20   []float64
	MA50   []float64
	MA200  []float64
	RSI    []float64
	MACD   []float64
	Signal []float64
}

// -----------------------------------------------------------------------------

// ComputeIndicators is a pure function of the close series.
func ComputeIndicators(closes []float64) IndicatorSeries {
	macd := MACD(closes)
	return IndicatorSeries{
		MA20:   core.RollingMean(closes, 20),
		MA50:   core.RollingMean(closes, 50),
		MA200:  core.RollingMean(closes, 200),
		RSI:    RSI(closes, RSIPeriod),
		MACD:   macd,
		Signal: core.EMA(macd, MACDSignal),
	}
}

// -----------------------------------------------------------------------------

// RSI uses simple rolling means of gains and losses. The first bar counts as
// a zero move, so the first value appears at index period-1. A window without
// losses has no defined ratio and yields NaN.
func RSI(closes []float64, period int) []float64 {
	n := len(closes)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else if delta < 0 {
			losses[i] = -delta
		}
	}

	avgGain := core.RollingMean(gains, period)
	avgLoss := core.RollingMean(losses, period)

	out := core.NaNs(n)
	for i := range out {
		if math.IsNaN(avgGain[i]) || math.IsNaN(avgLoss[i]) || avgLoss[i] == 0 {
			continue
		}
		rs := avgGain[i] / avgLoss[i]
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// -----------------------------------------------------------------------------

// MACD is EMA12 - EMA26 of the closes.
func MACD(closes []float64) []float64 {
	fast := core.EMA(closes, MACDFast)
	slow := core.EMA(closes, MACDSlow)
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = fast[i] - slow[i]
	}
	return out
}

// -----------------------------------------------------------------------------

// LatestIndicators reports the last row of the indicator series.
func LatestIndicators(ticker string, bars []models.MBar) (*models.MIndicatorSnapshot, error) {
	if len(bars) == 0 {
		return nil, helpers.NewInvalidTickerError()
	}

	closes := core.Column(bars, func(b models.MBar) float64 { return b.Close })
	series := ComputeIndicators(closes)
	last := len(bars) - 1

	return &models.MIndicatorSnapshot{
		Ticker: ticker,
		Date:   bars[last].Date.Format(utils.DateLayout),
		Indicators: models.MIndicatorValues{
			Price:  core.Round2(closes[last]),
			MA20:   core.NullRound2(series.MA20[last]),
			MA50:   core.NullRound2(series.MA50[last]),
			MA200:  core.NullRound2(series.MA200[last]),
			RSI:    core.NullRound2(series.RSI[last]),
			MACD:   core.NullRound2(series.MACD[last]),
			Signal: core.NullRound2(series.Signal[last]),
		},
	}, nil
}
