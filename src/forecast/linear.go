package forecast

import (
	"context"
	"math"

	"stock-predictor/src/analysis"
	"stock-predictor/src/analysis/core"
	"stock-predictor/src/helpers"
	"stock-predictor/src/interfaces"
	"stock-predictor/src/logger"
	"stock-predictor/src/models"

	"github.com/guregu/null/v6"
)

// LinearForecaster fits an OLS model of close on the engineered features and
// projects it forward from the latest feature row.
type LinearForecaster struct {
	Source interfaces.IMarketData
	Config models.MLinearForecastConfig
	Logger *logger.Logger
}

func NewLinearForecaster(src interfaces.IMarketData, cfg models.MLinearForecastConfig, log *logger.Logger) *LinearForecaster {
	return &LinearForecaster{Source: src, Config: cfg, Logger: log}
}

// -----------------------------------------------------------------------------

// Forecast fetches the configured history window for ticker and forecasts
// days calendar days ahead.
func (f *LinearForecaster) Forecast(ctx context.Context, ticker string, days int) (*models.MForecast, error) {
	bars, err := f.Source.FetchHistory(ctx, ticker, f.Config.Period)
	if err != nil {
		return nil, err
	}
	return f.ForecastBars(ticker, bars, days)
}

// -----------------------------------------------------------------------------

// ForecastBars runs the model on already fetched bars.
func (f *LinearForecaster) ForecastBars(ticker string, bars []models.MBar, days int) (*models.MForecast, error) {
	minBars := max(f.Config.MinBars, analysis.MinFeatureBars)
	if len(bars) < minBars {
		return nil, helpers.NewInsufficientDataError("Insufficient data for prediction")
	}

	rows, err := analysis.BuildFeatures(bars)
	if err != nil {
		return nil, err
	}

	X := make([][]float64, len(rows))
	y := make([]float64, len(rows))
	for i, r := range rows {
		X[i] = r.Features
		y[i] = r.Close
	}

	split := len(rows) * 8 / 10
	if split == 0 {
		return nil, helpers.NewInsufficientDataError("Insufficient data for prediction")
	}

	model, err := FitOLS(X[:split], y[:split])
	if err != nil {
		return nil, err
	}

	var confidence null.Float
	if len(rows)-split >= 2 {
		r2 := core.RSquared(y[split:], model.PredictAll(X[split:]))
		confidence = core.NullRound2(r2 * 100)
	} else {
		f.Logger.Debug("%s: %d validation rows, confidence not reported", ticker, len(rows)-split)
	}

	last := rows[len(rows)-1]
	next := model.Predict(last.Features)
	if math.IsNaN(next) {
		return nil, helpers.ErrEmptyForecast
	}

	prices := make([]float64, days)
	for i := range prices {
		prices[i] = next
	}

	f.Logger.Debug("%s: linear fit on %d rows, confidence %v", ticker, split, confidence)

	return &models.MForecast{
		Ticker:       ticker,
		Method:       MethodLinear,
		Predictions:  predictionPoints(ticker, last.Date, prices),
		Confidence:   confidence,
		FeaturesUsed: append([]string(nil), analysis.FeatureNames...),
	}, nil
}
