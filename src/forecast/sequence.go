package forecast

import (
	"context"

	"stock-predictor/src/analysis/core"
	"stock-predictor/src/forecast/neural"
	"stock-predictor/src/helpers"
	"stock-predictor/src/interfaces"
	"stock-predictor/src/logger"
	"stock-predictor/src/models"
	"stock-predictor/src/utils"
)

// SequenceForecaster trains a fresh stacked LSTM on scaled closes for every
// request and rolls it forward one day at a time.
type SequenceForecaster struct {
	Source interfaces.IMarketData
	Config models.MSequenceForecastConfig
	Logger *logger.Logger

	// AfterTrain, when set, runs once the model is fitted.
	AfterTrain func()
}

func NewSequenceForecaster(src interfaces.IMarketData, cfg models.MSequenceForecastConfig, log *logger.Logger) *SequenceForecaster {
	return &SequenceForecaster{Source: src, Config: cfg, Logger: log}
}

// -----------------------------------------------------------------------------

func (f *SequenceForecaster) Forecast(ctx context.Context, ticker string, days int) (*models.MForecast, error) {
	bars, err := f.Source.FetchHistory(ctx, ticker, f.Config.Period)
	if err != nil {
		return nil, err
	}
	return f.ForecastBars(ctx, ticker, bars, days)
}

// -----------------------------------------------------------------------------

// ForecastBars trains on bars and predicts days steps. Each prediction is
// appended to the input window for the next step.
func (f *SequenceForecaster) ForecastBars(ctx context.Context, ticker string, bars []models.MBar, days int) (*models.MForecast, error) {
	window := f.Config.Window
	if len(bars) < window {
		return nil, helpers.NewInsufficientDataError("Insufficient data for LSTM prediction")
	}

	closes := core.Column(bars, func(b models.MBar) float64 { return b.Close })
	scaler := FitMinMax(closes)
	scaled := scaler.Transform(closes)

	X := make([][]float64, 0, len(scaled)-window)
	y := make([]float64, 0, len(scaled)-window)
	for i := window; i < len(scaled); i++ {
		X = append(X, scaled[i-window:i])
		y = append(y, scaled[i])
	}
	if len(X) == 0 {
		return nil, helpers.NewInsufficientDataError("Insufficient data for LSTM prediction")
	}

	model := neural.NewSequenceModel(neural.Config{
		InputSize:    1,
		Units:        f.Config.Units,
		Dropout:      f.Config.Dropout,
		LearningRate: f.Config.LearningRate,
		Seed:         f.Config.Seed,
	})

	loss, err := model.Fit(ctx, X, y, f.Config.Epochs, f.Config.BatchSize)
	if err != nil {
		return nil, err
	}
	f.Logger.Debug("%s: trained on %d windows, final loss %.6f", ticker, len(X), loss)

	if f.AfterTrain != nil {
		f.AfterTrain()
	}

	buffer := utils.NewRingBufferFrom(window, scaled)
	prices := make([]float64, 0, days)
	for d := 0; d < days; d++ {
		next := model.Predict(buffer.Snapshot())
		if !core.IsFinite(next) {
			return nil, helpers.ErrEmptyForecast
		}
		buffer.Append(next)
		prices = append(prices, scaler.Inverse(next))
	}

	return &models.MForecast{
		Ticker:      ticker,
		Method:      MethodLSTM,
		Predictions: predictionPoints(ticker, bars[len(bars)-1].Date, prices),
	}, nil
}
