package interfaces

import (
	"context"

	"stock-predictor/src/models"
)

// -----------------------------------------------------------------------------
// IStockService is what the HTTP API and the CLI call into.
// -----------------------------------------------------------------------------

type IStockService interface {
	Price(ctx context.Context, ticker string) (*models.MPriceSnapshot, error)
	History(ctx context.Context, ticker, period, interval string) (*models.MHistory, error)
	Indicators(ctx context.Context, ticker, period string) (*models.MIndicatorSnapshot, error)

	// -----------------------------------------------------------------------------

	PredictLinear(ctx context.Context, ticker string, days int) (*models.MForecast, error)
	PredictLSTM(ctx context.Context, ticker string, days int) (*models.MForecast, error)
	Forecasts(ctx context.Context, ticker string, limit int) ([]models.MForecastRecord, error)

	// -----------------------------------------------------------------------------

	News(ctx context.Context, ticker string, limit int) (*models.MNews, error)
	Info(ctx context.Context, ticker string) (*models.MCompanyProfile, error)

	// TrendingStocks never fails; it falls back to a fixed list.
	TrendingStocks(ctx context.Context) *models.MTrending
}
