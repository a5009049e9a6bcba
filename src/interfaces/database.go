package interfaces

import (
	"context"

	"stock-predictor/src/models"
)

// -----------------------------------------------------------------------------
// IForecastStore keeps served forecasts when storage is enabled.
// -----------------------------------------------------------------------------

type IForecastStore interface {

	// -----------------------------------------------------------------------------

	// Initialize opens the connection and creates the schema.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveForecast stores one served forecast and returns its id.
	SaveForecast(ctx context.Context, record models.MForecastRecord) (int64, error)

	// -----------------------------------------------------------------------------

	// RecentForecasts returns the newest records for a ticker, newest first.
	RecentForecasts(ctx context.Context, ticker string, limit int) ([]models.MForecastRecord, error)

	// -----------------------------------------------------------------------------

	// CleanupOldData removes records older than the retention policy.
	CleanupOldData(ctx context.Context) (int64, error)

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
