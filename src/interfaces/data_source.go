package interfaces

import (
	"context"

	"stock-predictor/src/models"
)

// -----------------------------------------------------------------------------
// IMarketData fetches daily OHLCV bars from an external provider.
// -----------------------------------------------------------------------------

type IMarketData interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchHistory returns daily bars for the period ("1mo", "180d", "1y", ...)
	// in ascending date order. An empty answer is an InvalidTicker error.
	FetchHistory(ctx context.Context, ticker, period string) ([]models.MBar, error)
}

// -----------------------------------------------------------------------------
// ICompanyInfoSource resolves company profile fields for a ticker.
// -----------------------------------------------------------------------------

type ICompanyInfoSource interface {
	FetchCompanyInfo(ctx context.Context, ticker string) (*models.MCompanyInfo, error)
}
