package interfaces

import (
	"context"

	"stock-predictor/src/models"
)

// -----------------------------------------------------------------------------
// INewsScraper reads headlines for a ticker from a public page.
// -----------------------------------------------------------------------------

type INewsScraper interface {
	FetchNews(ctx context.Context, ticker string, limit int) ([]models.MNewsItem, error)
}

// -----------------------------------------------------------------------------
// ITrendingScraper reads the list of trending tickers from a public page.
// -----------------------------------------------------------------------------

type ITrendingScraper interface {
	FetchTrending(ctx context.Context, limit int) ([]models.MTrendingEntry, error)
}
