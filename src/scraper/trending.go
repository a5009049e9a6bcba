package scraper

import (
	"bytes"
	"context"
	"strings"

	"stock-predictor/src/helpers"
	"stock-predictor/src/interfaces"
	"stock-predictor/src/logger"
	"stock-predictor/src/models"

	"github.com/PuerkitoBio/goquery"
)

const DefaultTrendingURL = "https://finance.yahoo.com/trending-tickers"

// TrendingScraper reads symbol and name from the first table of the
// trending tickers page.
type TrendingScraper struct {
	Network interfaces.INetworkManager
	URL     string
	Logger  *logger.Logger
}

func NewTrendingScraper(netMgr interfaces.INetworkManager, pageURL string, log *logger.Logger) *TrendingScraper {
	if pageURL == "" {
		pageURL = DefaultTrendingURL
	}
	return &TrendingScraper{Network: netMgr, URL: pageURL, Logger: log.Named("TrendingScraper")}
}

// -----------------------------------------------------------------------------

func (ts *TrendingScraper) FetchTrending(ctx context.Context, limit int) ([]models.MTrendingEntry, error) {
	body, err := ts.Network.Get(ctx, ts.URL, nil)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, helpers.NewParseError("trending page", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, helpers.NewParseError("trending table not found", nil)
	}

	var entries []models.MTrendingEntry
	table.Find("tbody tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if i >= limit {
			return false
		}
		cells := row.Find("td")
		if cells.Length() < 2 {
			return true
		}

		ticker := strings.TrimSpace(cells.Eq(0).Text())
		if ticker == "" {
			return true
		}
		entries = append(entries, models.MTrendingEntry{
			Ticker: ticker,
			Name:   strings.TrimSpace(cells.Eq(1).Text()),
		})
		return true
	})

	if len(entries) == 0 {
		return nil, helpers.NewParseError("trending table has no rows", nil)
	}
	return entries, nil
}
