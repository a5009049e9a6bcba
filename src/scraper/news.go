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

const DefaultNewsURL = "https://finviz.com/quote.ashx"

// NewsScraper reads headlines from the news table of a quote page.
type NewsScraper struct {
	Network interfaces.INetworkManager
	URL     string
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewNewsScraper(netMgr interfaces.INetworkManager, pageURL string, log *logger.Logger) *NewsScraper {
	if pageURL == "" {
		pageURL = DefaultNewsURL
	}
	return &NewsScraper{Network: netMgr, URL: pageURL, Logger: log.Named("NewsScraper")}
}

// -----------------------------------------------------------------------------

// FetchNews returns up to limit headlines in page order. Rows without a
// link are skipped.
func (ns *NewsScraper) FetchNews(ctx context.Context, ticker string, limit int) ([]models.MNewsItem, error) {
	body, err := ns.Network.Get(ctx, ns.URL, map[string]string{"t": strings.ToUpper(ticker)})
	if err != nil {
		if helpers.StatusCode(err) != 0 {
			return nil, helpers.NewUpstreamError("Failed to scrape news", err)
		}
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, helpers.NewParseError("Failed to scrape news", err)
	}

	table := doc.Find("#news-table")
	if table.Length() == 0 {
		return nil, helpers.NewParseError("Could not retrieve news", nil)
	}

	items := make([]models.MNewsItem, 0, limit)
	table.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if len(items) >= limit {
			return false
		}

		link := row.Find("a").First()
		if link.Length() == 0 {
			return true
		}
		items = append(items, models.MNewsItem{
			Headline: strings.TrimSpace(link.Text()),
			Source:   strings.TrimSpace(row.Find("span").First().Text()),
		})
		return true
	})

	ns.Logger.Debug("Scraped %d headlines for %s", len(items), ticker)
	return items, nil
}
