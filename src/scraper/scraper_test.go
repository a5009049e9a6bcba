package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stock-predictor/src/helpers"
	"stock-predictor/src/logger"
	"stock-predictor/src/models"
	"stock-predictor/src/network"
)

const newsPage = `<html><body><table id="news-table">
<tr><td>Jun-07-24 09:30AM</td><td><div><a href="/a">Apple unveils new chips</a></div><div><span>(Reuters)</span></div></td></tr>
<tr><td>09:10AM</td><td><a href="/b">Suppliers rally</a> <span>(Bloomberg)</span></td></tr>
<tr><td colspan="2">advert</td></tr>
<tr><td>08:55AM</td><td><a href="/c">Analysts raise targets</a><span>(MarketWatch)</span></td></tr>
</table></body></html>`

const trendingPage = `<html><body><table><thead><tr><th>Symbol</th><th>Name</th></tr></thead><tbody>
<tr><td>NVDA</td><td>NVIDIA Corporation</td><td>1,200</td></tr>
<tr><td>TSLA</td><td>Tesla, Inc.</td><td>180</td></tr>
<tr><td>GME</td><td>GameStop Corp.</td><td>30</td></tr>
</tbody></table></body></html>`

func newsScraperFor(t *testing.T, status int, body string) *NewsScraper {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("t") != "AAPL" {
			t.Errorf("ticker param = %q", r.URL.Query().Get("t"))
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	log := logger.NewLogger("ERROR", "test")
	return NewNewsScraper(network.NewNetworkManager(&models.MConfig{}, 10*time.Second, log), srv.URL, log)
}

func trendingScraperFor(t *testing.T, status int, body string) *TrendingScraper {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	log := logger.NewLogger("ERROR", "test")
	return NewTrendingScraper(network.NewNetworkManager(&models.MConfig{}, 10*time.Second, log), srv.URL, log)
}

// -----------------------------------------------------------------------------

func TestFetchNewsRespectsLimit(t *testing.T) {
	items, err := newsScraperFor(t, http.StatusOK, newsPage).FetchNews(context.Background(), "aapl", 2)
	helpers.AssertNoError(t, "news", err)

	helpers.AssertAreEqual(t, "count", 2, len(items))
	helpers.AssertAreEqual(t, "headline", "Apple unveils new chips", items[0].Headline)
	helpers.AssertAreEqual(t, "source", "(Reuters)", items[0].Source)
	helpers.AssertAreEqual(t, "second", "Suppliers rally", items[1].Headline)
}

func TestFetchNewsSkipsRowsWithoutLink(t *testing.T) {
	items, err := newsScraperFor(t, http.StatusOK, newsPage).FetchNews(context.Background(), "AAPL", 20)
	helpers.AssertNoError(t, "news", err)
	helpers.AssertAreEqual(t, "count", 3, len(items))
	helpers.AssertAreEqual(t, "last", "(MarketWatch)", items[2].Source)
}

func TestFetchNewsMissingTable(t *testing.T) {
	_, err := newsScraperFor(t, http.StatusOK, "<html><body>blocked</body></html>").FetchNews(context.Background(), "AAPL", 5)
	helpers.AssertAreEqual(t, "parse failure", true, helpers.IsParseFailure(err))
}

func TestFetchNewsUpstreamStatus(t *testing.T) {
	_, err := newsScraperFor(t, http.StatusNotFound, "").FetchNews(context.Background(), "AAPL", 5)
	helpers.AssertAreEqual(t, "upstream", true, helpers.IsUpstreamUnavailable(err))
}

func TestFetchTrending(t *testing.T) {
	entries, err := trendingScraperFor(t, http.StatusOK, trendingPage).FetchTrending(context.Background(), 2)
	helpers.AssertNoError(t, "trending", err)

	helpers.AssertAreEqual(t, "count", 2, len(entries))
	helpers.AssertAreEqual(t, "ticker", "NVDA", entries[0].Ticker)
	helpers.AssertAreEqual(t, "name", "Tesla, Inc.", entries[1].Name)
}

func TestFetchTrendingWithoutTable(t *testing.T) {
	_, err := trendingScraperFor(t, http.StatusOK, "<html></html>").FetchTrending(context.Background(), 10)
	helpers.AssertAreEqual(t, "parse failure", true, helpers.IsParseFailure(err))
}
