package service

import (
	"context"
	"errors"
	"math"
	"slices"
	"sync"
	"testing"
	"time"

	"stock-predictor/src/config"
	"stock-predictor/src/helpers"
	"stock-predictor/src/logger"
	"stock-predictor/src/models"
)

type fakeMarket struct {
	bars     map[string][]models.MBar // by ticker
	failing  map[string]bool          // by period
	mu       sync.Mutex
	requests []string
}

func (f *fakeMarket) Name() string { return "fake" }

func (f *fakeMarket) requested(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Contains(f.requests, call)
}

func (f *fakeMarket) FetchHistory(ctx context.Context, ticker, period string) ([]models.MBar, error) {
	f.mu.Lock()
	f.requests = append(f.requests, ticker+"/"+period)
	f.mu.Unlock()

	if f.failing[period] {
		return nil, helpers.NewUpstreamError("provider down", nil)
	}
	bars, ok := f.bars[ticker]
	if !ok {
		return nil, helpers.NewInvalidTickerError()
	}
	return bars, nil
}

type fakeTrending struct {
	entries []models.MTrendingEntry
	err     error
}

func (f *fakeTrending) FetchTrending(ctx context.Context, limit int) ([]models.MTrendingEntry, error) {
	return f.entries, f.err
}

type fakeNews struct{}

func (fakeNews) FetchNews(ctx context.Context, ticker string, limit int) ([]models.MNewsItem, error) {
	items := []models.MNewsItem{{Headline: "a", Source: "x"}, {Headline: "b", Source: "y"}, {Headline: "c", Source: "z"}}
	return items[:min(limit, len(items))], nil
}

type fakeCompany struct{}

func (fakeCompany) FetchCompanyInfo(ctx context.Context, ticker string) (*models.MCompanyInfo, error) {
	return &models.MCompanyInfo{Name: ticker + " Inc."}, nil
}

type memoryStore struct {
	saved []models.MForecastRecord
}

func (m *memoryStore) Initialize() error { return nil }
func (m *memoryStore) Close() error      { return nil }
func (m *memoryStore) CleanupOldData(ctx context.Context) (int64, error) {
	return 0, nil
}
func (m *memoryStore) SaveForecast(ctx context.Context, rec models.MForecastRecord) (int64, error) {
	m.saved = append(m.saved, rec)
	return int64(len(m.saved)), nil
}
func (m *memoryStore) RecentForecasts(ctx context.Context, ticker string, limit int) ([]models.MForecastRecord, error) {
	return m.saved, nil
}

// -----------------------------------------------------------------------------

func syntheticBars(n int) []models.MBar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.MBar, n)
	for i := range bars {
		price := 100 + 0.2*float64(i) + 3*math.Sin(float64(i)/5)
		bars[i] = models.MBar{
			Date:   start.AddDate(0, 0, i),
			Open:   price - 0.5,
			High:   price + 1,
			Low:    price - 1,
			Close:  price,
			Volume: 1e6 + 1e4*math.Cos(float64(i)/3),
		}
	}
	return bars
}

func newTestService(market *fakeMarket, deps Dependencies) *StockService {
	cfg := config.Default().MConfig
	cfg.Forecast.Sequence.Window = 10
	cfg.Forecast.Sequence.Units = 4
	cfg.Forecast.Sequence.Epochs = 2
	cfg.Forecast.Sequence.BatchSize = 16

	deps.Market = market
	if deps.Trending == nil {
		deps.Trending = &fakeTrending{}
	}
	if deps.News == nil {
		deps.News = fakeNews{}
	}
	if deps.Company == nil {
		deps.Company = fakeCompany{}
	}
	return NewStockService(cfg, deps, logger.NewLogger("ERROR", "test"))
}

// -----------------------------------------------------------------------------

func TestPriceSnapshot(t *testing.T) {
	market := &fakeMarket{bars: map[string][]models.MBar{"AAPL": {
		{Date: time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC), Open: 100, High: 103, Low: 99, Close: 102.004, Volume: 1234567.8},
	}}}
	s := newTestService(market, Dependencies{})

	snap, err := s.Price(context.Background(), " aapl ")
	helpers.AssertNoError(t, "price", err)

	helpers.AssertAreEqual(t, "ticker", "AAPL", snap.Ticker)
	helpers.AssertAreEqual(t, "price", 102.0, snap.Price)
	helpers.AssertAreEqual(t, "change", 2.0, snap.Change)
	helpers.AssertAreEqual(t, "percent", 2.0, snap.ChangePercent)
	helpers.AssertAreEqual(t, "volume", int64(1234567), snap.Volume)
	helpers.AssertAreEqual(t, "date", "2024-06-07", snap.Date)
	helpers.AssertAreEqual(t, "period", "AAPL/1d", market.requests[0])
}

func TestPriceUnknownTicker(t *testing.T) {
	s := newTestService(&fakeMarket{}, Dependencies{})
	_, err := s.Price(context.Background(), "NOPE")
	helpers.AssertAreEqual(t, "invalid", true, helpers.IsInvalidTicker(err))
}

func TestHistoryWeekly(t *testing.T) {
	// 2024-01-01 is a Monday, so 14 daily bars make two weeks.
	market := &fakeMarket{bars: map[string][]models.MBar{"AAPL": syntheticBars(14)}}
	s := newTestService(market, Dependencies{})

	h, err := s.History(context.Background(), "AAPL", "", "1wk")
	helpers.AssertNoError(t, "history", err)
	helpers.AssertAreEqual(t, "period default", "1mo", h.Period)
	helpers.AssertAreEqual(t, "weeks", 2, len(h.History))
	helpers.AssertAreEqual(t, "week start", "2024-01-01", h.History[0].Date)

	_, err = s.History(context.Background(), "AAPL", "1mo", "1h")
	helpers.AssertAreEqual(t, "bad interval", true, helpers.IsValidation(err))
}

func TestPredictLinearAddsHistoricalAndStores(t *testing.T) {
	market := &fakeMarket{bars: map[string][]models.MBar{"AAPL": syntheticBars(125)}}
	store := &memoryStore{}
	s := newTestService(market, Dependencies{Store: store})

	res, err := s.PredictLinear(context.Background(), "AAPL", 7)
	helpers.AssertNoError(t, "predict", err)

	helpers.AssertAreEqual(t, "points", 7, len(res.Predictions))
	helpers.AssertAreEqual(t, "features", 9, len(res.FeaturesUsed))
	helpers.AssertAreEqual(t, "historical", 125, len(res.Historical))
	helpers.AssertAreEqual(t, "stored", 1, len(store.saved))
	helpers.AssertAreEqual(t, "stored days", 7, store.saved[0].Days)

	stored, err := s.Forecasts(context.Background(), "aapl", 10)
	helpers.AssertNoError(t, "forecasts", err)
	helpers.AssertAreEqual(t, "read back", 1, len(stored))
}

func TestPredictLinearHistoricalFailureOmitsField(t *testing.T) {
	market := &fakeMarket{
		bars:    map[string][]models.MBar{"AAPL": syntheticBars(125)},
		failing: map[string]bool{"3mo": true},
	}
	s := newTestService(market, Dependencies{})

	res, err := s.PredictLinear(context.Background(), "AAPL", 3)
	helpers.AssertNoError(t, "predict", err)
	helpers.AssertAreEqual(t, "historical omitted", 0, len(res.Historical))
}

func TestPredictFetchWindows(t *testing.T) {
	market := &fakeMarket{bars: map[string][]models.MBar{"AAPL": syntheticBars(125)}}
	s := newTestService(market, Dependencies{})

	_, err := s.PredictLinear(context.Background(), "AAPL", 7)
	helpers.AssertNoError(t, "linear", err)
	helpers.AssertAreEqual(t, "linear window", true, market.requested("AAPL/180d"))
	helpers.AssertAreEqual(t, "historical window", true, market.requested("AAPL/3mo"))
	helpers.AssertAreEqual(t, "no year for linear", false, market.requested("AAPL/1y"))

	_, err = s.PredictLSTM(context.Background(), "AAPL", 3)
	helpers.AssertNoError(t, "lstm", err)
	helpers.AssertAreEqual(t, "sequence window", true, market.requested("AAPL/1y"))
}

func TestPredictBounds(t *testing.T) {
	s := newTestService(&fakeMarket{bars: map[string][]models.MBar{"AAPL": syntheticBars(125)}}, Dependencies{})
	ctx := context.Background()

	cases := []struct {
		name string
		run  func() error
	}{
		{"linear 0", func() error { _, err := s.PredictLinear(ctx, "AAPL", 0); return err }},
		{"linear 31", func() error { _, err := s.PredictLinear(ctx, "AAPL", 31); return err }},
		{"lstm 15", func() error { _, err := s.PredictLSTM(ctx, "AAPL", 15); return err }},
		{"news 21", func() error { _, err := s.News(ctx, "AAPL", 21); return err }},
	}
	for _, tc := range cases {
		helpers.AssertAreEqual(t, tc.name, true, helpers.IsValidation(tc.run()))
	}
}

func TestPredictLSTMRunsHook(t *testing.T) {
	market := &fakeMarket{bars: map[string][]models.MBar{"AAPL": syntheticBars(80)}}
	s := newTestService(market, Dependencies{})
	called := false
	s.Sequence.AfterTrain = func() { called = true }

	res, err := s.PredictLSTM(context.Background(), "AAPL", 5)
	helpers.AssertNoError(t, "predict", err)
	helpers.AssertAreEqual(t, "method", "lstm", res.Method)
	helpers.AssertAreEqual(t, "points", 5, len(res.Predictions))
	helpers.AssertAreEqual(t, "confidence null", false, res.Confidence.Valid)
	helpers.AssertAreEqual(t, "hook", true, called)
}

func TestPredictPropagatesForecastError(t *testing.T) {
	market := &fakeMarket{bars: map[string][]models.MBar{"AAPL": syntheticBars(20)}}
	s := newTestService(market, Dependencies{})

	_, err := s.PredictLinear(context.Background(), "AAPL", 7)
	helpers.AssertAreEqual(t, "insufficient", true, helpers.IsInsufficientData(err))
}

func TestTrendingFallbackKeepsOrderAndSkipsFailures(t *testing.T) {
	bars := syntheticBars(1)
	market := &fakeMarket{bars: map[string][]models.MBar{
		"AAPL": bars, "MSFT": bars, "GOOGL": bars, "AMZN": bars,
	}}
	s := newTestService(market, Dependencies{Trending: &fakeTrending{err: errors.New("blocked")}})

	got := s.TrendingStocks(context.Background())
	helpers.AssertAreEqual(t, "count", 4, len(got.Trending))
	for i, want := range []string{"AAPL", "MSFT", "GOOGL", "AMZN"} {
		helpers.AssertAreEqual(t, "order", want, got.Trending[i].Ticker)
		helpers.AssertAreEqual(t, "name", "", got.Trending[i].Name)
	}
}

func TestTrendingEnrichesScrapedRows(t *testing.T) {
	market := &fakeMarket{bars: map[string][]models.MBar{"NVDA": syntheticBars(1)}}
	trending := &fakeTrending{entries: []models.MTrendingEntry{{Ticker: "NVDA", Name: "NVIDIA"}}}
	s := newTestService(market, Dependencies{Trending: trending})

	got := s.TrendingStocks(context.Background())
	helpers.AssertAreEqual(t, "count", 1, len(got.Trending))
	helpers.AssertAreEqual(t, "name", "NVIDIA", got.Trending[0].Name)
	helpers.AssertAreEqual(t, "price", 100.0, got.Trending[0].Price)
}

func TestNewsAndInfo(t *testing.T) {
	s := newTestService(&fakeMarket{}, Dependencies{})

	news, err := s.News(context.Background(), "msft", 2)
	helpers.AssertNoError(t, "news", err)
	helpers.AssertAreEqual(t, "ticker", "MSFT", news.Ticker)
	helpers.AssertAreEqual(t, "count", 2, len(news.News))

	info, err := s.Info(context.Background(), "msft")
	helpers.AssertNoError(t, "info", err)
	helpers.AssertAreEqual(t, "name", "MSFT Inc.", info.Info.Name)
}

func TestForecastsWithoutStore(t *testing.T) {
	s := newTestService(&fakeMarket{}, Dependencies{})
	_, err := s.Forecasts(context.Background(), "AAPL", 10)
	helpers.AssertAreEqual(t, "disabled", true, errors.Is(err, ErrStorageDisabled))
}
