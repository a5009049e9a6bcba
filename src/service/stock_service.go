package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stock-predictor/src/analysis"
	"stock-predictor/src/analysis/core"
	"stock-predictor/src/forecast"
	"stock-predictor/src/helpers"
	"stock-predictor/src/interfaces"
	"stock-predictor/src/logger"
	"stock-predictor/src/models"
	"stock-predictor/src/utils"

	"golang.org/x/sync/errgroup"
)

// ErrStorageDisabled is returned by Forecasts when no forecast store is configured.
var ErrStorageDisabled = errors.New("forecast storage is disabled")

// Dependencies are the collaborators of StockService. Store and Memory may be nil.
type Dependencies struct {
	Market   interfaces.IMarketData
	Company  interfaces.ICompanyInfoSource
	News     interfaces.INewsScraper
	Trending interfaces.ITrendingScraper
	Store    interfaces.IForecastStore
	Memory   *utils.MemoryManager
}

// StockService answers every read the API and the CLI expose.
type StockService struct {
	Config *models.MConfig
	Dependencies
	Logger *logger.Logger

	Linear   *forecast.LinearForecaster
	Sequence *forecast.SequenceForecaster

	now func() time.Time
}

var _ interfaces.IStockService = (*StockService)(nil)

// -----------------------------------------------------------------------------

func NewStockService(cfg *models.MConfig, deps Dependencies, log *logger.Logger) *StockService {
	log = log.Named("StockService")

	s := &StockService{
		Config:       cfg,
		Dependencies: deps,
		Logger:       log,
		Linear:       forecast.NewLinearForecaster(deps.Market, cfg.Forecast.Linear, log.Named("linear")),
		Sequence:     forecast.NewSequenceForecaster(deps.Market, cfg.Forecast.Sequence, log.Named("lstm")),
		now:          time.Now,
	}
	if deps.Memory != nil {
		s.Sequence.AfterTrain = deps.Memory.CheckMemoryLimits
	}
	return s
}

// -----------------------------------------------------------------------------

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// -----------------------------------------------------------------------------

// Price reduces the latest daily bar to a snapshot. Change is measured
// against the session open.
func (s *StockService) Price(ctx context.Context, ticker string) (*models.MPriceSnapshot, error) {
	ticker = normalizeTicker(ticker)
	bars, err := s.Market.FetchHistory(ctx, ticker, utils.SnapshotPeriod)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, helpers.NewInvalidTickerError()
	}

	last := bars[len(bars)-1]
	return &models.MPriceSnapshot{
		Ticker:        ticker,
		Price:         core.Round2(last.Close),
		Change:        core.Round2(last.Close - last.Open),
		ChangePercent: core.Round2(core.CalculateChangePercent(last.Close, last.Open)),
		Volume:        int64(last.Volume),
		Date:          last.Date.Format(utils.DateLayout),
		MarketOpen:    utils.GetCalendar(ticker).IsOpenAt(s.now()),
	}, nil
}

// -----------------------------------------------------------------------------

func (s *StockService) History(ctx context.Context, ticker, period, interval string) (*models.MHistory, error) {
	ticker = normalizeTicker(ticker)
	if period == "" {
		period = utils.DefaultHistoryPeriod
	}
	if interval == "" {
		interval = utils.DefaultInterval
	}
	switch interval {
	case "1d", "1wk", "1mo":
	default:
		return nil, helpers.NewValidationError(fmt.Sprintf("unsupported interval %q", interval))
	}

	bars, err := s.Market.FetchHistory(ctx, ticker, period)
	if err != nil {
		return nil, err
	}
	bars, err = analysis.ResampleBars(bars, interval)
	if err != nil {
		return nil, helpers.NewValidationError(err.Error())
	}

	points := make([]models.MHistoryPoint, len(bars))
	for i, b := range bars {
		points[i] = models.MHistoryPoint{
			Date:   b.Date.Format(utils.DateLayout),
			Open:   core.Round2(b.Open),
			High:   core.Round2(b.High),
			Low:    core.Round2(b.Low),
			Close:  core.Round2(b.Close),
			Volume: int64(b.Volume),
		}
	}
	return &models.MHistory{Ticker: ticker, Period: period, Interval: interval, History: points}, nil
}

// -----------------------------------------------------------------------------

func (s *StockService) Indicators(ctx context.Context, ticker, period string) (*models.MIndicatorSnapshot, error) {
	ticker = normalizeTicker(ticker)
	if period == "" {
		period = utils.DefaultIndicatorPeriod
	}
	bars, err := s.Market.FetchHistory(ctx, ticker, period)
	if err != nil {
		return nil, err
	}
	return analysis.LatestIndicators(ticker, bars)
}

// -----------------------------------------------------------------------------

// PredictLinear forecasts with the regression model. days must be in 1..forecast.linear.max_days.
func (s *StockService) PredictLinear(ctx context.Context, ticker string, days int) (*models.MForecast, error) {
	if err := checkRange("days", days, 1, s.Config.Forecast.Linear.MaxDays); err != nil {
		return nil, err
	}
	return s.predict(ctx, normalizeTicker(ticker), days, s.Linear.Forecast)
}

// -----------------------------------------------------------------------------

// PredictLSTM trains a fresh sequence model. days must be in 1..forecast.sequence.max_days.
func (s *StockService) PredictLSTM(ctx context.Context, ticker string, days int) (*models.MForecast, error) {
	if err := checkRange("days", days, 1, s.Config.Forecast.Sequence.MaxDays); err != nil {
		return nil, err
	}
	return s.predict(ctx, normalizeTicker(ticker), days, s.Sequence.Forecast)
}

// -----------------------------------------------------------------------------

type forecastFunc func(ctx context.Context, ticker string, days int) (*models.MForecast, error)

// predict runs the forecast and the historical closes side by side. A failed
// historical fetch only leaves the field out.
func (s *StockService) predict(ctx context.Context, ticker string, days int, run forecastFunc) (*models.MForecast, error) {
	var (
		result     *models.MForecast
		historical []models.MHistoricalPrice
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		result, err = run(gctx, ticker, days)
		return err
	})
	g.Go(func() error {
		h, err := s.historical(gctx, ticker)
		if err != nil {
			s.Logger.Warning("Historical prices for %s unavailable: %v", ticker, err)
			return nil
		}
		historical = h
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Historical = historical
	s.store(ctx, result, days)
	return result, nil
}

// -----------------------------------------------------------------------------

func (s *StockService) historical(ctx context.Context, ticker string) ([]models.MHistoricalPrice, error) {
	period := s.Config.Forecast.HistoricalPeriod
	if period == "" {
		period = utils.DefaultHistoricalPeriod
	}
	bars, err := s.Market.FetchHistory(ctx, ticker, period)
	if err != nil {
		return nil, err
	}

	out := make([]models.MHistoricalPrice, len(bars))
	for i, b := range bars {
		out[i] = models.MHistoricalPrice{Date: b.Date.Format(utils.DateLayout), Price: core.Round2(b.Close)}
	}
	return out, nil
}

// -----------------------------------------------------------------------------

// store keeps the forecast when persistence is on. Failures are logged only.
func (s *StockService) store(ctx context.Context, f *models.MForecast, days int) {
	if s.Store == nil {
		return
	}
	rec := models.MForecastRecord{
		Ticker:      f.Ticker,
		Method:      f.Method,
		Days:        days,
		Confidence:  f.Confidence,
		Predictions: f.Predictions,
		CreatedAt:   s.now().UTC(),
	}
	if _, err := s.Store.SaveForecast(ctx, rec); err != nil {
		s.Logger.Error("Failed to store %s forecast for %s: %v", f.Method, f.Ticker, err)
	}
}

// -----------------------------------------------------------------------------

func (s *StockService) News(ctx context.Context, ticker string, limit int) (*models.MNews, error) {
	if err := checkRange("limit", limit, 1, utils.MaxNewsLimit); err != nil {
		return nil, err
	}
	ticker = normalizeTicker(ticker)
	items, err := s.Dependencies.News.FetchNews(ctx, ticker, limit)
	if err != nil {
		return nil, err
	}
	return &models.MNews{Ticker: ticker, News: items}, nil
}

// -----------------------------------------------------------------------------

func (s *StockService) Info(ctx context.Context, ticker string) (*models.MCompanyProfile, error) {
	ticker = normalizeTicker(ticker)
	info, err := s.Company.FetchCompanyInfo(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return &models.MCompanyProfile{Ticker: ticker, Info: *info}, nil
}

// -----------------------------------------------------------------------------

// TrendingStocks enriches the scraped trending list with prices. Lookups run
// concurrently, bounded by network.concurrent_requests, and keep scrape order.
// Tickers whose price cannot be fetched are dropped.
func (s *StockService) TrendingStocks(ctx context.Context) *models.MTrending {
	entries, err := s.Trending.FetchTrending(ctx, utils.TrendingLimit)
	if err != nil || len(entries) == 0 {
		s.Logger.Warning("Trending page unavailable, serving fallback list: %v", err)
		entries = make([]models.MTrendingEntry, len(utils.FallbackTrending))
		for i, t := range utils.FallbackTrending {
			entries[i] = models.MTrendingEntry{Ticker: t}
		}
	}

	slots := make([]*models.MTrendingStock, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.Config.Network.ConcurrentRequests, 1))
	for i, e := range entries {
		g.Go(func() error {
			snap, err := s.Price(gctx, e.Ticker)
			if err != nil {
				s.Logger.Debug("Skipping trending ticker %s: %v", e.Ticker, err)
				return nil
			}
			slots[i] = &models.MTrendingStock{
				Ticker:        snap.Ticker,
				Name:          e.Name,
				Price:         snap.Price,
				ChangePercent: snap.ChangePercent,
			}
			return nil
		})
	}
	g.Wait()

	out := &models.MTrending{Trending: []models.MTrendingStock{}}
	for _, st := range slots {
		if st != nil {
			out.Trending = append(out.Trending, *st)
		}
	}
	return out
}

// -----------------------------------------------------------------------------

func (s *StockService) Forecasts(ctx context.Context, ticker string, limit int) ([]models.MForecastRecord, error) {
	if s.Store == nil {
		return nil, ErrStorageDisabled
	}
	if err := checkRange("limit", limit, 1, utils.MaxNewsLimit); err != nil {
		return nil, err
	}
	return s.Store.RecentForecasts(ctx, normalizeTicker(ticker), limit)
}

// -----------------------------------------------------------------------------

func checkRange(name string, v, lo, hi int) error {
	if v < lo || v > hi {
		return helpers.NewValidationError(fmt.Sprintf("%s must be between %d and %d", name, lo, hi))
	}
	return nil
}
