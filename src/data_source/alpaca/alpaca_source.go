package alpaca

import (
	"context"
	"strings"
	"time"

	"stock-predictor/src/helpers"
	"stock-predictor/src/logger"
	"stock-predictor/src/models"
	"stock-predictor/src/utils"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

// barsClient is the part of the market data client this source uses.
type barsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// AlpacaSource reads daily bars from the Alpaca market data API. It is only
// registered when credentials are configured.
type AlpacaSource struct {
	Config models.MAlpacaConfig
	Logger *logger.Logger

	client barsClient
	now    func() time.Time
}

// -----------------------------------------------------------------------------

func NewAlpacaSource(cfg models.MAlpacaConfig, log *logger.Logger) *AlpacaSource {
	opts := marketdata.ClientOpts{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
	}
	if cfg.BaseURL != "" {
		opts.BaseURL = cfg.BaseURL
	}

	return &AlpacaSource{
		Config: cfg,
		Logger: log.Named("AlpacaSource"),
		client: marketdata.NewClient(opts),
		now:    time.Now,
	}
}

// -----------------------------------------------------------------------------

func (s *AlpacaSource) Name() string {
	return "alpaca"
}

// -----------------------------------------------------------------------------

// FetchHistory returns split- and dividend-adjusted daily bars. The client
// call is not cancellable; ctx is checked before it starts.
func (s *AlpacaSource) FetchHistory(ctx context.Context, ticker, period string) ([]models.MBar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := s.now()
	lastN := utils.TradingDaysHint(period)
	var start time.Time
	if lastN > 0 {
		// short periods mean sessions, so look back far enough to cover a long weekend
		start = now.AddDate(0, 0, -(lastN + 7))
	} else {
		var err error
		start, err = utils.PeriodStart(period, now)
		if err != nil {
			return nil, helpers.NewValidationError(err.Error())
		}
	}

	req := marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Adjustment: marketdata.All,
		Start:      start,
		End:        now,
	}
	if s.Config.Feed != "" {
		req.Feed = marketdata.Feed(s.Config.Feed)
	}

	raw, err := s.client.GetBars(strings.ToUpper(ticker), req)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "invalid symbol") {
			return nil, helpers.NewInvalidTickerError()
		}
		return nil, helpers.NewUpstreamError("alpaca bars for "+ticker, err)
	}
	if len(raw) == 0 {
		return nil, helpers.NewInvalidTickerError()
	}

	bars := make([]models.MBar, 0, len(raw))
	for _, b := range raw {
		ts := b.Timestamp.UTC()
		bars = append(bars, models.MBar{
			Date:   time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		})
	}

	if lastN > 0 && len(bars) > lastN {
		bars = bars[len(bars)-lastN:]
	}

	s.Logger.Debug("Fetched %s from alpaca: %d daily bars", ticker, len(bars))
	return bars, nil
}
