package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"stock-predictor/src/helpers"
	"stock-predictor/src/interfaces"
	"stock-predictor/src/logger"
	"stock-predictor/src/models"
	"stock-predictor/src/utils"

	"github.com/piquette/finance-go/equity"
)

const (
	DefaultChartURL   = "https://query1.finance.yahoo.com/v8/finance/chart/"
	DefaultSummaryURL = "https://query2.finance.yahoo.com/v10/finance/quoteSummary/"
)

// YahooFinanceSource reads daily bars from the Yahoo chart API.
type YahooFinanceSource struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger

	chartURL   string
	summaryURL string
	now        func() time.Time

	equityLookup func(symbol string) (*equity.Equity, error)
}

// -----------------------------------------------------------------------------

func NewYahooFinanceSource(cfg *models.MConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *YahooFinanceSource {
	s := &YahooFinanceSource{
		Config:     cfg,
		Network:    netMgr,
		Logger:     log.Named("YahooFinanceSource"),
		chartURL:   cfg.DataSource.Yahoo.ChartURL,
		summaryURL: cfg.DataSource.Yahoo.SummaryURL,
		now:        time.Now,
	}
	if s.chartURL == "" {
		s.chartURL = DefaultChartURL
	}
	if s.summaryURL == "" {
		s.summaryURL = DefaultSummaryURL
	}
	return s
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) Name() string {
	return "yahoo"
}

// -----------------------------------------------------------------------------

// FetchHistory requests daily bars. Named ranges are passed through as the
// range parameter, day counts are turned into an explicit window.
func (s *YahooFinanceSource) FetchHistory(ctx context.Context, ticker, period string) ([]models.MBar, error) {
	if err := utils.ValidatePeriod(period); err != nil {
		return nil, helpers.NewValidationError(err.Error())
	}

	params := map[string]string{
		"interval":       "1d",
		"includePrePost": "false",
		"events":         "div,splits",
	}
	if utils.IsNamedRange(period) {
		params["range"] = period
	} else {
		now := s.now()
		start, err := utils.PeriodStart(period, now)
		if err != nil {
			return nil, err
		}
		params["period1"] = strconv.FormatInt(start.Unix(), 10)
		params["period2"] = strconv.FormatInt(now.Unix(), 10)
	}

	endpoint := s.chartURL + url.PathEscape(strings.ToUpper(ticker))
	body, err := s.Network.Get(ctx, endpoint, params)
	if err != nil {
		if helpers.StatusCode(err) == http.StatusNotFound {
			return nil, helpers.NewInvalidTickerError()
		}
		return nil, err
	}

	bars, err := s.parseChartResponse(ticker, body)
	if err != nil {
		return nil, err
	}
	if n := utils.TradingDaysHint(period); n > 0 && len(bars) > n {
		bars = bars[len(bars)-n:]
	}
	return bars, nil
}

// -----------------------------------------------------------------------------

type YahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency             string  `json:"currency"`
				Symbol               string  `json:"symbol"`
				ExchangeName         string  `json:"exchangeName"`
				ExchangeTimezoneName string  `json:"exchangeTimezoneName"`
				RegularMarketPrice   float64 `json:"regularMarketPrice"`
				ChartPreviousClose   float64 `json:"chartPreviousClose"`
				DataGranularity      string  `json:"dataGranularity"`
				Range                string  `json:"range"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Open   []*float64 `json:"open"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) parseChartResponse(ticker string, data []byte) ([]models.MBar, error) {
	var resp YahooChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, helpers.NewParseError("chart response for "+ticker, err)
	}

	if resp.Chart.Error != nil {
		if strings.EqualFold(resp.Chart.Error.Code, "Not Found") {
			return nil, helpers.NewInvalidTickerError()
		}
		return nil, helpers.NewUpstreamError(fmt.Sprintf("yahoo api error: %s - %s", resp.Chart.Error.Code, resp.Chart.Error.Description), nil)
	}

	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Timestamp) == 0 {
		return nil, helpers.NewInvalidTickerError()
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, helpers.NewInvalidTickerError()
	}
	quote := result.Indicators.Quote[0]

	n := len(result.Timestamp)
	if len(quote.Close) != n || len(quote.Open) != n || len(quote.High) != n ||
		len(quote.Low) != n || len(quote.Volume) != n {
		return nil, helpers.NewParseError(fmt.Sprintf("data alignment error for %s", ticker), nil)
	}

	loc := time.UTC
	if tz := result.Meta.ExchangeTimezoneName; tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	bars := make([]models.MBar, 0, n)
	for i, ts := range result.Timestamp {
		// rows with any null field are holidays or partial sessions
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil ||
			quote.Close[i] == nil || quote.Volume[i] == nil {
			continue
		}

		local := time.Unix(ts, 0).In(loc)
		bars = append(bars, models.MBar{
			Date:   time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
			Open:   *quote.Open[i],
			High:   *quote.High[i],
			Low:    *quote.Low[i],
			Close:  *quote.Close[i],
			Volume: *quote.Volume[i],
		})
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	bars = dedupeByDate(bars)

	if len(bars) == 0 {
		return nil, helpers.NewInvalidTickerError()
	}

	s.Logger.Debug("Fetched %s: %d daily bars [%s -> %s]", ticker, len(bars),
		bars[0].Date.Format(utils.DateLayout), bars[len(bars)-1].Date.Format(utils.DateLayout))
	return bars, nil
}

// -----------------------------------------------------------------------------

// dedupeByDate keeps the last bar of each date. The chart API appends the
// live session as an extra row that can share a date with the final bar.
func dedupeByDate(bars []models.MBar) []models.MBar {
	out := bars[:0]
	for _, b := range bars {
		if len(out) > 0 && out[len(out)-1].Date.Equal(b.Date) {
			out[len(out)-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}
