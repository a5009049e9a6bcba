package yahoo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"stock-predictor/src/helpers"
	"stock-predictor/src/models"

	"github.com/guregu/null/v6"
	"github.com/piquette/finance-go/equity"
)

var summaryModules = "assetProfile,price,summaryDetail"

type rawValue struct {
	Raw *float64 `json:"raw"`
}

func (r rawValue) null() null.Float {
	return null.FloatFromPtr(r.Raw)
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile struct {
				Sector              string `json:"sector"`
				Industry            string `json:"industry"`
				Website             string `json:"website"`
				LongBusinessSummary string `json:"longBusinessSummary"`
				FullTimeEmployees   int64  `json:"fullTimeEmployees"`
				Country             string `json:"country"`
			} `json:"assetProfile"`
			Price struct {
				ShortName string   `json:"shortName"`
				LongName  string   `json:"longName"`
				MarketCap rawValue `json:"marketCap"`
			} `json:"price"`
			SummaryDetail struct {
				TrailingPE       rawValue `json:"trailingPE"`
				DividendYield    rawValue `json:"dividendYield"`
				FiftyTwoWeekHigh rawValue `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow  rawValue `json:"fiftyTwoWeekLow"`
			} `json:"summaryDetail"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// -----------------------------------------------------------------------------

// FetchCompanyInfo reads the profile from quoteSummary and falls back to the
// equity quote when the summary endpoint is unavailable. The dividend yield
// is reported in percent.
func (s *YahooFinanceSource) FetchCompanyInfo(ctx context.Context, ticker string) (*models.MCompanyInfo, error) {
	info, err := s.fetchQuoteSummary(ctx, ticker)
	if err == nil {
		return info, nil
	}
	if helpers.IsInvalidTicker(err) {
		return nil, err
	}
	s.Logger.Debug("quoteSummary for %s failed (%v), using equity quote", ticker, err)

	lookup := s.equityLookup
	if lookup == nil {
		lookup = equity.Get
	}
	eq, eqErr := lookup(strings.ToUpper(ticker))
	if eqErr != nil {
		return nil, helpers.NewUpstreamError("Could not retrieve company information", eqErr)
	}
	if eq == nil {
		return nil, helpers.NewInvalidTickerError()
	}
	return companyInfoFromEquity(eq), nil
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) fetchQuoteSummary(ctx context.Context, ticker string) (*models.MCompanyInfo, error) {
	endpoint := s.summaryURL + url.PathEscape(strings.ToUpper(ticker))
	body, err := s.Network.Get(ctx, endpoint, map[string]string{"modules": summaryModules})
	if err != nil {
		if helpers.StatusCode(err) == http.StatusNotFound {
			return nil, helpers.NewInvalidTickerError()
		}
		return nil, err
	}

	var resp quoteSummaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, helpers.NewParseError("quoteSummary response for "+ticker, err)
	}
	if resp.QuoteSummary.Error != nil {
		if strings.EqualFold(resp.QuoteSummary.Error.Code, "Not Found") {
			return nil, helpers.NewInvalidTickerError()
		}
		return nil, helpers.NewUpstreamError("quoteSummary error: "+resp.QuoteSummary.Error.Description, nil)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, helpers.NewInvalidTickerError()
	}

	r := resp.QuoteSummary.Result[0]
	info := &models.MCompanyInfo{
		Name:          r.Price.ShortName,
		Sector:        r.AssetProfile.Sector,
		Industry:      r.AssetProfile.Industry,
		Website:       r.AssetProfile.Website,
		Description:   r.AssetProfile.LongBusinessSummary,
		Employees:     r.AssetProfile.FullTimeEmployees,
		Country:       r.AssetProfile.Country,
		PERatio:       r.SummaryDetail.TrailingPE.null(),
		DividendYield: percent(r.SummaryDetail.DividendYield.null()),
		WeekHigh52:    r.SummaryDetail.FiftyTwoWeekHigh.null(),
		WeekLow52:     r.SummaryDetail.FiftyTwoWeekLow.null(),
	}
	if info.Name == "" {
		info.Name = r.Price.LongName
	}
	if r.Price.MarketCap.Raw != nil {
		info.MarketCap = int64(*r.Price.MarketCap.Raw)
	}
	return info, nil
}

// -----------------------------------------------------------------------------

func companyInfoFromEquity(eq *equity.Equity) *models.MCompanyInfo {
	info := &models.MCompanyInfo{
		Name:       eq.ShortName,
		MarketCap:  eq.MarketCap,
		PERatio:    nonZero(eq.TrailingPE),
		WeekHigh52: nonZero(eq.FiftyTwoWeekHigh),
		WeekLow52:  nonZero(eq.FiftyTwoWeekLow),
	}
	if info.Name == "" {
		info.Name = eq.LongName
	}
	info.DividendYield = percent(nonZero(eq.TrailingAnnualDividendYield))
	return info
}

// -----------------------------------------------------------------------------

func percent(v null.Float) null.Float {
	if !v.Valid || v.Float64 == 0 {
		return null.Float{}
	}
	return null.FloatFrom(v.Float64 * 100)
}

// -----------------------------------------------------------------------------

// nonZero treats the zero value of an unset quote field as missing.
func nonZero(v float64) null.Float {
	if v == 0 {
		return null.Float{}
	}
	return null.FloatFrom(v)
}
