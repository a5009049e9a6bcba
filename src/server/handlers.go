package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"stock-predictor/src/helpers"
	"stock-predictor/src/service"
	"stock-predictor/src/utils"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *APIServer) getRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to Stock Predictor API",
		"endpoints": gin.H{
			"stock_price":          "/api/stock/{ticker}",
			"stock_history":        "/api/stock/{ticker}/history",
			"technical_indicators": "/api/stock/{ticker}/indicators",
			"linear_prediction":    "/api/stock/{ticker}/predict/linear",
			"lstm_prediction":      "/api/stock/{ticker}/predict/lstm",
			"stock_news":           "/api/stock/{ticker}/news",
			"company_info":         "/api/stock/{ticker}/info",
			"stored_forecasts":     "/api/stock/{ticker}/forecasts",
			"trending_stocks":      "/api/stocks/trending",
			"price_stream":         "/ws/stock/{ticker}",
		},
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getHealth(c *gin.Context) {
	resp := gin.H{
		"status":  "ok",
		"message": "Stock Predictor API is running",
	}
	if s.Memory != nil {
		resp["heap_mb"] = s.Memory.GetProcessMemoryMB()
	}
	c.JSON(http.StatusOK, resp)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getPrice(c *gin.Context) {
	result, err := s.Service.Price(c.Request.Context(), c.Param("ticker"))
	s.respond(c, result, err)
}

func (s *APIServer) getHistory(c *gin.Context) {
	period := c.DefaultQuery("period", utils.DefaultHistoryPeriod)
	interval := c.DefaultQuery("interval", utils.DefaultInterval)
	result, err := s.Service.History(c.Request.Context(), c.Param("ticker"), period, interval)
	s.respond(c, result, err)
}

func (s *APIServer) getIndicators(c *gin.Context) {
	period := c.DefaultQuery("period", utils.DefaultIndicatorPeriod)
	result, err := s.Service.Indicators(c.Request.Context(), c.Param("ticker"), period)
	s.respond(c, result, err)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getPredictLinear(c *gin.Context) {
	days, ok := queryInt(c, "days", utils.DefaultForecastDays, 1, s.Config.Forecast.Linear.MaxDays)
	if !ok {
		return
	}
	result, err := s.Service.PredictLinear(c.Request.Context(), c.Param("ticker"), days)
	s.respond(c, result, err)
}

func (s *APIServer) getPredictLSTM(c *gin.Context) {
	days, ok := queryInt(c, "days", utils.DefaultForecastDays, 1, s.Config.Forecast.Sequence.MaxDays)
	if !ok {
		return
	}
	result, err := s.Service.PredictLSTM(c.Request.Context(), c.Param("ticker"), days)
	s.respond(c, result, err)
}

func (s *APIServer) getForecasts(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 10, 1, utils.MaxNewsLimit)
	if !ok {
		return
	}
	result, err := s.Service.Forecasts(c.Request.Context(), c.Param("ticker"), limit)
	s.respond(c, result, err)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getNews(c *gin.Context) {
	limit, ok := queryInt(c, "limit", utils.DefaultNewsLimit, 1, utils.MaxNewsLimit)
	if !ok {
		return
	}
	result, err := s.Service.News(c.Request.Context(), c.Param("ticker"), limit)
	s.respond(c, result, err)
}

func (s *APIServer) getInfo(c *gin.Context) {
	result, err := s.Service.Info(c.Request.Context(), c.Param("ticker"))
	s.respond(c, result, err)
}

func (s *APIServer) getTrending(c *gin.Context) {
	c.JSON(http.StatusOK, s.Service.TrendingStocks(c.Request.Context()))
}

// -----------------------------------------------------------------------------
// Response helpers
// -----------------------------------------------------------------------------

func (s *APIServer) respond(c *gin.Context, result any, err error) {
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.Logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		} else {
			s.Logger.Debug("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// -----------------------------------------------------------------------------

// statusFor maps domain failures to 404, bad input to 422 and our own
// failures to 500.
func statusFor(err error) int {
	var (
		dbErr   *helpers.DatabaseError
		confErr *helpers.ConfigurationError
	)
	switch {
	case errors.Is(err, helpers.ErrEmptyForecast):
		return http.StatusInternalServerError
	case helpers.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrStorageDisabled):
		return http.StatusNotFound
	case errors.As(err, &dbErr), errors.As(err, &confErr):
		return http.StatusInternalServerError
	default:
		return http.StatusNotFound
	}
}

// -----------------------------------------------------------------------------

// queryInt reads an integer query parameter within [lo, hi]. On failure it
// writes the 422 response and reports false.
func queryInt(c *gin.Context, name string, def, lo, hi int) (int, bool) {
	raw, present := c.GetQuery(name)
	if !present {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("%s must be an integer", name)})
		return 0, false
	}
	if v < lo || v > hi {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("%s must be between %d and %d", name, lo, hi)})
		return 0, false
	}
	return v, true
}
