package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stock-predictor/src/analysis"
	"stock-predictor/src/config"
	"stock-predictor/src/helpers"
	"stock-predictor/src/logger"
	"stock-predictor/src/models"
	"stock-predictor/src/service"

	"github.com/gorilla/websocket"
	"github.com/guregu/null/v6"
)

type fakeService struct {
	linearDays int
}

func (f *fakeService) Price(ctx context.Context, ticker string) (*models.MPriceSnapshot, error) {
	if ticker == "NOPE" {
		return nil, helpers.NewInvalidTickerError()
	}
	return &models.MPriceSnapshot{Ticker: strings.ToUpper(ticker), Price: 100}, nil
}

func (f *fakeService) History(ctx context.Context, ticker, period, interval string) (*models.MHistory, error) {
	return &models.MHistory{Ticker: ticker, Period: period, Interval: interval}, nil
}

func (f *fakeService) Indicators(ctx context.Context, ticker, period string) (*models.MIndicatorSnapshot, error) {
	return nil, helpers.NewInsufficientDataError("Insufficient data for indicators")
}

func (f *fakeService) PredictLinear(ctx context.Context, ticker string, days int) (*models.MForecast, error) {
	if ticker == "NOPE" {
		return nil, helpers.NewInvalidTickerError()
	}
	f.linearDays = days
	points := make([]models.MPredictionPoint, days)
	return &models.MForecast{
		Ticker: ticker, Method: "enhanced_linear_regression",
		Predictions: points, Confidence: null.FloatFrom(91.2),
		FeaturesUsed: analysis.FeatureNames,
	}, nil
}

func (f *fakeService) PredictLSTM(ctx context.Context, ticker string, days int) (*models.MForecast, error) {
	return nil, helpers.ErrEmptyForecast
}

func (f *fakeService) Forecasts(ctx context.Context, ticker string, limit int) ([]models.MForecastRecord, error) {
	return nil, service.ErrStorageDisabled
}

func (f *fakeService) News(ctx context.Context, ticker string, limit int) (*models.MNews, error) {
	return nil, helpers.NewParseError("Could not retrieve news", nil)
}

func (f *fakeService) Info(ctx context.Context, ticker string) (*models.MCompanyProfile, error) {
	return &models.MCompanyProfile{Ticker: ticker}, nil
}

func (f *fakeService) TrendingStocks(ctx context.Context) *models.MTrending {
	return &models.MTrending{Trending: []models.MTrendingStock{{Ticker: "AAPL", Price: 100}}}
}

type fixedHeap float64

func (h fixedHeap) GetProcessMemoryMB() float64 { return float64(h) }

// -----------------------------------------------------------------------------

func newTestServer(t *testing.T) (*APIServer, *fakeService) {
	t.Helper()
	cfg := config.Default().MConfig
	cfg.LogLevel = "ERROR"
	cfg.Stream.IntervalSeconds = 3600
	svc := &fakeService{}
	return NewAPIServer(cfg, svc, fixedHeap(12.5), logger.NewLogger("ERROR", "test")), svc
}

func get(t *testing.T, s *APIServer, path string, header ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	body := map[string]any{}
	json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

// -----------------------------------------------------------------------------

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec, body := get(t, s, "/api/health")

	helpers.AssertAreEqual(t, "status code", http.StatusOK, rec.Code)
	helpers.AssertAreEqual(t, "status", "ok", body["status"].(string))
	helpers.AssertAreEqual(t, "message", "Stock Predictor API is running", body["message"].(string))
	helpers.AssertAreEqual(t, "heap", 12.5, body["heap_mb"].(float64))
}

func TestRootListsEndpoints(t *testing.T) {
	s, _ := newTestServer(t)
	rec, body := get(t, s, "/")
	helpers.AssertAreEqual(t, "status code", http.StatusOK, rec.Code)
	endpoints := body["endpoints"].(map[string]any)
	helpers.AssertAreEqual(t, "lstm", "/api/stock/{ticker}/predict/lstm", endpoints["lstm_prediction"].(string))
}

func TestPredictLinear(t *testing.T) {
	s, svc := newTestServer(t)
	rec, body := get(t, s, "/api/stock/AAPL/predict/linear?days=7")

	helpers.AssertAreEqual(t, "status code", http.StatusOK, rec.Code)
	helpers.AssertAreEqual(t, "days passed", 7, svc.linearDays)
	helpers.AssertAreEqual(t, "points", 7, len(body["predictions"].([]any)))
	helpers.AssertAreEqual(t, "features", 9, len(body["features_used"].([]any)))
	helpers.AssertAreEqual(t, "confidence", 91.2, body["confidence"].(float64))
}

func TestPredictLinearDefaultDays(t *testing.T) {
	s, svc := newTestServer(t)
	rec, _ := get(t, s, "/api/stock/AAPL/predict/linear")
	helpers.AssertAreEqual(t, "status code", http.StatusOK, rec.Code)
	helpers.AssertAreEqual(t, "default days", 7, svc.linearDays)
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		path   string
		status int
	}{
		{"/api/stock/NOPE", http.StatusNotFound},
		{"/api/stock/NOPE/predict/linear?days=7", http.StatusNotFound},
		{"/api/stock/AAPL/predict/linear?days=31", http.StatusUnprocessableEntity},
		{"/api/stock/AAPL/predict/linear?days=0", http.StatusUnprocessableEntity},
		{"/api/stock/AAPL/predict/linear?days=abc", http.StatusUnprocessableEntity},
		{"/api/stock/AAPL/predict/lstm?days=15", http.StatusUnprocessableEntity},
		{"/api/stock/AAPL/predict/lstm?days=7", http.StatusInternalServerError},
		{"/api/stock/AAPL/news?limit=21", http.StatusUnprocessableEntity},
		{"/api/stock/AAPL/news", http.StatusNotFound},
		{"/api/stock/AAPL/indicators", http.StatusNotFound},
		{"/api/stock/AAPL/forecasts", http.StatusNotFound},
	}

	s, _ := newTestServer(t)
	for _, tc := range cases {
		rec, body := get(t, s, tc.path)
		helpers.AssertAreEqual(t, tc.path, tc.status, rec.Code)
		if _, ok := body["error"].(string); !ok {
			t.Fatalf("%s: expected an error body, got %s", tc.path, rec.Body.String())
		}
	}
}

func TestHistoryDefaults(t *testing.T) {
	s, _ := newTestServer(t)
	rec, body := get(t, s, "/api/stock/AAPL/history")
	helpers.AssertAreEqual(t, "status code", http.StatusOK, rec.Code)
	helpers.AssertAreEqual(t, "period", "1mo", body["period"].(string))
	helpers.AssertAreEqual(t, "interval", "1d", body["interval"].(string))
}

func TestTrendingAndCORS(t *testing.T) {
	s, _ := newTestServer(t)
	rec, body := get(t, s, "/api/stocks/trending", "Origin", "http://localhost:3000")

	helpers.AssertAreEqual(t, "status code", http.StatusOK, rec.Code)
	helpers.AssertAreEqual(t, "trending", 1, len(body["trending"].([]any)))
	helpers.AssertAreEqual(t, "cors", "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStreamPushesSnapshotsAndSwitchesTicker(t *testing.T) {
	s, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.hub.Run(ctx)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/stock/aapl"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	helpers.AssertNoError(t, "dial", err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg models.MStreamMessage
	helpers.AssertNoError(t, "read", conn.ReadJSON(&msg))
	helpers.AssertAreEqual(t, "type", "snapshot", msg.Type)
	helpers.AssertAreEqual(t, "ticker", "AAPL", msg.Ticker)
	helpers.AssertAreEqual(t, "price", 100.0, msg.Data.Price)

	helpers.AssertNoError(t, "subscribe", conn.WriteJSON(models.MStreamCommand{Command: "subscribe", Ticker: "nope"}))
	for msg.Ticker != "NOPE" {
		helpers.AssertNoError(t, "read", conn.ReadJSON(&msg))
	}
	helpers.AssertAreEqual(t, "error type", "error", msg.Type)
}

func TestStreamSurvivesDroppedSubscriber(t *testing.T) {
	s, svc := newTestServer(t)
	s.hub = NewStreamHub(svc, 20*time.Millisecond, s.Logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.hub.Run(ctx)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	base := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/stock/"

	gone, _, err := websocket.DefaultDialer.Dial(base+"aapl", nil)
	helpers.AssertNoError(t, "dial", err)
	helpers.AssertNoError(t, "subscribe", gone.WriteJSON(models.MStreamCommand{Command: "subscribe", Ticker: "msft"}))
	gone.UnderlyingConn().Close()

	conn, _, err := websocket.DefaultDialer.Dial(base+"msft", nil)
	helpers.AssertNoError(t, "dial", err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg models.MStreamMessage
	for range 3 {
		helpers.AssertNoError(t, "read", conn.ReadJSON(&msg))
		helpers.AssertAreEqual(t, "ticker", "MSFT", msg.Ticker)
		helpers.AssertAreEqual(t, "type", "snapshot", msg.Type)
	}
}
