package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"stock-predictor/src/helpers"
	"stock-predictor/src/logger"
	"stock-predictor/src/models"

	"github.com/guregu/null/v6"
)

func openTestStore(t *testing.T, retentionDays int) *ForecastSQLiteDB {
	t.Helper()
	cfg := &models.MConfig{}
	cfg.Storage.DBType = "sqlite"
	cfg.Storage.DBPath = filepath.Join(t.TempDir(), "forecasts.db")
	cfg.Storage.RetentionDays = retentionDays

	store, err := NewForecastStore(cfg, logger.NewLogger("ERROR", "test"))
	helpers.AssertNoError(t, "open", err)
	t.Cleanup(func() { store.Close() })
	return store.(*ForecastSQLiteDB)
}

func TestSaveAndReadForecasts(t *testing.T) {
	store := openTestStore(t, 30)
	ctx := context.Background()

	first := models.MForecastRecord{
		Ticker: "AAPL", Method: "enhanced_linear_regression", Days: 2,
		Confidence: null.FloatFrom(87.5),
		Predictions: []models.MPredictionPoint{
			{Date: "2024-06-08", Price: 190.1, TradingDay: false},
			{Date: "2024-06-09", Price: 190.1, TradingDay: false},
		},
		CreatedAt: time.Now().Add(-time.Hour).UTC(),
	}
	second := models.MForecastRecord{Ticker: "AAPL", Method: "lstm", Days: 1,
		Predictions: []models.MPredictionPoint{{Date: "2024-06-08", Price: 191}}}
	other := models.MForecastRecord{Ticker: "MSFT", Method: "lstm", Days: 1}

	for _, rec := range []models.MForecastRecord{first, second, other} {
		_, err := store.SaveForecast(ctx, rec)
		helpers.AssertNoError(t, "save", err)
	}

	got, err := store.RecentForecasts(ctx, "AAPL", 10)
	helpers.AssertNoError(t, "recent", err)

	helpers.AssertAreEqual(t, "count", 2, len(got))
	helpers.AssertAreEqual(t, "newest first", "lstm", got[0].Method)
	helpers.AssertAreEqual(t, "null confidence", false, got[0].Confidence.Valid)
	helpers.AssertAreEqual(t, "confidence", 87.5, got[1].Confidence.Float64)
	helpers.AssertAreEqual(t, "predictions", 2, len(got[1].Predictions))
	helpers.AssertAreEqual(t, "price", 190.1, got[1].Predictions[0].Price)

	limited, err := store.RecentForecasts(ctx, "AAPL", 1)
	helpers.AssertNoError(t, "limited", err)
	helpers.AssertAreEqual(t, "limit", 1, len(limited))
}

func TestCleanupOldForecasts(t *testing.T) {
	store := openTestStore(t, 7)
	ctx := context.Background()

	_, err := store.SaveForecast(ctx, models.MForecastRecord{Ticker: "AAPL", Method: "lstm", CreatedAt: time.Now().AddDate(0, 0, -10)})
	helpers.AssertNoError(t, "save old", err)
	_, err = store.SaveForecast(ctx, models.MForecastRecord{Ticker: "AAPL", Method: "lstm"})
	helpers.AssertNoError(t, "save new", err)

	removed, err := store.CleanupOldData(ctx)
	helpers.AssertNoError(t, "cleanup", err)
	helpers.AssertAreEqual(t, "removed", int64(1), removed)

	left, err := store.RecentForecasts(ctx, "AAPL", 10)
	helpers.AssertNoError(t, "recent", err)
	helpers.AssertAreEqual(t, "left", 1, len(left))
}

func TestNewForecastStoreDisabled(t *testing.T) {
	store, err := NewForecastStore(&models.MConfig{}, logger.NewLogger("ERROR", "test"))
	helpers.AssertNoError(t, "none", err)
	if store != nil {
		t.Fatal("expected no store when persistence is disabled")
	}

	cfg := &models.MConfig{}
	cfg.Storage.DBType = "mongo"
	if _, err := NewForecastStore(cfg, logger.NewLogger("ERROR", "test")); err == nil {
		t.Fatal("expected error for unknown db_type")
	}
}
