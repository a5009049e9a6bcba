package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"stock-predictor/src/helpers"
	"stock-predictor/src/interfaces"
	"stock-predictor/src/logger"
	"stock-predictor/src/models"
)

// NewForecastStore opens the store selected by storage.db_type. It returns
// nil without error when persistence is disabled.
func NewForecastStore(cfg *models.MConfig, log *logger.Logger) (interfaces.IForecastStore, error) {
	var store interfaces.IForecastStore
	switch strings.ToLower(cfg.Storage.DBType) {
	case "", "none":
		return nil, nil
	case "sqlite":
		store = NewForecastSQLiteDB(cfg, log)
	case "postgres", "postgresql":
		store = NewForecastPostgresDB(cfg, log)
	default:
		return nil, fmt.Errorf("unknown db_type %q", cfg.Storage.DBType)
	}

	if err := store.Initialize(); err != nil {
		return nil, helpers.NewDatabaseError("failed to initialize "+cfg.Storage.DBType+" store", err)
	}
	return store, nil
}

// -----------------------------------------------------------------------------

func encodePredictions(points []models.MPredictionPoint) (string, error) {
	if points == nil {
		points = []models.MPredictionPoint{}
	}
	b, err := json.Marshal(points)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// -----------------------------------------------------------------------------

// scanForecast reads id, ticker, method, days, confidence, predictions in
// that order; created_at is decoded by the caller's dialect.
func scanForecast(rows *sql.Rows, createdAt any) (models.MForecastRecord, error) {
	var rec models.MForecastRecord
	var predictions string
	if err := rows.Scan(&rec.ID, &rec.Ticker, &rec.Method, &rec.Days, &rec.Confidence, &predictions, createdAt); err != nil {
		return rec, err
	}
	if err := json.Unmarshal([]byte(predictions), &rec.Predictions); err != nil {
		return rec, fmt.Errorf("decode predictions of forecast %d: %w", rec.ID, err)
	}
	return rec, nil
}
