package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stock-predictor/src/helpers"
	"stock-predictor/src/logger"
	"stock-predictor/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

// ForecastSQLiteDB keeps served forecasts in a local SQLite file.
type ForecastSQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewForecastSQLiteDB(cfg *models.MConfig, log *logger.Logger) *ForecastSQLiteDB {
	return &ForecastSQLiteDB{
		Config: cfg,
		Logger: log.Named("ForecastSQLiteDB"),
	}
}

// -----------------------------------------------------------------------------

func (d *ForecastSQLiteDB) Initialize() error {
	dsn := d.Config.Storage.DBPath
	if dsn == "" {
		dsn = "stock_predictor.db"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	// one writer at a time; also keeps ":memory:" on a single connection
	db.SetMaxOpenConns(1)
	d.DB = db

	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *ForecastSQLiteDB) createTables() error {
	query := `
		CREATE TABLE IF NOT EXISTS forecasts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ticker TEXT NOT NULL,
			method TEXT NOT NULL,
			days INTEGER NOT NULL,
			confidence REAL,
			predictions TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create forecasts: %w", err)
	}

	if _, err := d.DB.Exec(`CREATE INDEX IF NOT EXISTS idx_forecasts_ticker_created ON forecasts (ticker, created_at)`); err != nil {
		return fmt.Errorf("failed to create forecasts index: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *ForecastSQLiteDB) SaveForecast(ctx context.Context, rec models.MForecastRecord) (int64, error) {
	predictions, err := encodePredictions(rec.Predictions)
	if err != nil {
		return 0, err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	res, err := d.DB.ExecContext(ctx, `
		INSERT INTO forecasts (ticker, method, days, confidence, predictions, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.Ticker, rec.Method, rec.Days, rec.Confidence, predictions, rec.CreatedAt.UnixMilli())
	if err != nil {
		return 0, helpers.NewDatabaseError("save forecast", err)
	}
	return res.LastInsertId()
}

// -----------------------------------------------------------------------------

// RecentForecasts returns the newest forecasts for ticker, newest first.
func (d *ForecastSQLiteDB) RecentForecasts(ctx context.Context, ticker string, limit int) ([]models.MForecastRecord, error) {
	rows, err := d.DB.QueryContext(ctx, `
		SELECT id, ticker, method, days, confidence, predictions, created_at
		FROM forecasts
		WHERE ticker = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, ticker, limit)
	if err != nil {
		return nil, helpers.NewDatabaseError("query forecasts", err)
	}
	defer rows.Close()

	out := []models.MForecastRecord{}
	for rows.Next() {
		var createdMillis int64
		rec, err := scanForecast(rows, &createdMillis)
		if err != nil {
			return nil, helpers.NewDatabaseError("scan forecast", err)
		}
		rec.CreatedAt = time.UnixMilli(createdMillis).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// -----------------------------------------------------------------------------

func (d *ForecastSQLiteDB) CleanupOldData(ctx context.Context) (int64, error) {
	retentionDays := d.Config.Storage.RetentionDays
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).UnixMilli()

	d.Logger.Info("Cleaning up forecasts older than %d days", retentionDays)
	res, err := d.DB.ExecContext(ctx, "DELETE FROM forecasts WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, helpers.NewDatabaseError("cleanup forecasts", err)
	}
	return res.RowsAffected()
}

// -----------------------------------------------------------------------------

func (d *ForecastSQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
