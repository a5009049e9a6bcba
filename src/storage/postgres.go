package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stock-predictor/src/helpers"
	"stock-predictor/src/logger"
	"stock-predictor/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

// ForecastPostgresDB keeps served forecasts in a dedicated Postgres schema.
type ForecastPostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

// NewForecastPostgresDB names the schema after the configured service name,
// or the executable when none is set.
func NewForecastPostgresDB(cfg *models.MConfig, log *logger.Logger) *ForecastPostgresDB {
	name := cfg.Name
	if name == "" {
		if exe, err := os.Executable(); err == nil {
			name = strings.TrimSuffix(filepath.Base(exe), filepath.Ext(exe))
		}
	}
	name = strings.NewReplacer("-", "_", " ", "_", `"`, "").Replace(name)
	if name == "" {
		name = "stock_predictor"
	}

	return &ForecastPostgresDB{
		Config: cfg,
		Schema: name,
		Logger: log.Named("ForecastPostgresDB"),
	}
}

// -----------------------------------------------------------------------------

func (d *ForecastPostgresDB) Initialize() error {
	db, err := sql.Open("postgres", d.Config.Storage.DBConnectionString)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}
	d.DB = db

	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			ticker TEXT NOT NULL,
			method TEXT NOT NULL,
			days INTEGER NOT NULL,
			confidence DOUBLE PRECISION,
			predictions JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`, d.table())
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create forecasts: %w", err)
	}

	index := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_forecasts_ticker_created ON %s (ticker, created_at DESC)`, d.table())
	if _, err := d.DB.Exec(index); err != nil {
		return fmt.Errorf("failed to create forecasts index: %w", err)
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *ForecastPostgresDB) table() string {
	return fmt.Sprintf(`"%s"."forecasts"`, d.Schema)
}

// -----------------------------------------------------------------------------

func (d *ForecastPostgresDB) SaveForecast(ctx context.Context, rec models.MForecastRecord) (int64, error) {
	predictions, err := encodePredictions(rec.Predictions)
	if err != nil {
		return 0, err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	var id int64
	err = d.DB.QueryRowContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (ticker, method, days, confidence, predictions, created_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6)
		RETURNING id
	`, d.table()), rec.Ticker, rec.Method, rec.Days, rec.Confidence, predictions, rec.CreatedAt).Scan(&id)
	if err != nil {
		return 0, helpers.NewDatabaseError("save forecast", err)
	}
	return id, nil
}

// -----------------------------------------------------------------------------

func (d *ForecastPostgresDB) RecentForecasts(ctx context.Context, ticker string, limit int) ([]models.MForecastRecord, error) {
	rows, err := d.DB.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, ticker, method, days, confidence, predictions::text, created_at
		FROM %s
		WHERE ticker = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, d.table()), ticker, limit)
	if err != nil {
		return nil, helpers.NewDatabaseError("query forecasts", err)
	}
	defer rows.Close()

	out := []models.MForecastRecord{}
	for rows.Next() {
		var created time.Time
		rec, err := scanForecast(rows, &created)
		if err != nil {
			return nil, helpers.NewDatabaseError("scan forecast", err)
		}
		rec.CreatedAt = created.UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// -----------------------------------------------------------------------------

func (d *ForecastPostgresDB) CleanupOldData(ctx context.Context) (int64, error) {
	retentionDays := d.Config.Storage.RetentionDays
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	d.Logger.Info("Cleaning up forecasts older than %d days", retentionDays)
	res, err := d.DB.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE created_at < $1`, d.table()), cutoff)
	if err != nil {
		return 0, helpers.NewDatabaseError("cleanup forecasts", err)
	}
	return res.RowsAffected()
}

// -----------------------------------------------------------------------------

func (d *ForecastPostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
