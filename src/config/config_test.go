package config

import (
	"os"
	"path/filepath"
	"testing"

	"stock-predictor/src/helpers"
)

func TestDefaultIsValid(t *testing.T) {
	helpers.AssertNoError(t, "default", Default().Validate())
}

func TestForecastHistoryWindows(t *testing.T) {
	def := Default()
	helpers.AssertAreEqual(t, "linear", "180d", def.Forecast.Linear.Period)
	helpers.AssertAreEqual(t, "sequence", "1y", def.Forecast.Sequence.Period)
	helpers.AssertAreEqual(t, "historical", "3mo", def.Forecast.HistoricalPeriod)

	shipped, err := NewConfig(filepath.Join("..", "..", "config", "default.yaml"))
	helpers.AssertNoError(t, "shipped config", err)
	helpers.AssertAreEqual(t, "shipped linear", def.Forecast.Linear.Period, shipped.Forecast.Linear.Period)
	helpers.AssertAreEqual(t, "shipped sequence", def.Forecast.Sequence.Period, shipped.Forecast.Sequence.Period)
}

func TestNewConfigLayersFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "config.yaml")
	yamlData := []byte("port: 9000\nstorage:\n  db_type: sqlite\n  db_path: test.db\nforecast:\n  sequence:\n    epochs: 5\n")
	helpers.AssertNoError(t, "write", os.WriteFile(path, yamlData, 0644))

	t.Setenv("STOCK_PREDICTOR_LOG_LEVEL", "DEBUG")
	t.Setenv("ALPACA_API_KEY", "key")

	cfg, err := NewConfig(path)
	helpers.AssertNoError(t, "load", err)

	helpers.AssertAreEqual(t, "port from file", 9000, cfg.Port)
	helpers.AssertAreEqual(t, "db type", "sqlite", cfg.Storage.DBType)
	helpers.AssertAreEqual(t, "epochs", 5, cfg.Forecast.Sequence.Epochs)
	helpers.AssertAreEqual(t, "window kept", 60, cfg.Forecast.Sequence.Window)
	helpers.AssertAreEqual(t, "log level from env", "DEBUG", cfg.LogLevel)
	helpers.AssertAreEqual(t, "alpaca key", "key", cfg.DataSource.Alpaca.APIKey)
}

func TestNewConfigReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	helpers.AssertNoError(t, "write", os.WriteFile(".env", []byte("STOCK_PREDICTOR_PORT=8123\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("STOCK_PREDICTOR_PORT") })

	cfg, err := NewConfig("")
	helpers.AssertNoError(t, "load", err)
	helpers.AssertAreEqual(t, "port", 8123, cfg.Port)
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty name", func(c *Config) { c.Name = "" }},
		{"bad port", func(c *Config) { c.Port = 70000 }},
		{"unknown db", func(c *Config) { c.Storage.DBType = "mongo" }},
		{"postgres without dsn", func(c *Config) { c.Storage.DBType = "postgres" }},
		{"bad schedule", func(c *Config) { c.Storage.CleanupSchedule = "every day" }},
		{"unknown source", func(c *Config) { c.DataSource.Sources = []string{"bloomberg"} }},
		{"no source", func(c *Config) { c.DataSource.Sources = nil }},
		{"bad period", func(c *Config) { c.Forecast.Linear.Period = "forever" }},
		{"dropout", func(c *Config) { c.Forecast.Sequence.Dropout = 1 }},
		{"log level", func(c *Config) { c.LogLevel = "LOUD" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.mutate(c)
			if err := c.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Chdir(t.TempDir())

	c := Default()
	c.Port = 8500
	helpers.AssertNoError(t, "save", c.Save("saved.yaml"))

	loaded, err := NewConfig("saved.yaml")
	helpers.AssertNoError(t, "load", err)
	helpers.AssertAreEqual(t, "port", 8500, loaded.Port)
}
