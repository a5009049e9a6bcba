package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"stock-predictor/src/models"
	"stock-predictor/src/utils"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// Default returns a configuration that runs without a file: Yahoo only,
// no persistence, the model settings of the served API.
func Default() *Config {
	return &Config{MConfig: &models.MConfig{
		Name:     "stock-predictor",
		Host:     "0.0.0.0",
		Port:     8000,
		LogLevel: "INFO",
		Cors:     models.MCorsConfig{AllowOrigins: []string{"*"}},
		Storage: models.MStorageConfig{
			DBType:          "none",
			DBPath:          "stock_predictor.db",
			RetentionDays:   30,
			CleanupSchedule: "@daily",
		},
		Network: models.MNetworkConfig{
			RequestTimeout:     30,
			MaxRetries:         0,
			ConcurrentRequests: 5,
		},
		DataSource: models.MDataSourceConfig{
			Sources: []string{"yahoo", "alpaca"},
			Alpaca:  models.MAlpacaConfig{Feed: "iex"},
		},
		Scraper: models.MScraperConfig{Timeout: 10},
		Forecast: models.MForecastConfig{
			HistoricalPeriod: utils.DefaultHistoricalPeriod,
			Linear: models.MLinearForecastConfig{
				Period:  "180d",
				MinBars: 30,
				MaxDays: 30,
			},
			Sequence: models.MSequenceForecastConfig{
				Period:       "1y",
				Window:       60,
				Units:        50,
				Dropout:      0.2,
				Epochs:       20,
				BatchSize:    32,
				LearningRate: 0.001,
				Seed:         42,
				MaxDays:      14,
			},
		},
		Stream: models.MStreamConfig{IntervalSeconds: 5},
	}}
}

// -----------------------------------------------------------------------------

// NewConfig loads .env, layers the YAML file over the defaults and then the
// environment over both. An empty path skips the file.
func NewConfig(configPath string) (*Config, error) {
	// 1. .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	config := Default()

	// 2. Unmarshal the file over the defaults
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
		}
		if err := yaml.Unmarshal(data, config.MConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
		}
	}

	// 3. Environment wins
	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyEnv() error {
	if val := os.Getenv("STOCK_PREDICTOR_HOST"); val != "" {
		c.Host = val
	}
	if val := os.Getenv("STOCK_PREDICTOR_PORT"); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid STOCK_PREDICTOR_PORT %q: %w", val, err)
		}
		c.Port = port
	}
	if val := os.Getenv("STOCK_PREDICTOR_LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
	if val := os.Getenv("STOCK_PREDICTOR_DB_TYPE"); val != "" {
		c.Storage.DBType = val
	}
	if val := os.Getenv("STOCK_PREDICTOR_DB_CONNECTION_STRING"); val != "" {
		c.Storage.DBConnectionString = val
	}
	if val := os.Getenv("ALPACA_API_KEY"); val != "" {
		c.DataSource.Alpaca.APIKey = val
	}
	if val := os.Getenv("ALPACA_API_SECRET"); val != "" {
		c.DataSource.Alpaca.APISecret = val
	}
	return nil
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARNING", "WARN", "ERROR":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d", c.Port)
	}

	// Storage
	switch strings.ToLower(c.Storage.DBType) {
	case "", "none":
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres", "postgresql":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("database connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unknown database type %q", c.Storage.DBType)
	}
	if c.Storage.RetentionDays < 0 {
		return fmt.Errorf("retention days cannot be negative")
	}
	if c.Storage.CleanupSchedule != "" {
		if _, err := cron.ParseStandard(c.Storage.CleanupSchedule); err != nil {
			return fmt.Errorf("invalid cleanup schedule %q: %w", c.Storage.CleanupSchedule, err)
		}
	}

	// Network
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.Network.ConcurrentRequests <= 0 {
		return fmt.Errorf("concurrent requests must be greater than 0")
	}
	if c.Scraper.Timeout <= 0 {
		return fmt.Errorf("scraper timeout must be greater than 0")
	}

	// Data sources
	if len(c.DataSource.Sources) == 0 {
		return fmt.Errorf("at least one data source must be configured")
	}
	for _, name := range c.DataSource.Sources {
		switch name {
		case "yahoo", "alpaca":
		default:
			return fmt.Errorf("unknown data source %q", name)
		}
	}

	// Forecast
	for _, p := range []string{c.Forecast.HistoricalPeriod, c.Forecast.Linear.Period, c.Forecast.Sequence.Period} {
		if err := utils.ValidatePeriod(p); err != nil {
			return err
		}
	}
	if c.Forecast.Linear.MaxDays <= 0 || c.Forecast.Sequence.MaxDays <= 0 {
		return fmt.Errorf("forecast max_days must be greater than 0")
	}
	seq := c.Forecast.Sequence
	if seq.Window <= 0 || seq.Units <= 0 || seq.Epochs <= 0 || seq.BatchSize <= 0 {
		return fmt.Errorf("sequence window, units, epochs and batch_size must be greater than 0")
	}
	if seq.Dropout < 0 || seq.Dropout >= 1 {
		return fmt.Errorf("sequence dropout must be in [0, 1)")
	}
	if seq.LearningRate <= 0 {
		return fmt.Errorf("sequence learning_rate must be greater than 0")
	}

	if c.Stream.IntervalSeconds <= 0 {
		return fmt.Errorf("stream interval must be greater than 0")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
