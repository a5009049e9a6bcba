package models

// MConfig Structure
type MConfig struct {
	Name          string            `yaml:"name"`
	Host          string            `yaml:"host"`
	Port          int               `yaml:"port"`
	LogLevel      string            `yaml:"log_level"`
	MemoryLimitMB int               `yaml:"memory_limit_mb"` // 0 = derived from system memory
	Cors          MCorsConfig       `yaml:"cors"`
	Storage       MStorageConfig    `yaml:"storage"`
	Network       MNetworkConfig    `yaml:"network"`
	DataSource    MDataSourceConfig `yaml:"data_source"`
	Scraper       MScraperConfig    `yaml:"scraper"`
	Forecast      MForecastConfig   `yaml:"forecast"`
	Stream        MStreamConfig     `yaml:"stream"`
}

type MCorsConfig struct {
	AllowOrigins []string `yaml:"allow_origins"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"` // none | sqlite | postgres
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	RetentionDays      int    `yaml:"retention_days"`
	CleanupSchedule    string `yaml:"cleanup_schedule"`
}

type MNetworkConfig struct {
	Enabled            bool     `yaml:"enabled"`
	Proxies            []string `yaml:"proxies"`
	RequestTimeout     int      `yaml:"timeout"`
	MaxRetries         int      `yaml:"retries"`
	ConcurrentRequests int      `yaml:"concurrent_requests"`
	UserAgent          string   `yaml:"user_agent"`
}

type MDataSourceConfig struct {
	Sources []string      `yaml:"sources"` // tried in order: yahoo, alpaca
	Yahoo   MYahooConfig  `yaml:"yahoo"`
	Alpaca  MAlpacaConfig `yaml:"alpaca"`
}

type MYahooConfig struct {
	ChartURL   string `yaml:"chart_url"`
	SummaryURL string `yaml:"summary_url"`
}

type MAlpacaConfig struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"` // Optional
	Feed      string `yaml:"feed"`     // iex | sip
}

type MScraperConfig struct {
	Timeout     int    `yaml:"timeout"`
	NewsURL     string `yaml:"news_url"`
	TrendingURL string `yaml:"trending_url"`
}

type MForecastConfig struct {
	HistoricalPeriod string                  `yaml:"historical_period"`
	Linear           MLinearForecastConfig   `yaml:"linear"`
	Sequence         MSequenceForecastConfig `yaml:"sequence"`
}

type MLinearForecastConfig struct {
	Period  string `yaml:"period"`
	MinBars int    `yaml:"min_bars"`
	MaxDays int    `yaml:"max_days"`
}

type MSequenceForecastConfig struct {
	Period       string  `yaml:"period"`
	Window       int     `yaml:"window"`
	Units        int     `yaml:"units"`
	Dropout      float64 `yaml:"dropout"`
	Epochs       int     `yaml:"epochs"`
	BatchSize    int     `yaml:"batch_size"`
	LearningRate float64 `yaml:"learning_rate"`
	Seed         uint64  `yaml:"seed"`
	MaxDays      int     `yaml:"max_days"`
}

type MStreamConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
}
