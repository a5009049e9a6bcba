package utils

// -----------------------------------------------------------------------------

// Request defaults and formats shared by the API and the CLI.
const (
	DateLayout = "2006-01-02"

	SnapshotPeriod          = "1d"
	DefaultHistoryPeriod    = "1mo"
	DefaultIndicatorPeriod  = "6mo"
	DefaultHistoricalPeriod = "3mo"
	DefaultInterval         = "1d"

	DefaultForecastDays = 7
	DefaultNewsLimit    = 5
	MaxNewsLimit        = 20
	TrendingLimit       = 10
)

// FallbackTrending is served when the trending page cannot be scraped.
var FallbackTrending = []string{"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA"}
