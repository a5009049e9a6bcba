package models

// MPriceSnapshot is the latest daily bar of a ticker reduced to price and change.
type MPriceSnapshot struct {
	Ticker        string  `json:"ticker"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume"`
	Date          string  `json:"date"`
	MarketOpen    bool    `json:"market_open"`
}
