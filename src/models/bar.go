package models

import "time"

// MBar is one daily OHLCV bar.
type MBar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// -----------------------------------------------------------------------------

// MHistoryPoint is the JSON shape of a bar.
type MHistoryPoint struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

type MHistory struct {
	Ticker   string          `json:"ticker"`
	Period   string          `json:"period"`
	Interval string          `json:"interval"`
	History  []MHistoryPoint `json:"history"`
}
