package models

import (
	"time"

	"github.com/guregu/null/v6"
)

// MFeatureRow is one date of engineered features, in FeatureNames order.
type MFeatureRow struct {
	Date     time.Time
	Close    float64
	Features []float64
}

// -----------------------------------------------------------------------------

type MPredictionPoint struct {
	Date       string  `json:"date"`
	Price      float64 `json:"price"`
	TradingDay bool    `json:"trading_day"`
}

type MHistoricalPrice struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// MForecast is the result of a forecaster run.
type MForecast struct {
	Ticker       string             `json:"ticker"`
	Method       string             `json:"method"`
	Predictions  []MPredictionPoint `json:"predictions"`
	Confidence   null.Float         `json:"confidence"`
	FeaturesUsed []string           `json:"features_used,omitempty"`
	Historical   []MHistoricalPrice `json:"historical,omitempty"`
}

// -----------------------------------------------------------------------------

// MForecastRecord is a served forecast kept by the optional forecast store.
type MForecastRecord struct {
	ID          int64              `json:"id"`
	Ticker      string             `json:"ticker"`
	Method      string             `json:"method"`
	Days        int                `json:"days"`
	Confidence  null.Float         `json:"confidence"`
	Predictions []MPredictionPoint `json:"predictions"`
	CreatedAt   time.Time          `json:"created_at"`
}
