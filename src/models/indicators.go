package models

import "github.com/guregu/null/v6"

// MIndicatorValues holds the latest indicator row. Values that need more
// history than available are null.
type MIndicatorValues struct {
	Price  float64    `json:"price"`
	MA20   null.Float `json:"ma20"`
	MA50   null.Float `json:"ma50"`
	MA200  null.Float `json:"ma200"`
	RSI    null.Float `json:"rsi"`
	MACD   null.Float `json:"macd"`
	Signal null.Float `json:"signal"`
}

type MIndicatorSnapshot struct {
	Ticker     string           `json:"ticker"`
	Date       string           `json:"date"`
	Indicators MIndicatorValues `json:"indicators"`
}
