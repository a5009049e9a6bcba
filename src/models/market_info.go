package models

import "github.com/guregu/null/v6"

type MNewsItem struct {
	Headline string `json:"headline"`
	Source   string `json:"source"`
}

type MNews struct {
	Ticker string      `json:"ticker"`
	News   []MNewsItem `json:"news"`
}

// -----------------------------------------------------------------------------

// MCompanyInfo keeps the field names the web client already reads.
type MCompanyInfo struct {
	Name          string     `json:"name"`
	Sector        string     `json:"sector"`
	Industry      string     `json:"industry"`
	Website       string     `json:"website"`
	Description   string     `json:"description"`
	Employees     int64      `json:"employees"`
	Country       string     `json:"country"`
	MarketCap     int64      `json:"marketCap"`
	PERatio       null.Float `json:"pe_ratio"`
	DividendYield null.Float `json:"dividend_yield"`
	WeekHigh52    null.Float `json:"52week_high"`
	WeekLow52     null.Float `json:"52week_low"`
}

type MCompanyProfile struct {
	Ticker string       `json:"ticker"`
	Info   MCompanyInfo `json:"info"`
}

// -----------------------------------------------------------------------------

type MTrendingStock struct {
	Ticker        string  `json:"ticker"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
}

type MTrending struct {
	Trending []MTrendingStock `json:"trending"`
}

// MTrendingEntry is a scraped ticker row before price enrichment.
type MTrendingEntry struct {
	Ticker string
	Name   string
}
