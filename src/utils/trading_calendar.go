package utils

import (
	"strings"
	"sync"
	"time"

	"github.com/scmhub/calendar"
)

// suffixToMIC maps exchange suffixes of Yahoo-style tickers to ISO 10383 MIC codes.
var suffixToMIC = map[string]string{
	".L": "xlon", ".PA": "xpar", ".DE": "xfra", ".AS": "xams", ".BR": "xbru",
	".MI": "xmil", ".MC": "xmad", ".ST": "xsto", ".CO": "xcse", ".HE": "xhel",
	".VI": "xwbo", ".SW": "xswx", ".TO": "xtse", ".V": "xtsx", ".T": "xtks",
	".HK": "xhkg", ".AX": "xasx", ".KS": "xkrx", ".TW": "xtai", ".SS": "xshg",
	".SZ": "xshe",
}

var calendarCache sync.Map // mic -> *TradingCalendar

// TradingCalendar answers trading-day questions for one exchange.
type TradingCalendar struct {
	MIC      string
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// MICForTicker maps a ticker to its exchange. Tickers without a known
// suffix are treated as NYSE listings.
func MICForTicker(ticker string) string {
	if i := strings.LastIndex(ticker, "."); i > 0 {
		if mic, ok := suffixToMIC[strings.ToUpper(ticker[i:])]; ok {
			return mic
		}
	}
	return "xnys"
}

// -----------------------------------------------------------------------------

// GetCalendar returns the (cached) calendar of the exchange listing ticker.
func GetCalendar(ticker string) *TradingCalendar {
	mic := MICForTicker(ticker)
	if cached, ok := calendarCache.Load(mic); ok {
		return cached.(*TradingCalendar)
	}

	tc := loadCalendar(mic)
	actual, _ := calendarCache.LoadOrStore(mic, tc)
	return actual.(*TradingCalendar)
}

// -----------------------------------------------------------------------------

func loadCalendar(mic string) *TradingCalendar {
	cal := calendar.GetCalendar(mic)
	if cal == nil && mic != "xnys" {
		mic = "xnys"
		cal = calendar.GetCalendar(mic)
	}
	if cal != nil {
		return &TradingCalendar{MIC: mic, Calendar: cal, Timezone: cal.Loc}
	}

	// Mon-Fri 09:30-16:00 New York
	nyLoc, err := time.LoadLocation("America/New_York")
	if err != nil {
		nyLoc = time.UTC
	}
	return &TradingCalendar{MIC: mic, Fallback: true, Timezone: nyLoc}
}

// -----------------------------------------------------------------------------

// IsTradingDay reports whether the exchange holds a session on date's calendar day.
func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		// Dates carry no zone of their own; read the calendar day in exchange time.
		date = time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, tc.Timezone)
	}

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenAt checks if the market is in its regular session at t.
func (tc *TradingCalendar) IsOpenAt(t time.Time) bool {
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}

	if tc.Fallback {
		if !tc.IsTradingDay(t) {
			return false
		}
		minutes := t.Hour()*60 + t.Minute()
		return minutes >= 9*60+30 && minutes < 16*60
	}

	return tc.Calendar.IsOpen(t)
}
