package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// namedRanges are the periods the chart provider accepts verbatim.
var namedRanges = map[string]bool{
	"1d": true, "5d": true, "1mo": true, "3mo": true, "6mo": true,
	"1y": true, "2y": true, "5y": true, "10y": true, "ytd": true, "max": true,
}

var periodPattern = regexp.MustCompile(`^(\d+)(d|wk|mo|y)$`)

// earliest is used as the start of the "max" period.
var earliest = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// -----------------------------------------------------------------------------

// IsNamedRange reports whether period is one of the provider's named ranges.
func IsNamedRange(period string) bool {
	return namedRanges[period]
}

// -----------------------------------------------------------------------------

// ValidatePeriod accepts named ranges and counted periods such as "180d" or "2wk".
func ValidatePeriod(period string) error {
	if IsNamedRange(period) {
		return nil
	}
	m := periodPattern.FindStringSubmatch(period)
	if m == nil {
		return fmt.Errorf("unsupported period %q", period)
	}
	if n, _ := strconv.Atoi(m[1]); n <= 0 {
		return fmt.Errorf("unsupported period %q", period)
	}
	return nil
}

// -----------------------------------------------------------------------------

// PeriodStart returns the first instant covered by period, counted back from now.
func PeriodStart(period string, now time.Time) (time.Time, error) {
	switch period {
	case "ytd":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), nil
	case "max":
		return earliest, nil
	}

	if err := ValidatePeriod(period); err != nil {
		return time.Time{}, err
	}

	m := periodPattern.FindStringSubmatch(period)
	n, _ := strconv.Atoi(m[1])
	switch m[2] {
	case "d":
		return now.AddDate(0, 0, -n), nil
	case "wk":
		return now.AddDate(0, 0, -7*n), nil
	case "mo":
		return now.AddDate(0, -n, 0), nil
	default:
		return now.AddDate(-n, 0, 0), nil
	}
}

// -----------------------------------------------------------------------------

// TradingDaysHint returns n for short day-counted periods ("1d", "5d"),
// which mean the last n sessions rather than n calendar days. Zero otherwise.
func TradingDaysHint(period string) int {
	m := periodPattern.FindStringSubmatch(period)
	if m == nil || m[2] != "d" {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	if n > 5 {
		return 0
	}
	return n
}
