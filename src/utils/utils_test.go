package utils

import (
	"testing"
	"time"

	"stock-predictor/src/helpers"
)

func TestValidatePeriod(t *testing.T) {
	for _, p := range []string{"1d", "5d", "1mo", "6mo", "1y", "ytd", "max", "180d", "2wk"} {
		helpers.AssertNoError(t, p, ValidatePeriod(p))
	}
	for _, p := range []string{"", "0d", "1h", "forever", "-1mo"} {
		if ValidatePeriod(p) == nil {
			t.Fatalf("expected %q to be rejected", p)
		}
	}
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	cases := map[string]time.Time{
		"180d": now.AddDate(0, 0, -180),
		"2wk":  now.AddDate(0, 0, -14),
		"3mo":  time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
		"1y":   time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC),
		"ytd":  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for period, want := range cases {
		got, err := PeriodStart(period, now)
		helpers.AssertNoError(t, period, err)
		helpers.AssertAreEqual(t, period, want, got)
	}
}

func TestTradingDaysHint(t *testing.T) {
	helpers.AssertAreEqual(t, "1d", 1, TradingDaysHint("1d"))
	helpers.AssertAreEqual(t, "5d", 5, TradingDaysHint("5d"))
	helpers.AssertAreEqual(t, "30d", 0, TradingDaysHint("30d"))
	helpers.AssertAreEqual(t, "1mo", 0, TradingDaysHint("1mo"))
}

// -----------------------------------------------------------------------------

func TestRingBufferKeepsNewest(t *testing.T) {
	rb := NewRingBufferFrom(3, []float64{1, 2, 3, 4})
	helpers.AssertAreEqual(t, "full", true, rb.IsFull())

	rb.Append(5)
	snap := rb.Snapshot()
	helpers.AssertAreEqual(t, "len", 3, len(snap))
	helpers.AssertAreEqual(t, "oldest", 3.0, snap[0])
	helpers.AssertAreEqual(t, "newest", 5.0, snap[2])

	latest, ok := rb.Latest()
	helpers.AssertAreEqual(t, "has latest", true, ok)
	helpers.AssertAreEqual(t, "latest", 5.0, latest)
}

func TestRingBufferEmpty(t *testing.T) {
	rb := NewRingBuffer(0)
	helpers.AssertAreEqual(t, "capacity", 1, rb.Capacity())
	_, ok := rb.Latest()
	helpers.AssertAreEqual(t, "empty", false, ok)
}

// -----------------------------------------------------------------------------

func TestMICForTicker(t *testing.T) {
	helpers.AssertAreEqual(t, "us", "xnys", MICForTicker("AAPL"))
	helpers.AssertAreEqual(t, "london", "xlon", MICForTicker("VOD.L"))
	helpers.AssertAreEqual(t, "class share", "xnys", MICForTicker("BRK.B"))
}

func TestNYSEWeekend(t *testing.T) {
	cal := GetCalendar("AAPL")
	saturday := time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC)
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	helpers.AssertAreEqual(t, "saturday", false, cal.IsTradingDay(saturday))
	helpers.AssertAreEqual(t, "monday", true, cal.IsTradingDay(monday))
	helpers.AssertAreEqual(t, "closed at night", false, cal.IsOpenAt(time.Date(2024, 6, 10, 4, 0, 0, 0, time.UTC)))
}
