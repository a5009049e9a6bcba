package analysis

import (
	"fmt"
	"math"
	"time"

	"stock-predictor/src/models"
)

// ResampleBars groups daily bars into weekly ("1wk", weeks start Monday) or
// monthly ("1mo") candles. "1d" returns the input unchanged. Bars must be in
// ascending order.
func ResampleBars(bars []models.MBar, interval string) ([]models.MBar, error) {
	var bucket func(time.Time) time.Time
	switch interval {
	case "", "1d":
		return bars, nil
	case "1wk":
		bucket = weekStart
	case "1mo":
		bucket = monthStart
	default:
		return nil, fmt.Errorf("unsupported interval %q", interval)
	}

	var out []models.MBar
	start := 0
	for i := 1; i <= len(bars); i++ {
		if i < len(bars) && bucket(bars[i].Date).Equal(bucket(bars[start].Date)) {
			continue
		}
		out = append(out, AggregateBars(bars[start:i]))
		start = i
	}
	return out, nil
}

// -----------------------------------------------------------------------------

// AggregateBars merges consecutive bars into one candle dated at the first bar.
func AggregateBars(bars []models.MBar) models.MBar {
	if len(bars) == 0 {
		return models.MBar{}
	}

	agg := models.MBar{
		Date:  bars[0].Date,
		Open:  bars[0].Open,
		Close: bars[len(bars)-1].Close,
		High:  math.Inf(-1),
		Low:   math.Inf(1),
	}
	for _, b := range bars {
		agg.High = math.Max(agg.High, b.High)
		agg.Low = math.Min(agg.Low, b.Low)
		agg.Volume += b.Volume
	}
	return agg
}

// -----------------------------------------------------------------------------

func weekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	d := t.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
