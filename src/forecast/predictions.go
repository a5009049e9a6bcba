package forecast

import (
	"time"

	"stock-predictor/src/analysis/core"
	"stock-predictor/src/models"
	"stock-predictor/src/utils"
)

const (
	MethodLinear = "enhanced_linear_regression"
	MethodLSTM   = "lstm"
)

// -----------------------------------------------------------------------------

// predictionPoints dates prices[i] at last + (i+1) calendar days. Dates may
// land on weekends or holidays; TradingDay reports which do not.
func predictionPoints(ticker string, last time.Time, prices []float64) []models.MPredictionPoint {
	cal := utils.GetCalendar(ticker)

	points := make([]models.MPredictionPoint, len(prices))
	for i, p := range prices {
		date := last.AddDate(0, 0, i+1)
		points[i] = models.MPredictionPoint{
			Date:       date.Format(utils.DateLayout),
			Price:      core.Round2(p),
			TradingDay: cal.IsTradingDay(date),
		}
	}
	return points
}
