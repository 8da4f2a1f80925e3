package analytics

import "github.com/finsight/investment-tracker/internal/models"

// ClassifyTrend maps a forecast trajectory and current price to a trend
// label. A pure function: identical inputs always yield the identical label.
// Degenerate inputs (no forecast, non-positive price) classify as neutral.
func ClassifyTrend(forecast []models.ForecastPoint, currentPrice, thresholdPct float64) string {
	if len(forecast) == 0 || currentPrice <= 0 {
		return models.TrendNeutral
	}

	last := forecast[len(forecast)-1].PredictedPrice
	changePct := (last - currentPrice) / currentPrice * 100

	return classifyChange(changePct, thresholdPct)
}

// classifyChange labels a percentage change against a symmetric threshold.
func classifyChange(changePct, thresholdPct float64) string {
	switch {
	case changePct > thresholdPct:
		return models.TrendBullish
	case changePct < -thresholdPct:
		return models.TrendBearish
	default:
		return models.TrendNeutral
	}
}
