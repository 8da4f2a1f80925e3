package marketdata

import (
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"

	"github.com/finsight/investment-tracker/internal/models"
)

const (
	smaShortPeriod = 20
	smaLongPeriod  = 50
	rsiPeriod      = 14
)

// BuildIndicators precomputes the technical indicators delivered alongside a
// history: 20/50-period simple moving averages and the 14-period RSI. The
// analytics engine reads these as supplied values and never recomputes them.
func BuildIndicators(prices []models.RawPricePoint) models.IndicatorSet {
	closes := make([]float64, 0, len(prices))
	for _, p := range prices {
		if p.Close > 0 {
			closes = append(closes, p.Close)
		}
	}

	set := models.IndicatorSet{}
	if len(closes) == 0 {
		return set
	}

	if len(closes) >= smaShortPeriod {
		sma := trend.NewSmaWithPeriod[float64](smaShortPeriod)
		set.SMA20 = helper.ChanToSlice(sma.Compute(helper.SliceToChan(closes)))
	}
	if len(closes) >= smaLongPeriod {
		sma := trend.NewSmaWithPeriod[float64](smaLongPeriod)
		set.SMA50 = helper.ChanToSlice(sma.Compute(helper.SliceToChan(closes)))
	}
	if len(closes) > rsiPeriod {
		rsi := momentum.NewRsiWithPeriod[float64](rsiPeriod)
		set.RSI = helper.ChanToSlice(rsi.Compute(helper.SliceToChan(closes)))
	}

	if last, ok := lastOf(set.SMA20); ok {
		set.CurrentSMA20 = &last
	}
	if last, ok := lastOf(set.SMA50); ok {
		set.CurrentSMA50 = &last
	}
	if last, ok := lastOf(set.RSI); ok {
		set.CurrentRSI = &last
	}

	return set
}

func lastOf(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	return values[len(values)-1], true
}
