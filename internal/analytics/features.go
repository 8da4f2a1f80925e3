package analytics

import (
	"math"
	"time"

	"github.com/finsight/investment-tracker/internal/config"
)

// Feature names. The candidate order below doubles as the selection priority
// and as the layout of every feature vector, so it must stay stable.
const (
	FeatureDays      = "days"
	FeatureLag1      = "lag_1"
	FeatureLag3      = "lag_3"
	FeatureLag5      = "lag_5"
	FeatureLag7      = "lag_7"
	FeatureMean5     = "rolling_mean_5"
	FeatureMean10    = "rolling_mean_10"
	FeatureMean20    = "rolling_mean_20"
	FeatureStd5      = "rolling_std_5"
	FeatureStd10     = "rolling_std_10"
	FeatureStd20     = "rolling_std_20"
	FeatureLogReturn = "log_return"
	FeatureCumReturn = "cumulative_return"
	FeatureVol       = "volatility"
	FeatureDayOfWeek = "day_of_week"
	FeatureMomentum5 = "momentum_5"
	FeatureRSI       = "rsi"
)

var lagPeriods = []int{1, 3, 5, 7}
var rollingWindows = []int{5, 10, 20}

const (
	rsiPeriod        = 14
	volatilityWindow = 10
	momentumPeriod   = 5
)

// CandidateFeatures is the priority-ordered menu the selector draws from.
var CandidateFeatures = []string{
	FeatureDays,
	FeatureLag1, FeatureLag3, FeatureLag5, FeatureLag7,
	FeatureMean5, FeatureMean10, FeatureMean20,
	FeatureStd5, FeatureStd10, FeatureStd20,
	FeatureMomentum5,
	FeatureRSI,
	FeatureVol,
	FeatureDayOfWeek,
}

// FeatureRow is one observation with its derived features. Missing values
// (warm-up period of lag/rolling windows) are NaN.
type FeatureRow struct {
	Date   time.Time
	Close  float64
	Values map[string]float64
}

// FeatureTable is the output of the feature builder: one row per cleaned
// observation, aligned with the input series.
type FeatureTable struct {
	Rows []FeatureRow
}

// FeatureBuilder derives the fixed menu of time-series features from a
// cleaned series. It is a pure, deterministic function of its input.
type FeatureBuilder struct {
	cfg config.AnalyticsConfig
}

func NewFeatureBuilder(cfg config.AnalyticsConfig) *FeatureBuilder {
	return &FeatureBuilder{cfg: cfg}
}

// Build computes all features for the series.
func (b *FeatureBuilder) Build(series *CleanedSeries) *FeatureTable {
	n := series.Len()
	closes := series.Closes()
	start := series.Points[0].Date

	logReturns := make([]float64, n)
	logReturns[0] = math.NaN()
	for i := 1; i < n; i++ {
		logReturns[i] = math.Log(closes[i] / closes[i-1])
	}

	annualize := math.Sqrt(float64(b.cfg.TradingDaysPerYear))

	rows := make([]FeatureRow, n)
	for i := range rows {
		pt := series.Points[i]
		values := map[string]float64{
			FeatureDays:      math.Floor(pt.Date.Sub(start).Hours() / 24),
			FeatureLogReturn: logReturns[i],
			FeatureCumReturn: (closes[i]/closes[0] - 1) * 100,
			FeatureDayOfWeek: float64((int(pt.Date.Weekday()) + 6) % 7),
		}

		for _, k := range lagPeriods {
			values[lagFeature(k)] = lagValue(closes, i, k)
		}
		for _, w := range rollingWindows {
			mean, std := rollingMeanStd(closes, i, w)
			values[rollingMeanFeature(w)] = mean
			values[rollingStdFeature(w)] = std
		}

		if i >= momentumPeriod {
			values[FeatureMomentum5] = closes[i] - closes[i-momentumPeriod]
		} else {
			values[FeatureMomentum5] = math.NaN()
		}

		_, volStd := rollingMeanStd(logReturns, i, volatilityWindow)
		if math.IsNaN(volStd) {
			values[FeatureVol] = math.NaN()
		} else {
			values[FeatureVol] = volStd * annualize
		}

		values[FeatureRSI] = rsiAt(closes, i)

		rows[i] = FeatureRow{Date: pt.Date, Close: closes[i], Values: values}
	}

	return &FeatureTable{Rows: rows}
}

func lagFeature(k int) string {
	switch k {
	case 1:
		return FeatureLag1
	case 3:
		return FeatureLag3
	case 5:
		return FeatureLag5
	default:
		return FeatureLag7
	}
}

func rollingMeanFeature(w int) string {
	switch w {
	case 5:
		return FeatureMean5
	case 10:
		return FeatureMean10
	default:
		return FeatureMean20
	}
}

func rollingStdFeature(w int) string {
	switch w {
	case 5:
		return FeatureStd5
	case 10:
		return FeatureStd10
	default:
		return FeatureStd20
	}
}

func lagValue(closes []float64, i, k int) float64 {
	if i < k {
		return math.NaN()
	}
	return closes[i-k]
}

// rollingMeanStd computes the trailing-window mean and sample std ending at
// index i. A window that does not fit, or that contains NaN, yields NaN.
func rollingMeanStd(values []float64, i, window int) (float64, float64) {
	if i < window-1 {
		return math.NaN(), math.NaN()
	}
	sum := 0.0
	for j := i - window + 1; j <= i; j++ {
		if math.IsNaN(values[j]) {
			return math.NaN(), math.NaN()
		}
		sum += values[j]
	}
	mean := sum / float64(window)
	ss := 0.0
	for j := i - window + 1; j <= i; j++ {
		d := values[j] - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(window-1))
}

// rsiAt computes the 14-period RSI ending at index i, using simple rolling
// means of gains and losses. A zero average loss leaves RS undefined, so the
// value is NaN rather than forced to 100.
func rsiAt(closes []float64, i int) float64 {
	if i < rsiPeriod {
		return math.NaN()
	}
	gains, losses := 0.0, 0.0
	for j := i - rsiPeriod + 1; j <= i; j++ {
		delta := closes[j] - closes[j-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}
	avgGain := gains / rsiPeriod
	avgLoss := losses / rsiPeriod
	if avgLoss == 0 {
		return math.NaN()
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
