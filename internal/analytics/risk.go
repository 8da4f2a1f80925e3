package analytics

import (
	"math"

	"github.com/finsight/investment-tracker/internal/config"
	"github.com/finsight/investment-tracker/internal/models"
)

// RiskCalculator derives risk metrics from a raw price window.
type RiskCalculator struct {
	cfg config.AnalyticsConfig
}

func NewRiskCalculator(cfg config.AnalyticsConfig) *RiskCalculator {
	return &RiskCalculator{cfg: cfg}
}

// Profile computes change, volatility, max drawdown and Sharpe ratio for a
// price window. Requires at least two points; degenerate windows (flat
// series, zero start price) report zeroed metrics rather than failing.
func (r *RiskCalculator) Profile(prices []float64) (*models.RiskProfile, error) {
	if len(prices) < 2 {
		return nil, NewInsufficientDataError("risk metrics", 2, len(prices))
	}

	profile := &models.RiskProfile{
		MaxDrawdown: round2(MaxDrawdown(prices)),
	}

	if prices[0] != 0 {
		profile.ChangePct = round2((prices[len(prices)-1] - prices[0]) / prices[0] * 100)
	}

	returns := simpleReturns(prices)
	_, retStd := meanStd(returns)
	profile.Volatility = round2(retStd * 100)
	profile.SharpeRatio = round2(r.sharpe(returns))

	return profile, nil
}

// MaxDrawdown reports the largest peak-to-trough percentage decline over the
// series, 0 when the peak never goes positive.
func MaxDrawdown(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}
	peak := prices[0]
	maxDD := 0.0
	for _, price := range prices {
		if price > peak {
			peak = price
		}
		if peak > 0 {
			dd := (peak - price) / peak * 100
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// sharpe annualizes mean and std of daily returns and measures excess return
// over the configured risk-free rate. Zero-variance returns leave the ratio
// undefined, reported as 0.
func (r *RiskCalculator) sharpe(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	mean, std := meanStd(returns)
	if std == 0 {
		return 0
	}

	days := float64(r.cfg.TradingDaysPerYear)
	annualReturn := mean * days
	annualStd := std * math.Sqrt(days)
	return (annualReturn - r.cfg.RiskFreeRate) / annualStd
}

func simpleReturns(prices []float64) []float64 {
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}
	return returns
}
