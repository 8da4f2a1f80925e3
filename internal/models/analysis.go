package models

// Trend labels produced by the classifier.
const (
	TrendBullish = "bullish"
	TrendBearish = "bearish"
	TrendNeutral = "neutral"
)

// AssetRef identifies an asset for multi-asset operations.
type AssetRef struct {
	Symbol    string `json:"symbol"`
	AssetType string `json:"asset_type"`
}

// RiskProfile summarizes risk metrics over a single price window.
// Volatility is the standard deviation of simple percentage returns (in
// percent, not annualized); MaxDrawdown is the largest peak-to-trough decline
// in percent; SharpeRatio is annualized against a fixed risk-free rate and
// reported as 0 when undefined.
type RiskProfile struct {
	ChangePct   float64 `json:"change_pct"`
	Volatility  float64 `json:"volatility"`
	MaxDrawdown float64 `json:"max_drawdown"`
	SharpeRatio float64 `json:"sharpe_ratio"`
}

// TrendWindow is one horizon of a trend analysis report.
type TrendWindow struct {
	Period string `json:"period"`
	Trend  string `json:"trend"`
	RiskProfile
}

// TechnicalSummary carries the externally supplied indicator snapshot used in
// trend reports. PriceVsSMA20 is "above" or "below", empty when SMA20 is
// unavailable.
type TechnicalSummary struct {
	RSI          *float64 `json:"rsi,omitempty"`
	SMA20        *float64 `json:"sma20,omitempty"`
	SMA50        *float64 `json:"sma50,omitempty"`
	PriceVsSMA20 string   `json:"price_vs_sma20,omitempty"`
}

// TrendReport is the full response of the trend analysis operation.
type TrendReport struct {
	Symbol       string           `json:"symbol"`
	CurrentPrice float64          `json:"current_price"`
	ShortTerm    TrendWindow      `json:"short_term"`
	LongTerm     TrendWindow      `json:"long_term"`
	Technical    TechnicalSummary `json:"technical"`
}

// CorrelationPair is one unique asset pair with its correlation.
type CorrelationPair struct {
	Symbol1     string  `json:"symbol1"`
	Symbol2     string  `json:"symbol2"`
	Correlation float64 `json:"correlation"`
}

// CorrelationReport is the full response of the correlation operation. Pairs
// are sorted by descending absolute correlation so the strongest dependencies
// (the largest diversification risk) come first. Details carries per-symbol
// diagnostics for assets that were excluded from the matrix.
type CorrelationReport struct {
	Symbols    []string          `json:"symbols"`
	Matrix     [][]float64       `json:"matrix"`
	Pairs      []CorrelationPair `json:"pairs"`
	Period     string            `json:"period"`
	DataPoints int               `json:"data_points"`
	Details    []string          `json:"details,omitempty"`
}
