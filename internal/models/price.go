package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supported history periods for the retrieval layer.
const (
	Period1D = "1D"
	Period1W = "1W"
	Period1M = "1M"
	Period3M = "3M"
	Period1Y = "1Y"
)

// PeriodDays maps a history period to the number of daily data points it spans.
var PeriodDays = map[string]int{
	Period1D: 2,
	Period1W: 7,
	Period1M: 30,
	Period3M: 90,
	Period1Y: 365,
}

// RawPricePoint is a single row as delivered by the retrieval layer, before
// cleaning. Date is kept as a string because upstream sources disagree on
// formats; Close may be zero or NaN for missing observations.
type RawPricePoint struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open,omitempty"`
	High   float64 `json:"high,omitempty"`
	Low    float64 `json:"low,omitempty"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume,omitempty"`
}

// PricePoint is a validated daily observation inside a cleaned series.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open,omitempty"`
	High   float64   `json:"high,omitempty"`
	Low    float64   `json:"low,omitempty"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume,omitempty"`
}

// PriceQuote represents the current market price for an asset.
type PriceQuote struct {
	Symbol             string          `json:"symbol"`
	Name               string          `json:"name"`
	AssetType          string          `json:"asset_type"`
	CurrentPrice       decimal.Decimal `json:"current_price"`
	DailyChange        decimal.Decimal `json:"daily_change"`
	DailyChangePercent decimal.Decimal `json:"daily_change_percent"`
	Currency           string          `json:"currency"`
	Timestamp          time.Time       `json:"timestamp"`
}

// IndicatorSet holds precomputed technical indicators supplied alongside a
// history. The analytics engine reads these values but never computes them.
type IndicatorSet struct {
	CurrentRSI   *float64  `json:"current_rsi,omitempty"`
	CurrentSMA20 *float64  `json:"current_sma20,omitempty"`
	CurrentSMA50 *float64  `json:"current_sma50,omitempty"`
	SMA20        []float64 `json:"sma20,omitempty"`
	SMA50        []float64 `json:"sma50,omitempty"`
	RSI          []float64 `json:"rsi,omitempty"`
}

// History is the historical OHLC series for a symbol over a period.
type History struct {
	Symbol     string          `json:"symbol"`
	AssetType  string          `json:"asset_type"`
	Period     string          `json:"period"`
	Prices     []RawPricePoint `json:"prices"`
	Indicators IndicatorSet    `json:"indicators"`
}
