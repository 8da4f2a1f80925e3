package analytics

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/finsight/investment-tracker/internal/config"
	"github.com/finsight/investment-tracker/internal/models"
)

// PriceFetcher is the data contract the engine consumes from the retrieval
// layer. The engine treats it as a black box returning finished series.
type PriceFetcher interface {
	GetCurrentPrice(ctx context.Context, symbol, assetType string) (*models.PriceQuote, error)
	GetHistory(ctx context.Context, symbol, assetType, period string) (*models.History, error)
}

// Engine exposes the three analytics operations. It holds no mutable state
// across invocations: every call constructs its own preprocessing, feature
// and model objects, so concurrent use for independent requests needs no
// locking.
type Engine struct {
	cfg     config.AnalyticsConfig
	fetcher PriceFetcher
	logger  *logrus.Logger
	tracer  trace.Tracer
}

func NewEngine(cfg config.AnalyticsConfig, fetcher PriceFetcher, logger *logrus.Logger) *Engine {
	return &Engine{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger,
		tracer:  otel.Tracer("analytics"),
	}
}

// Predict fetches history for a symbol and produces daysAhead forecast
// points with confidence bands, a trend label and model diagnostics.
func (e *Engine) Predict(ctx context.Context, symbol, assetType string, daysAhead int, period string) (*models.PredictionResult, error) {
	ctx, span := e.tracer.Start(ctx, "analytics.predict",
		trace.WithAttributes(attribute.String("symbol", symbol), attribute.Int("days_ahead", daysAhead)))
	defer span.End()

	if daysAhead < 1 || daysAhead > e.cfg.MaxForecastDays {
		return nil, NewDegenerateInputErrorf("days_ahead must be between 1 and %d, got %d", e.cfg.MaxForecastDays, daysAhead)
	}

	history, err := e.fetchHistory(ctx, symbol, assetType, period)
	if err != nil {
		return nil, err
	}

	series, err := NewPreprocessor(e.cfg).Clean(history.Prices)
	if err != nil {
		return nil, err
	}

	table := NewFeatureBuilder(e.cfg).Build(series)
	features := SelectFeatures(table)

	forecast, err := NewForecaster(e.cfg, e.logger).Forecast(series, table, features, daysAhead)
	if err != nil {
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"symbol":     symbol,
		"days_ahead": daysAhead,
		"model":      forecast.Metrics.ModelKind,
		"trend":      forecast.Trend,
		"confidence": forecast.Confidence,
	}).Info("Forecast generated")

	return &models.PredictionResult{
		Symbol:         strings.ToUpper(symbol),
		CurrentPrice:   forecast.CurrentPrice,
		Predictions:    forecast.Points,
		Trend:          forecast.Trend,
		Confidence:     forecast.Confidence,
		PredictionDays: daysAhead,
		Metrics:        forecast.Metrics,
		Warnings:       series.Warnings,
	}, nil
}

// TrendAnalysis combines risk metrics over a short (1M) and long (3M) window
// with the externally supplied technical indicators into one asset report.
// The two windows use different trend thresholds: short-term noise needs a
// tighter band, long-term a wider one to avoid false signals.
func (e *Engine) TrendAnalysis(ctx context.Context, symbol, assetType string) (*models.TrendReport, error) {
	ctx, span := e.tracer.Start(ctx, "analytics.trend_analysis",
		trace.WithAttributes(attribute.String("symbol", symbol)))
	defer span.End()

	shortHistory, err := e.fetchHistory(ctx, symbol, assetType, models.Period1M)
	if err != nil {
		return nil, err
	}
	longHistory, err := e.fetchHistory(ctx, symbol, assetType, models.Period3M)
	if err != nil {
		return nil, err
	}

	shortPrices := validCloses(shortHistory.Prices)
	longPrices := validCloses(longHistory.Prices)

	if len(shortPrices) < 5 {
		return nil, NewInsufficientDataError("short-term trend window", 5, len(shortPrices))
	}
	if len(longPrices) < 10 {
		return nil, NewInsufficientDataError("long-term trend window", 10, len(longPrices))
	}

	risk := NewRiskCalculator(e.cfg)
	shortProfile, err := risk.Profile(shortPrices)
	if err != nil {
		return nil, err
	}
	longProfile, err := risk.Profile(longPrices)
	if err != nil {
		return nil, err
	}

	currentPrice := shortPrices[len(shortPrices)-1]

	report := &models.TrendReport{
		Symbol:       strings.ToUpper(symbol),
		CurrentPrice: currentPrice,
		ShortTerm: models.TrendWindow{
			Period:      models.Period1M,
			Trend:       classifyChange(shortProfile.ChangePct, e.cfg.ShortTermTrendPct),
			RiskProfile: *shortProfile,
		},
		LongTerm: models.TrendWindow{
			Period:      models.Period3M,
			Trend:       classifyChange(longProfile.ChangePct, e.cfg.LongTermTrendPct),
			RiskProfile: *longProfile,
		},
		Technical: technicalSummary(shortHistory.Indicators, currentPrice),
	}

	e.logger.WithFields(logrus.Fields{
		"symbol":     symbol,
		"short_term": report.ShortTerm.Trend,
		"long_term":  report.LongTerm.Trend,
	}).Info("Trend analysis completed")

	return report, nil
}

// CorrelationMatrix computes the log-return correlation structure across a
// set of assets. Assets whose history cannot be fetched or fails validation
// are reported in the details slice; the operation proceeds with the subset
// that qualifies.
func (e *Engine) CorrelationMatrix(ctx context.Context, assets []models.AssetRef, period string) (*models.CorrelationReport, []string, error) {
	ctx, span := e.tracer.Start(ctx, "analytics.correlation_matrix",
		trace.WithAttributes(attribute.Int("assets", len(assets))))
	defer span.End()

	if len(assets) < correlationMinAssets {
		return nil, nil, NewDegenerateInputErrorf("correlation requires at least %d assets, got %d", correlationMinAssets, len(assets))
	}

	var series []AssetSeries
	var details []string
	for _, asset := range assets {
		history, err := e.fetchHistory(ctx, asset.Symbol, asset.AssetType, period)
		if err != nil {
			details = append(details, fmt.Sprintf("%s: %v", strings.ToUpper(asset.Symbol), err))
			continue
		}
		series = append(series, AssetSeries{
			Symbol: strings.ToUpper(asset.Symbol),
			Closes: rawCloses(history.Prices),
		})
	}

	report, computeDetails, err := ComputeCorrelation(series, period, e.cfg.MinSeriesLength)
	details = append(details, computeDetails...)
	if err != nil {
		return nil, details, err
	}

	report.Details = details
	return report, details, nil
}

func (e *Engine) fetchHistory(ctx context.Context, symbol, assetType, period string) (*models.History, error) {
	history, err := e.fetcher.GetHistory(ctx, symbol, assetType, period)
	if err != nil {
		return nil, &UpstreamUnavailableError{Symbol: strings.ToUpper(symbol), Reason: err.Error()}
	}
	if history == nil || len(history.Prices) == 0 {
		return nil, &UpstreamUnavailableError{Symbol: strings.ToUpper(symbol), Reason: "empty history"}
	}
	return history, nil
}

func technicalSummary(indicators models.IndicatorSet, currentPrice float64) models.TechnicalSummary {
	summary := models.TechnicalSummary{
		RSI:   indicators.CurrentRSI,
		SMA20: indicators.CurrentSMA20,
		SMA50: indicators.CurrentSMA50,
	}
	if indicators.CurrentSMA20 != nil && *indicators.CurrentSMA20 > 0 {
		if currentPrice > *indicators.CurrentSMA20 {
			summary.PriceVsSMA20 = "above"
		} else {
			summary.PriceVsSMA20 = "below"
		}
	}
	return summary
}

func validCloses(prices []models.RawPricePoint) []float64 {
	closes := make([]float64, 0, len(prices))
	for _, p := range prices {
		if !missingClose(p.Close) {
			closes = append(closes, p.Close)
		}
	}
	return closes
}

func rawCloses(prices []models.RawPricePoint) []float64 {
	closes := make([]float64, len(prices))
	for i, p := range prices {
		closes[i] = p.Close
	}
	return closes
}
