package marketdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/finsight/investment-tracker/internal/models"
)

// HistoryStore is the persistent source of daily OHLC rows.
type HistoryStore interface {
	DailyCloses(ctx context.Context, symbol, assetType string, limit int) ([]models.RawPricePoint, error)
}

// Service implements the two retrieval contracts the analytics engine
// consumes: current price and historical OHLC series. It owns the TTL cache
// and the synthetic fallback; callers get a finished series and nothing else.
type Service struct {
	store        HistoryStore
	cache        *Cache
	mock         *MockGenerator
	mockFallback bool
	logger       *logrus.Logger
}

func NewService(store HistoryStore, cache *Cache, mockFallback bool, logger *logrus.Logger) *Service {
	return &Service{
		store:        store,
		cache:        cache,
		mock:         NewMockGenerator(),
		mockFallback: mockFallback,
		logger:       logger,
	}
}

// GetHistory returns the OHLC series and precomputed indicators for a symbol
// over a period.
func (s *Service) GetHistory(ctx context.Context, symbol, assetType, period string) (*models.History, error) {
	symbol = strings.ToUpper(symbol)

	days, ok := models.PeriodDays[period]
	if !ok {
		return nil, fmt.Errorf("unsupported history period %q", period)
	}

	if s.cache != nil {
		if cached, hit := s.cache.GetHistory(ctx, symbol, assetType, period); hit {
			return cached, nil
		}
	}

	prices, err := s.loadPrices(ctx, symbol, assetType, days)
	if err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("no history found for %s", symbol)
	}

	history := &models.History{
		Symbol:     symbol,
		AssetType:  assetType,
		Period:     period,
		Prices:     prices,
		Indicators: BuildIndicators(prices),
	}

	if s.cache != nil {
		s.cache.SetHistory(ctx, history)
	}
	return history, nil
}

// GetCurrentPrice returns the latest quote for a symbol, derived from the
// two most recent daily closes.
func (s *Service) GetCurrentPrice(ctx context.Context, symbol, assetType string) (*models.PriceQuote, error) {
	symbol = strings.ToUpper(symbol)

	if s.cache != nil {
		if cached, hit := s.cache.GetQuote(ctx, symbol, assetType); hit {
			return cached, nil
		}
	}

	prices, err := s.loadPrices(ctx, symbol, assetType, 2)
	if err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("no price found for %s", symbol)
	}

	current := decimal.NewFromFloat(prices[len(prices)-1].Close)
	change := decimal.Zero
	changePct := decimal.Zero
	if len(prices) >= 2 && prices[len(prices)-2].Close > 0 {
		previous := decimal.NewFromFloat(prices[len(prices)-2].Close)
		change = current.Sub(previous)
		changePct = change.Div(previous).Mul(decimal.NewFromInt(100))
	}

	quote := &models.PriceQuote{
		Symbol:             symbol,
		Name:               symbol,
		AssetType:          assetType,
		CurrentPrice:       current,
		DailyChange:        change,
		DailyChangePercent: changePct,
		Currency:           "USD",
		Timestamp:          time.Now(),
	}

	if s.cache != nil {
		s.cache.SetQuote(ctx, quote)
	}
	return quote, nil
}

func (s *Service) loadPrices(ctx context.Context, symbol, assetType string, days int) ([]models.RawPricePoint, error) {
	var prices []models.RawPricePoint
	if s.store != nil {
		var err error
		prices, err = s.store.DailyCloses(ctx, symbol, assetType, days)
		if err != nil {
			s.logger.WithError(err).WithField("symbol", symbol).Warn("price store unavailable")
			prices = nil
		}
	}

	if len(prices) == 0 && s.mockFallback {
		s.logger.WithFields(logrus.Fields{
			"symbol": symbol,
			"days":   days,
		}).Debug("serving synthetic price series")
		prices = s.mock.Generate(symbol, days)
	}
	return prices, nil
}
