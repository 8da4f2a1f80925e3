package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight/investment-tracker/internal/models"
)

func testCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCache(client, time.Minute, 5*time.Minute), mr
}

func sampleHistory(symbol, period string) *models.History {
	return &models.History{
		Symbol:    symbol,
		AssetType: "stock",
		Period:    period,
		Prices: []models.RawPricePoint{
			{Date: "2024-01-01", Close: 100},
			{Date: "2024-01-02", Close: 102},
		},
	}
}

func TestCacheHistoryRoundTrip(t *testing.T) {
	cache, _ := testCache(t)
	ctx := context.Background()

	_, hit := cache.GetHistory(ctx, "AAPL", "stock", models.Period1M)
	assert.False(t, hit)

	cache.SetHistory(ctx, sampleHistory("AAPL", models.Period1M))

	cached, hit := cache.GetHistory(ctx, "AAPL", "stock", models.Period1M)
	require.True(t, hit)
	assert.Equal(t, "AAPL", cached.Symbol)
	require.Len(t, cached.Prices, 2)
	assert.Equal(t, 102.0, cached.Prices[1].Close)

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
}

func TestCacheQuoteRoundTrip(t *testing.T) {
	cache, _ := testCache(t)
	ctx := context.Background()

	quote := &models.PriceQuote{
		Symbol:       "MSFT",
		AssetType:    "stock",
		CurrentPrice: decimal.NewFromFloat(415.5),
		Currency:     "USD",
	}
	cache.SetQuote(ctx, quote)

	cached, hit := cache.GetQuote(ctx, "MSFT", "stock")
	require.True(t, hit)
	assert.True(t, quote.CurrentPrice.Equal(cached.CurrentPrice))
	assert.Equal(t, "USD", cached.Currency)
}

func TestCacheExpiry(t *testing.T) {
	cache, mr := testCache(t)
	ctx := context.Background()

	cache.SetHistory(ctx, sampleHistory("AAPL", models.Period1M))
	mr.FastForward(6 * time.Minute)

	_, hit := cache.GetHistory(ctx, "AAPL", "stock", models.Period1M)
	assert.False(t, hit)
}

func TestCacheKeysIsolatePeriodsAndTypes(t *testing.T) {
	cache, _ := testCache(t)
	ctx := context.Background()

	cache.SetHistory(ctx, sampleHistory("AAPL", models.Period1M))

	_, hit := cache.GetHistory(ctx, "AAPL", "stock", models.Period3M)
	assert.False(t, hit, "different period must not hit")

	_, hit = cache.GetHistory(ctx, "AAPL", "crypto", models.Period1M)
	assert.False(t, hit, "different asset type must not hit")
}

func TestCacheInvalidate(t *testing.T) {
	cache, _ := testCache(t)
	ctx := context.Background()

	cache.SetHistory(ctx, sampleHistory("AAPL", models.Period1M))
	cache.SetHistory(ctx, sampleHistory("AAPL", models.Period3M))

	require.NoError(t, cache.Invalidate(ctx, "AAPL", "stock"))

	_, hit := cache.GetHistory(ctx, "AAPL", "stock", models.Period1M)
	assert.False(t, hit)
	_, hit = cache.GetHistory(ctx, "AAPL", "stock", models.Period3M)
	assert.False(t, hit)
}
