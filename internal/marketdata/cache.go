package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/finsight/investment-tracker/internal/models"
)

// CacheStats tracks cache performance counters.
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
	mu     sync.Mutex
}

// Cache is the keyed TTL cache for quotes and histories, owned by the
// retrieval layer. The analytics core never sees it.
type Cache struct {
	redis      *redis.Client
	quoteTTL   time.Duration
	historyTTL time.Duration
	stats      *CacheStats
	prefix     string
}

func NewCache(redisClient *redis.Client, quoteTTL, historyTTL time.Duration) *Cache {
	return &Cache{
		redis:      redisClient,
		quoteTTL:   quoteTTL,
		historyTTL: historyTTL,
		stats:      &CacheStats{},
		prefix:     "marketdata:",
	}
}

func (c *Cache) quoteKey(symbol, assetType string) string {
	return fmt.Sprintf("%squote:%s:%s", c.prefix, assetType, symbol)
}

func (c *Cache) historyKey(symbol, assetType, period string) string {
	return fmt.Sprintf("%shistory:%s:%s:%s", c.prefix, assetType, symbol, period)
}

// GetQuote retrieves a cached quote, reporting whether it was present.
func (c *Cache) GetQuote(ctx context.Context, symbol, assetType string) (*models.PriceQuote, bool) {
	data, err := c.redis.Get(ctx, c.quoteKey(symbol, assetType)).Result()
	if err != nil {
		c.miss()
		return nil, false
	}

	var quote models.PriceQuote
	if err := json.Unmarshal([]byte(data), &quote); err != nil {
		c.miss()
		return nil, false
	}
	c.hit()
	return &quote, true
}

// SetQuote stores a quote under the quote TTL. Failures are swallowed: the
// cache is an optimization, never a source of truth.
func (c *Cache) SetQuote(ctx context.Context, quote *models.PriceQuote) {
	data, err := json.Marshal(quote)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, c.quoteKey(quote.Symbol, quote.AssetType), data, c.quoteTTL).Err(); err == nil {
		c.set()
	}
}

// GetHistory retrieves a cached history, reporting whether it was present.
func (c *Cache) GetHistory(ctx context.Context, symbol, assetType, period string) (*models.History, bool) {
	data, err := c.redis.Get(ctx, c.historyKey(symbol, assetType, period)).Result()
	if err != nil {
		c.miss()
		return nil, false
	}

	var history models.History
	if err := json.Unmarshal([]byte(data), &history); err != nil {
		c.miss()
		return nil, false
	}
	c.hit()
	return &history, true
}

// SetHistory stores a history under the history TTL.
func (c *Cache) SetHistory(ctx context.Context, history *models.History) {
	data, err := json.Marshal(history)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, c.historyKey(history.Symbol, history.AssetType, history.Period), data, c.historyTTL).Err(); err == nil {
		c.set()
	}
}

// Invalidate drops every cached entry for a symbol.
func (c *Cache) Invalidate(ctx context.Context, symbol, assetType string) error {
	keys := []string{c.quoteKey(symbol, assetType)}
	for period := range models.PeriodDays {
		keys = append(keys, c.historyKey(symbol, assetType, period))
	}
	return c.redis.Del(ctx, keys...).Err()
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	c.stats.mu.Lock()
	defer c.stats.mu.Unlock()
	return CacheStats{Hits: c.stats.Hits, Misses: c.stats.Misses, Sets: c.stats.Sets}
}

func (c *Cache) hit() {
	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
}

func (c *Cache) miss() {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
}

func (c *Cache) set() {
	c.stats.mu.Lock()
	c.stats.Sets++
	c.stats.mu.Unlock()
}
