package marketdata

import (
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/finsight/investment-tracker/internal/models"
)

// MockGenerator produces deterministic synthetic daily series, used as a
// fallback when the price store has no rows for a symbol. The same symbol
// and day count always yield the same series, which keeps responses stable
// across requests and makes the fallback testable.
type MockGenerator struct {
	now func() time.Time
}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{now: time.Now}
}

// Generate creates days daily price points ending today.
func (g *MockGenerator) Generate(symbol string, days int) []models.RawPricePoint {
	seed := symbolSeed(symbol)
	rng := rand.New(rand.NewSource(int64(seed)))

	base := 20 + float64(seed%480)
	drift := (float64(seed%7) - 3) / 1000 // between -0.3% and +0.3% per day

	end := g.now().Truncate(24 * time.Hour)
	points := make([]models.RawPricePoint, 0, days)

	price := base
	for i := days - 1; i >= 0; i-- {
		date := end.AddDate(0, 0, -i)

		wave := 1 + 0.02*math.Sin(float64(days-1-i)/9)
		noise := 1 + (rng.Float64()-0.5)*0.02
		price = price * (1 + drift) * noise

		close := price * wave
		spread := close * 0.01
		points = append(points, models.RawPricePoint{
			Date:   date.Format("2006-01-02"),
			Open:   close - spread/2,
			High:   close + spread,
			Low:    close - spread,
			Close:  close,
			Volume: math.Floor(1e5 + rng.Float64()*1e6),
		})
	}

	return points
}

func symbolSeed(symbol string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return h.Sum32()
}
