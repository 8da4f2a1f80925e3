package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/finsight/investment-tracker/internal/config"
	"github.com/finsight/investment-tracker/internal/models"
)

// CleanedSeries is an analysis-ready price table: strictly increasing by
// date, all closes positive and finite, no duplicate dates.
type CleanedSeries struct {
	Points   []models.PricePoint
	Warnings []string
}

// Closes returns the close column of the series.
func (s *CleanedSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// Len returns the number of points in the series.
func (s *CleanedSeries) Len() int { return len(s.Points) }

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// Preprocessor turns raw history rows into a CleanedSeries. It holds no
// state between calls; construct one per request.
type Preprocessor struct {
	cfg config.AnalyticsConfig
}

func NewPreprocessor(cfg config.AnalyticsConfig) *Preprocessor {
	return &Preprocessor{cfg: cfg}
}

// Clean validates, repairs and orders a raw series. Outliers are clipped to
// the z-score band rather than removed so temporal continuity is preserved.
// Returns an InsufficientDataError when fewer than the minimum viable number
// of rows remain.
func (p *Preprocessor) Clean(raw []models.RawPricePoint) (*CleanedSeries, error) {
	if len(raw) == 0 {
		return nil, NewInsufficientDataError("preprocessing", p.cfg.MinSeriesLength, 0)
	}

	var warnings []string
	original := len(raw)

	// Parse dates, dropping rows that fail every known layout.
	points := make([]models.PricePoint, 0, len(raw))
	badDates := 0
	for _, r := range raw {
		date, ok := parseDate(r.Date)
		if !ok {
			badDates++
			continue
		}
		points = append(points, models.PricePoint{
			Date:   date,
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		})
	}
	if badDates > 0 {
		warnings = append(warnings, fmt.Sprintf("dropped %d rows with unparseable dates", badDates))
	}

	// Zero is not a valid traded price, so zero closes are treated as
	// missing and repaired by linear interpolation between their valid
	// neighbors. Rows still missing afterwards (leading/trailing gaps)
	// are dropped.
	points = interpolateCloses(points)

	if len(points) >= 2 {
		clipped := clipOutliers(points, p.cfg.OutlierZScore)
		if clipped > 0 {
			warnings = append(warnings, fmt.Sprintf("clipped %d outlier closes beyond %.1f standard deviations", clipped, p.cfg.OutlierZScore))
		}
	}

	// Sort ascending and drop duplicate dates, keeping the first occurrence.
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	points = dedupeByDate(points)

	if len(points) < p.cfg.MinSeriesLength {
		return nil, NewInsufficientDataError("preprocessing", p.cfg.MinSeriesLength, len(points))
	}

	if float64(len(points)) < 0.7*float64(original) {
		warnings = append(warnings, fmt.Sprintf("significant data loss during cleaning: kept %d of %d rows", len(points), original))
	}

	return &CleanedSeries{Points: points, Warnings: warnings}, nil
}

func parseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func missingClose(v float64) bool {
	return v <= 0 || math.IsNaN(v) || math.IsInf(v, 0)
}

func interpolateCloses(points []models.PricePoint) []models.PricePoint {
	for i := range points {
		if !missingClose(points[i].Close) {
			continue
		}
		prev, next := -1, -1
		for j := i - 1; j >= 0; j-- {
			if !missingClose(points[j].Close) {
				prev = j
				break
			}
		}
		for j := i + 1; j < len(points); j++ {
			if !missingClose(points[j].Close) {
				next = j
				break
			}
		}
		if prev >= 0 && next >= 0 {
			frac := float64(i-prev) / float64(next-prev)
			points[i].Close = points[prev].Close + frac*(points[next].Close-points[prev].Close)
		}
	}

	kept := points[:0]
	for _, pt := range points {
		if !missingClose(pt.Close) {
			kept = append(kept, pt)
		}
	}
	return kept
}

func clipOutliers(points []models.PricePoint, zLimit float64) int {
	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Close
	}
	mean, std := meanStd(closes)
	if std <= 0 {
		return 0
	}

	lower := mean - zLimit*std
	upper := mean + zLimit*std
	clipped := 0
	for i := range points {
		if points[i].Close < lower {
			points[i].Close = lower
			clipped++
		} else if points[i].Close > upper {
			points[i].Close = upper
			clipped++
		}
	}
	return clipped
}

func dedupeByDate(points []models.PricePoint) []models.PricePoint {
	kept := points[:0]
	for i, pt := range points {
		if i > 0 && pt.Date.Equal(points[i-1].Date) {
			continue
		}
		kept = append(kept, pt)
	}
	return kept
}

// meanStd returns the mean and sample standard deviation (n-1 denominator)
// of values. std is 0 for fewer than two values.
func meanStd(values []float64) (float64, float64) {
	n := len(values)
	if n == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)
	if n < 2 {
		return mean, 0
	}
	ss := 0.0
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(n-1))
}
