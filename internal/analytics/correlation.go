package analytics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/finsight/investment-tracker/internal/models"
)

const (
	correlationMinAssets  = 2
	correlationMinReturns = 5
)

// AssetSeries is one asset's close history for correlation analysis.
type AssetSeries struct {
	Symbol string
	Closes []float64
}

// ComputeCorrelation builds the log-return Pearson correlation matrix across
// a set of assets. Assets that fail validation are excluded with a
// per-symbol diagnostic rather than aborting the whole computation; the
// operation only errors when fewer than two assets qualify or too few
// aligned return rows remain. minPoints is the per-asset validity bar.
func ComputeCorrelation(series []AssetSeries, period string, minPoints int) (*models.CorrelationReport, []string, error) {
	var details []string
	var qualified []AssetSeries

	for _, s := range series {
		valid := make([]float64, 0, len(s.Closes))
		for _, v := range s.Closes {
			if v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0) {
				valid = append(valid, v)
			}
		}
		if len(valid) < minPoints {
			details = append(details, fmt.Sprintf("%s: only %d valid price points, need %d", s.Symbol, len(valid), minPoints))
			continue
		}
		qualified = append(qualified, AssetSeries{Symbol: s.Symbol, Closes: valid})
	}

	if len(qualified) < correlationMinAssets {
		return nil, details, NewInsufficientDataError("correlation", correlationMinAssets, len(qualified))
	}

	// Align every series to the shortest one by taking the most recent
	// points, then compute log returns column by column.
	minLen := len(qualified[0].Closes)
	for _, s := range qualified[1:] {
		if len(s.Closes) < minLen {
			minLen = len(s.Closes)
		}
	}

	returns := make([][]float64, len(qualified))
	for i, s := range qualified {
		tail := s.Closes[len(s.Closes)-minLen:]
		col := make([]float64, minLen-1)
		for j := 1; j < minLen; j++ {
			col[j-1] = math.Log(tail[j] / tail[j-1])
		}
		returns[i] = col
	}

	aligned := dropNonFiniteRows(returns)
	if len(aligned[0]) < correlationMinReturns {
		return nil, details, NewInsufficientDataError("correlation alignment", correlationMinReturns, len(aligned[0]))
	}

	k := len(qualified)
	symbols := make([]string, k)
	for i, s := range qualified {
		symbols[i] = s.Symbol
	}

	matrix := make([][]float64, k)
	for i := range matrix {
		matrix[i] = make([]float64, k)
		matrix[i][i] = 1
	}

	var pairs []models.CorrelationPair
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			corr := stat.Correlation(aligned[i], aligned[j], nil)
			if math.IsNaN(corr) {
				// Zero-variance return column; no linear relationship
				// is measurable.
				corr = 0
			}
			corr = round4(corr)
			matrix[i][j] = corr
			matrix[j][i] = corr
			pairs = append(pairs, models.CorrelationPair{
				Symbol1:     symbols[i],
				Symbol2:     symbols[j],
				Correlation: corr,
			})
		}
	}

	// Strongest relationships first: these are the pairs that undermine
	// diversification.
	sort.SliceStable(pairs, func(a, b int) bool {
		return math.Abs(pairs[a].Correlation) > math.Abs(pairs[b].Correlation)
	})

	return &models.CorrelationReport{
		Symbols:    symbols,
		Matrix:     matrix,
		Pairs:      pairs,
		Period:     period,
		DataPoints: minLen,
		Details:    details,
	}, details, nil
}

// dropNonFiniteRows removes every row index where any column holds a
// non-finite return, keeping the columns aligned.
func dropNonFiniteRows(columns [][]float64) [][]float64 {
	n := len(columns[0])
	keep := make([]bool, n)
	kept := 0
	for i := 0; i < n; i++ {
		ok := true
		for _, col := range columns {
			if math.IsNaN(col[i]) || math.IsInf(col[i], 0) {
				ok = false
				break
			}
		}
		keep[i] = ok
		if ok {
			kept++
		}
	}

	out := make([][]float64, len(columns))
	for c, col := range columns {
		out[c] = make([]float64, 0, kept)
		for i := 0; i < n; i++ {
			if keep[i] {
				out[c] = append(out[c], col[i])
			}
		}
	}
	return out
}
