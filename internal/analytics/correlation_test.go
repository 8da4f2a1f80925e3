package analytics

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zigzagCloses(n int, base float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = base * (1 + 0.01*float64(i) + 0.03*float64(i%2))
	}
	return closes
}

func TestComputeCorrelationIdenticalReturns(t *testing.T) {
	// A scaled copy of the same series has identical log returns, so the
	// pair must correlate at 1.
	closes := zigzagCloses(30, 100)
	scaled := make([]float64, len(closes))
	for i, c := range closes {
		scaled[i] = 2 * c
	}

	report, details, err := ComputeCorrelation([]AssetSeries{
		{Symbol: "AAPL", Closes: closes},
		{Symbol: "MSFT", Closes: scaled},
	}, "3M", 10)
	require.NoError(t, err)
	assert.Empty(t, details)

	require.Len(t, report.Pairs, 1)
	assert.InDelta(t, 1.0, report.Pairs[0].Correlation, 1e-6)
	assert.Equal(t, []string{"AAPL", "MSFT"}, report.Symbols)
	assert.Equal(t, 30, report.DataPoints)
	assert.Equal(t, "3M", report.Period)
}

func TestComputeCorrelationMatrixShape(t *testing.T) {
	series := []AssetSeries{
		{Symbol: "A", Closes: zigzagCloses(25, 100)},
		{Symbol: "B", Closes: zigzagCloses(25, 50)},
		{Symbol: "C", Closes: func() []float64 {
			closes := make([]float64, 25)
			for i := range closes {
				closes[i] = 200 - 2*float64(i) + 3*float64(i%2)
			}
			return closes
		}()},
	}

	report, _, err := ComputeCorrelation(series, "1M", 10)
	require.NoError(t, err)

	require.Len(t, report.Matrix, 3)
	for i := range report.Matrix {
		require.Len(t, report.Matrix[i], 3)
		assert.Equal(t, 1.0, report.Matrix[i][i])
		for j := range report.Matrix[i] {
			assert.Equal(t, report.Matrix[i][j], report.Matrix[j][i], "matrix must be symmetric")
			assert.GreaterOrEqual(t, report.Matrix[i][j], -1.0)
			assert.LessOrEqual(t, report.Matrix[i][j], 1.0)
		}
	}

	// k*(k-1)/2 pairs, sorted strongest first.
	require.Len(t, report.Pairs, 3)
	for i := 1; i < len(report.Pairs); i++ {
		assert.GreaterOrEqual(t,
			math.Abs(report.Pairs[i-1].Correlation),
			math.Abs(report.Pairs[i].Correlation))
	}
}

func TestComputeCorrelationAlignsToShortest(t *testing.T) {
	report, _, err := ComputeCorrelation([]AssetSeries{
		{Symbol: "LONG", Closes: zigzagCloses(60, 100)},
		{Symbol: "SHORT", Closes: zigzagCloses(20, 80)},
	}, "3M", 10)
	require.NoError(t, err)
	assert.Equal(t, 20, report.DataPoints)
}

func TestComputeCorrelationPartialFailure(t *testing.T) {
	report, details, err := ComputeCorrelation([]AssetSeries{
		{Symbol: "AAPL", Closes: zigzagCloses(30, 100)},
		{Symbol: "MSFT", Closes: zigzagCloses(30, 200)},
		{Symbol: "BAD", Closes: []float64{10, 11, 12}},
	}, "3M", 10)
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "MSFT"}, report.Symbols)
	require.Len(t, details, 1)
	assert.Contains(t, details[0], "BAD")
	assert.Equal(t, details, report.Details)
}

func TestComputeCorrelationTooFewQualified(t *testing.T) {
	_, details, err := ComputeCorrelation([]AssetSeries{
		{Symbol: "OK", Closes: zigzagCloses(30, 100)},
		{Symbol: "BAD1", Closes: []float64{1, 2}},
		{Symbol: "BAD2", Closes: []float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}},
	}, "3M", 10)
	require.Error(t, err)

	var insufficient *InsufficientDataError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, "correlation", insufficient.Stage)
	assert.Len(t, details, 2)
}

func TestComputeCorrelationZeroVarianceReturns(t *testing.T) {
	// Constant growth has zero return variance: Pearson is undefined and
	// reported as 0 instead of NaN.
	constant := make([]float64, 20)
	for i := range constant {
		constant[i] = 100 * math.Pow(1.01, float64(i))
	}

	report, _, err := ComputeCorrelation([]AssetSeries{
		{Symbol: "FLAT", Closes: constant},
		{Symbol: "MOVE", Closes: zigzagCloses(20, 100)},
	}, "1M", 10)
	require.NoError(t, err)
	assert.Equal(t, 0.0, report.Pairs[0].Correlation)
}

func TestComputeCorrelationFiltersInvalidPoints(t *testing.T) {
	closes := zigzagCloses(30, 100)
	dirty := append([]float64(nil), closes...)
	dirty[5] = 0
	dirty[12] = math.NaN()

	report, details, err := ComputeCorrelation([]AssetSeries{
		{Symbol: "CLEAN", Closes: closes},
		{Symbol: "DIRTY", Closes: dirty},
	}, "3M", 10)
	require.NoError(t, err)
	assert.Empty(t, details)
	assert.Equal(t, 28, report.DataPoints)
}
