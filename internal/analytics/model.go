package analytics

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/finsight/investment-tracker/internal/config"
	"github.com/finsight/investment-tracker/internal/models"
)

// ForecastModel is the fit/predict contract shared by both model variants.
// X rows and query vectors are in raw feature units; implementations own any
// internal scaling.
type ForecastModel interface {
	Fit(X [][]float64, y []float64) error
	Predict(x []float64) float64
	Kind() string
}

// RidgeModel fits an L2-regularized linear regression over all selected
// features. Inputs are standardized per column before the closed-form solve
// and predictions are transformed back to price units.
type RidgeModel struct {
	lambda  float64
	weights []float64
	xMeans  []float64
	xStds   []float64
	yMean   float64
	yStd    float64
}

func NewRidgeModel(lambda float64) *RidgeModel {
	return &RidgeModel{lambda: lambda}
}

func (m *RidgeModel) Kind() string { return "ridge" }

func (m *RidgeModel) Fit(X [][]float64, y []float64) error {
	n := len(X)
	if n == 0 || n != len(y) {
		return fmt.Errorf("ridge fit: mismatched training data (%d rows, %d targets)", n, len(y))
	}
	p := len(X[0])

	m.xMeans, m.xStds = columnStats(X)
	m.yMean, m.yStd = meanStd(y)
	if m.yStd == 0 {
		m.yStd = 1
	}

	flat := make([]float64, 0, n*p)
	for _, row := range X {
		for j, v := range row {
			flat = append(flat, (v-m.xMeans[j])/m.xStds[j])
		}
	}
	xs := mat.NewDense(n, p, flat)

	ys := make([]float64, n)
	for i, v := range y {
		ys[i] = (v - m.yMean) / m.yStd
	}
	yv := mat.NewVecDense(n, ys)

	var xtx mat.Dense
	xtx.Mul(xs.T(), xs)
	for j := 0; j < p; j++ {
		xtx.Set(j, j, xtx.At(j, j)+m.lambda)
	}

	var xty mat.VecDense
	xty.MulVec(xs.T(), yv)

	var theta mat.VecDense
	if err := theta.SolveVec(&xtx, &xty); err != nil {
		return fmt.Errorf("ridge solve: %w", err)
	}

	m.weights = make([]float64, p)
	for j := 0; j < p; j++ {
		m.weights[j] = theta.AtVec(j)
	}
	return nil
}

func (m *RidgeModel) Predict(x []float64) float64 {
	sum := 0.0
	for j, v := range x {
		sum += m.weights[j] * (v - m.xMeans[j]) / m.xStds[j]
	}
	return sum*m.yStd + m.yMean
}

// SimpleLinearModel is the deterministic fallback: ordinary least squares on
// the days feature alone, with the closed-form covariance/variance slope. It
// satisfies the same contract as RidgeModel so the pipeline can swap it in
// whenever the regularized solve is unavailable.
type SimpleLinearModel struct {
	daysIndex int
	slope     float64
	intercept float64
}

func NewSimpleLinearModel(daysIndex int) *SimpleLinearModel {
	return &SimpleLinearModel{daysIndex: daysIndex}
}

func (m *SimpleLinearModel) Kind() string { return "linear" }

func (m *SimpleLinearModel) Fit(X [][]float64, y []float64) error {
	n := len(X)
	if n == 0 || n != len(y) {
		return fmt.Errorf("linear fit: mismatched training data (%d rows, %d targets)", n, len(y))
	}

	days := make([]float64, n)
	for i, row := range X {
		days[i] = row[m.daysIndex]
	}

	dMean, _ := meanStd(days)
	yMean, _ := meanStd(y)

	cov, varD := 0.0, 0.0
	for i := 0; i < n; i++ {
		dd := days[i] - dMean
		cov += dd * (y[i] - yMean)
		varD += dd * dd
	}

	if varD == 0 {
		m.slope = 0
	} else {
		m.slope = cov / varD
	}
	m.intercept = yMean - m.slope*dMean
	return nil
}

func (m *SimpleLinearModel) Predict(x []float64) float64 {
	return m.intercept + m.slope*x[m.daysIndex]
}

// fitTrainingModel selects the model variant at construction time: the
// regularized regression when its solve succeeds, otherwise the closed-form
// single-feature fallback.
func fitTrainingModel(X [][]float64, y []float64, lambda float64, logger *logrus.Logger) ForecastModel {
	ridge := NewRidgeModel(lambda)
	if err := ridge.Fit(X, y); err == nil {
		return ridge
	} else if logger != nil {
		logger.WithError(err).Warn("ridge fit unavailable, falling back to linear model")
	}

	// days is always selected and always first in priority order.
	fallback := NewSimpleLinearModel(0)
	_ = fallback.Fit(X, y)
	return fallback
}

// ForecastResult bundles the forecast trajectory with model diagnostics.
type ForecastResult struct {
	Points       []models.ForecastPoint
	Metrics      models.ModelMetrics
	Trend        string
	Confidence   float64
	CurrentPrice float64
}

// Forecaster runs the full model pipeline: training-set assembly, fit,
// forward-chaining validation and multi-step forecast generation. Stateless
// across calls.
type Forecaster struct {
	cfg    config.AnalyticsConfig
	logger *logrus.Logger
}

func NewForecaster(cfg config.AnalyticsConfig, logger *logrus.Logger) *Forecaster {
	return &Forecaster{cfg: cfg, logger: logger}
}

// Forecast produces horizon sequential forecast points with confidence bands
// from the feature table. Returns an InsufficientDataError when fewer than
// the minimum number of fully-featured training rows remain.
func (f *Forecaster) Forecast(series *CleanedSeries, table *FeatureTable, features []string, horizon int) (*ForecastResult, error) {
	if horizon < 1 || horizon > f.cfg.MaxForecastDays {
		return nil, NewDegenerateInputErrorf("forecast horizon must be between 1 and %d days, got %d", f.cfg.MaxForecastDays, horizon)
	}

	X, y := trainingMatrix(table, features)
	if len(X) < f.cfg.MinSeriesLength {
		return nil, NewInsufficientDataError("model training", f.cfg.MinSeriesLength, len(X))
	}

	model := fitTrainingModel(X, y, f.cfg.RidgeLambda, f.logger)

	trainR2, rmse, mae, residStd := trainingDiagnostics(model, X, y)
	cvMean, cvStd := f.crossValidate(X, y)

	metrics := models.ModelMetrics{
		TrainR2:     round4(trainR2),
		RMSE:        round4(rmse),
		MAE:         round4(mae),
		ResidualStd: round4(residStd),
		ModelKind:   model.Kind(),
		Features:    features,
	}
	if cvMean != nil {
		m := round4(*cvMean)
		s := round4(*cvStd)
		metrics.CVR2 = &m
		metrics.CVR2Std = &s
	}

	points := f.generateForecast(model, series, table, features, horizon, residStd)

	currentPrice := series.Points[series.Len()-1].Close
	trend := ClassifyTrend(points, currentPrice, f.cfg.ForecastTrendPct)
	confidence := f.confidence(metrics, residStd, currentPrice)

	return &ForecastResult{
		Points:       points,
		Metrics:      metrics,
		Trend:        trend,
		Confidence:   confidence,
		CurrentPrice: currentPrice,
	}, nil
}

// trainingMatrix drops every row with a missing selected feature or close and
// assembles the remaining rows in feature-priority column order.
func trainingMatrix(table *FeatureTable, features []string) ([][]float64, []float64) {
	var X [][]float64
	var y []float64

	for _, row := range table.Rows {
		if math.IsNaN(row.Close) {
			continue
		}
		vec := make([]float64, len(features))
		complete := true
		for j, name := range features {
			v, ok := row.Values[name]
			if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
				complete = false
				break
			}
			vec[j] = v
		}
		if !complete {
			continue
		}
		X = append(X, vec)
		y = append(y, row.Close)
	}
	return X, y
}

func trainingDiagnostics(model ForecastModel, X [][]float64, y []float64) (r2, rmse, mae, residStd float64) {
	n := len(y)
	residuals := make([]float64, n)
	sumSq, sumAbs := 0.0, 0.0
	for i, row := range X {
		residuals[i] = y[i] - model.Predict(row)
		sumSq += residuals[i] * residuals[i]
		sumAbs += math.Abs(residuals[i])
	}

	r2 = rSquared(model, X, y)
	rmse = math.Sqrt(sumSq / float64(n))
	mae = sumAbs / float64(n)
	_, residStd = meanStd(residuals)
	return r2, rmse, mae, residStd
}

func rSquared(model ForecastModel, X [][]float64, y []float64) float64 {
	yMean, _ := meanStd(y)
	ssRes, ssTot := 0.0, 0.0
	for i, row := range X {
		d := y[i] - model.Predict(row)
		ssRes += d * d
		t := y[i] - yMean
		ssTot += t * t
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// crossValidate runs forward-chaining validation: each fold is trained only
// on data preceding its validation block, which keeps future observations
// from leaking into training the way a shuffled split would. Returns nil
// when the set is too small for at least two folds.
func (f *Forecaster) crossValidate(X [][]float64, y []float64) (*float64, *float64) {
	n := len(X)
	folds := n / 10
	if folds > f.cfg.MaxCVFolds {
		folds = f.cfg.MaxCVFolds
	}
	if folds < 2 {
		return nil, nil
	}

	blockSize := n / (folds + 1)
	scores := make([]float64, 0, folds)
	for i := 1; i <= folds; i++ {
		trainEnd := i * blockSize
		valEnd := trainEnd + blockSize
		if i == folds {
			valEnd = n
		}

		model := fitTrainingModel(X[:trainEnd], y[:trainEnd], f.cfg.RidgeLambda, nil)
		scores = append(scores, rSquared(model, X[trainEnd:valEnd], y[trainEnd:valEnd]))
	}

	mean, std := meanStd(scores)
	return &mean, &std
}

// generateForecast chains one-step-ahead predictions: lag features for later
// steps use the model's own earlier forecasts, while rolling statistics,
// momentum, RSI and volatility are held at their last observed values since
// future raw prices are unknown. This carry-forward is a known approximation
// whose error compounds with horizon.
func (f *Forecaster) generateForecast(model ForecastModel, series *CleanedSeries, table *FeatureTable, features []string, horizon int, residStd float64) []models.ForecastPoint {
	closes := series.Closes()
	lastDate := series.Points[series.Len()-1].Date
	startDate := series.Points[0].Date

	carried := make(map[string]float64, len(features))
	for _, name := range features {
		carried[name] = lastObserved(table, name)
	}

	chain := append([]float64(nil), closes...)
	points := make([]models.ForecastPoint, 0, horizon)

	for t := 1; t <= horizon; t++ {
		date := lastDate.AddDate(0, 0, t)

		vec := make([]float64, len(features))
		for j, name := range features {
			switch {
			case name == FeatureDays:
				vec[j] = math.Floor(date.Sub(startDate).Hours() / 24)
			case name == FeatureDayOfWeek:
				vec[j] = float64((int(date.Weekday()) + 6) % 7)
			case name == FeatureLag1:
				vec[j] = chain[len(chain)-1]
			case name == FeatureLag3:
				vec[j] = chainLag(chain, 3)
			case name == FeatureLag5:
				vec[j] = chainLag(chain, 5)
			case name == FeatureLag7:
				vec[j] = chainLag(chain, 7)
			default:
				vec[j] = carried[name]
			}
		}

		predicted := model.Predict(vec)
		if predicted < minForecastPrice {
			predicted = minForecastPrice
		}

		margin := residStd * 1.96 * (1 + bandWidenPerStep*float64(t))
		lower := predicted - margin
		if lower < minForecastPrice {
			lower = minForecastPrice
		}

		points = append(points, models.ForecastPoint{
			Date:           date,
			PredictedPrice: round4(predicted),
			LowerBound:     round4(lower),
			UpperBound:     round4(predicted + margin),
		})
		chain = append(chain, predicted)
	}

	return points
}

const (
	minForecastPrice = 0.01
	// Confidence bands widen 15% per forecast step on top of the 95%
	// interval, reflecting compounding uncertainty with distance.
	bandWidenPerStep = 0.15
)

func chainLag(chain []float64, k int) float64 {
	if len(chain) < k {
		return chain[0]
	}
	return chain[len(chain)-k]
}

func lastObserved(table *FeatureTable, name string) float64 {
	for i := len(table.Rows) - 1; i >= 0; i-- {
		if v, ok := table.Rows[i].Values[name]; ok && !math.IsNaN(v) {
			return v
		}
	}
	return 0
}

// confidence scores the forecast 0-100: the validated (or in-sample) r²
// sets the base, and residual dispersion relative to the current price
// subtracts up to the configured penalty cap.
func (f *Forecaster) confidence(metrics models.ModelMetrics, residStd, currentPrice float64) float64 {
	base := metrics.TrainR2
	if metrics.CVR2 != nil {
		base = *metrics.CVR2
	}

	score := base * 100
	if currentPrice > 0 {
		penalty := 2 * (residStd / currentPrice * 100)
		if penalty > f.cfg.VolatilityPenaltyCap {
			penalty = f.cfg.VolatilityPenaltyCap
		}
		score -= penalty
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return round2(score)
}

func columnStats(X [][]float64) ([]float64, []float64) {
	p := len(X[0])
	means := make([]float64, p)
	stds := make([]float64, p)
	col := make([]float64, len(X))
	for j := 0; j < p; j++ {
		for i := range X {
			col[i] = X[i][j]
		}
		mean, std := meanStd(col)
		if std == 0 {
			std = 1
		}
		means[j] = mean
		stds[j] = std
	}
	return means, stds
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
