package models

import "time"

// ForecastPoint is a single forecasted price with its confidence band.
// UpperBound is always >= LowerBound and the band widens with horizon.
type ForecastPoint struct {
	Date           time.Time `json:"date"`
	PredictedPrice float64   `json:"predicted_price"`
	LowerBound     float64   `json:"lower_bound"`
	UpperBound     float64   `json:"upper_bound"`
}

// ModelMetrics reports forecast model diagnostics. CVR2 is nil when the
// training set was too small for forward-chaining cross-validation.
type ModelMetrics struct {
	TrainR2     float64  `json:"train_r2"`
	CVR2        *float64 `json:"cv_r2,omitempty"`
	CVR2Std     *float64 `json:"cv_r2_std,omitempty"`
	RMSE        float64  `json:"rmse"`
	MAE         float64  `json:"mae"`
	ResidualStd float64  `json:"residual_std"`
	ModelKind   string   `json:"model_kind"`
	Features    []string `json:"features"`
}

// PredictionResult is the full response of the predict operation.
type PredictionResult struct {
	Symbol         string          `json:"symbol"`
	CurrentPrice   float64         `json:"current_price"`
	Predictions    []ForecastPoint `json:"predictions"`
	Trend          string          `json:"trend"`
	Confidence     float64         `json:"confidence"`
	PredictionDays int             `json:"prediction_days"`
	Metrics        ModelMetrics    `json:"metrics"`
	Warnings       []string        `json:"warnings,omitempty"`
}
