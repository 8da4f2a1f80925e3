package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight/investment-tracker/internal/analytics"
	"github.com/finsight/investment-tracker/internal/config"
	"github.com/finsight/investment-tracker/internal/models"
)

type fakeFetcher struct {
	histories map[string]*models.History
	errs      map[string]error
}

func (f *fakeFetcher) GetCurrentPrice(_ context.Context, symbol, _ string) (*models.PriceQuote, error) {
	return nil, fmt.Errorf("no quote for %s", symbol)
}

func (f *fakeFetcher) GetHistory(_ context.Context, symbol, _, period string) (*models.History, error) {
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	key := symbol + "/" + period
	if h, ok := f.histories[key]; ok {
		return h, nil
	}
	return nil, fmt.Errorf("unknown symbol %s", symbol)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func syntheticHistory(symbol, period string, n int) *models.History {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	prices := make([]models.RawPricePoint, n)
	for i := range prices {
		prices[i] = models.RawPricePoint{
			Date:  start.AddDate(0, 0, i).Format("2006-01-02"),
			Close: 100 + 0.8*float64(i) + 2*float64(i%3),
		}
	}
	return &models.History{Symbol: symbol, AssetType: "stock", Period: period, Prices: prices}
}

func analysisRouter(fetcher analytics.PriceFetcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := analytics.NewEngine(config.DefaultAnalytics(), fetcher, quietLogger())
	handler := NewAnalysisHandler(engine, quietLogger())

	router := gin.New()
	router.POST("/predict", handler.Predict)
	router.GET("/trend/:symbol", handler.TrendAnalysis)
	router.POST("/correlation", handler.CorrelationMatrix)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPredictEndpoint(t *testing.T) {
	fetcher := &fakeFetcher{histories: map[string]*models.History{
		"AAPL/3M": syntheticHistory("AAPL", "3M", 60),
	}}
	router := analysisRouter(fetcher)

	w := postJSON(t, router, "/predict", PredictRequest{Symbol: "AAPL", DaysAhead: 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result models.PredictionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "AAPL", result.Symbol)
	assert.Len(t, result.Predictions, 5)
	assert.Equal(t, 5, result.PredictionDays)
	assert.NotEmpty(t, result.Trend)
}

func TestPredictEndpointDefaults(t *testing.T) {
	fetcher := &fakeFetcher{histories: map[string]*models.History{
		"AAPL/3M": syntheticHistory("AAPL", "3M", 60),
	}}
	router := analysisRouter(fetcher)

	// Omitted days_ahead and period fall back to 7 and 3M.
	w := postJSON(t, router, "/predict", map[string]string{"symbol": "AAPL"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result models.PredictionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 7, result.PredictionDays)
}

func TestPredictEndpointMissingSymbol(t *testing.T) {
	router := analysisRouter(&fakeFetcher{})

	w := postJSON(t, router, "/predict", map[string]int{"days_ahead": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPredictEndpointUnknownSymbol(t *testing.T) {
	router := analysisRouter(&fakeFetcher{})

	w := postJSON(t, router, "/predict", PredictRequest{Symbol: "NOPE"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "NOPE")
}

func TestPredictEndpointInsufficientData(t *testing.T) {
	fetcher := &fakeFetcher{histories: map[string]*models.History{
		"TINY/3M": syntheticHistory("TINY", "3M", 8),
	}}
	router := analysisRouter(fetcher)

	w := postJSON(t, router, "/predict", PredictRequest{Symbol: "TINY"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "insufficient data")
}

func TestPredictEndpointBadDaysAhead(t *testing.T) {
	fetcher := &fakeFetcher{histories: map[string]*models.History{
		"AAPL/3M": syntheticHistory("AAPL", "3M", 60),
	}}
	router := analysisRouter(fetcher)

	w := postJSON(t, router, "/predict", PredictRequest{Symbol: "AAPL", DaysAhead: 99})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrendEndpoint(t *testing.T) {
	fetcher := &fakeFetcher{histories: map[string]*models.History{
		"MSFT/1M": syntheticHistory("MSFT", "1M", 30),
		"MSFT/3M": syntheticHistory("MSFT", "3M", 90),
	}}
	router := analysisRouter(fetcher)

	req := httptest.NewRequest(http.MethodGet, "/trend/MSFT", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report models.TrendReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "MSFT", report.Symbol)
	assert.NotEmpty(t, report.ShortTerm.Trend)
	assert.NotEmpty(t, report.LongTerm.Trend)
	assert.Equal(t, models.Period1M, report.ShortTerm.Period)
	assert.Equal(t, models.Period3M, report.LongTerm.Period)
}

func TestTrendEndpointUnknownSymbol(t *testing.T) {
	router := analysisRouter(&fakeFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/trend/NOPE", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCorrelationEndpoint(t *testing.T) {
	fetcher := &fakeFetcher{histories: map[string]*models.History{
		"AAPL/3M": syntheticHistory("AAPL", "3M", 30),
		"MSFT/3M": syntheticHistory("MSFT", "3M", 30),
	}}
	router := analysisRouter(fetcher)

	w := postJSON(t, router, "/correlation", CorrelationRequest{Assets: []models.AssetRef{
		{Symbol: "AAPL", AssetType: "stock"},
		{Symbol: "MSFT", AssetType: "stock"},
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report models.CorrelationReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, []string{"AAPL", "MSFT"}, report.Symbols)
	require.Len(t, report.Matrix, 2)
	assert.Equal(t, 1.0, report.Matrix[0][0])
}

func TestCorrelationEndpointTooFewAssets(t *testing.T) {
	router := analysisRouter(&fakeFetcher{})

	w := postJSON(t, router, "/correlation", CorrelationRequest{Assets: []models.AssetRef{
		{Symbol: "AAPL"},
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCorrelationEndpointReportsDetailsOnFailure(t *testing.T) {
	fetcher := &fakeFetcher{
		histories: map[string]*models.History{
			"AAPL/3M": syntheticHistory("AAPL", "3M", 30),
		},
	}
	router := analysisRouter(fetcher)

	// Only one asset qualifies, so the operation fails and carries the
	// per-symbol diagnostics in the body.
	w := postJSON(t, router, "/correlation", CorrelationRequest{Assets: []models.AssetRef{
		{Symbol: "AAPL", AssetType: "stock"},
		{Symbol: "GONE", AssetType: "stock"},
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Contains(t, body, "details")
}
