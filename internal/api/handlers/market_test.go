package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight/investment-tracker/internal/marketdata"
	"github.com/finsight/investment-tracker/internal/models"
)

func marketRouter(mockFallback bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	service := marketdata.NewService(nil, nil, mockFallback, quietLogger())
	handler := NewMarketHandler(service, quietLogger())

	router := gin.New()
	router.GET("/price/:symbol", handler.GetPrice)
	router.GET("/history/:symbol", handler.GetHistory)
	return router
}

func TestGetPriceEndpoint(t *testing.T) {
	router := marketRouter(true)

	req := httptest.NewRequest(http.MethodGet, "/price/aapl", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var quote models.PriceQuote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, "USD", quote.Currency)
	assert.True(t, quote.CurrentPrice.IsPositive())
}

func TestGetPriceEndpointNoData(t *testing.T) {
	router := marketRouter(false)

	req := httptest.NewRequest(http.MethodGet, "/price/aapl", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetHistoryEndpoint(t *testing.T) {
	router := marketRouter(true)

	req := httptest.NewRequest(http.MethodGet, "/history/msft?period=1M", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var history models.History
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Equal(t, "MSFT", history.Symbol)
	assert.Equal(t, models.Period1M, history.Period)
	assert.Len(t, history.Prices, 30)
	assert.NotNil(t, history.Indicators.CurrentSMA20)
}

func TestGetHistoryEndpointBadPeriod(t *testing.T) {
	router := marketRouter(true)

	req := httptest.NewRequest(http.MethodGet, "/history/msft?period=42Y", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "unsupported period")
}
