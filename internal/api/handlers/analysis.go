package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/finsight/investment-tracker/internal/analytics"
	"github.com/finsight/investment-tracker/internal/models"
)

// AnalysisHandler serves the forecasting and risk-analytics operations.
// Engine faults never escape raw: every failure is converted into a
// structured error body the client can surface directly.
type AnalysisHandler struct {
	engine *analytics.Engine
	logger *logrus.Logger
}

func NewAnalysisHandler(engine *analytics.Engine, logger *logrus.Logger) *AnalysisHandler {
	return &AnalysisHandler{engine: engine, logger: logger}
}

type PredictRequest struct {
	Symbol    string `json:"symbol" binding:"required"`
	AssetType string `json:"asset_type"`
	DaysAhead int    `json:"days_ahead"`
	Period    string `json:"period"`
}

type CorrelationRequest struct {
	Assets []models.AssetRef `json:"assets" binding:"required"`
	Period string            `json:"period"`
}

// Predict handles POST /api/v1/analysis/predict.
func (h *AnalysisHandler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if req.AssetType == "" {
		req.AssetType = "stock"
	}
	if req.DaysAhead == 0 {
		req.DaysAhead = 7
	}
	if req.Period == "" {
		req.Period = models.Period3M
	}

	result, err := h.engine.Predict(c.Request.Context(), req.Symbol, req.AssetType, req.DaysAhead, req.Period)
	if err != nil {
		h.renderError(c, req.Symbol, "predict", err, nil)
		return
	}

	c.JSON(http.StatusOK, result)
}

// TrendAnalysis handles GET /api/v1/analysis/trend/:symbol.
func (h *AnalysisHandler) TrendAnalysis(c *gin.Context) {
	symbol := c.Param("symbol")
	assetType := c.DefaultQuery("asset_type", "stock")

	report, err := h.engine.TrendAnalysis(c.Request.Context(), symbol, assetType)
	if err != nil {
		h.renderError(c, symbol, "trend_analysis", err, nil)
		return
	}

	c.JSON(http.StatusOK, report)
}

// CorrelationMatrix handles POST /api/v1/analysis/correlation.
func (h *AnalysisHandler) CorrelationMatrix(c *gin.Context) {
	var req CorrelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.Period == "" {
		req.Period = models.Period3M
	}

	report, details, err := h.engine.CorrelationMatrix(c.Request.Context(), req.Assets, req.Period)
	if err != nil {
		h.renderError(c, "", "correlation_matrix", err, details)
		return
	}

	c.JSON(http.StatusOK, report)
}

// renderError maps engine error types onto HTTP results. Data problems are
// the client's to fix (400), missing upstream data reads as not found (404),
// anything else is an internal fault reported generically.
func (h *AnalysisHandler) renderError(c *gin.Context, symbol, operation string, err error, details []string) {
	body := gin.H{"error": err.Error()}
	if len(details) > 0 {
		body["details"] = details
	}

	var upstream *analytics.UpstreamUnavailableError
	switch {
	case errors.As(err, &upstream):
		c.JSON(http.StatusNotFound, body)
	case analytics.IsClientError(err):
		c.JSON(http.StatusBadRequest, body)
	default:
		h.logger.WithError(err).WithFields(logrus.Fields{
			"symbol":    symbol,
			"operation": operation,
		}).Error("analysis operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected error"})
	}
}
