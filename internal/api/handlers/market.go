package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/finsight/investment-tracker/internal/marketdata"
	"github.com/finsight/investment-tracker/internal/models"
)

// MarketHandler exposes the retrieval layer directly: current quotes and
// raw history series.
type MarketHandler struct {
	service *marketdata.Service
	logger  *logrus.Logger
}

func NewMarketHandler(service *marketdata.Service, logger *logrus.Logger) *MarketHandler {
	return &MarketHandler{service: service, logger: logger}
}

// GetPrice handles GET /api/v1/market/price/:symbol.
func (h *MarketHandler) GetPrice(c *gin.Context) {
	symbol := c.Param("symbol")
	assetType := c.DefaultQuery("asset_type", "stock")

	quote, err := h.service.GetCurrentPrice(c.Request.Context(), symbol, assetType)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, quote)
}

// GetHistory handles GET /api/v1/market/history/:symbol.
func (h *MarketHandler) GetHistory(c *gin.Context) {
	symbol := c.Param("symbol")
	assetType := c.DefaultQuery("asset_type", "stock")
	period := c.DefaultQuery("period", models.Period3M)

	if _, ok := models.PeriodDays[period]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported period: " + period})
		return
	}

	history, err := h.service.GetHistory(c.Request.Context(), symbol, assetType, period)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, history)
}
