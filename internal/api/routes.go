package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/finsight/investment-tracker/internal/analytics"
	"github.com/finsight/investment-tracker/internal/api/handlers"
	"github.com/finsight/investment-tracker/internal/database"
	"github.com/finsight/investment-tracker/internal/marketdata"
	"github.com/finsight/investment-tracker/internal/middleware"
)

// SetupRoutes wires the HTTP surface: health, market data pass-through and
// the three analytics operations.
func SetupRoutes(router *gin.Engine, engine *analytics.Engine, market *marketdata.Service, db *database.PostgresDB, redis *database.RedisClient, logger *logrus.Logger) {
	router.Use(middleware.RequestID())
	router.Use(otelgin.Middleware("investment-tracker"))

	healthHandler := handlers.NewHealthHandler(db, redis)
	router.GET("/health", healthHandler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		marketHandler := handlers.NewMarketHandler(market, logger)
		marketGroup := v1.Group("/market")
		{
			marketGroup.GET("/price/:symbol", marketHandler.GetPrice)
			marketGroup.GET("/history/:symbol", marketHandler.GetHistory)
		}

		analysisHandler := handlers.NewAnalysisHandler(engine, logger)
		analysis := v1.Group("/analysis")
		{
			analysis.POST("/predict", analysisHandler.Predict)
			analysis.GET("/trend/:symbol", analysisHandler.TrendAnalysis)
			analysis.POST("/correlation", analysisHandler.CorrelationMatrix)
		}
	}
}
