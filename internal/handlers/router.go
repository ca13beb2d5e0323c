package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"assettracker/internal/middleware"
)

// NewRouter builds the HTTP API.
func NewRouter(portfolio *PortfolioHandler, batch *BatchHandler, pipelineAPIKey string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	v1.GET("/summary", portfolio.GetSummary)

	days := v1.Group("/days")
	days.GET("", portfolio.ListDays)
	days.GET("/:date", portfolio.GetDay)
	days.PUT("/:date/cash", portfolio.SetCash)
	days.PUT("/:date/stocks", portfolio.UpsertStock)
	days.POST("/:date/prices", portfolio.RefreshPrices)
	days.POST("/:date/valuation", portfolio.RefreshValuation)

	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(pipelineAPIKey))
	pipeline.POST("/batch", batch.RunBatch)

	return router
}
