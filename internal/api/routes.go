package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter builds the engine with the middleware chain and every route
func NewRouter(handler *Handler, metrics *Metrics, origins []string, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestID(),
		RequestLogger(logger),
		metrics.Middleware(),
		CORS(origins),
	)

	SetupRoutes(router, handler, metrics)
	return router
}

func SetupRoutes(router *gin.Engine, handler *Handler, metrics *Metrics) {
	router.GET("/health", handler.Health)
	router.GET("/metrics", metrics.Handler())

	api := router.Group("/api")
	{
		api.GET("/map", handler.GetMap)
		api.GET("/summary", handler.GetSummary)
		api.GET("/districts", handler.GetDistricts)
		api.GET("/districts/:district/neighborhoods", handler.GetNeighborhoods)
		api.GET("/selection", handler.GetSelection)
		api.GET("/compare", handler.GetCompare)
		api.GET("/compare/price", handler.GetPriceTrend)
		api.GET("/compare/volume", handler.GetVolumeTrend)
		api.GET("/compare/distribution", handler.GetDistribution)
		api.GET("/compare/correlation", handler.GetCorrelation)
	}
}
