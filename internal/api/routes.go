package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.GET("/health", handler.HealthCheck)
		api.POST("/search-competitors-advanced", handler.SearchCompetitorsAdvanced)
		api.POST("/compare-locations", handler.CompareLocations)
		api.GET("/search/:search_id", handler.GetSearchAnalysis)
		api.GET("/searches", handler.GetRecentSearches)
		api.GET("/searches/nearby", handler.GetNearbySearches)
		api.GET("/comparisons", handler.GetRecentComparisons)
	}
}
