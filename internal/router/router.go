package router

import (
	"github.com/gin-gonic/gin"

	"facturio/internal/handler"
	"facturio/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	scanH *handler.ScanHandler,
	catalogH *handler.CatalogHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	scans := v1.Group("/scans")
	scans.POST("", scanH.Create)
	scans.POST("/by-key", scanH.CreateByKey)

	v1.GET("/catalog", catalogH.List)

	return r
}
