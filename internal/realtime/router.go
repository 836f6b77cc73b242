package realtime

import (
	"github.com/gin-gonic/gin"

	"viabus/internal/shared/middleware"
)

// SetupRealtimeRoutes configures the live seat update routes
func SetupRealtimeRoutes(rg *gin.RouterGroup, controller *Controller) {
	routes := rg.Group("/routes")
	{
		routes.GET("/:id/seats/stream", controller.StreamSeatUpdates)
	}

	realtime := rg.Group("/realtime")
	realtime.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		realtime.GET("/stats", controller.GetStats)
	}
}
