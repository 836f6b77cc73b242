package buses

import (
	"github.com/gin-gonic/gin"

	"viabus/internal/shared/middleware"
)

// SetupBusRoutes configures fleet management routes, back-office only
func SetupBusRoutes(rg *gin.RouterGroup, controller *Controller) {
	buses := rg.Group("/buses")
	buses.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		buses.POST("", controller.CreateBus)
		buses.GET("", controller.ListBuses)
		buses.GET("/:id", controller.GetBus)
	}
}
