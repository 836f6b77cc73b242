package routes

import (
	"viabus/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRouteRoutes configures all route-related routes
func SetupRouteRoutes(rg *gin.RouterGroup, controller *Controller) {
	routes := rg.Group("/routes")
	{
		// Public reads: booking sites and seat maps hit these
		routes.GET("", controller.ListRoutes)
		routes.GET("/search", controller.SearchRoutes)
		routes.GET("/:id", controller.GetRoute)

		// Route management is back-office only
		admin := routes.Group("")
		admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
		{
			admin.POST("", controller.CreateRoute)
			admin.PATCH("/:id", controller.UpdateRoute)
		}
	}
}
