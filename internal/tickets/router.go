package tickets

import (
	"github.com/gin-gonic/gin"

	"viabus/internal/shared/middleware"
)

// SetupTicketRoutes configures all ticket-related routes
func SetupTicketRoutes(rg *gin.RouterGroup, controller *Controller) {
	tickets := rg.Group("/tickets")
	{
		// Anyone can buy; a logged-in customer gets the ticket on their
		// account, counter staff issue confirmed tickets.
		tickets.POST("", middleware.OptionalAuth(), controller.CreateTicket)

		tickets.GET("/pnr/:pnr", controller.GetTicketByPNR)
		tickets.GET("/search", middleware.JWTAuth(), middleware.RequireStaff(), controller.SearchTickets)
		tickets.GET("/my", middleware.JWTAuth(), controller.GetMyTickets)
		tickets.GET("/:id", middleware.OptionalAuth(), controller.GetTicket)

		tickets.POST("/:id/confirm", middleware.JWTAuth(), controller.ConfirmTicket)
		tickets.POST("/:id/cancel", middleware.JWTAuth(), controller.CancelTicket)
		tickets.POST("/:id/suspend", middleware.JWTAuth(), middleware.RequireStaff(), controller.SuspendTicket)
	}

	// Seat availability lives under the route resource
	routes := rg.Group("/routes")
	{
		routes.GET("/:id/seats", controller.GetAvailableSeats)
	}
}
