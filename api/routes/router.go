// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"viabus/internal/buses"
	"viabus/internal/realtime"
	appRoutes "viabus/internal/routes"
	"viabus/internal/shared/config"
	"viabus/internal/shared/database"
	"viabus/internal/tickets"
	"viabus/pkg/cache"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	notifier *realtime.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, notifier *realtime.Service) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		notifier: notifier,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) *tickets.ExpiryProcessor {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())

	// Repositories
	busRepo := buses.NewRepository(r.db.GetPostgreSQL())
	cacheService := cache.NewService(r.db.GetRedisClient())
	routeRepo := appRoutes.NewRepository(r.db.GetPostgreSQL(), cacheService, r.config.Redis.RouteCacheTTL)
	ticketRepo := tickets.NewRepository(r.db.GetPostgreSQL())

	// Services. The ticket repository doubles as the seat counter for
	// route search results.
	busService := buses.NewService(busRepo)
	routeService := appRoutes.NewService(routeRepo, busRepo, ticketRepo, r.config.Booking.SalesCutoff)
	ticketService := tickets.NewService(ticketRepo, routeRepo, r.notifier,
		r.config.Booking.SalesCutoff, r.config.Booking.ReservationTTL)

	// Controllers and routes
	buses.SetupBusRoutes(api, buses.NewController(busService))
	appRoutes.SetupRouteRoutes(api, appRoutes.NewController(routeService))
	tickets.SetupTicketRoutes(api, tickets.NewController(ticketService))
	realtime.SetupRealtimeRoutes(api, realtime.NewController(r.notifier))

	return tickets.NewExpiryProcessor(ticketService, r.config.Booking.ExpirySweepInterval)
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "viabus-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "viabus-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}
