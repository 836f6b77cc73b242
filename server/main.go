package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"viabus/api/routes"
	"viabus/internal/realtime"
	"viabus/internal/shared/config"
	"viabus/internal/shared/database"
	"viabus/internal/tickets"
	"viabus/pkg/logger"
	"viabus/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.GetDefault()

	// Smart environment loading
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to connect:", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Custom binding rules must exist before the router binds requests
	tickets.RegisterValidators()

	// Rate limiter
	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiterConfig := &ratelimit.Config{
			Enabled:         cfg.RateLimit.Enabled,
			WindowDuration:  cfg.RateLimit.WindowDuration,
			DefaultRequests: cfg.RateLimit.DefaultRequests,
			PublicRequests:  cfg.RateLimit.PublicRequests,
			BookingRequests: cfg.RateLimit.BookingRequests,
			AdminRequests:   cfg.RateLimit.AdminRequests,
			HealthRequests:  cfg.RateLimit.HealthRequests,
			WhitelistedIPs:  cfg.RateLimit.WhitelistedIPs,
		}

		rateLimiter = ratelimit.NewRateLimiter(db.GetRedisClient(), rateLimiterConfig)
		appLogger.Info("Rate limiter initialized",
			slog.Bool("enabled", cfg.RateLimit.Enabled),
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	// Realtime seat update fan-out. The in-process hub always runs; the
	// Kafka bridge only when configured, so single-instance deployments
	// need no broker.
	notifier, consumer := setupRealtime(cfg, appLogger)
	defer notifier.Close()

	realtimeCtx, realtimeCancel := context.WithCancel(context.Background())
	defer realtimeCancel()
	if consumer != nil {
		consumer.Start(realtimeCtx)
		defer func() {
			if err := consumer.Stop(); err != nil {
				appLogger.Error("Error stopping seat event consumer", slog.Any("error", err))
			}
		}()
	}

	// Router
	engine, expiry := setupRouter(cfg, db, rateLimiter, notifier, appLogger)

	// Reservation expiry sweeper
	expiry.Start(realtimeCtx)
	defer expiry.Stop()

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("🚀 Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("api_status", fmt.Sprintf("http://localhost:%s%s/status", cfg.Port, cfg.GetAPIBasePath())),
			slog.String("version", cfg.APIVersion),
			slog.Bool("kafka_fanout", cfg.Kafka.Enabled),
			slog.Bool("rate_limiting", cfg.RateLimit.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

// setupRealtime builds the seat-update fan-out: the local hub plus, when
// Kafka is enabled, a producer and consumer bridging other instances.
func setupRealtime(cfg *config.Config, appLogger *logger.Logger) (*realtime.Service, *realtime.Consumer) {
	hub := realtime.NewHub()

	if !cfg.Kafka.Enabled {
		return realtime.NewService(hub, nil), nil
	}

	// Origin tag lets each consumer drop messages its own producer sent
	origin := originID()

	producerCfg := realtime.DefaultProducerConfig()
	producerCfg.Brokers = cfg.Kafka.Brokers
	producerCfg.Topic = cfg.Kafka.SeatUpdatesTopic
	producerCfg.Origin = origin

	producer, err := realtime.NewProducer(producerCfg)
	if err != nil {
		appLogger.Error("Failed to create seat event producer, continuing hub-only", slog.Any("error", err))
		return realtime.NewService(hub, nil), nil
	}

	consumerCfg := realtime.DefaultConsumerConfig()
	consumerCfg.Brokers = cfg.Kafka.Brokers
	consumerCfg.Topic = cfg.Kafka.SeatUpdatesTopic
	consumerCfg.GroupID = cfg.Kafka.ConsumerGroup + "-" + origin
	consumerCfg.Origin = origin

	consumer, err := realtime.NewConsumer(consumerCfg, hub)
	if err != nil {
		appLogger.Error("Failed to create seat event consumer, continuing producer-only", slog.Any("error", err))
		return realtime.NewService(hub, producer), nil
	}

	appLogger.Info("Kafka seat update bridge initialized",
		slog.String("topic", cfg.Kafka.SeatUpdatesTopic),
		slog.String("origin", origin),
	)
	return realtime.NewService(hub, producer), consumer
}

func originID() string {
	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		return hostname
	}
	return uuid.NewString()
}

func setupRouter(cfg *config.Config, db *database.DB, rateLimiter *ratelimit.RateLimiter, notifier *realtime.Service, appLogger *logger.Logger) (*gin.Engine, *tickets.ExpiryProcessor) {
	engine := gin.New()

	// Built-in middleware: logs requests + recovers from panics
	engine.Use(RequestLoggerMiddleware(appLogger), gin.Recovery())

	// CORS configuration
	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true // allow every origin dynamically
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-RateLimit-*"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
		appLogger.Info("Rate limiting middleware applied to all routes")
	}

	appRouter := routes.NewRouter(cfg, db, notifier)
	expiry := appRouter.SetupRoutes(engine)

	return engine, expiry
}

func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		l.LogHTTPRequest(c, duration)
	}
}
