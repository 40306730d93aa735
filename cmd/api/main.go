package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/shoppit/backend/internal/app"
	"github.com/shoppit/backend/internal/metrics"
	"github.com/shoppit/backend/internal/middleware/ratelimit"
	"github.com/shoppit/backend/internal/middleware/security"
	"github.com/shoppit/backend/internal/middleware/validation"
	"github.com/shoppit/backend/pkg/config"
	appLogger "github.com/shoppit/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Shoppit chatbot API server")

	metrics.Init()

	ctx := context.Background()

	shop, err := app.New(ctx, cfg)
	if err != nil {
		appLogger.Fatal("Failed to build chatbot", zap.Error(err))
	}
	defer shop.Close()

	if err := shop.LoadFAQs(ctx); err != nil {
		appLogger.Warn("Starting with an empty FAQ index")
	}

	if cfg.FAQ.RefreshSchedule != "" {
		refresher, err := shop.ScheduleFAQRefresh(cfg.FAQ.RefreshSchedule)
		if err != nil {
			appLogger.Fatal("Failed to schedule FAQ refresh", zap.Error(err))
		}
		defer refresher.Stop()
	}

	server := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.RateLimit.MaxRequestsPerMinute,
		Logger:               appLogger.Named("ratelimit"),
	})
	defer limiter.Stop()

	headers := security.HeadersConfig{
		AllowedOrigins: cfg.Security.AllowedOrigins,
		IsDevelopment:  cfg.Security.Development,
	}

	server.Use(recover.New())
	server.Use(logger.New())
	server.Use(security.CORS(headers))
	server.Use(security.HeadersMiddleware(headers))
	server.Use(limiter.Middleware())
	server.Use(validation.Middleware(validation.Config{
		MaxMessageLength: cfg.Chatbot.MaxMessageLength,
		Logger:           appLogger.Named("validation"),
	}))

	server.Get("/metrics", metrics.MetricsHandler())
	shop.Handlers().Register(server)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := server.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Warn("Shutdown did not complete cleanly", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
