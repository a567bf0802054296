package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agri-advisor/internal/api"
	"agri-advisor/internal/config"
	"agri-advisor/internal/scheduler"
	"agri-advisor/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Initialize logger
	zapConfig := zap.NewProductionConfig()
	logger, _ := zapConfig.Build()
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	logger.Info("Starting Agricultural Advisory Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	if level, err := zapcore.ParseLevel(cfg.Server.LogLevel); err == nil {
		zapConfig.Level.SetLevel(level)
	}

	// Initialize advisor
	advisor, err := services.NewAdvisor(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize advisor", zap.Error(err))
	}
	defer advisor.Close()

	// Initialize scheduler
	poller := scheduler.NewScheduler(advisor, cfg.Scheduler.PollInterval, logger)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: api.ErrorHandler,
	})

	// Setup handlers and routes
	handler := api.NewHandler(advisor, poller, logger)
	api.SetupRoutes(app, handler)

	// Start scheduler
	if err := poller.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("Starting server", zap.String("address", addr))

		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	poller.Stop()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}
