package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

func SetupRoutes(app *fiber.App, handler *Handler) {
	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} ${pid} ${locals:requestid} ${status} - ${method} ${path}\n",
		TimeFormat: time.RFC3339,
	}))

	api := app.Group("/api/v1")

	api.Get("/health", handler.GetHealth)
	api.Get("/metrics", handler.GetMetrics)
	api.Get("/locations", handler.GetLocations)
	api.Get("/crops", handler.GetCrops)

	// Per-location advisories, all keyed by ?location= and optional ?crop=
	advisory := api.Group("/advisory")
	advisory.Get("/report", handler.GetReport)
	advisory.Get("/risks", handler.GetRisks)
	advisory.Get("/golden-hours", handler.GetGoldenHours)
	advisory.Get("/air-quality", handler.GetAirQuality)
	advisory.Get("/days", handler.GetDays)
	advisory.Get("/crops", handler.GetCropRanking)
	advisory.Get("/activities", handler.GetActivities)
	advisory.Get("/calendar", handler.GetCalendar)
	advisory.Get("/alerts", handler.GetAlerts)

	api.Post("/engine/evaluate", handler.PostEvaluate)
	api.Post("/scheduler/run", handler.PostSchedulerRun)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
			"path":  c.Path(),
		})
	})
}

// ErrorHandler logs unhandled errors and renders them as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	zap.L().Error("HTTP error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))

	// Default to 500 status code
	code := fiber.StatusInternalServerError

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   err.Error(),
		"success": false,
	})
}
