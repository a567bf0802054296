package api

import (
	"errors"
	"strings"
	"time"

	"agri-advisor/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Poller is the part of the scheduler the API exposes.
type Poller interface {
	ForceRun() bool
	GetStatus() map[string]interface{}
}

type Handler struct {
	advisor  *services.Advisor
	poller   Poller
	logger   *zap.Logger
	validate *validator.Validate
}

func NewHandler(advisor *services.Advisor, poller Poller, logger *zap.Logger) *Handler {
	return &Handler{
		advisor:  advisor,
		poller:   poller,
		logger:   logger,
		validate: validator.New(),
	}
}

func (h *Handler) advise(c *fiber.Ctx) (*services.Advisory, error) {
	location := strings.TrimSpace(c.Query("location"))
	if location == "" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "location parameter is required")
	}

	advisory, err := h.advisor.Advise(c.UserContext(), location, c.Query("crop"))
	if err != nil {
		return nil, err
	}
	return advisory, nil
}

// fail maps service errors onto status codes.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return c.Status(fe.Code).JSON(fiber.Map{
			"error": fe.Message,
		})
	case errors.Is(err, services.ErrUnknownLocation):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Unknown location",
			"details": err.Error(),
		})
	case errors.Is(err, services.ErrNoTelemetry):
		h.logger.Error("Telemetry unavailable",
			zap.String("path", c.Path()),
			zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error":   "Weather data unavailable",
			"details": err.Error(),
		})
	default:
		return err
	}
}

// GetReport handles GET /api/v1/advisory/report
func (h *Handler) GetReport(c *fiber.Ctx) error {
	advisory, err := h.advise(c)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(advisory)
}

// GetRisks handles GET /api/v1/advisory/risks
func (h *Handler) GetRisks(c *fiber.Ctx) error {
	advisory, err := h.advise(c)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"location": advisory.Location,
		"crop":     advisory.Crop,
		"risks":    advisory.Risks,
	})
}

// GetGoldenHours handles GET /api/v1/advisory/golden-hours
func (h *Handler) GetGoldenHours(c *fiber.Ctx) error {
	advisory, err := h.advise(c)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"location":    advisory.Location,
		"slots":       advisory.GoldenHours,
		"best_window": advisory.BestWindow,
	})
}

// GetAirQuality handles GET /api/v1/advisory/air-quality
func (h *Handler) GetAirQuality(c *fiber.Ctx) error {
	advisory, err := h.advise(c)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"location":    advisory.Location,
		"available":   advisory.Air != nil,
		"air_quality": advisory.Air,
	})
}

// GetDays handles GET /api/v1/advisory/days
func (h *Handler) GetDays(c *fiber.Ctx) error {
	advisory, err := h.advise(c)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"location": advisory.Location,
		"days":     advisory.Outlook,
	})
}

// GetCropRanking handles GET /api/v1/advisory/crops
func (h *Handler) GetCropRanking(c *fiber.Ctx) error {
	advisory, err := h.advise(c)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"location":  advisory.Location,
		"season":    advisory.Season,
		"ranking":   advisory.Crops,
		"your_crop": advisory.YourCrop,
	})
}

// GetActivities handles GET /api/v1/advisory/activities
func (h *Handler) GetActivities(c *fiber.Ctx) error {
	advisory, err := h.advise(c)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"location":   advisory.Location,
		"activities": advisory.Activities,
	})
}

// GetCalendar handles GET /api/v1/advisory/calendar
func (h *Handler) GetCalendar(c *fiber.Ctx) error {
	advisory, err := h.advise(c)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"location": advisory.Location,
		"today":    advisory.Date,
		"calendar": advisory.Calendar,
	})
}

// GetAlerts handles GET /api/v1/advisory/alerts
func (h *Handler) GetAlerts(c *fiber.Ctx) error {
	advisory, err := h.advise(c)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"location": advisory.Location,
		"alerts":   advisory.Alerts,
	})
}

// PostEvaluate handles POST /api/v1/engine/evaluate
func (h *Handler) PostEvaluate(c *fiber.Ctx) error {
	var req services.ProviderPayload
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": err.Error(),
		})
	}

	return c.JSON(h.advisor.Evaluate(req.Input()))
}

// GetCrops handles GET /api/v1/crops
func (h *Handler) GetCrops(c *fiber.Ctx) error {
	crops := h.advisor.Catalog().Crops()
	return c.JSON(fiber.Map{
		"count": len(crops),
		"crops": crops,
	})
}

// GetLocations handles GET /api/v1/locations
func (h *Handler) GetLocations(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"locations": h.advisor.Locations(),
	})
}

// PostSchedulerRun handles POST /api/v1/scheduler/run
func (h *Handler) PostSchedulerRun(c *fiber.Ctx) error {
	if !h.poller.ForceRun() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "A fetch is already in progress",
		})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "fetch triggered",
	})
}

// GetHealth handles GET /api/v1/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":     "healthy",
		"timestamp":  time.Now(),
		"last_fetch": h.advisor.GetLastFetchTime(),
		"uptime":     time.Since(startTime).String(),
		"scheduler":  h.poller.GetStatus(),
	})
}

// GetMetrics handles GET /api/v1/metrics
func (h *Handler) GetMetrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"metrics":   h.advisor.GetStats(),
		"scheduler": h.poller.GetStatus(),
		"timestamp": time.Now(),
	})
}

var startTime = time.Now()
