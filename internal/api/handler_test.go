package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agri-advisor/internal/models"
	"agri-advisor/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubClient struct {
	err error
}

func (s *stubClient) Name() string { return "stub" }

func (s *stubClient) GetCurrent(ctx context.Context, loc models.Location) (*models.WeatherSnapshot, *time.Location, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return &models.WeatherSnapshot{Temperature: 28, Humidity: 85, WindSpeed: 1, CloudCover: 40}, time.UTC, nil
}

func (s *stubClient) GetForecast(ctx context.Context, loc models.Location) (models.ForecastSeries, *time.Location, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	start := time.Now().UTC().Truncate(3 * time.Hour)
	series := make(models.ForecastSeries, 0, 40)
	for i := 0; i < 40; i++ {
		series = append(series, models.WeatherSnapshot{
			Timestamp:   start.Add(time.Duration(3*i) * time.Hour),
			Temperature: 27,
			Humidity:    70,
			WindSpeed:   2,
		})
	}
	return series, time.UTC, nil
}

func (s *stubClient) GetAirQuality(ctx context.Context, loc models.Location) (*models.AirQualitySample, error) {
	return nil, errors.New("no air data")
}

type stubPoller struct {
	busy bool
}

func (p *stubPoller) ForceRun() bool { return !p.busy }

func (p *stubPoller) GetStatus() map[string]interface{} {
	return map[string]interface{}{"running": true}
}

func newTestApp(t *testing.T, client *stubClient, poller Poller) *fiber.App {
	t.Helper()
	advisor, err := services.New(services.Options{
		Clients:     []services.TelemetryClient{client},
		Locations:   []models.Location{{Name: "Anand", Lat: 22.5645, Lon: 72.9289}},
		DefaultCrop: "Wheat",
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(advisor.Close)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	SetupRoutes(app, NewHandler(advisor, poller, zap.NewNop()))
	return app
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return resp.StatusCode, out
}

func get(t *testing.T, app *fiber.App, target string) (int, map[string]interface{}) {
	return doRequest(t, app, httptest.NewRequest(http.MethodGet, target, nil))
}

func TestAdvisoryEndpoints(t *testing.T) {
	app := newTestApp(t, &stubClient{}, &stubPoller{})

	tests := []struct {
		path string
		key  string
	}{
		{"/api/v1/advisory/report", "risks"},
		{"/api/v1/advisory/risks", "risks"},
		{"/api/v1/advisory/golden-hours", "slots"},
		{"/api/v1/advisory/air-quality", "available"},
		{"/api/v1/advisory/days", "days"},
		{"/api/v1/advisory/crops", "ranking"},
		{"/api/v1/advisory/activities", "activities"},
		{"/api/v1/advisory/calendar", "calendar"},
		{"/api/v1/advisory/alerts", "alerts"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, body := get(t, app, tt.path+"?location=anand")
			assert.Equal(t, fiber.StatusOK, status)
			assert.Contains(t, body, tt.key)
		})
	}
}

func TestReportCarriesTelemetryAndCrop(t *testing.T) {
	app := newTestApp(t, &stubClient{}, &stubPoller{})

	status, body := get(t, app, "/api/v1/advisory/report?location=Anand&crop=Rice")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "stub", body["source"])
	assert.Equal(t, "Rice", body["crop"])
	assert.NotEmpty(t, body["telemetry_id"])
	assert.Nil(t, body["air_quality"])

	status, body = get(t, app, "/api/v1/advisory/air-quality?location=Anand")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, body["available"])
}

func TestAdvisoryErrors(t *testing.T) {
	t.Run("missing location", func(t *testing.T) {
		app := newTestApp(t, &stubClient{}, &stubPoller{})
		status, body := get(t, app, "/api/v1/advisory/risks")
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "location parameter is required", body["error"])
	})

	t.Run("unknown location", func(t *testing.T) {
		app := newTestApp(t, &stubClient{}, &stubPoller{})
		status, _ := get(t, app, "/api/v1/advisory/risks?location=Atlantis")
		assert.Equal(t, fiber.StatusNotFound, status)
	})

	t.Run("upstream down", func(t *testing.T) {
		app := newTestApp(t, &stubClient{err: errors.New("timeout")}, &stubPoller{})
		status, body := get(t, app, "/api/v1/advisory/report?location=Anand")
		assert.Equal(t, fiber.StatusServiceUnavailable, status)
		assert.Equal(t, "Weather data unavailable", body["error"])
	})

	t.Run("unknown route", func(t *testing.T) {
		app := newTestApp(t, &stubClient{}, &stubPoller{})
		status, body := get(t, app, "/api/v1/nowhere")
		assert.Equal(t, fiber.StatusNotFound, status)
		assert.Equal(t, "/api/v1/nowhere", body["path"])
	})
}

func TestPostEvaluate(t *testing.T) {
	app := newTestApp(t, &stubClient{}, &stubPoller{})

	payload := `{
	  "crop": "wheat",
	  "now": "2026-01-10T06:00:00Z",
	  "current": {"main": {"temp": 20, "humidity": 45}, "wind": {"speed": 2.7777777777777777}, "clouds": {"all": 20}, "cod": 200},
	  "forecast": {"cod": "200", "list": [
	    {"dt": 1768032000, "main": {"temp": 20, "humidity": 50}, "wind": {"speed": 1}},
	    {"dt": 1768042800, "main": {"temp": 35, "humidity": 40}, "wind": {"speed": 1}}
	  ], "city": {"timezone": 0}},
	  "air": {"list": [{"main": {"aqi": 4}, "components": {"pm2_5": 70, "o3": 130}}]}
	}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/engine/evaluate", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	status, body := doRequest(t, app, req)
	require.Equal(t, fiber.StatusOK, status)

	assert.Equal(t, "2026-01-10", body["date"])
	assert.Equal(t, "rabi", body["season"])

	yourCrop := body["your_crop"].(map[string]interface{})
	assert.Equal(t, 100.0, yourCrop["score"])

	air := body["air_quality"].(map[string]interface{})
	assert.Equal(t, "Poor", air["aqi_label"])

	et0 := body["risks"].(map[string]interface{})["et0"].(map[string]interface{})
	assert.Equal(t, 6.1, et0["value"])
}

func TestPostEvaluateValidation(t *testing.T) {
	app := newTestApp(t, &stubClient{}, &stubPoller{})

	for name, payload := range map[string]string{
		"no telemetry": `{"crop": "wheat"}`,
		"malformed":    `{"current": `,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/engine/evaluate", strings.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			status, _ := doRequest(t, app, req)
			assert.Equal(t, fiber.StatusBadRequest, status)
		})
	}
}

func TestCatalogAndLocations(t *testing.T) {
	app := newTestApp(t, &stubClient{}, &stubPoller{})

	status, body := get(t, app, "/api/v1/crops")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 15.0, body["count"])

	status, body = get(t, app, "/api/v1/locations")
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["locations"], 1)
}

func TestSchedulerRunEndpoint(t *testing.T) {
	app := newTestApp(t, &stubClient{}, &stubPoller{})
	status, _ := doRequest(t, app, httptest.NewRequest(http.MethodPost, "/api/v1/scheduler/run", nil))
	assert.Equal(t, fiber.StatusAccepted, status)

	busy := newTestApp(t, &stubClient{}, &stubPoller{busy: true})
	status, _ = doRequest(t, busy, httptest.NewRequest(http.MethodPost, "/api/v1/scheduler/run", nil))
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t, &stubClient{}, &stubPoller{})

	status, body := get(t, app, "/api/v1/health")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])

	status, body = get(t, app, "/api/v1/metrics")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "metrics")
}
