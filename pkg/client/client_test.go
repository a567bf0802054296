package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"agri-advisor/internal/models"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var anand = models.Location{Name: "Anand", Lat: 22.5645, Lon: 72.9289}

func testConfig() ClientConfig {
	return ClientConfig{
		Timeout:    time.Second,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
		Multiplier: 1,
	}
}

func TestOpenWeatherClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "secret", q.Get("appid"))
		assert.Equal(t, "22.5645", q.Get("lat"))
		assert.Equal(t, "72.9289", q.Get("lon"))

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/weather":
			assert.Equal(t, "metric", q.Get("units"))
			w.Write([]byte(`{"weather":[{"description":"clear sky","icon":"01d"}],"main":{"temp":21,"humidity":40},"wind":{"speed":2},"clouds":{"all":5},"dt":1767600000,"timezone":19800,"cod":200}`))
		case "/forecast":
			w.Write([]byte(`{"cod":"200","list":[{"dt":1767603600,"main":{"temp":22,"humidity":45},"pop":0.1},{"dt":1767614400,"main":{"temp":26,"humidity":40}}],"city":{"timezone":19800}}`))
		case "/air_pollution":
			assert.Empty(t, q.Get("units"))
			w.Write([]byte(`{"list":[{"dt":1767600000,"main":{"aqi":2},"components":{"pm2_5":12,"pm10":20,"o3":60}}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewOpenWeatherClient("secret", srv.URL, testConfig(), zap.NewNop())
	ctx := context.Background()

	current, zone, err := c.GetCurrent(ctx, anand)
	require.NoError(t, err)
	assert.Equal(t, 21.0, current.Temperature)
	assert.Equal(t, "01d", current.Icon)
	_, offset := time.Unix(0, 0).In(zone).Zone()
	assert.Equal(t, 19800, offset)

	forecast, _, err := c.GetForecast(ctx, anand)
	require.NoError(t, err)
	require.Len(t, forecast, 2)
	assert.Equal(t, 26.0, forecast[1].Temperature)

	air, err := c.GetAirQuality(ctx, anand)
	require.NoError(t, err)
	require.NotNil(t, air)
	assert.Equal(t, 2, air.AQI)

	assert.Equal(t, "openweathermap", c.Name())
	assert.Equal(t, "closed", c.BreakerState())
}

func TestOpenWeatherAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"cod":"404","message":"city not found","list":[]}`))
	}))
	defer srv.Close()

	c := NewOpenWeatherClient("secret", srv.URL, testConfig(), zap.NewNop())
	_, _, err := c.GetForecast(context.Background(), anand)
	assert.ErrorContains(t, err, "API error: 404")
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewBaseClient("test", testConfig(), zap.NewNop())
	_, err := c.GetWithRetry(context.Background(), srv.URL)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrClientStatus))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewBaseClient("test", testConfig(), zap.NewNop())
	_, err := c.GetWithRetry(context.Background(), srv.URL)

	require.Error(t, err)
	assert.ErrorContains(t, err, "max retries exceeded")
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewBaseClient("test", testConfig(), zap.NewNop())
	body, err := c.GetWithRetry(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "{}", string(body))
	assert.Equal(t, int32(2), calls.Load())
}

func TestCircuitBreakerOpens(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxRetries = 0
	cfg.Threshold = 3
	cfg.BreakerTimeout = time.Minute
	c := NewBaseClient("test", cfg, zap.NewNop())

	for i := 0; i < 3; i++ {
		_, err := c.GetWithRetry(context.Background(), srv.URL)
		require.Error(t, err)
	}
	assert.Equal(t, "open", c.BreakerState())

	_, err := c.GetWithRetry(context.Background(), srv.URL)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRedact(t *testing.T) {
	assert.Equal(t,
		"https://api.example.com/weather?appid=REDACTED&lat=1",
		redact("https://api.example.com/weather?appid=secret&lat=1"))
	assert.Equal(t, "https://api.example.com/forecast?latitude=1", redact("https://api.example.com/forecast?latitude=1"))
}
