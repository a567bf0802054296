package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const currentPayload = `{
  "coord": {"lon": 72.93, "lat": 22.56},
  "weather": [{"id": 500, "main": "Rain", "description": "light rain", "icon": "10d"}],
  "main": {"temp": 27.4, "feels_like": 29.1, "pressure": 1008, "humidity": 78},
  "visibility": 8000,
  "wind": {"speed": 3.5, "deg": 240},
  "clouds": {"all": 75},
  "rain": {"3h": 1.2},
  "dt": 1767600000,
  "sys": {"sunrise": 1767575000, "sunset": 1767615000},
  "timezone": 19800,
  "name": "Anand",
  "cod": 200
}`

const forecastPayload = `{
  "cod": "200",
  "cnt": 2,
  "list": [
    {"dt": 1767603600, "main": {"temp": 26, "humidity": 70}, "weather": [{"description": "overcast clouds", "icon": "04d"}],
     "clouds": {"all": 90}, "wind": {"speed": 2}, "pop": 0.45},
    {"dt_txt": "2026-01-05 12:00:00", "main": {"temp": 29, "humidity": 60}, "weather": [], "rain": {"3h": 0.6}}
  ],
  "city": {"name": "Anand", "timezone": 19800}
}`

func TestCurrentSnapshot(t *testing.T) {
	var resp OpenWeatherCurrentResponse
	require.NoError(t, json.Unmarshal([]byte(currentPayload), &resp))

	s := resp.Snapshot()
	require.NotNil(t, s)
	assert.Equal(t, 27.4, s.Temperature)
	assert.Equal(t, 78.0, s.Humidity)
	assert.Equal(t, 75.0, s.CloudCover)
	assert.Equal(t, 1.2, s.Rain3h)
	assert.Equal(t, 0.0, s.Pop)
	assert.Equal(t, "10d", s.Icon)
	assert.Equal(t, "light rain", s.Description)
	assert.InDelta(t, 12.6, s.WindKmh(), 1e-9)
	assert.True(t, s.HasRainSignal())
	assert.Equal(t, time.Unix(1767600000, 0).UTC(), s.Timestamp)

	_, offset := time.Unix(0, 0).In(resp.Zone()).Zone()
	assert.Equal(t, 19800, offset)

	var nilResp *OpenWeatherCurrentResponse
	assert.Nil(t, nilResp.Snapshot())
	assert.Equal(t, time.UTC, nilResp.Zone())
}

func TestForecastSeries(t *testing.T) {
	var resp OpenWeatherForecastResponse
	require.NoError(t, json.Unmarshal([]byte(forecastPayload), &resp))

	series := resp.Series()
	require.Len(t, series, 2)

	assert.Equal(t, 0.45, series[0].Pop)
	assert.Equal(t, 0.0, series[0].Rain3h)
	assert.Equal(t, "04d", series[0].Icon)

	assert.Equal(t, time.Date(2026, time.January, 5, 12, 0, 0, 0, time.UTC), series[1].Timestamp)
	assert.Equal(t, 0.6, series[1].Rain3h)
	assert.Empty(t, series[1].Icon)

	assert.Len(t, series.Head(1), 1)
	assert.Len(t, series.Head(10), 2)
	assert.Empty(t, series.Head(-1))
}

func TestAirSample(t *testing.T) {
	var resp OpenWeatherAirResponse
	require.NoError(t, json.Unmarshal([]byte(`{"list":[{"dt":1767600000,"main":{"aqi":3},"components":{"pm2_5":41.5,"pm10":80,"o3":95}}]}`), &resp))

	s := resp.Sample()
	require.NotNil(t, s)
	assert.Equal(t, 3, s.AQI)
	assert.Equal(t, 41.5, s.PM25)
	assert.Equal(t, 95.0, s.O3)

	var empty OpenWeatherAirResponse
	require.NoError(t, json.Unmarshal([]byte(`{"list":[]}`), &empty))
	assert.Nil(t, empty.Sample())
}

func TestDewPoint(t *testing.T) {
	s := WeatherSnapshot{Temperature: 25, Humidity: 95}
	assert.Equal(t, 24.0, s.DewPoint())
}

func TestTelemetryLocalZone(t *testing.T) {
	var nilTelemetry *Telemetry
	assert.Equal(t, time.UTC, nilTelemetry.LocalZone())

	zone := time.FixedZone("", 3600)
	assert.Equal(t, zone, (&Telemetry{Zone: zone}).LocalZone())
}
