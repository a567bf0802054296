package models

import (
	"time"
)

// KmhPerMs converts provider wind speed (m/s) to km/h.
const KmhPerMs = 3.6

// WeatherSnapshot is a single point-in-time weather reading, either the
// current conditions or one forecast entry.
type WeatherSnapshot struct {
	Timestamp     time.Time `json:"timestamp"`
	Temperature   float64   `json:"temperature"`
	FeelsLike     float64   `json:"feels_like"`
	Humidity      float64   `json:"humidity"`
	WindSpeed     float64   `json:"wind_speed"`
	WindDirection float64   `json:"wind_direction"`
	CloudCover    float64   `json:"cloud_cover"`
	Pressure      float64   `json:"pressure"`
	Visibility    float64   `json:"visibility"`
	// Rain3h and Pop are optional upstream; absent values decode as 0.
	Rain3h      float64   `json:"rain_3h"`
	Pop         float64   `json:"pop"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Sunrise     time.Time `json:"sunrise,omitempty"`
	Sunset      time.Time `json:"sunset,omitempty"`
}

func (s WeatherSnapshot) WindKmh() float64 {
	return s.WindSpeed * KmhPerMs
}

// HasRainSignal reports whether the entry carries a meaningful chance of
// rain or measured rain.
func (s WeatherSnapshot) HasRainSignal() bool {
	return s.Pop > 0.3 || s.Rain3h > 0
}

// DewPoint is the simple humidity-based approximation used by all scorers.
func (s WeatherSnapshot) DewPoint() float64 {
	return s.Temperature - (100-s.Humidity)/5
}

// ForecastSeries is a chronological 3-hour forecast.
type ForecastSeries []WeatherSnapshot

// Head returns at most the first n entries.
func (f ForecastSeries) Head(n int) ForecastSeries {
	if n > len(f) {
		n = len(f)
	}
	if n < 0 {
		n = 0
	}
	return f[:n]
}

type AirQualitySample struct {
	Timestamp time.Time `json:"timestamp"`
	PM25      float64   `json:"pm2_5"`
	PM10      float64   `json:"pm10"`
	O3        float64   `json:"o3"`
	AQI       int       `json:"aqi"`
}

// Location is a farm site the service polls telemetry for.
type Location struct {
	Name string  `json:"name" validate:"required"`
	Lat  float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon  float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// Telemetry is everything fetched for one location in one poll.
type Telemetry struct {
	ID       string            `json:"id"`
	Location Location          `json:"location"`
	Current  *WeatherSnapshot  `json:"current"`
	Forecast ForecastSeries    `json:"forecast"`
	Air      *AirQualitySample `json:"air,omitempty"`
	// Zone is the farm's local time zone as reported by the provider.
	Zone      *time.Location `json:"-"`
	FetchedAt time.Time      `json:"fetched_at"`
	Source    string         `json:"source"`
}

// LocalZone returns the telemetry zone, defaulting to UTC.
func (t *Telemetry) LocalZone() *time.Location {
	if t == nil || t.Zone == nil {
		return time.UTC
	}
	return t.Zone
}
