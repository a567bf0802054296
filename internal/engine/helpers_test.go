package engine

import (
	"time"

	"agri-advisor/internal/models"
)

var day0 = time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)

// kmh converts a km/h figure to the m/s the snapshots carry.
func kmh(v float64) float64 { return v / models.KmhPerMs }

func snapshot(temp, humidity, windKmh, clouds float64) *models.WeatherSnapshot {
	return &models.WeatherSnapshot{
		Timestamp:   day0.Add(6 * time.Hour),
		Temperature: temp,
		Humidity:    humidity,
		WindSpeed:   kmh(windKmh),
		CloudCover:  clouds,
	}
}

type entryOpt func(*models.WeatherSnapshot)

func withRain(mm float64) entryOpt  { return func(s *models.WeatherSnapshot) { s.Rain3h = mm } }
func withPop(p float64) entryOpt    { return func(s *models.WeatherSnapshot) { s.Pop = p } }
func withWind(v float64) entryOpt   { return func(s *models.WeatherSnapshot) { s.WindSpeed = kmh(v) } }
func withHum(h float64) entryOpt    { return func(s *models.WeatherSnapshot) { s.Humidity = h } }
func withClouds(c float64) entryOpt { return func(s *models.WeatherSnapshot) { s.CloudCover = c } }
func withIcon(icon string) entryOpt { return func(s *models.WeatherSnapshot) { s.Icon = icon } }

func entry(at time.Time, temp float64, opts ...entryOpt) models.WeatherSnapshot {
	s := models.WeatherSnapshot{
		Timestamp:   at,
		Temperature: temp,
		Humidity:    50,
		WindSpeed:   kmh(5),
		CloudCover:  20,
		Icon:        "01d",
		Description: "clear sky",
	}
	for _, o := range opts {
		o(&s)
	}
	return s
}

// series builds n entries three hours apart starting at start, all with the
// same temperature and options.
func series(start time.Time, n int, temp float64, opts ...entryOpt) models.ForecastSeries {
	out := make(models.ForecastSeries, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, entry(start.Add(time.Duration(3*i)*time.Hour), temp, opts...))
	}
	return out
}
