package engine

import (
	"testing"
	"time"

	"agri-advisor/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2026, time.January, 10, 7, 0, 0, 0, ist)
	forecast := series(now.Add(-time.Hour).UTC(), 40, 22)
	forecast[10].Rain3h = 12

	report := Evaluate(Input{
		Current:  snapshot(20, 45, 10, 20),
		Forecast: forecast,
		Air:      &models.AirQualitySample{AQI: 2, PM25: 12, O3: 60},
		Zone:     ist,
		Crop:     "wheat",
		Now:      now,
	}, DefaultCatalog())

	assert.Equal(t, "2026-01-10", report.Date)
	assert.Equal(t, Rabi, report.Season)
	assert.Equal(t, ist, report.GeneratedAt.Location())

	assert.True(t, report.Risks.Spray.Available)
	assert.True(t, report.Risks.ET0.Available)
	assert.Len(t, report.GoldenHours, GoldenHourSlots)
	require.NotNil(t, report.Air)
	assert.Equal(t, "Fair", report.Air.AQILabel)

	require.Len(t, report.Outlook, OutlookDays)
	require.Len(t, report.Activities, len(report.Outlook))
	require.Len(t, report.Calendar, len(report.Outlook))
	for i, d := range report.Outlook {
		assert.Equal(t, d.Day.Date, report.Activities[i].Date)
		assert.Len(t, report.Activities[i].Assessments, 5)
	}
	assert.True(t, report.Calendar[0].Today)

	require.NotNil(t, report.YourCrop)
	assert.Equal(t, "Wheat", report.YourCrop.Crop.Name)
	assert.Equal(t, 100.0, report.YourCrop.Score)

	var rainAlerts int
	for _, a := range report.Alerts {
		if a.Kind == AlertRain {
			rainAlerts++
		}
	}
	assert.Equal(t, 1, rainAlerts)
}

func TestEvaluateWithoutTelemetry(t *testing.T) {
	report := Evaluate(Input{Crop: "quinoa", Now: day0}, DefaultCatalog())

	for _, s := range []RiskScore{report.Risks.Spray, report.Risks.Disease, report.Risks.Heat, report.Risks.Frost, report.Risks.ET0} {
		assert.False(t, s.Available)
		assert.Equal(t, "No data", s.Label)
	}
	assert.Nil(t, report.Air)
	assert.Nil(t, report.YourCrop)
	assert.Empty(t, report.GoldenHours)
	assert.Empty(t, report.Outlook)
	assert.True(t, report.Crops.Conditions.Assumed)
	assert.Len(t, report.Crops.Ranked, 15)
	assert.Equal(t, time.UTC, report.GeneratedAt.Location())
}

func TestEvaluateIsRepeatable(t *testing.T) {
	in := Input{
		Current:  snapshot(31, 82, 6, 40),
		Forecast: series(day0, 24, 29, withHum(85)),
		Crop:     "Rice",
		Now:      day0.Add(2 * time.Hour),
	}
	assert.Equal(t, Evaluate(in, DefaultCatalog()), Evaluate(in, DefaultCatalog()))
}
