package engine

import "agri-advisor/internal/models"

type AirQualityImpact struct {
	AQI            int     `json:"aqi"`
	AQILabel       string  `json:"aqi_label"`
	AQILevel       string  `json:"aqi_level"`
	PM25           float64 `json:"pm2_5"`
	PM10           float64 `json:"pm10"`
	O3             float64 `json:"o3"`
	Photosynthesis string  `json:"photosynthesis_impact"`
	OzoneRisk      string  `json:"ozone_risk"`
	Advice         string  `json:"advice"`
}

var aqiCategories = [...]struct{ label, level string }{
	{"Good", "good"},
	{"Fair", "fair"},
	{"Moderate", "moderate"},
	{"Poor", "poor"},
	{"Very Poor", "very_poor"},
}

var (
	photosynthesisLadder = ladder[float64, tier]{
		{above(100), tier{"Severe", "severe", "Dust on leaves is blocking light; wash foliage where practical."}},
		{above(50), tier{"Moderate", "moderate", "Reduced light reaching leaves; expect slower growth."}},
		{above(25), tier{"Mild", "mild", "Slight reduction in photosynthesis."}},
	}
	photosynthesisMinimal = tier{"Minimal", "minimal", "Air quality is not limiting crop growth."}

	ozoneLadder = ladder[float64, string]{
		{above(120), "High"},
		{above(80), "Moderate"},
	}
)

// AssessAirQuality maps the latest pollutant sample to crop impact tiers.
// A nil sample yields nil: absence means unavailable, not a clean reading.
func AssessAirQuality(sample *models.AirQualitySample) *AirQualityImpact {
	if sample == nil {
		return nil
	}

	label, level := "Unknown", "unknown"
	if sample.AQI >= 1 && sample.AQI <= len(aqiCategories) {
		c := aqiCategories[sample.AQI-1]
		label, level = c.label, c.level
	}

	photo := photosynthesisLadder.pick(sample.PM25, photosynthesisMinimal)
	return &AirQualityImpact{
		AQI:            sample.AQI,
		AQILabel:       label,
		AQILevel:       level,
		PM25:           sample.PM25,
		PM10:           sample.PM10,
		O3:             sample.O3,
		Photosynthesis: photo.label,
		OzoneRisk:      ozoneLadder.pick(sample.O3, "Low"),
		Advice:         photo.advice,
	}
}
