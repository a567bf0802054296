package engine

import (
	"fmt"
	"math"
	"time"

	"agri-advisor/internal/models"
)

const noDataLabel = "No data"

// RiskScore is the output of every risk scorer. Value is clamped to [0,100];
// for evapotranspiration it is the daily estimate in mm.
type RiskScore struct {
	Available bool     `json:"available"`
	Value     float64  `json:"value"`
	Label     string   `json:"label"`
	Level     string   `json:"level"`
	Rationale string   `json:"rationale"`
	Advice    string   `json:"advice,omitempty"`
	Factors   []Factor `json:"factors"`
}

// Factor is one input contributing points to a score.
type Factor struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit,omitempty"`
	Points float64 `json:"points"`
}

// RiskIndices bundles the five scores computed for one snapshot.
type RiskIndices struct {
	Spray   RiskScore `json:"spray"`
	Disease RiskScore `json:"disease"`
	Heat    RiskScore `json:"heat"`
	Frost   RiskScore `json:"frost"`
	ET0     RiskScore `json:"et0"`
}

func noData() RiskScore {
	return RiskScore{Label: noDataLabel, Level: "unavailable", Factors: []Factor{}}
}

func scored(value float64, t tier, rationale string, factors ...Factor) RiskScore {
	return RiskScore{
		Available: true,
		Value:     value,
		Label:     t.label,
		Level:     t.level,
		Rationale: rationale,
		Advice:    t.advice,
		Factors:   factors,
	}
}

// ComputeRisks runs all five scorers against the same inputs.
func ComputeRisks(current *models.WeatherSnapshot, forecast models.ForecastSeries, limits HeatLimits, now time.Time) RiskIndices {
	return RiskIndices{
		Spray:   SpraySafety(current, forecast),
		Disease: DiseasePressure(current),
		Heat:    HeatStress(current, limits),
		Frost:   FrostRisk(current),
		ET0:     Evapotranspiration(forecast, now),
	}
}

// Spray safety.

var (
	sprayWindPoints = ladder[float64, float64]{
		{below(8), 100},
		{below(15), 70},
		{below(25), 30},
	}
	sprayHumidityPoints = ladder[float64, float64]{
		{below(70), 100},
		{below(85), 60},
	}
	sprayTiers = ladder[float64, tier]{
		{atLeast(70), tier{"Safe to Spray", "safe", "Conditions are good for pesticide or foliar application."}},
		{atLeast(40), tier{"Use Caution", "caution", "Spray only with low-drift nozzles and watch the wind."}},
	}
	doNotSpray = tier{"Do Not Spray", "unsafe", "Postpone spraying; drift or wash-off is likely."}
)

// SpraySafety weighs wind, rain in the next ~6h (two forecast entries) and
// humidity into a 0-100 score.
func SpraySafety(current *models.WeatherSnapshot, forecast models.ForecastSeries) RiskScore {
	if current == nil || len(forecast) == 0 {
		return noData()
	}

	windKmh := current.WindKmh()
	windPts := sprayWindPoints.pick(windKmh, 0)

	rainPts := 100.0
	rainText := "no rain expected in next 6h"
	for _, e := range forecast.Head(2) {
		if e.HasRainSignal() {
			rainPts = 0
			rainText = "rain expected in next 6h"
			break
		}
	}

	humPts := sprayHumidityPoints.pick(current.Humidity, 20)

	score := clamp(math.Round(windPts*0.4 + rainPts*0.35 + humPts*0.25))
	return scored(score, sprayTiers.pick(score, doNotSpray),
		fmt.Sprintf("wind %.1f km/h, %s, humidity %.0f%%", windKmh, rainText, current.Humidity),
		Factor{Name: "wind", Value: windKmh, Unit: "km/h", Points: windPts},
		Factor{Name: "rain", Value: rainPts / 100, Points: rainPts},
		Factor{Name: "humidity", Value: current.Humidity, Unit: "%", Points: humPts},
	)
}

// Disease pressure.

var (
	diseaseHumidityPoints = ladder[float64, float64]{
		{above(90), 40},
		{above(80), 30},
		{above(70), 15},
	}
	diseaseTempPoints = ladder[float64, float64]{
		{within(20, 30), 35},
		{within(15, 35), 20},
	}
	diseaseTiers = ladder[float64, tier]{
		{atLeast(70), tier{"High Risk", "high", "Fungal infection likely. Apply preventive fungicide and improve field drainage."}},
		{atLeast(40), tier{"Moderate", "moderate", "Scout leaves for early lesions and avoid overhead irrigation."}},
	}
	diseaseLow = tier{"Low Risk", "low", "Conditions are unfavourable for fungal disease. Continue routine monitoring."}
)

// DiseasePressure estimates fungal disease pressure from humidity,
// temperature and a leaf-wetness proxy derived from the dew-point spread.
func DiseasePressure(current *models.WeatherSnapshot) RiskScore {
	if current == nil {
		return noData()
	}

	dew := current.DewPoint()
	leaf := math.Max(0, 100-(current.Temperature-dew)*10)

	humPts := diseaseHumidityPoints.pick(current.Humidity, 0)
	tempPts := diseaseTempPoints.pick(current.Temperature, 5)
	leafPts := math.RoundToEven(leaf * 0.25)

	score := clamp(humPts + tempPts + leafPts)
	return scored(score, diseaseTiers.pick(score, diseaseLow),
		fmt.Sprintf("dewPoint=%.0f, leafWetness=%.0f", dew, leaf),
		Factor{Name: "humidity", Value: current.Humidity, Unit: "%", Points: humPts},
		Factor{Name: "temperature", Value: current.Temperature, Unit: "°C", Points: tempPts},
		Factor{Name: "leaf_wetness", Value: leaf, Unit: "%", Points: leafPts},
	)
}

// Heat stress.

var (
	heatTiers = ladder[float64, tier]{
		{atLeast(70), tier{"Severe", "severe", "Irrigate in the early morning, mulch, and avoid midday field work."}},
		{atLeast(40), tier{"Moderate", "moderate", "Keep soil moist and watch for wilting in the afternoon."}},
	}
	heatNormal = tier{"Normal", "normal", "Temperature is within the crop's comfortable range."}
)

// HeatStress scores temperature stress against a crop's optimal band and
// stress ceiling. Cold stress below the band is scored on the same scale.
func HeatStress(current *models.WeatherSnapshot, limits HeatLimits) RiskScore {
	if current == nil {
		return noData()
	}

	t := current.Temperature
	lo, hi, ceiling := limits.Optimal.Min, limits.Optimal.Max, limits.Ceiling

	var score float64
	switch {
	case t > ceiling:
		score = math.Min(100, 70+(t-ceiling)*6)
	case t > hi:
		score = math.Round((t - hi) / (ceiling - hi) * 70)
	case t < lo-5:
		score = math.Min(80, (lo-5-t)*8)
	case t < lo:
		score = math.Round((lo - t) / 5 * 25)
	}
	score = clamp(score)

	return scored(score, heatTiers.pick(score, heatNormal),
		fmt.Sprintf("temp %.1f°C vs optimal %.0f-%.0f°C, stress ceiling %.0f°C", t, lo, hi, ceiling),
		Factor{Name: "temperature", Value: t, Unit: "°C", Points: score},
	)
}

// Frost risk.

var (
	frostTempPoints = ladder[float64, float64]{
		{atMost(0), 50},
		{atMost(4), 40},
		{atMost(8), 20},
		{atMost(12), 5},
	}
	frostCloudPoints = ladder[float64, float64]{
		{below(20), 25},
		{below(50), 15},
	}
	frostWindPoints = ladder[float64, float64]{
		{below(5), 15},
		{below(10), 8},
	}
	frostTiers = ladder[float64, tier]{
		{atLeast(60), tier{"High Risk", "high", "Irrigate lightly in the evening and cover nurseries overnight."}},
		{atLeast(30), tier{"Moderate", "moderate", "Watch the overnight minimum and keep covers ready."}},
	}
	frostLow = tier{"Low", "low", "No frost expected."}
)

// FrostRisk adds points for low temperature, clear skies, calm air and a
// sub-zero dew point.
func FrostRisk(current *models.WeatherSnapshot) RiskScore {
	if current == nil {
		return noData()
	}

	windKmh := current.WindKmh()
	dew := current.DewPoint()

	tempPts := frostTempPoints.pick(current.Temperature, 0)
	cloudPts := frostCloudPoints.pick(current.CloudCover, 5)
	windPts := frostWindPoints.pick(windKmh, 0)
	dewPts := 0.0
	if dew < 0 {
		dewPts = 10
	}

	score := clamp(tempPts + cloudPts + windPts + dewPts)
	return scored(score, frostTiers.pick(score, frostLow),
		fmt.Sprintf("temp %.1f°C, clouds %.0f%%, wind %.1f km/h, dewPoint %.1f°C",
			current.Temperature, current.CloudCover, windKmh, dew),
		Factor{Name: "temperature", Value: current.Temperature, Unit: "°C", Points: tempPts},
		Factor{Name: "cloud_cover", Value: current.CloudCover, Unit: "%", Points: cloudPts},
		Factor{Name: "wind", Value: windKmh, Unit: "km/h", Points: windPts},
		Factor{Name: "dew_point", Value: dew, Unit: "°C", Points: dewPts},
	)
}

// Evapotranspiration.

const (
	hargreavesCoefficient = 0.0023
	hargreavesOffset      = 17.8
	// extraterrestrialRadiation is a fixed Ra in mm/day equivalent.
	extraterrestrialRadiation = 15
)

var et0Tiers = ladder[float64, tier]{
	{above(6), tier{"Very High", "very_high", "Crops lose water fast; irrigate daily or use mulch."}},
	{above(4), tier{"High", "high", "Plan irrigation every 2-3 days."}},
	{above(2), tier{"Moderate", "moderate", "Normal irrigation schedule is sufficient."}},
}

var et0Low = tier{"Low", "low", "Water demand is low; irrigate sparingly."}

// Evapotranspiration estimates reference ET0 (mm/day) from today's forecast
// temperature range using a simplified Hargreaves formula.
//
// When fewer than two forecast entries fall on today's date the first four
// entries of the series are used instead. Near midnight those may belong to
// the next day; the fallback is kept as is.
func Evapotranspiration(forecast models.ForecastSeries, now time.Time) RiskScore {
	if len(forecast) == 0 {
		return noData()
	}

	loc := now.Location()
	today := DateKey(now, loc)

	var temps []float64
	for _, e := range forecast {
		if DateKey(e.Timestamp, loc) == today {
			temps = append(temps, e.Temperature)
		}
	}
	if len(temps) < 2 {
		temps = temps[:0]
		for _, e := range forecast.Head(4) {
			temps = append(temps, e.Temperature)
		}
	}

	tMax, tMin := temps[0], temps[0]
	for _, t := range temps[1:] {
		tMax = math.Max(tMax, t)
		tMin = math.Min(tMin, t)
	}
	tMean := (tMax + tMin) / 2

	et0 := hargreavesCoefficient * (tMean + hargreavesOffset) *
		math.Sqrt(math.Max(0.1, tMax-tMin)) * extraterrestrialRadiation
	et0 = clamp(math.Round(et0*10) / 10)

	return scored(et0, et0Tiers.pick(et0, et0Low),
		fmt.Sprintf("tMax=%.1f, tMin=%.1f, tMean=%.1f over %d readings", tMax, tMin, tMean, len(temps)),
		Factor{Name: "t_max", Value: tMax, Unit: "°C"},
		Factor{Name: "t_min", Value: tMin, Unit: "°C"},
	)
}
