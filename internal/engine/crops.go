package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"agri-advisor/internal/models"
)

type Season string

const (
	Kharif Season = "kharif"
	Rabi   Season = "rabi"
	Zaid   Season = "zaid"
)

// seasonCycle orders the cropping seasons for the adjacency rule.
var seasonCycle = []Season{Kharif, Zaid, Rabi}

func (s Season) index() int {
	for i, c := range seasonCycle {
		if c == s {
			return i
		}
	}
	return -1
}

// SeasonFor returns the cropping season of a date: kharif June-October,
// rabi November-March, zaid April-May.
func SeasonFor(t time.Time) Season {
	switch m := t.Month(); {
	case m >= time.June && m <= time.October:
		return Kharif
	case m >= time.November || m <= time.March:
		return Rabi
	default:
		return Zaid
	}
}

// RecommendThreshold splits recommended crops from the rest.
const RecommendThreshold = 60

// Defaults used when no current snapshot is available.
const (
	assumedTemperature = 26
	assumedHumidity    = 60
	assumedCloudCover  = 30
)

// CropConditions are the current-weather inputs to the suitability rubric.
type CropConditions struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	WindKmh     float64 `json:"wind_kmh"`
	CloudCover  float64 `json:"cloud_cover"`
	Season      Season  `json:"season"`
	// Assumed is set when the values are defaults rather than observations.
	Assumed bool `json:"assumed"`
}

// ConditionsFrom builds rubric inputs from a snapshot. A nil snapshot yields
// mild seasonal defaults flagged as assumed.
func ConditionsFrom(current *models.WeatherSnapshot, season Season) CropConditions {
	if current == nil {
		return CropConditions{
			Temperature: assumedTemperature,
			Humidity:    assumedHumidity,
			CloudCover:  assumedCloudCover,
			Season:      season,
			Assumed:     true,
		}
	}
	return CropConditions{
		Temperature: current.Temperature,
		Humidity:    current.Humidity,
		WindKmh:     current.WindKmh(),
		CloudCover:  current.CloudCover,
		Season:      season,
	}
}

type SuitabilityFactor struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Detail    string  `json:"detail"`
	Favorable bool    `json:"favorable"`
	Points    float64 `json:"points"`
	MaxPoints float64 `json:"max_points"`
}

type CropSuitability struct {
	Crop    CropProfile         `json:"crop"`
	Score   float64             `json:"score"`
	Fit     string              `json:"fit"`
	Factors []SuitabilityFactor `json:"factors"`
}

type CropRanking struct {
	Conditions  CropConditions    `json:"conditions"`
	Ranked      []CropSuitability `json:"ranked"`
	Recommended []CropSuitability `json:"recommended"`
	NotIdeal    []CropSuitability `json:"not_ideal"`
}

var (
	cropWindPoints = ladder[float64, float64]{
		{below(15), 10},
		{below(25), 5},
	}
	fitLadder = ladder[float64, string]{
		{atLeast(70), "Great fit"},
		{atLeast(40), "Monitor"},
	}
)

// ScoreCrop rates one crop against current conditions on a 100-point
// rubric: temperature 30, humidity 20, season 30, wind 10, sunlight 10.
func ScoreCrop(crop CropProfile, cond CropConditions) CropSuitability {
	factors := []SuitabilityFactor{
		temperatureFactor(crop.Temperature, cond.Temperature),
		humidityFactor(crop.Humidity, cond.Humidity),
		seasonFactor(crop.Season, cond.Season),
		windFactor(cond.WindKmh),
		sunlightFactor(crop.WaterNeed, cond.CloudCover),
	}

	var total float64
	for _, f := range factors {
		total += f.Points
	}
	total = clamp(total)

	return CropSuitability{
		Crop:    crop,
		Score:   total,
		Fit:     fitLadder.pick(total, "Risky"),
		Factors: factors,
	}
}

// RankCrops scores every crop and sorts by score, keeping catalog order
// among equal scores.
func RankCrops(crops []CropProfile, cond CropConditions) CropRanking {
	ranked := make([]CropSuitability, 0, len(crops))
	for _, c := range crops {
		ranked = append(ranked, ScoreCrop(c, cond))
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	r := CropRanking{
		Conditions:  cond,
		Ranked:      ranked,
		Recommended: []CropSuitability{},
		NotIdeal:    []CropSuitability{},
	}
	for _, s := range ranked {
		if s.Score >= RecommendThreshold {
			r.Recommended = append(r.Recommended, s)
		} else {
			r.NotIdeal = append(r.NotIdeal, s)
		}
	}
	return r
}

func temperatureFactor(opt Range, t float64) SuitabilityFactor {
	f := SuitabilityFactor{Name: "temperature", Value: t, MaxPoints: 30}
	if opt.Contains(t) {
		norm := 0.0
		if half := (opt.Max - opt.Min) / 2; half > 0 {
			norm = math.Abs(t-opt.Mid()) / half
		}
		f.Points = 20 + math.Round(10*(1-norm))
		f.Favorable = true
		f.Detail = fmt.Sprintf("%.1f°C within optimal %.0f-%.0f°C", t, opt.Min, opt.Max)
		return f
	}
	dist := opt.distance(t)
	f.Points = math.Max(0, math.Round(15-2*dist))
	f.Detail = fmt.Sprintf("%.1f°C is %.1f°C outside optimal %.0f-%.0f°C", t, dist, opt.Min, opt.Max)
	return f
}

func humidityFactor(opt Range, h float64) SuitabilityFactor {
	f := SuitabilityFactor{Name: "humidity", Value: h, MaxPoints: 20}
	if opt.Contains(h) {
		f.Points = 20
		f.Favorable = true
		f.Detail = fmt.Sprintf("%.0f%% within optimal %.0f-%.0f%%", h, opt.Min, opt.Max)
		return f
	}
	dist := opt.distance(h)
	f.Points = math.Max(0, math.Round(12-0.5*dist))
	f.Detail = fmt.Sprintf("%.0f%% is %.0f points outside optimal %.0f-%.0f%%", h, dist, opt.Min, opt.Max)
	return f
}

func seasonFactor(crop, current Season) SuitabilityFactor {
	f := SuitabilityFactor{Name: "season", MaxPoints: 30}
	ci, cur := crop.index(), current.index()
	switch {
	case crop == current:
		f.Points = 30
		f.Favorable = true
		f.Detail = fmt.Sprintf("%s crop in %s season", crop, current)
	case ci >= 0 && cur >= 0:
		f.Points = 8
		f.Detail = fmt.Sprintf("%s crop, adjacent to current %s season", crop, current)
	default:
		f.Points = 3
		f.Detail = fmt.Sprintf("%s crop outside the seasonal cycle", crop)
	}
	return f
}

func windFactor(kmh float64) SuitabilityFactor {
	pts := cropWindPoints.pick(kmh, 0)
	return SuitabilityFactor{
		Name:      "wind",
		Value:     kmh,
		Detail:    fmt.Sprintf("wind %.1f km/h", kmh),
		Favorable: pts == 10,
		Points:    pts,
		MaxPoints: 10,
	}
}

// sunlightFactor favours cloud cover for thirsty crops and clear skies for
// the rest.
func sunlightFactor(waterNeed string, clouds float64) SuitabilityFactor {
	f := SuitabilityFactor{Name: "sunlight", Value: clouds, MaxPoints: 10}
	if waterNeed == "High" {
		f.Points = 6
		if clouds > 30 {
			f.Points = 10
		}
		f.Detail = fmt.Sprintf("%.0f%% cloud cover, high water-need crop prefers shade", clouds)
	} else {
		f.Points = 5
		if clouds < 50 {
			f.Points = 10
		}
		f.Detail = fmt.Sprintf("%.0f%% cloud cover, crop prefers sun", clouds)
	}
	f.Favorable = f.Points == 10
	return f
}
