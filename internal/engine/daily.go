package engine

import (
	"math"
	"time"

	"agri-advisor/internal/models"
)

// OutlookDays caps the multi-day advisory.
const OutlookDays = 5

const (
	AdvisoryDanger  = "danger"
	AdvisoryWarning = "warning"
	AdvisoryGood    = "good"
	AdvisoryInfo    = "info"
)

// DayAggregate rolls up every forecast entry that falls on one local date.
type DayAggregate struct {
	Date        string  `json:"date"`
	Entries     int     `json:"entries"`
	AvgTemp     float64 `json:"avg_temp"`
	MinTemp     float64 `json:"min_temp"`
	MaxTemp     float64 `json:"max_temp"`
	AvgHumidity float64 `json:"avg_humidity"`
	MaxWind     float64 `json:"max_wind_kmh"`
	TotalRain   float64 `json:"total_rain"`
	MaxPop      float64 `json:"max_pop"`
	AvgClouds   float64 `json:"avg_clouds"`
	Icon        string  `json:"icon"`
	Description string  `json:"description"`
}

type DayAdvisory struct {
	Day     DayAggregate `json:"day"`
	Level   string       `json:"level"`
	Message string       `json:"message"`
}

// DateKey formats t as YYYY-MM-DD in loc.
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02")
}

// GroupDays buckets forecast entries by local calendar date. Days appear in
// the order their first entry appears; each entry lands in exactly one day.
func GroupDays(forecast models.ForecastSeries, loc *time.Location) []DayAggregate {
	var order []string
	buckets := make(map[string][]models.WeatherSnapshot)
	for _, e := range forecast {
		key := DateKey(e.Timestamp, loc)
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], e)
	}

	days := make([]DayAggregate, 0, len(order))
	for _, key := range order {
		days = append(days, aggregateDay(key, buckets[key]))
	}
	return days
}

func aggregateDay(date string, entries []models.WeatherSnapshot) DayAggregate {
	day := DayAggregate{
		Date:    date,
		Entries: len(entries),
		MinTemp: math.Inf(1),
		MaxTemp: math.Inf(-1),
	}

	var totalTemp, totalHumidity, totalClouds float64
	icons := make([]string, 0, len(entries))
	descriptions := make([]string, 0, len(entries))
	for _, e := range entries {
		totalTemp += e.Temperature
		totalHumidity += e.Humidity
		totalClouds += e.CloudCover
		day.MinTemp = math.Min(day.MinTemp, e.Temperature)
		day.MaxTemp = math.Max(day.MaxTemp, e.Temperature)
		day.MaxWind = math.Max(day.MaxWind, e.WindKmh())
		day.MaxPop = math.Max(day.MaxPop, e.Pop)
		day.TotalRain += e.Rain3h
		icons = append(icons, e.Icon)
		descriptions = append(descriptions, e.Description)
	}

	n := float64(len(entries))
	day.AvgTemp = totalTemp / n
	day.AvgHumidity = totalHumidity / n
	day.AvgClouds = totalClouds / n
	day.Icon = mostCommonString(icons)
	day.Description = mostCommonString(descriptions)
	return day
}

var dayAdvisoryLadder = ladder[DayAggregate, DayAdvisory]{
	{func(d DayAggregate) bool { return d.TotalRain > 10 },
		DayAdvisory{Level: AdvisoryDanger, Message: "Heavy rain expected. Secure stored grain and do not apply pesticide."}},
	{func(d DayAggregate) bool { return d.TotalRain > 2 },
		DayAdvisory{Level: AdvisoryWarning, Message: "Rain likely. Avoid pesticide application."}},
	{func(d DayAggregate) bool { return d.MaxWind > 20 },
		DayAdvisory{Level: AdvisoryWarning, Message: "Windy day, not suitable for spraying or transplanting."}},
	{func(d DayAggregate) bool { return d.MaxTemp > 40 },
		DayAdvisory{Level: AdvisoryDanger, Message: "Extreme heat. Irrigate early and avoid midday fieldwork."}},
	{func(d DayAggregate) bool { return d.MaxWind < 12 && d.TotalRain < 1 && d.MaxTemp < 36 },
		DayAdvisory{Level: AdvisoryGood, Message: "Excellent conditions for spraying and harvesting."}},
}

var dayModerate = DayAdvisory{Level: AdvisoryInfo, Message: "Moderate conditions, suitable for most activities."}

// DailyOutlook groups the forecast and assigns one advisory per day for the
// first OutlookDays days.
func DailyOutlook(forecast models.ForecastSeries, loc *time.Location) []DayAdvisory {
	days := GroupDays(forecast, loc)
	if len(days) > OutlookDays {
		days = days[:OutlookDays]
	}
	out := make([]DayAdvisory, 0, len(days))
	for _, d := range days {
		adv := dayAdvisoryLadder.pick(d, dayModerate)
		adv.Day = d
		out = append(out, adv)
	}
	return out
}

// mostCommonString returns the modal value, preferring the earliest on ties.
func mostCommonString(strs []string) string {
	counts := make(map[string]int, len(strs))
	for _, s := range strs {
		counts[s]++
	}

	var mostCommon string
	maxCount := 0
	for _, s := range strs {
		if counts[s] > maxCount {
			mostCommon = s
			maxCount = counts[s]
		}
	}
	return mostCommon
}
