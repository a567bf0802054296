package engine

import (
	"time"

	"agri-advisor/internal/models"
)

// Input is one telemetry bundle plus the farmer's context.
type Input struct {
	Current  *models.WeatherSnapshot
	Forecast models.ForecastSeries
	Air      *models.AirQualitySample
	// Zone is the farm's local time zone; nil means UTC.
	Zone *time.Location
	Crop string
	// Now is the evaluation instant; zero means the wall clock.
	Now time.Time
}

type Report struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Date        string            `json:"date"`
	Season      Season            `json:"season"`
	Crop        string            `json:"crop,omitempty"`
	Risks       RiskIndices       `json:"risks"`
	GoldenHours []GoldenHourSlot  `json:"golden_hours"`
	BestWindow  []GoldenHourSlot  `json:"best_window"`
	Air         *AirQualityImpact `json:"air_quality"`
	Outlook     []DayAdvisory     `json:"outlook"`
	Crops       CropRanking       `json:"crops"`
	YourCrop    *CropSuitability  `json:"your_crop,omitempty"`
	Activities  []DayActivities   `json:"activities"`
	Calendar    []CalendarMarker  `json:"calendar"`
	Alerts      []FieldAlert      `json:"alerts"`
}

// Evaluate runs every component over one bundle. The current date is read
// once, so all parts of the report agree on "today".
func Evaluate(in Input, catalog *Catalog) Report {
	zone := in.Zone
	if zone == nil {
		zone = time.UTC
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.In(zone)

	season := SeasonFor(now)
	today := DateKey(now, zone)

	outlook := DailyOutlook(in.Forecast, zone)
	days := make([]DayAggregate, 0, len(outlook))
	for _, o := range outlook {
		days = append(days, o.Day)
	}
	activities := ClassifyDays(days)
	golden := GoldenHours(in.Forecast)
	ranking := RankCrops(catalog.Crops(), ConditionsFrom(in.Current, season))

	report := Report{
		GeneratedAt: now,
		Date:        today,
		Season:      season,
		Crop:        in.Crop,
		Risks:       ComputeRisks(in.Current, in.Forecast, catalog.HeatLimits(in.Crop), now),
		GoldenHours: golden,
		BestWindow:  BestWindow(golden),
		Air:         AssessAirQuality(in.Air),
		Outlook:     outlook,
		Crops:       ranking,
		Activities:  activities,
		Calendar:    AnnotateCalendar(activities, today),
		Alerts:      FieldAlerts(in.Current, in.Forecast, days),
	}

	if crop, ok := catalog.Lookup(in.Crop); ok {
		for i := range ranking.Ranked {
			if ranking.Ranked[i].Crop.Name == crop.Name {
				report.YourCrop = &ranking.Ranked[i]
				break
			}
		}
	}
	return report
}
