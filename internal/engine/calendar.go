package engine

const (
	RiskNone     = "none"
	RiskModerate = "moderate"
	RiskSevere   = "severe"
)

type CalendarMarker struct {
	Date                  string `json:"date"`
	AvoidCount            int    `json:"avoid_count"`
	Risk                  string `json:"risk"`
	IrrigationRecommended bool   `json:"irrigation_recommended"`
	Today                 bool   `json:"today"`
}

var calendarRisk = ladder[float64, string]{
	{atLeast(3), RiskSevere},
	{atLeast(1), RiskModerate},
}

// AnnotateCalendar reduces per-day activity verdicts to month-grid markers.
// today is the date key of the current local day.
func AnnotateCalendar(days []DayActivities, today string) []CalendarMarker {
	markers := make([]CalendarMarker, 0, len(days))
	for _, d := range days {
		avoid := 0
		for _, a := range d.Assessments {
			if a.Status == StatusAvoid {
				avoid++
			}
		}
		irrigation, _ := d.Status(Irrigation)
		markers = append(markers, CalendarMarker{
			Date:                  d.Date,
			AvoidCount:            avoid,
			Risk:                  calendarRisk.pick(float64(avoid), RiskNone),
			IrrigationRecommended: avoid == 0 && irrigation == StatusGo,
			Today:                 d.Date == today,
		})
	}
	return markers
}
