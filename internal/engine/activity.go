package engine

type Activity string

const (
	Irrigation  Activity = "irrigation"
	Sowing      Activity = "sowing"
	Spraying    Activity = "spraying"
	Harvesting  Activity = "harvesting"
	Fertilizing Activity = "fertilizing"
)

type Status string

const (
	StatusGo      Status = "go"
	StatusCaution Status = "caution"
	StatusAvoid   Status = "avoid"
)

type ActivityAssessment struct {
	Activity Activity `json:"activity"`
	Status   Status   `json:"status"`
	Reason   string   `json:"reason"`
	Tip      string   `json:"tip"`
}

// DayActivities holds the five assessments for one date.
type DayActivities struct {
	Date        string               `json:"date"`
	Assessments []ActivityAssessment `json:"assessments"`
}

// Status returns the verdict for one activity.
func (d DayActivities) Status(a Activity) (Status, bool) {
	for _, as := range d.Assessments {
		if as.Activity == a {
			return as.Status, true
		}
	}
	return "", false
}

type verdict struct {
	status Status
	reason string
	tip    string
}

type dayRule = rung[DayAggregate, verdict]

func dry(d DayAggregate) bool { return d.TotalRain == 0 }

var activityRules = []struct {
	activity  Activity
	rules     ladder[DayAggregate, verdict]
	otherwise verdict
}{
	{
		activity: Irrigation,
		rules: ladder[DayAggregate, verdict]{
			dayRule{func(d DayAggregate) bool { return d.TotalRain > 8 },
				verdict{StatusAvoid, "Heavy rain expected", "Skip irrigation and save water."}},
			dayRule{func(d DayAggregate) bool { return d.TotalRain > 0.5 },
				verdict{StatusCaution, "Light rain expected", "Reduce watering and check soil moisture first."}},
			dayRule{func(d DayAggregate) bool { return d.AvgTemp > 30 && d.AvgHumidity < 50 },
				verdict{StatusGo, "Hot and dry, crops are losing water fast", "Irrigate early morning or evening to cut evaporation."}},
		},
		otherwise: verdict{StatusGo, "No significant rain expected", "Irrigate as per the crop schedule."},
	},
	{
		activity: Sowing,
		rules: ladder[DayAggregate, verdict]{
			dayRule{func(d DayAggregate) bool { return d.TotalRain > 8 },
				verdict{StatusAvoid, "Heavy rain may wash out seed", "Wait for the field to drain before sowing."}},
			dayRule{func(d DayAggregate) bool { return d.MaxWind > 25 },
				verdict{StatusAvoid, "Strong wind will scatter seed", "Postpone broadcasting until the wind drops."}},
			dayRule{func(d DayAggregate) bool { return d.AvgTemp < 10 || d.AvgTemp > 40 },
				verdict{StatusCaution, "Temperature outside the germination range", "Prefer seed treatment and shallow sowing, or wait."}},
			dayRule{func(d DayAggregate) bool { return d.MaxWind < 15 && dry(d) && d.AvgTemp >= 15 && d.AvgTemp <= 35 },
				verdict{StatusGo, "Calm, dry and warm", "Good day to sow; ensure adequate soil moisture."}},
		},
		otherwise: verdict{StatusCaution, "Marginal sowing conditions", "Sow only if soil moisture is adequate."},
	},
	{
		activity: Spraying,
		rules: ladder[DayAggregate, verdict]{
			dayRule{func(d DayAggregate) bool { return !dry(d) },
				verdict{StatusAvoid, "Rain will wash off the spray", "Postpone spraying to a dry day."}},
			dayRule{func(d DayAggregate) bool { return d.MaxWind > 15 },
				verdict{StatusAvoid, "Wind will cause spray drift", "Spray only when wind is below 10 km/h."}},
			dayRule{func(d DayAggregate) bool { return d.AvgHumidity > 80 },
				verdict{StatusCaution, "High humidity slows drying", "Spray mid-morning after dew has cleared."}},
			dayRule{func(d DayAggregate) bool { return d.MaxWind < 10 && d.AvgHumidity < 70 },
				verdict{StatusGo, "Calm and dry", "Spray in the early morning or late evening."}},
		},
		otherwise: verdict{StatusCaution, "Marginal spraying conditions", "Use low-drift nozzles and watch the wind."},
	},
	{
		activity: Harvesting,
		rules: ladder[DayAggregate, verdict]{
			dayRule{func(d DayAggregate) bool { return !dry(d) },
				verdict{StatusAvoid, "Rain will wet the harvested produce", "Delay harvest and cover cut produce."}},
			dayRule{func(d DayAggregate) bool { return d.AvgHumidity > 80 },
				verdict{StatusCaution, "High humidity delays drying", "Harvest after mid-day and dry produce well before storage."}},
			dayRule{func(d DayAggregate) bool { return d.AvgHumidity < 65 && d.AvgClouds < 60 },
				verdict{StatusGo, "Excellent: dry and sunny", "Ideal day to harvest and sun-dry produce."}},
		},
		otherwise: verdict{StatusGo, "Dry day", "Proceed with care; keep tarpaulins handy."},
	},
	{
		activity: Fertilizing,
		rules: ladder[DayAggregate, verdict]{
			dayRule{func(d DayAggregate) bool { return d.TotalRain > 8 },
				verdict{StatusAvoid, "Heavy rain will cause nutrient runoff", "Hold fertilizer until the rain passes."}},
			dayRule{func(d DayAggregate) bool { return d.TotalRain > 1 && d.TotalRain <= 8 },
				verdict{StatusGo, "Light rain will help absorption", "Apply before the expected shower."}},
			dayRule{func(d DayAggregate) bool { return d.MaxWind > 20 },
				verdict{StatusCaution, "Wind will scatter granules", "Apply close to the ground or wait for calmer air."}},
			dayRule{func(d DayAggregate) bool { return d.MaxTemp > 35 && d.AvgHumidity < 50 },
				verdict{StatusCaution, "Hot and dry, risk of leaf burn", "Irrigate after application and avoid foliar feeding."}},
		},
		otherwise: verdict{StatusGo, "Good conditions for fertilizing", "Apply and incorporate into moist soil."},
	},
}

// ClassifyDay assesses every activity for one day, in a fixed order.
func ClassifyDay(day DayAggregate) DayActivities {
	out := DayActivities{
		Date:        day.Date,
		Assessments: make([]ActivityAssessment, 0, len(activityRules)),
	}
	for _, a := range activityRules {
		v := a.rules.pick(day, a.otherwise)
		out.Assessments = append(out.Assessments, ActivityAssessment{
			Activity: a.activity,
			Status:   v.status,
			Reason:   v.reason,
			Tip:      v.tip,
		})
	}
	return out
}

func ClassifyDays(days []DayAggregate) []DayActivities {
	out := make([]DayActivities, 0, len(days))
	for _, d := range days {
		out = append(out, ClassifyDay(d))
	}
	return out
}
