package engine

import (
	"math"
	"time"

	"agri-advisor/internal/models"
)

// GoldenHourSlots is how many forecast entries (~24h at 3h cadence) the
// planner looks at.
const GoldenHourSlots = 8

const (
	SlotGood    = "good"
	SlotCaution = "caution"
	SlotBad     = "bad"
)

type GoldenHourSlot struct {
	Time        time.Time `json:"time"`
	Temperature int       `json:"temperature"`
	WindKmh     int       `json:"wind_kmh"`
	Humidity    float64   `json:"humidity"`
	PopPct      int       `json:"pop_pct"`
	Verdict     string    `json:"verdict"`
	Reason      string    `json:"reason"`
}

type slotConditions struct {
	windKmh  float64
	rain     bool
	temp     float64
	humidity float64
}

type slotVerdict struct {
	verdict string
	reason  string
}

var goldenHourLadder = ladder[slotConditions, slotVerdict]{
	{func(c slotConditions) bool { return c.rain }, slotVerdict{SlotBad, "Rain expected"}},
	{func(c slotConditions) bool { return c.windKmh > 20 }, slotVerdict{SlotCaution, "Strong wind"}},
	{func(c slotConditions) bool { return c.temp > 38 }, slotVerdict{SlotBad, "Extreme heat"}},
	{func(c slotConditions) bool { return c.windKmh < 10 && c.humidity < 80 }, slotVerdict{SlotGood, "Calm and dry"}},
	{func(c slotConditions) bool { return c.temp >= 18 && c.temp <= 33 }, slotVerdict{SlotGood, "Comfortable temperature"}},
	{func(c slotConditions) bool { return c.temp < 8 }, slotVerdict{SlotCaution, "Too cold"}},
}

var slotMarginal = slotVerdict{SlotCaution, "Marginal conditions"}

// GoldenHours classifies the next GoldenHourSlots forecast entries for
// general field work.
func GoldenHours(forecast models.ForecastSeries) []GoldenHourSlot {
	entries := forecast.Head(GoldenHourSlots)
	slots := make([]GoldenHourSlot, 0, len(entries))
	for _, e := range entries {
		c := slotConditions{
			windKmh:  e.WindKmh(),
			rain:     e.HasRainSignal(),
			temp:     e.Temperature,
			humidity: e.Humidity,
		}
		v := goldenHourLadder.pick(c, slotMarginal)
		slots = append(slots, GoldenHourSlot{
			Time:        e.Timestamp,
			Temperature: int(math.Round(e.Temperature)),
			WindKmh:     int(math.Round(c.windKmh)),
			Humidity:    e.Humidity,
			PopPct:      int(math.Round(e.Pop * 100)),
			Verdict:     v.verdict,
			Reason:      v.reason,
		})
	}
	return slots
}

// BestWindow returns the longest run of consecutive good slots, the
// earliest one on ties. It is empty when no slot is good.
func BestWindow(slots []GoldenHourSlot) []GoldenHourSlot {
	bestStart, bestLen := 0, 0
	runStart := -1
	for i, s := range slots {
		if s.Verdict != SlotGood {
			runStart = -1
			continue
		}
		if runStart < 0 {
			runStart = i
		}
		if n := i - runStart + 1; n > bestLen {
			bestStart, bestLen = runStart, n
		}
	}
	return slots[bestStart : bestStart+bestLen]
}
