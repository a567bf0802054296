package engine

import (
	"fmt"

	"agri-advisor/internal/models"
)

const (
	AlertPest  = "pest_outbreak"
	AlertFrost = "frost"
	AlertRain  = "heavy_rain"
)

type FieldAlert struct {
	Kind     string `json:"kind"`
	Severity string `json:"severity"`
	Date     string `json:"date,omitempty"`
	Message  string `json:"message"`
}

// FieldAlerts raises standing alerts from the current snapshot, the
// forecast, and the day roll-ups.
func FieldAlerts(current *models.WeatherSnapshot, forecast models.ForecastSeries, days []DayAggregate) []FieldAlert {
	alerts := []FieldAlert{}

	if current != nil && current.Humidity > 80 && current.Temperature >= 25 && current.Temperature <= 32 {
		alerts = append(alerts, FieldAlert{
			Kind:     AlertPest,
			Severity: "high",
			Message: fmt.Sprintf("Humidity %.0f%% at %.1f°C favours pest breeding. Scout fields and set traps.",
				current.Humidity, current.Temperature),
		})
	}

	coldest := (*models.WeatherSnapshot)(nil)
	for i := range forecast {
		if forecast[i].Temperature < 4 && (coldest == nil || forecast[i].Temperature < coldest.Temperature) {
			coldest = &forecast[i]
		}
	}
	if coldest != nil {
		alerts = append(alerts, FieldAlert{
			Kind:     AlertFrost,
			Severity: "critical",
			Message:  fmt.Sprintf("Forecast low of %.1f°C. Protect standing crops from frost.", coldest.Temperature),
		})
	}

	for _, d := range days {
		if d.TotalRain > 10 {
			alerts = append(alerts, FieldAlert{
				Kind:     AlertRain,
				Severity: "critical",
				Date:     d.Date,
				Message:  fmt.Sprintf("%.0f mm rainfall expected. Secure stored grain.", d.TotalRain),
			})
		}
	}
	return alerts
}
