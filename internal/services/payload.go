package services

import (
	"time"

	"agri-advisor/internal/engine"
	"agri-advisor/internal/models"
)

// ProviderPayload carries raw OpenWeather responses as saved from the
// current, forecast and air pollution endpoints. At least one of current
// and forecast is required.
type ProviderPayload struct {
	Current  *models.OpenWeatherCurrentResponse  `json:"current" validate:"required_without=Forecast"`
	Forecast *models.OpenWeatherForecastResponse `json:"forecast" validate:"required_without=Current"`
	Air      *models.OpenWeatherAirResponse      `json:"air"`
	Crop     string                              `json:"crop" validate:"omitempty,max=64"`
	Now      *time.Time                          `json:"now"`
}

// Input converts the payloads into an engine input. The forecast's city
// offset wins over the current payload's when both are present.
func (p *ProviderPayload) Input() engine.Input {
	in := engine.Input{Crop: p.Crop, Zone: time.UTC}
	if p.Current != nil {
		in.Current = p.Current.Snapshot()
		in.Zone = p.Current.Zone()
	}
	if p.Forecast != nil {
		in.Forecast = p.Forecast.Series()
		in.Zone = p.Forecast.Zone()
	}
	if p.Air != nil {
		in.Air = p.Air.Sample()
	}
	if p.Now != nil {
		in.Now = *p.Now
	}
	return in
}
