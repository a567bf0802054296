package models

import (
	"time"
)

// OpenWeather response shapes. Only the fields the engine reads are declared;
// everything else in the payload is ignored by encoding/json.

type OpenWeatherCondition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type OpenWeatherMain struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Pressure  float64 `json:"pressure"`
	Humidity  float64 `json:"humidity"`
}

type OpenWeatherWind struct {
	Speed float64 `json:"speed"`
	Deg   float64 `json:"deg"`
}

type OpenWeatherClouds struct {
	All float64 `json:"all"`
}

type OpenWeatherCurrentResponse struct {
	Weather    []OpenWeatherCondition `json:"weather"`
	Main       OpenWeatherMain        `json:"main"`
	Wind       OpenWeatherWind        `json:"wind"`
	Clouds     OpenWeatherClouds      `json:"clouds"`
	Rain       map[string]float64     `json:"rain"`
	Visibility float64                `json:"visibility"`
	Dt         int64                  `json:"dt"`
	Sys        struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
	Timezone int    `json:"timezone"`
	Name     string `json:"name"`
	// Cod is a number on success but some error payloads send a string,
	// so it is decoded loosely.
	Cod interface{} `json:"cod"`
}

type OpenWeatherForecastEntry struct {
	Dt         int64                  `json:"dt"`
	Main       OpenWeatherMain        `json:"main"`
	Weather    []OpenWeatherCondition `json:"weather"`
	Clouds     OpenWeatherClouds      `json:"clouds"`
	Wind       OpenWeatherWind        `json:"wind"`
	Rain       map[string]float64     `json:"rain"`
	Visibility float64                `json:"visibility"`
	Pop        float64                `json:"pop"`
	DtTxt      string                 `json:"dt_txt"`
}

type OpenWeatherForecastResponse struct {
	Cod  string                     `json:"cod"`
	Cnt  int                        `json:"cnt"`
	List []OpenWeatherForecastEntry `json:"list"`
	City struct {
		Name     string `json:"name"`
		Timezone int    `json:"timezone"`
		Sunrise  int64  `json:"sunrise"`
		Sunset   int64  `json:"sunset"`
	} `json:"city"`
}

type OpenWeatherAirResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
		Components struct {
			PM25 float64 `json:"pm2_5"`
			PM10 float64 `json:"pm10"`
			O3   float64 `json:"o3"`
		} `json:"components"`
	} `json:"list"`
}

// Snapshot converts the current-weather payload.
func (r *OpenWeatherCurrentResponse) Snapshot() *WeatherSnapshot {
	if r == nil {
		return nil
	}
	s := &WeatherSnapshot{
		Timestamp:     unixOrZero(r.Dt),
		Temperature:   r.Main.Temp,
		FeelsLike:     r.Main.FeelsLike,
		Humidity:      r.Main.Humidity,
		WindSpeed:     r.Wind.Speed,
		WindDirection: r.Wind.Deg,
		CloudCover:    r.Clouds.All,
		Pressure:      r.Main.Pressure,
		Visibility:    r.Visibility,
		Rain3h:        r.Rain["3h"],
		Sunrise:       unixOrZero(r.Sys.Sunrise),
		Sunset:        unixOrZero(r.Sys.Sunset),
	}
	if len(r.Weather) > 0 {
		s.Description = r.Weather[0].Description
		s.Icon = r.Weather[0].Icon
	}
	return s
}

// Zone returns the fixed-offset zone reported with the current weather.
func (r *OpenWeatherCurrentResponse) Zone() *time.Location {
	if r == nil {
		return time.UTC
	}
	return zoneFromOffset(r.Timezone)
}

// Series converts the forecast payload. Entries keep the provider order.
func (r *OpenWeatherForecastResponse) Series() ForecastSeries {
	if r == nil {
		return nil
	}
	series := make(ForecastSeries, 0, len(r.List))
	for _, e := range r.List {
		s := WeatherSnapshot{
			Timestamp:     entryTime(e.Dt, e.DtTxt),
			Temperature:   e.Main.Temp,
			FeelsLike:     e.Main.FeelsLike,
			Humidity:      e.Main.Humidity,
			WindSpeed:     e.Wind.Speed,
			WindDirection: e.Wind.Deg,
			CloudCover:    e.Clouds.All,
			Pressure:      e.Main.Pressure,
			Visibility:    e.Visibility,
			Rain3h:        e.Rain["3h"],
			Pop:           e.Pop,
		}
		if len(e.Weather) > 0 {
			s.Description = e.Weather[0].Description
			s.Icon = e.Weather[0].Icon
		}
		series = append(series, s)
	}
	return series
}

func (r *OpenWeatherForecastResponse) Zone() *time.Location {
	if r == nil {
		return time.UTC
	}
	return zoneFromOffset(r.City.Timezone)
}

// Sample returns the most recent air-quality reading, or nil when the
// payload has none.
func (r *OpenWeatherAirResponse) Sample() *AirQualitySample {
	if r == nil || len(r.List) == 0 {
		return nil
	}
	first := r.List[0]
	return &AirQualitySample{
		Timestamp: unixOrZero(first.Dt),
		PM25:      first.Components.PM25,
		PM10:      first.Components.PM10,
		O3:        first.Components.O3,
		AQI:       first.Main.AQI,
	}
}

func unixOrZero(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

func entryTime(dt int64, dtTxt string) time.Time {
	if dt != 0 {
		return time.Unix(dt, 0).UTC()
	}
	if t, err := time.Parse("2006-01-02 15:04:05", dtTxt); err == nil {
		return t
	}
	return time.Time{}
}

func zoneFromOffset(offset int) *time.Location {
	if offset == 0 {
		return time.UTC
	}
	return time.FixedZone("", offset)
}
