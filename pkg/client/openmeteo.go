package client

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"agri-advisor/internal/models"
	"go.uber.org/zap"
)

const (
	defaultOpenMeteoURL    = "https://api.open-meteo.com/v1"
	defaultOpenMeteoAirURL = "https://air-quality-api.open-meteo.com/v1"
	openMeteoTimeLayout    = "2006-01-02T15:04"
	// forecastStep resamples the hourly series to the 3-hour cadence the
	// engine expects.
	forecastStep = 3
	// forecastEntries is five days of 3-hour entries.
	forecastEntries = 40
)

type OpenMeteoClient struct {
	*BaseClient
	baseURL string
	airURL  string
	now     func() time.Time
}

type OpenMeteoCurrentResponse struct {
	UTCOffsetSeconds int `json:"utc_offset_seconds"`
	Current          struct {
		Time                string  `json:"time"`
		Temperature2M       float64 `json:"temperature_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		RelativeHumidity2M  float64 `json:"relative_humidity_2m"`
		PressureMSL         float64 `json:"pressure_msl"`
		WindSpeed10M        float64 `json:"wind_speed_10m"`
		WindDirection10M    float64 `json:"wind_direction_10m"`
		CloudCover          float64 `json:"cloud_cover"`
		WeatherCode         int     `json:"weather_code"`
	} `json:"current"`
}

type OpenMeteoForecastResponse struct {
	UTCOffsetSeconds int `json:"utc_offset_seconds"`
	Hourly           struct {
		Time                     []string  `json:"time"`
		Temperature2M            []float64 `json:"temperature_2m"`
		ApparentTemperature      []float64 `json:"apparent_temperature"`
		RelativeHumidity2M       []float64 `json:"relative_humidity_2m"`
		PressureMSL              []float64 `json:"pressure_msl"`
		WindSpeed10M             []float64 `json:"wind_speed_10m"`
		WindDirection10M         []float64 `json:"wind_direction_10m"`
		CloudCover               []float64 `json:"cloud_cover"`
		Visibility               []float64 `json:"visibility"`
		Precipitation            []float64 `json:"precipitation"`
		PrecipitationProbability []float64 `json:"precipitation_probability"`
		WeatherCode              []int     `json:"weather_code"`
	} `json:"hourly"`
}

type OpenMeteoAirResponse struct {
	Current struct {
		Time        string  `json:"time"`
		PM25        float64 `json:"pm2_5"`
		PM10        float64 `json:"pm10"`
		Ozone       float64 `json:"ozone"`
		EuropeanAQI float64 `json:"european_aqi"`
	} `json:"current"`
}

func NewOpenMeteoClient(baseURL, airURL string, config ClientConfig, logger *zap.Logger) *OpenMeteoClient {
	if baseURL == "" {
		baseURL = defaultOpenMeteoURL
	}
	if airURL == "" {
		airURL = defaultOpenMeteoAirURL
	}
	return &OpenMeteoClient{
		BaseClient: NewBaseClient("open-meteo", config, logger),
		baseURL:    baseURL,
		airURL:     airURL,
		now:        time.Now,
	}
}

func coordinates(loc models.Location) url.Values {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(loc.Lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(loc.Lon, 'f', 4, 64))
	q.Set("timezone", "auto")
	return q
}

func (c *OpenMeteoClient) GetCurrent(ctx context.Context, loc models.Location) (*models.WeatherSnapshot, *time.Location, error) {
	q := coordinates(loc)
	q.Set("current", "temperature_2m,apparent_temperature,relative_humidity_2m,pressure_msl,wind_speed_10m,wind_direction_10m,cloud_cover,weather_code")
	q.Set("wind_speed_unit", "ms")

	var response OpenMeteoCurrentResponse
	if err := c.GetJSON(ctx, c.baseURL+"/forecast?"+q.Encode(), &response); err != nil {
		return nil, nil, fmt.Errorf("failed to fetch current weather: %w", err)
	}

	zone := time.FixedZone("", response.UTCOffsetSeconds)
	cur := response.Current
	currentTime, _ := time.ParseInLocation(openMeteoTimeLayout, cur.Time, zone)

	weather := &models.WeatherSnapshot{
		Timestamp:     currentTime,
		Temperature:   cur.Temperature2M,
		FeelsLike:     cur.ApparentTemperature,
		Humidity:      cur.RelativeHumidity2M,
		WindSpeed:     cur.WindSpeed10M,
		WindDirection: cur.WindDirection10M,
		CloudCover:    cur.CloudCover,
		Pressure:      cur.PressureMSL,
		Description:   weatherCodeToDescription(cur.WeatherCode),
		Icon:          weatherCodeToIcon(cur.WeatherCode),
	}

	return weather, zone, nil
}

// GetForecast fetches hourly data and resamples it to 3-hour entries: rain
// is summed over each window and the precipitation probability is the window
// maximum. The hourly series starts at local midnight, so windows that ended
// before the request are dropped and five days are kept from there.
func (c *OpenMeteoClient) GetForecast(ctx context.Context, loc models.Location) (models.ForecastSeries, *time.Location, error) {
	q := coordinates(loc)
	q.Set("hourly", "temperature_2m,apparent_temperature,relative_humidity_2m,pressure_msl,wind_speed_10m,wind_direction_10m,cloud_cover,visibility,precipitation,precipitation_probability,weather_code")
	q.Set("wind_speed_unit", "ms")
	q.Set("forecast_days", "6")

	var response OpenMeteoForecastResponse
	if err := c.GetJSON(ctx, c.baseURL+"/forecast?"+q.Encode(), &response); err != nil {
		return nil, nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}

	zone := time.FixedZone("", response.UTCOffsetSeconds)
	h := response.Hourly
	series := make(models.ForecastSeries, 0, forecastEntries)
	now := c.now()

	for i := 0; i < len(h.Time) && len(series) < forecastEntries; i += forecastStep {
		ts, err := time.ParseInLocation(openMeteoTimeLayout, h.Time[i], zone)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse forecast time %q: %w", h.Time[i], err)
		}
		if !ts.Add(forecastStep * time.Hour).After(now) {
			continue
		}

		end := i + forecastStep
		if end > len(h.Time) {
			end = len(h.Time)
		}
		var rain, pop float64
		for j := i; j < end; j++ {
			rain += at(h.Precipitation, j)
			pop = math.Max(pop, at(h.PrecipitationProbability, j)/100)
		}

		code := 0
		if i < len(h.WeatherCode) {
			code = h.WeatherCode[i]
		}

		series = append(series, models.WeatherSnapshot{
			Timestamp:     ts,
			Temperature:   at(h.Temperature2M, i),
			FeelsLike:     at(h.ApparentTemperature, i),
			Humidity:      at(h.RelativeHumidity2M, i),
			WindSpeed:     at(h.WindSpeed10M, i),
			WindDirection: at(h.WindDirection10M, i),
			CloudCover:    at(h.CloudCover, i),
			Pressure:      at(h.PressureMSL, i),
			Visibility:    at(h.Visibility, i),
			Rain3h:        rain,
			Pop:           pop,
			Description:   weatherCodeToDescription(code),
			Icon:          weatherCodeToIcon(code),
		})
	}

	return series, zone, nil
}

// GetAirQuality maps the European AQI (0-100+) onto the 1-5 category scale.
func (c *OpenMeteoClient) GetAirQuality(ctx context.Context, loc models.Location) (*models.AirQualitySample, error) {
	q := coordinates(loc)
	q.Set("current", "pm2_5,pm10,ozone,european_aqi")

	var response OpenMeteoAirResponse
	if err := c.GetJSON(ctx, c.airURL+"/air-quality?"+q.Encode(), &response); err != nil {
		return nil, fmt.Errorf("failed to fetch air quality: %w", err)
	}

	cur := response.Current
	ts, _ := time.Parse(openMeteoTimeLayout, cur.Time)
	return &models.AirQualitySample{
		Timestamp: ts,
		PM25:      cur.PM25,
		PM10:      cur.PM10,
		O3:        cur.Ozone,
		AQI:       europeanAQICategory(cur.EuropeanAQI),
	}, nil
}

func europeanAQICategory(eaqi float64) int {
	switch {
	case eaqi <= 20:
		return 1
	case eaqi <= 40:
		return 2
	case eaqi <= 60:
		return 3
	case eaqi <= 80:
		return 4
	default:
		return 5
	}
}

// at tolerates hourly arrays shorter than the time axis.
func at(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}

func weatherCodeToDescription(code int) string {
	// WMO Weather interpretation codes
	weatherCodes := map[int]string{
		0:  "Clear sky",
		1:  "Mainly clear",
		2:  "Partly cloudy",
		3:  "Overcast",
		45: "Foggy",
		48: "Depositing rime fog",
		51: "Light drizzle",
		53: "Moderate drizzle",
		55: "Dense drizzle",
		56: "Light freezing drizzle",
		57: "Dense freezing drizzle",
		61: "Slight rain",
		63: "Moderate rain",
		65: "Heavy rain",
		66: "Light freezing rain",
		67: "Heavy freezing rain",
		71: "Slight snow fall",
		73: "Moderate snow fall",
		75: "Heavy snow fall",
		77: "Snow grains",
		80: "Slight rain showers",
		81: "Moderate rain showers",
		82: "Violent rain showers",
		85: "Slight snow showers",
		86: "Heavy snow showers",
		95: "Thunderstorm",
		96: "Thunderstorm with slight hail",
		99: "Thunderstorm with heavy hail",
	}

	if desc, ok := weatherCodes[code]; ok {
		return desc
	}
	return "Unknown"
}

// weatherCodeToIcon maps WMO codes onto OpenWeather icon names so both
// sources share one icon set.
func weatherCodeToIcon(code int) string {
	switch {
	case code == 0:
		return "01d"
	case code <= 3:
		return "02d"
	case code <= 48:
		return "50d"
	case code <= 67:
		return "10d"
	case code <= 77:
		return "13d"
	case code <= 82:
		return "09d"
	case code <= 86:
		return "13d"
	default:
		return "11d"
	}
}
