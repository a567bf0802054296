package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"agri-advisor/internal/models"
	"go.uber.org/zap"
)

const defaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5"

type OpenWeatherClient struct {
	*BaseClient
	apiKey  string
	baseURL string
}

func NewOpenWeatherClient(apiKey, baseURL string, config ClientConfig, logger *zap.Logger) *OpenWeatherClient {
	if baseURL == "" {
		baseURL = defaultOpenWeatherURL
	}
	return &OpenWeatherClient{
		BaseClient: NewBaseClient("openweathermap", config, logger),
		apiKey:     apiKey,
		baseURL:    baseURL,
	}
}

func (c *OpenWeatherClient) endpoint(path string, loc models.Location, metric bool) string {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(loc.Lat, 'f', 4, 64))
	q.Set("lon", strconv.FormatFloat(loc.Lon, 'f', 4, 64))
	q.Set("appid", c.apiKey)
	if metric {
		q.Set("units", "metric")
	}
	return fmt.Sprintf("%s/%s?%s", c.baseURL, path, q.Encode())
}

func (c *OpenWeatherClient) GetCurrent(ctx context.Context, loc models.Location) (*models.WeatherSnapshot, *time.Location, error) {
	var response models.OpenWeatherCurrentResponse
	if err := c.GetJSON(ctx, c.endpoint("weather", loc, true), &response); err != nil {
		return nil, nil, fmt.Errorf("failed to fetch current weather: %w", err)
	}

	if code := fmt.Sprint(response.Cod); code != "200" && code != "<nil>" {
		return nil, nil, fmt.Errorf("API error: %s", code)
	}

	return response.Snapshot(), response.Zone(), nil
}

// GetForecast returns the 5-day / 3-hour forecast.
func (c *OpenWeatherClient) GetForecast(ctx context.Context, loc models.Location) (models.ForecastSeries, *time.Location, error) {
	var response models.OpenWeatherForecastResponse
	if err := c.GetJSON(ctx, c.endpoint("forecast", loc, true), &response); err != nil {
		return nil, nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}

	if response.Cod != "" && response.Cod != "200" {
		return nil, nil, fmt.Errorf("API error: %s", response.Cod)
	}

	return response.Series(), response.Zone(), nil
}

func (c *OpenWeatherClient) GetAirQuality(ctx context.Context, loc models.Location) (*models.AirQualitySample, error) {
	var response models.OpenWeatherAirResponse
	if err := c.GetJSON(ctx, c.endpoint("air_pollution", loc, false), &response); err != nil {
		return nil, fmt.Errorf("failed to fetch air quality: %w", err)
	}
	return response.Sample(), nil
}
