package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"agri-advisor/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Server struct {
		Port         string        `validate:"required,numeric"`
		ReadTimeout  time.Duration `validate:"gt=0"`
		WriteTimeout time.Duration `validate:"gt=0"`
		LogLevel     string        `validate:"oneof=debug info warn error"`
	}

	WeatherAPI struct {
		OpenWeatherAPIKey string
		OpenWeatherURL    string        `validate:"required,url"`
		OpenMeteoURL      string        `validate:"required,url"`
		OpenMeteoAirURL   string        `validate:"required,url"`
		Timeout           time.Duration `validate:"gt=0"`
	}

	Scheduler struct {
		PollInterval time.Duration     `validate:"gte=1s"`
		Locations    []models.Location `validate:"required,min=1,dive"`
	}

	Engine struct {
		CatalogPath string
		DefaultCrop string
	}

	Cache struct {
		Duration time.Duration `validate:"gt=0"`
		MaxSize  int           `validate:"gt=0"`
	}

	CircuitBreaker struct {
		Threshold int `validate:"gt=0"`
		Timeout   time.Duration
	}

	Retry struct {
		MaxRetries int `validate:"gte=0"`
		Delay      time.Duration
		Multiplier float64 `validate:"gte=1"`
	}
}

var validate = validator.New()

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}

	// Server configuration
	cfg.Server.Port = getEnv("FIBER_PORT", "8080")
	cfg.Server.ReadTimeout = parseDuration(getEnv("FIBER_READ_TIMEOUT", "10s"))
	cfg.Server.WriteTimeout = parseDuration(getEnv("FIBER_WRITE_TIMEOUT", "10s"))
	cfg.Server.LogLevel = getEnv("LOG_LEVEL", "info")

	// Weather API configuration
	cfg.WeatherAPI.OpenWeatherAPIKey = getEnv("OPENWEATHER_API_KEY", "")
	cfg.WeatherAPI.OpenWeatherURL = getEnv("OPENWEATHER_URL", "https://api.openweathermap.org/data/2.5")
	cfg.WeatherAPI.OpenMeteoURL = getEnv("OPENMETEO_URL", "https://api.open-meteo.com/v1")
	cfg.WeatherAPI.OpenMeteoAirURL = getEnv("OPENMETEO_AIR_URL", "https://air-quality-api.open-meteo.com/v1")
	cfg.WeatherAPI.Timeout = parseDuration(getEnv("WEATHER_API_TIMEOUT", "10s"))

	// Scheduler configuration
	cfg.Scheduler.PollInterval = parseDuration(getEnv("POLL_INTERVAL", "60s"))
	locations, err := ParseLocations(getEnv("DEFAULT_LOCATIONS", "Anand:22.5645:72.9289,Nashik:19.9975:73.7898,Ludhiana:30.9010:75.8573"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_LOCATIONS: %w", err)
	}
	cfg.Scheduler.Locations = locations

	// Engine configuration
	cfg.Engine.CatalogPath = getEnv("CROP_CATALOG_PATH", "")
	cfg.Engine.DefaultCrop = getEnv("DEFAULT_CROP", "Wheat")

	// Cache configuration
	cfg.Cache.Duration = parseDuration(getEnv("CACHE_DURATION", "10m"))
	cfg.Cache.MaxSize = parseInt(getEnv("MAX_CACHE_SIZE", "1000"))

	// Circuit breaker configuration
	cfg.CircuitBreaker.Threshold = parseInt(getEnv("CIRCUIT_BREAKER_THRESHOLD", "3"))
	cfg.CircuitBreaker.Timeout = parseDuration(getEnv("CIRCUIT_BREAKER_TIMEOUT", "30s"))

	// Retry configuration
	cfg.Retry.MaxRetries = parseInt(getEnv("MAX_RETRIES", "3"))
	cfg.Retry.Delay = parseDuration(getEnv("RETRY_DELAY", "1s"))
	cfg.Retry.Multiplier = parseFloat(getEnv("RETRY_MULTIPLIER", "2"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the loaded values against the struct rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Location returns the configured location with the given name.
func (c *Config) Location(name string) (models.Location, bool) {
	for _, l := range c.Scheduler.Locations {
		if strings.EqualFold(l.Name, name) {
			return l, true
		}
	}
	return models.Location{}, false
}

// ParseLocations reads a comma-separated list of name:lat:lon triples.
func ParseLocations(value string) ([]models.Location, error) {
	var locations []models.Location
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.Split(item, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("location %q: want name:lat:lon", item)
		}
		lat, err := strconv.ParseFloat(parts[1], 64)
		if err != nil || lat < -90 || lat > 90 {
			return nil, fmt.Errorf("location %q: invalid latitude", item)
		}
		lon, err := strconv.ParseFloat(parts[2], 64)
		if err != nil || lon < -180 || lon > 180 {
			return nil, fmt.Errorf("location %q: invalid longitude", item)
		}
		locations = append(locations, models.Location{Name: strings.TrimSpace(parts[0]), Lat: lat, Lon: lon})
	}
	return locations, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("Failed to parse duration", zap.String("value", value), zap.Error(err))
		return 0
	}
	return duration
}

func parseInt(value string) int {
	intValue, err := strconv.Atoi(value)
	if err != nil {
		zap.L().Warn("Failed to parse int", zap.String("value", value), zap.Error(err))
		return 0
	}
	return intValue
}

func parseFloat(value string) float64 {
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		zap.L().Warn("Failed to parse float", zap.String("value", value), zap.Error(err))
		return 0
	}
	return floatValue
}
