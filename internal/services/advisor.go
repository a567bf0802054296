package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"agri-advisor/internal/config"
	"agri-advisor/internal/engine"
	"agri-advisor/internal/models"
	"agri-advisor/pkg/client"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrUnknownLocation is returned for a location that is not configured.
	ErrUnknownLocation = errors.New("unknown location")
	// ErrNoTelemetry is returned when every client failed for a location.
	ErrNoTelemetry = errors.New("telemetry unavailable")
)

// TelemetryClient is one upstream weather provider.
type TelemetryClient interface {
	Name() string
	GetCurrent(ctx context.Context, loc models.Location) (*models.WeatherSnapshot, *time.Location, error)
	GetForecast(ctx context.Context, loc models.Location) (models.ForecastSeries, *time.Location, error)
	GetAirQuality(ctx context.Context, loc models.Location) (*models.AirQualitySample, error)
}

type breakerReporter interface {
	BreakerState() string
}

// Advisory is an engine report tagged with the bundle it was computed from.
type Advisory struct {
	TelemetryID string          `json:"telemetry_id"`
	Location    models.Location `json:"location"`
	Source      string          `json:"source"`
	FetchedAt   time.Time       `json:"fetched_at"`
	engine.Report
}

type Advisor struct {
	clients       []TelemetryClient
	cache         *TelemetryCache
	catalog       *engine.Catalog
	locations     []models.Location
	defaultCrop   string
	fetchTimeout  time.Duration
	logger        *zap.Logger
	now           func() time.Time
	mu            sync.RWMutex
	lastFetchTime time.Time
	successCount  int
	failureCount  int
}

type Options struct {
	Clients     []TelemetryClient
	Cache       *TelemetryCache
	Catalog     *engine.Catalog
	Locations   []models.Location
	DefaultCrop string
	// FetchTimeout bounds an on-demand fetch after a cache miss.
	FetchTimeout time.Duration
}

func NewAdvisor(cfg *config.Config, logger *zap.Logger) (*Advisor, error) {
	clientConfig := client.ClientConfig{
		Timeout:        cfg.WeatherAPI.Timeout,
		MaxRetries:     cfg.Retry.MaxRetries,
		RetryDelay:     cfg.Retry.Delay,
		Multiplier:     cfg.Retry.Multiplier,
		Threshold:      cfg.CircuitBreaker.Threshold,
		BreakerTimeout: cfg.CircuitBreaker.Timeout,
	}

	var clients []TelemetryClient

	// OpenWeatherMap first when a key is configured, it is the only source
	// with precipitation totals per 3h entry.
	if cfg.WeatherAPI.OpenWeatherAPIKey != "" {
		clients = append(clients, client.NewOpenWeatherClient(
			cfg.WeatherAPI.OpenWeatherAPIKey,
			cfg.WeatherAPI.OpenWeatherURL,
			clientConfig,
			logger,
		))
		logger.Info("OpenWeatherMap client initialized")
	}

	// Open-Meteo needs no API key
	clients = append(clients, client.NewOpenMeteoClient(
		cfg.WeatherAPI.OpenMeteoURL,
		cfg.WeatherAPI.OpenMeteoAirURL,
		clientConfig,
		logger,
	))
	logger.Info("Open-Meteo client initialized")

	catalog, err := engine.LoadCatalog(cfg.Engine.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load crop catalog: %w", err)
	}
	logger.Info("Crop catalog loaded",
		zap.String("path", cfg.Engine.CatalogPath),
		zap.Int("crops", len(catalog.Crops())))

	return New(Options{
		Clients:      clients,
		Cache:        NewTelemetryCache(cfg.Cache.Duration, cfg.Cache.MaxSize, logger),
		Catalog:      catalog,
		Locations:    cfg.Scheduler.Locations,
		DefaultCrop:  cfg.Engine.DefaultCrop,
		FetchTimeout: 30 * time.Second,
	}, logger)
}

// New assembles an advisor from already built parts.
func New(opts Options, logger *zap.Logger) (*Advisor, error) {
	if len(opts.Clients) == 0 {
		return nil, fmt.Errorf("no telemetry clients initialized")
	}
	if opts.Catalog == nil {
		opts.Catalog = engine.DefaultCatalog()
	}
	if opts.Cache == nil {
		opts.Cache = NewTelemetryCache(10*time.Minute, 1000, logger)
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}

	return &Advisor{
		clients:      opts.Clients,
		cache:        opts.Cache,
		catalog:      opts.Catalog,
		locations:    opts.Locations,
		defaultCrop:  opts.DefaultCrop,
		fetchTimeout: opts.FetchTimeout,
		logger:       logger,
		now:          time.Now,
	}, nil
}

func (a *Advisor) Catalog() *engine.Catalog {
	return a.catalog
}

func (a *Advisor) Locations() []models.Location {
	out := make([]models.Location, len(a.locations))
	copy(out, a.locations)
	return out
}

func (a *Advisor) Location(name string) (models.Location, error) {
	for _, l := range a.locations {
		if strings.EqualFold(l.Name, strings.TrimSpace(name)) {
			return l, nil
		}
	}
	return models.Location{}, fmt.Errorf("%w: %q", ErrUnknownLocation, name)
}

func (a *Advisor) Close() {
	a.cache.Stop()
}

// FetchAll refreshes every configured location.
func (a *Advisor) FetchAll(ctx context.Context) error {
	return a.FetchTelemetry(ctx, a.locations)
}

// FetchTelemetry refreshes the given locations concurrently and caches the
// bundles. It fails if any location could not be fetched.
func (a *Advisor) FetchTelemetry(ctx context.Context, locations []models.Location) error {
	a.mu.Lock()
	a.lastFetchTime = a.now()
	a.mu.Unlock()

	var wg sync.WaitGroup
	errs := make(chan error, len(locations))

	startTime := time.Now()

	for _, loc := range locations {
		wg.Add(1)
		go func(loc models.Location) {
			defer wg.Done()

			t, err := a.fetchLocation(ctx, loc)
			a.mu.Lock()
			defer a.mu.Unlock()
			if err != nil {
				a.logger.Error("Failed to fetch telemetry for location",
					zap.String("location", loc.Name),
					zap.Error(err))
				errs <- fmt.Errorf("%s: %w", loc.Name, err)
				a.failureCount++
				return
			}
			a.cache.Set(loc.Name, t)
			a.successCount++
		}(loc)
	}

	wg.Wait()
	close(errs)

	a.mu.RLock()
	a.logger.Info("Telemetry fetch completed",
		zap.Int("locations", len(locations)),
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("success", a.successCount),
		zap.Int("failure", a.failureCount))
	a.mu.RUnlock()

	var failed []error
	for err := range errs {
		failed = append(failed, err)
	}
	return errors.Join(failed...)
}

// fetchLocation walks the clients in order and returns the first complete
// bundle. A bundle needs current conditions and a forecast; air quality is
// optional.
func (a *Advisor) fetchLocation(ctx context.Context, loc models.Location) (*models.Telemetry, error) {
	var lastErr error
	for _, c := range a.clients {
		t, err := a.fetchFrom(ctx, c, loc)
		if err == nil {
			return t, nil
		}
		a.logger.Warn("Telemetry source failed, trying next",
			zap.String("source", c.Name()),
			zap.String("location", loc.Name),
			zap.Error(err))
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v", ErrNoTelemetry, lastErr)
}

func (a *Advisor) fetchFrom(ctx context.Context, c TelemetryClient, loc models.Location) (*models.Telemetry, error) {
	var (
		current  *models.WeatherSnapshot
		forecast models.ForecastSeries
		air      *models.AirQualitySample
		zone     *time.Location
		fZone    *time.Location
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, zone, err = c.GetCurrent(gctx, loc)
		return err
	})
	g.Go(func() error {
		var err error
		forecast, fZone, err = c.GetForecast(gctx, loc)
		return err
	})
	g.Go(func() error {
		sample, err := c.GetAirQuality(gctx, loc)
		if err != nil {
			a.logger.Warn("Air quality unavailable",
				zap.String("source", c.Name()),
				zap.String("location", loc.Name),
				zap.Error(err))
			return nil
		}
		air = sample
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if fZone != nil {
		zone = fZone
	}

	return &models.Telemetry{
		ID:        uuid.NewString(),
		Location:  loc,
		Current:   current,
		Forecast:  forecast,
		Air:       air,
		Zone:      zone,
		FetchedAt: a.now(),
		Source:    c.Name(),
	}, nil
}

// Telemetry returns the cached bundle for a location, fetching it on a miss.
func (a *Advisor) Telemetry(ctx context.Context, name string) (*models.Telemetry, error) {
	loc, err := a.Location(name)
	if err != nil {
		return nil, err
	}

	if cached, ok := a.cache.Get(loc.Name); ok {
		a.logger.Debug("Cache hit for telemetry", zap.String("location", loc.Name))
		return cached, nil
	}

	a.logger.Debug("Cache miss for telemetry, fetching fresh data", zap.String("location", loc.Name))

	fetchCtx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()

	if err := a.FetchTelemetry(fetchCtx, []models.Location{loc}); err != nil {
		return nil, err
	}

	if cached, ok := a.cache.Get(loc.Name); ok {
		return cached, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoTelemetry, loc.Name)
}

// Advise evaluates the latest bundle for a location. An empty crop uses the
// configured default.
func (a *Advisor) Advise(ctx context.Context, location, crop string) (*Advisory, error) {
	t, err := a.Telemetry(ctx, location)
	if err != nil {
		return nil, err
	}

	report := a.Evaluate(engine.Input{
		Current:  t.Current,
		Forecast: t.Forecast,
		Air:      t.Air,
		Zone:     t.LocalZone(),
		Crop:     crop,
	})

	return &Advisory{
		TelemetryID: t.ID,
		Location:    t.Location,
		Source:      t.Source,
		FetchedAt:   t.FetchedAt,
		Report:      report,
	}, nil
}

// Evaluate runs the engine with the advisor's catalog and default crop.
func (a *Advisor) Evaluate(in engine.Input) engine.Report {
	if strings.TrimSpace(in.Crop) == "" {
		in.Crop = a.defaultCrop
	}
	if in.Now.IsZero() {
		in.Now = a.now()
	}
	return engine.Evaluate(in, a.catalog)
}

func (a *Advisor) GetLastFetchTime() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastFetchTime
}

func (a *Advisor) GetStats() map[string]interface{} {
	a.mu.RLock()
	defer a.mu.RUnlock()

	breakers := make(map[string]string, len(a.clients))
	for _, c := range a.clients {
		if r, ok := c.(breakerReporter); ok {
			breakers[c.Name()] = r.BreakerState()
		}
	}

	return map[string]interface{}{
		"last_fetch_time":  a.lastFetchTime,
		"success_count":    a.successCount,
		"failure_count":    a.failureCount,
		"locations":        len(a.locations),
		"active_clients":   len(a.clients),
		"circuit_breakers": breakers,
		"cache_stats":      a.cache.GetStats(),
	}
}
