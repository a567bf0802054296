package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrClientStatus is wrapped by errors for non-2xx upstream responses.
var ErrClientStatus = errors.New("upstream returned error status")

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type BaseClient struct {
	name           string
	client         HTTPClient
	logger         *zap.Logger
	circuitBreaker *gobreaker.CircuitBreaker
	maxRetries     int
	retryDelay     time.Duration
	multiplier     float64
}

type ClientConfig struct {
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	Multiplier     float64
	Threshold      int
	BreakerTimeout time.Duration
	// HTTPClient overrides the default *http.Client, mainly for tests.
	HTTPClient HTTPClient
}

func NewBaseClient(name string, config ClientConfig, logger *zap.Logger) *BaseClient {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: config.Timeout,
		}
	}

	threshold := uint32(config.Threshold)
	if threshold == 0 {
		threshold = 3
	}

	breakerSettings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < threshold {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				zap.String("client", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &BaseClient{
		name:           name,
		client:         httpClient,
		logger:         logger,
		circuitBreaker: gobreaker.NewCircuitBreaker(breakerSettings),
		maxRetries:     config.MaxRetries,
		retryDelay:     config.RetryDelay,
		multiplier:     config.Multiplier,
	}
}

func (c *BaseClient) Name() string {
	return c.name
}

// BreakerState reports the circuit breaker state for health output.
func (c *BaseClient) BreakerState() string {
	return c.circuitBreaker.State().String()
}

// GetJSON fetches rawURL through the breaker and decodes the body into out.
func (c *BaseClient) GetJSON(ctx context.Context, rawURL string, out interface{}) error {
	data, err := c.GetWithRetry(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", c.name, err)
	}
	return nil
}

func (c *BaseClient) GetWithRetry(ctx context.Context, rawURL string) ([]byte, error) {
	result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return c.doGetWithRetry(ctx, rawURL)
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (c *BaseClient) doGetWithRetry(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	logURL := redact(rawURL)

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Calculate exponential backoff delay
			delay := time.Duration(float64(c.retryDelay) * math.Pow(c.multiplier, float64(attempt-1)))
			c.logger.Debug("Retrying request",
				zap.String("url", logURL),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay))

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request failed: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			c.logger.Warn("HTTP request failed",
				zap.String("url", logURL),
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()

			if err != nil {
				lastErr = err
				continue
			}

			c.logger.Debug("Request successful",
				zap.String("url", logURL),
				zap.Int("status", resp.StatusCode),
				zap.Int("body_size", len(body)))

			return body, nil
		}

		resp.Body.Close()
		lastErr = fmt.Errorf("%w: HTTP %d", ErrClientStatus, resp.StatusCode)

		// Don't retry on client errors (4xx) except 429 (rate limiting)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, lastErr
		}
	}

	return nil, fmt.Errorf("max retries exceeded, last error: %w", lastErr)
}

// redact hides the API key so URLs can be logged.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	q := u.Query()
	if q.Has("appid") {
		q.Set("appid", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
