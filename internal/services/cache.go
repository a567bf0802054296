package services

import (
	"strings"
	"sync"
	"time"

	"agri-advisor/internal/models"
	"go.uber.org/zap"
)

type cacheItem struct {
	telemetry *models.Telemetry
	expiresAt time.Time
}

// TelemetryCache keeps the latest bundle per location until it expires.
// The engine never caches; this is the calling layer's cache.
type TelemetryCache struct {
	mu              sync.RWMutex
	items           map[string]cacheItem
	logger          *zap.Logger
	defaultDuration time.Duration
	maxSize         int
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
	now             func() time.Time
	hits            int
	misses          int
}

func NewTelemetryCache(defaultDuration time.Duration, maxSize int, logger *zap.Logger) *TelemetryCache {
	cache := &TelemetryCache{
		items:           make(map[string]cacheItem),
		logger:          logger,
		defaultDuration: defaultDuration,
		maxSize:         maxSize,
		cleanupInterval: time.Minute,
		stopCleanup:     make(chan struct{}),
		now:             time.Now,
	}

	go cache.startCleanup()

	return cache
}

func cacheKey(location string) string {
	return strings.ToLower(strings.TrimSpace(location))
}

func (c *TelemetryCache) Set(location string, t *models.Telemetry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(location)
	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxSize {
		c.evictOldest()
	}

	expiresAt := c.now().Add(c.defaultDuration)
	c.items[key] = cacheItem{telemetry: t, expiresAt: expiresAt}

	c.logger.Debug("Telemetry cached",
		zap.String("location", location),
		zap.Time("expires_at", expiresAt))
}

func (c *TelemetryCache) Get(location string) (*models.Telemetry, bool) {
	key := cacheKey(location)

	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.items[key]
	if !exists {
		c.misses++
		return nil, false
	}

	if c.now().After(item.expiresAt) {
		delete(c.items, key)
		c.misses++
		return nil, false
	}

	c.hits++
	return item.telemetry, true
}

func (c *TelemetryCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, item := range c.items {
		if oldestKey == "" || item.expiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = item.expiresAt
		}
	}

	if oldestKey != "" {
		delete(c.items, oldestKey)
		c.logger.Debug("Evicted oldest telemetry from cache",
			zap.String("location", oldestKey))
	}
}

func (c *TelemetryCache) startCleanup() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *TelemetryCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	expiredCount := 0

	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
			expiredCount++
		}
	}

	if expiredCount > 0 {
		c.logger.Debug("Cleaned expired cache items",
			zap.Int("count", expiredCount))
	}
}

func (c *TelemetryCache) Stop() {
	c.stopOnce.Do(func() { close(c.stopCleanup) })
}

func (c *TelemetryCache) GetStats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]interface{}{
		"items":            len(c.items),
		"hits":             c.hits,
		"misses":           c.misses,
		"max_size":         c.maxSize,
		"default_duration": c.defaultDuration.String(),
	}
}
