package cache

import (
	"context"
	"sync"
	"time"

	"github.com/kjstillabower/temperature-average-service/internal/models"
)

// Backend names accepted in config.
const (
	BackendNone      = "none"
	BackendInMemory  = "in_memory"
	BackendMemcached = "memcached"
	BackendRedis     = "redis"
)

// Cache stores extraction results keyed by a digest of the input text.
// Get returns (zero, false, nil) on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (models.ExtractionResult, bool, error)
	Set(ctx context.Context, key string, value models.ExtractionResult, ttl time.Duration) error
}

// Remote is a Cache backed by a network service.
type Remote interface {
	Cache
	Ping() error
	Close() error
}

// InMemoryCache implements Cache using a map with TTL-based expiration.
// Expired entries are removed on access. Safe for concurrent use.
type InMemoryCache struct {
	mu         sync.Mutex
	data       map[string]cacheEntry
	maxEntries int
}

type cacheEntry struct {
	value     models.ExtractionResult
	expiresAt time.Time
}

// NewInMemoryCache creates an in-memory cache. When maxEntries > 0 and the
// cache is full, expired entries are swept and, if still full, the write is dropped.
func NewInMemoryCache(maxEntries int) *InMemoryCache {
	return &InMemoryCache{
		data:       make(map[string]cacheEntry),
		maxEntries: maxEntries,
	}
}

// Get implements Cache.Get.
func (c *InMemoryCache) Get(ctx context.Context, key string) (models.ExtractionResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.data[key]
	if !ok {
		return models.ExtractionResult{}, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.data, key)
		return models.ExtractionResult{}, false, nil
	}
	return entry.value, true, nil
}

// Set implements Cache.Set.
func (c *InMemoryCache) Set(ctx context.Context, key string, value models.ExtractionResult, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	if _, exists := c.data[key]; !exists && c.maxEntries > 0 && len(c.data) >= c.maxEntries {
		c.sweepLocked(now)
		if len(c.data) >= c.maxEntries {
			return nil
		}
	}
	c.data[key] = cacheEntry{
		value:     value,
		expiresAt: now.Add(ttl),
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *InMemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

func (c *InMemoryCache) sweepLocked(now time.Time) {
	for k, e := range c.data {
		if now.After(e.expiresAt) {
			delete(c.data, k)
		}
	}
}
