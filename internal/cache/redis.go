package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kjstillabower/temperature-average-service/internal/models"
)

// RedisCache implements Cache using redis string keys with expiry.
type RedisCache struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisCache creates a RedisCache. timeout bounds each command; Ping uses it too.
func NewRedisCache(addr, password string, db int, timeout time.Duration) *RedisCache {
	if addr == "" {
		addr = "localhost:6379"
	}
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})
	return &RedisCache{client: client, timeout: timeout}
}

// Get implements Cache.Get.
func (c *RedisCache) Get(ctx context.Context, key string) (models.ExtractionResult, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.ExtractionResult{}, false, nil
		}
		return models.ExtractionResult{}, false, err
	}
	var data models.ExtractionResult
	if err := json.Unmarshal(raw, &data); err != nil {
		return models.ExtractionResult{}, false, fmt.Errorf("decode cached result: %w", err)
	}
	return data, true, nil
}

// Set implements Cache.Set. A non-positive ttl falls back to 1h so entries never live forever.
func (c *RedisCache) Set(ctx context.Context, key string, value models.ExtractionResult, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return c.client.Set(ctx, keyPrefix+key, raw, ttl).Err()
}

// Ping checks if redis is reachable. Used for health checks.
func (c *RedisCache) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	return c.client.Ping(ctx).Err()
}

// Close closes the redis connection pool. Call during shutdown.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
