package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/temperature-average-service/internal/cache"
	"github.com/kjstillabower/temperature-average-service/internal/circuitbreaker"
	"github.com/kjstillabower/temperature-average-service/internal/extract"
	"github.com/kjstillabower/temperature-average-service/internal/models"
	"github.com/kjstillabower/temperature-average-service/internal/observability"
)

// AverageService computes temperature averages, consulting an optional
// result cache first. The cache never changes the result and never fails a
// request: on any cache error the result is computed directly.
type AverageService struct {
	extractor *extract.Extractor
	cache     cache.Cache // nil disables caching
	backend   string
	ttl       time.Duration
	breaker   *circuitbreaker.CircuitBreaker // nil when the backend is local
}

// NewAverageService creates an AverageService. c and breaker may be nil.
// backend labels cache metrics.
func NewAverageService(extractor *extract.Extractor, c cache.Cache, backend string, ttl time.Duration, breaker *circuitbreaker.CircuitBreaker) *AverageService {
	return &AverageService{
		extractor: extractor,
		cache:     c,
		backend:   backend,
		ttl:       ttl,
		breaker:   breaker,
	}
}

// Compute returns the extraction result for text using the cache-aside pattern.
func (s *AverageService) Compute(ctx context.Context, text string) models.ExtractionResult {
	if s.cache == nil {
		return s.extractor.ComputeAverages(text)
	}
	logger := observability.LoggerFromContext(ctx)
	key := s.cacheKey(text)

	var cached models.ExtractionResult
	var hit bool
	getStart := time.Now()
	err := s.call(ctx, func() error {
		var getErr error
		cached, hit, getErr = s.cache.Get(ctx, key)
		return getErr
	})
	getDuration := time.Since(getStart).Seconds()
	if err != nil {
		observability.CacheErrorsTotal.WithLabelValues("get", categorizeCacheError(err)).Inc()
		observability.CacheOperationDurationSeconds.WithLabelValues("get", "error").Observe(getDuration)
		if logger != nil {
			logger.Debug("cache get failed", zap.Error(err))
		}
	} else {
		observability.CacheOperationDurationSeconds.WithLabelValues("get", "success").Observe(getDuration)
		if hit {
			observability.CacheHitsTotal.WithLabelValues(s.backend).Inc()
			return cached
		}
		observability.CacheMissesTotal.WithLabelValues(s.backend).Inc()
	}

	result := s.extractor.ComputeAverages(text)

	// Skip the write while the breaker is open; the get already failed fast.
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return result
	}
	setStart := time.Now()
	if setErr := s.call(ctx, func() error { return s.cache.Set(ctx, key, result, s.ttl) }); setErr != nil {
		observability.CacheErrorsTotal.WithLabelValues("set", categorizeCacheError(setErr)).Inc()
		observability.CacheOperationDurationSeconds.WithLabelValues("set", "error").Observe(time.Since(setStart).Seconds())
		if logger != nil {
			logger.Warn("cache set failed", zap.Error(setErr))
		}
	} else {
		observability.CacheOperationDurationSeconds.WithLabelValues("set", "success").Observe(time.Since(setStart).Seconds())
	}
	return result
}

func (s *AverageService) call(ctx context.Context, fn func() error) error {
	if s.breaker == nil {
		return fn()
	}
	return s.breaker.Call(ctx, fn)
}

// cacheKey digests the glyph mode together with the text, since the same text
// yields different results under the two extractors.
func (s *AverageService) cacheKey(text string) string {
	h := sha256.New()
	if s.extractor.Lenient() {
		h.Write([]byte("lenient\x00"))
	} else {
		h.Write([]byte("minimal\x00"))
	}
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// categorizeCacheError returns a stable label for cache error metrics.
func categorizeCacheError(err error) string {
	if err == nil {
		return "unknown"
	}
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return "circuit_open"
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "timeout"
	}
	errStr := err.Error()
	if strings.Contains(errStr, "timeout") {
		return "timeout"
	}
	if strings.Contains(errStr, "connection") || strings.Contains(errStr, "network") {
		return "connection"
	}
	return "unknown"
}
