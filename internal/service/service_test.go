package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kjstillabower/temperature-average-service/internal/circuitbreaker"
	"github.com/kjstillabower/temperature-average-service/internal/extract"
	"github.com/kjstillabower/temperature-average-service/internal/models"
	"github.com/kjstillabower/temperature-average-service/internal/observability"
)

type mockCache struct {
	data    map[string]models.ExtractionResult
	getErr  error
	setErr  error
	gets    int
	sets    int
	lastTTL time.Duration
}

func (m *mockCache) Get(ctx context.Context, key string) (models.ExtractionResult, bool, error) {
	m.gets++
	if m.getErr != nil {
		return models.ExtractionResult{}, false, m.getErr
	}
	val, ok := m.data[key]
	return val, ok, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value models.ExtractionResult, ttl time.Duration) error {
	m.sets++
	m.lastTTL = ttl
	if m.setErr != nil {
		return m.setErr
	}
	if m.data == nil {
		m.data = make(map[string]models.ExtractionResult)
	}
	m.data[key] = value
	return nil
}

func TestAverageService_NoCache(t *testing.T) {
	svc := NewAverageService(extract.New(extract.Options{}), nil, "none", time.Minute, nil)
	got := svc.Compute(context.Background(), "Mon 25°/14° Tue 27°/16°")
	want := models.ExtractionResult{Count: 2, DayAverage: 26, NightAverage: 15}
	if got != want {
		t.Errorf("Compute() = %+v, want %+v", got, want)
	}
}

// TestAverageService_CacheAside verifies a miss populates the cache and the
// next call is served from it.
func TestAverageService_CacheAside(t *testing.T) {
	mc := &mockCache{}
	svc := NewAverageService(extract.New(extract.Options{}), mc, "in_memory", 10*time.Minute, nil)
	ctx := context.Background()

	first := svc.Compute(ctx, "25°/14°")
	if mc.sets != 1 {
		t.Fatalf("Set calls = %d, want 1 after miss", mc.sets)
	}
	if mc.lastTTL != 10*time.Minute {
		t.Errorf("Set ttl = %v, want 10m", mc.lastTTL)
	}

	// Poison the stored value to prove the second call reads the cache.
	for k := range mc.data {
		mc.data[k] = models.ExtractionResult{Count: 99}
	}
	second := svc.Compute(ctx, "25°/14°")
	if first.Count != 1 || second.Count != 99 {
		t.Errorf("first = %+v, second = %+v; want computed then cached", first, second)
	}
	if mc.sets != 1 {
		t.Errorf("Set calls = %d, want 1 (hit should not write)", mc.sets)
	}
}

func TestAverageService_CacheErrorsDegrade(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := observability.WithRequestLogger(context.Background(), zap.New(core), "corr")
	mc := &mockCache{getErr: errors.New("dial tcp: connection refused"), setErr: errors.New("i/o timeout")}
	svc := NewAverageService(extract.New(extract.Options{}), mc, "memcached", time.Minute, nil)

	got := svc.Compute(ctx, "25°/14°")
	if got.Count != 1 || got.DayAverage != 25 || got.NightAverage != 14 {
		t.Errorf("Compute() = %+v, want direct computation on cache failure", got)
	}
	if logs.FilterMessage("cache set failed").Len() != 1 {
		t.Error("expected a warning for the failed cache set")
	}
}

func TestAverageService_BreakerSkipsOpenBackend(t *testing.T) {
	mc := &mockCache{getErr: errors.New("connection reset"), setErr: errors.New("connection reset")}
	cb := circuitbreaker.New(circuitbreaker.Config{FailureThreshold: 1, Timeout: time.Hour, Component: "cache"})
	svc := NewAverageService(extract.New(extract.Options{}), mc, "redis", time.Minute, cb)
	ctx := context.Background()

	_ = svc.Compute(ctx, "25°/14°")
	if cb.State() != circuitbreaker.StateOpen {
		t.Fatalf("breaker state = %v, want open", cb.State())
	}
	gets, sets := mc.gets, mc.sets

	got := svc.Compute(ctx, "25°/14°")
	if got.Count != 1 {
		t.Errorf("Compute() = %+v, want computed result while breaker open", got)
	}
	if mc.gets != gets || mc.sets != sets {
		t.Errorf("cache called while breaker open: gets %d->%d, sets %d->%d", gets, mc.gets, sets, mc.sets)
	}
}

func TestAverageService_KeyDependsOnGlyphMode(t *testing.T) {
	lenient := NewAverageService(extract.New(extract.Options{AcceptAltDegreeGlyph: true}), nil, "", 0, nil)
	minimal := NewAverageService(extract.New(extract.Options{}), nil, "", 0, nil)
	if lenient.cacheKey("25º/14º") == minimal.cacheKey("25º/14º") {
		t.Error("cache keys must differ between glyph modes")
	}
	if minimal.cacheKey("a") == minimal.cacheKey("b") {
		t.Error("cache keys must differ between inputs")
	}
}

func TestCategorizeCacheError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "unknown"},
		{circuitbreaker.ErrOpen, "circuit_open"},
		{context.DeadlineExceeded, "timeout"},
		{errors.New("read: i/o timeout"), "timeout"},
		{errors.New("connection refused"), "connection"},
		{errors.New("weird"), "unknown"},
	}
	for _, tt := range tests {
		if got := categorizeCacheError(tt.err); got != tt.want {
			t.Errorf("categorizeCacheError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
