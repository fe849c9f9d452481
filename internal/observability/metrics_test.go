package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestMetrics_Usable verifies that all Prometheus metrics can be used without
// panic, ensuring label dimensions match usage across http, service, and cache packages.
func TestMetrics_Usable(t *testing.T) {
	HTTPRequestsTotal.WithLabelValues("POST", "/api/TemperatureAverage", "2xx").Inc()
	HTTPRequestDuration.WithLabelValues("POST", "/api/TemperatureAverage").Observe(0.01)
	InputFormatTotal.WithLabelValues("json").Inc()
	MissingInputTotal.Inc()
	CacheHitsTotal.WithLabelValues("in_memory").Inc()
	CacheMissesTotal.WithLabelValues("redis").Inc()
	CacheErrorsTotal.WithLabelValues("get", "timeout").Inc()
	CacheOperationDurationSeconds.WithLabelValues("set", "success").Observe(0.001)
	RateLimitDeniedTotal.Inc()
	RecordExtraction("lenient", "json", 2)
	RecordCircuitBreakerTransition("cache", "closed", "open", 1)
}

// TestMetricsHandler_ServesPrometheusFormat verifies that MetricsHandler serves
// Prometheus text exposition format with correct HTTP status and metric output.
func TestMetricsHandler_ServesPrometheusFormat(t *testing.T) {
	HTTPRequestsTotal.WithLabelValues("GET", "/health", "2xx").Inc()
	SetRateLimitWindow(30 * time.Second)

	handler := MetricsHandler()
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("MetricsHandler status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"httpRequestsTotal", "rateLimitRequestsInWindow"} {
		if !strings.Contains(body, want) {
			t.Errorf("MetricsHandler response missing %q", want)
		}
	}
}

func TestSetRateLimitWindow_IgnoresNonPositive(t *testing.T) {
	SetRateLimitWindow(time.Minute)
	SetRateLimitWindow(0)
	if got := rateLimitWindow.Load(); got != time.Minute {
		t.Errorf("rateLimitWindow = %v, want 1m", got)
	}
}
