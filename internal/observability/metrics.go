package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kjstillabower/temperature-average-service/internal/health"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Watch for: p95/p99 latency increases.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: saturation, capacity limits.
	HTTPRequestsInFlight prometheus.Gauge

	// Successful extractions by glyph mode and response format.
	ExtractionsTotal *prometheus.CounterVec

	// Pairs matched per request. Watch for: a spike at 0 (clients sending text in an unexpected format).
	PairsPerRequest prometheus.Histogram

	// How the input text was resolved: raw, json, json_fallback, form.
	InputFormatTotal *prometheus.CounterVec

	// POSTs rejected because no input text could be determined (400).
	MissingInputTotal prometheus.Counter

	// Result cache hits and misses by backend. Hit rate = hits/(hits+misses).
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Cache errors by operation and category. Watch for: sustained errors (backend down, breaker will open).
	CacheErrorsTotal *prometheus.CounterVec

	// Cache operation latency. Watch for: p99 approaching the configured cache timeout.
	CacheOperationDurationSeconds *prometheus.HistogramVec

	// Circuit breaker state per component: 0 closed, 1 open, 2 half-open.
	CircuitBreakerState *prometheus.GaugeVec

	// Circuit breaker transitions. Watch for: flapping between open and half_open.
	CircuitBreakerTransitionsTotal *prometheus.CounterVec

	// Rate limit denials. Watch for: overload, capacity exceeded.
	RateLimitDeniedTotal prometheus.Counter
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	ExtractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "temperatureExtractionsTotal",
			Help: "Total number of temperature average computations served",
		},
		[]string{"variant", "format"},
	)
	PairsPerRequest = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "temperaturePairsPerRequest",
			Help:    "Number of day/night pairs matched per request",
			Buckets: []float64{0, 1, 2, 5, 7, 14, 30, 60},
		},
	)
	InputFormatTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inputFormatTotal",
			Help: "Requests by resolved input format",
		},
		[]string{"format"},
	)
	MissingInputTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "missingInputTotal",
			Help: "Total number of POST requests rejected for empty input (400)",
		},
	)
	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheHitsTotal",
			Help: "Total number of result cache hits",
		},
		[]string{"backend"},
	)
	CacheMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheMissesTotal",
			Help: "Total number of result cache misses",
		},
		[]string{"backend"},
	)
	CacheErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheErrorsTotal",
			Help: "Total number of result cache errors",
		},
		[]string{"operation", "category"},
	)
	CacheOperationDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cacheOperationDurationSeconds",
			Help:    "Result cache operation latency in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{"operation", "status"},
	)
	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuitBreakerState",
			Help: "Circuit breaker state: 0 closed, 1 open, 2 half-open",
		},
		[]string{"component"},
	)
	CircuitBreakerTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuitBreakerTransitionsTotal",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"component", "from", "to"},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		ExtractionsTotal, PairsPerRequest, InputFormatTotal, MissingInputTotal,
		CacheHitsTotal, CacheMissesTotal, CacheErrorsTotal, CacheOperationDurationSeconds,
		CircuitBreakerState, CircuitBreakerTransitionsTotal,
		RateLimitDeniedTotal,
	)
	registerRateLimitGauges()
}

// rateLimitWindow is read by the window gauges; set from config via SetRateLimitWindow.
var rateLimitWindow = newDurationValue(60 * time.Second)

// SetRateLimitWindow sets the sliding window the rate-limit gauges report over.
// Call from main after config load with cfg.OverloadWindow.
func SetRateLimitWindow(window time.Duration) {
	if window > 0 {
		rateLimitWindow.Store(window)
	}
}

func registerRateLimitGauges() {
	registry.MustRegister(
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "rateLimitRequestsInWindow",
				Help: "Requests hitting the rate-limited path in the sliding window; load/capacity planning",
			},
			func() float64 { return float64(health.Default.Counts(rateLimitWindow.Load()).Total()) },
		),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "rateLimitRejectsInWindow",
				Help: "429 responses in the sliding window; are we rejecting requests",
			},
			func() float64 { return float64(health.Default.Counts(rateLimitWindow.Load()).Denied) },
		),
	)
}

// RecordExtraction records a served computation.
func RecordExtraction(variant, format string, pairs int) {
	ExtractionsTotal.WithLabelValues(variant, format).Inc()
	PairsPerRequest.Observe(float64(pairs))
}

// RecordCircuitBreakerTransition updates the state gauge and transition counter.
// state is the numeric value of the target state.
func RecordCircuitBreakerTransition(component, from, to string, state int) {
	CircuitBreakerTransitionsTotal.WithLabelValues(component, from, to).Inc()
	CircuitBreakerState.WithLabelValues(component).Set(float64(state))
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
