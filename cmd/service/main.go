package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/temperature-average-service/internal/cache"
	"github.com/kjstillabower/temperature-average-service/internal/circuitbreaker"
	"github.com/kjstillabower/temperature-average-service/internal/config"
	"github.com/kjstillabower/temperature-average-service/internal/extract"
	"github.com/kjstillabower/temperature-average-service/internal/health"
	httphandler "github.com/kjstillabower/temperature-average-service/internal/http"
	"github.com/kjstillabower/temperature-average-service/internal/observability"
	"github.com/kjstillabower/temperature-average-service/internal/service"
	"github.com/kjstillabower/temperature-average-service/internal/views"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	if err := views.LoadTemplates(); err != nil {
		logger.Fatal("templates", zap.Error(err))
	}

	var resultCache cache.Cache
	var remote cache.Remote
	switch cfg.CacheBackend {
	case cache.BackendMemcached:
		mc, err := cache.NewMemcachedCache(cfg.MemcachedAddrs, cfg.MemcachedTimeout, cfg.MemcachedMaxIdleConns)
		if err != nil {
			logger.Fatal("memcached cache", zap.Error(err))
		}
		remote = mc
		logger.Info("cache backend: memcached", zap.String("addrs", cfg.MemcachedAddrs))
	case cache.BackendRedis:
		remote = cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisTimeout)
		logger.Info("cache backend: redis", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
	case cache.BackendInMemory:
		resultCache = cache.NewInMemoryCache(cfg.CacheMaxEntries)
		logger.Info("cache backend: in_memory", zap.Int("max_entries", cfg.CacheMaxEntries))
	default:
		logger.Info("cache backend: none")
	}

	var breaker *circuitbreaker.CircuitBreaker
	if remote != nil {
		resultCache = remote
		if err := remote.Ping(); err != nil {
			logger.Warn("cache unreachable at startup; requests will compute directly", zap.Error(err))
		}
		if cfg.CircuitBreakerEnabled {
			component := "cache_" + cfg.CacheBackend
			breaker = circuitbreaker.New(circuitbreaker.Config{
				FailureThreshold: cfg.CircuitBreakerFailureThreshold,
				SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
				Timeout:          cfg.CircuitBreakerTimeout,
				Component:        component,
				OnStateChange: func(component string, from, to circuitbreaker.State) {
					observability.RecordCircuitBreakerTransition(component, from.String(), to.String(), int(to))
					logger.Warn("circuit breaker transition",
						zap.String("component", component),
						zap.String("from", from.String()),
						zap.String("to", to.String()))
				},
			})
			observability.CircuitBreakerState.WithLabelValues(component).Set(0)
			logger.Info("circuit breaker enabled",
				zap.Int("failure_threshold", cfg.CircuitBreakerFailureThreshold),
				zap.Duration("timeout", cfg.CircuitBreakerTimeout))
		}
	}

	extractor := extract.New(cfg.Variant.ExtractOptions())
	averageService := service.NewAverageService(extractor, resultCache, cfg.CacheBackend, cfg.CacheTTL, breaker)

	healthConfig := &httphandler.HealthConfig{
		Config: health.Config{
			OverloadWindow:         cfg.OverloadWindow,
			OverloadThresholdPct:   cfg.OverloadThresholdPct,
			RateLimitRPS:           cfg.RateLimitRPS,
			IdleWindow:             cfg.IdleWindow,
			IdleThresholdReqPerMin: cfg.IdleThresholdReqPerMin,
			MinimumLifespan:        cfg.MinimumLifespan,
			DegradedWindow:         cfg.DegradedWindow,
			DegradedErrorPct:       cfg.DegradedErrorPct,
			StartTime:              time.Now(),
		},
	}
	if remote != nil {
		healthConfig.CachePing = remote.Ping
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}
	observability.SetRateLimitWindow(cfg.OverloadWindow)

	handler := httphandler.NewHandler(averageService, cfg.Variant, cfg.Route, cfg.MaxInputRunes, healthConfig, logger)
	logger.Info("variant",
		zap.String("profile", cfg.VariantProfile),
		zap.Bool("strict_validation", cfg.Variant.StrictValidation),
		zap.Bool("accept_alt_degree_glyph", cfg.Variant.AcceptAltDegreeGlyph),
		zap.Bool("include_count_in_json", cfg.Variant.IncludeCountInJSON),
		zap.Bool("negotiate_html", cfg.Variant.NegotiateHTML),
		zap.Bool("decode_structured_bodies", cfg.Variant.DecodeStructuredBodies))

	router := mux.NewRouter()
	router.Use(httphandler.CorrelationIDMiddleware(logger))
	router.Use(httphandler.MetricsMiddleware)
	router.Use(httphandler.RecoverMiddleware)
	router.HandleFunc("/health", handler.GetHealth).Methods("GET")
	router.Handle("/metrics", observability.MetricsHandler())
	averageRouter := router.PathPrefix(cfg.Route).Subrouter()
	averageRouter.Use(httphandler.OutcomeMiddleware(health.Default))
	averageRouter.Use(httphandler.RateLimitMiddleware(limiter))
	averageRouter.Use(httphandler.TimeoutMiddleware(cfg.RequestTimeout))
	averageRouter.Use(httphandler.BodyLimitMiddleware(cfg.MaxBodyBytes))
	averageRouter.HandleFunc("", handler.TemperatureAverage).Methods("GET", "POST")

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", ":"+cfg.ServerPort), zap.String("route", cfg.Route))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	health.SetShuttingDown(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	logger.Info("waiting for in-flight requests", zap.Int64("count", httphandler.InFlightCount()))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, cfg.ShutdownInFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}

	if remote != nil {
		if err := remote.Close(); err != nil {
			logger.Error("cache close", zap.Error(err))
		}
	}
	logger.Info("shutdown complete")
}
