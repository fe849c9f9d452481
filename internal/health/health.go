package health

import (
	"net/http"
	"sync/atomic"
	"time"
)

// Status names reported by /health.
const (
	StatusHealthy      = "healthy"
	StatusIdle         = "idle"
	StatusOverloaded   = "overloaded"
	StatusDegraded     = "degraded"
	StatusShuttingDown = "shutting-down"
)

// Default is the process-wide tracker fed by the HTTP middleware.
var Default = NewTracker(30 * time.Minute)

var shuttingDown atomic.Bool

// SetShuttingDown sets the drain flag. /health answers 503 shutting-down while it is true.
func SetShuttingDown(v bool) {
	shuttingDown.Store(v)
}

// IsShuttingDown reports whether the process is draining.
func IsShuttingDown() bool {
	return shuttingDown.Load()
}

// Config holds the thresholds Evaluate applies. Zero windows disable the matching check.
type Config struct {
	OverloadWindow         time.Duration
	OverloadThresholdPct   int
	RateLimitRPS           int // 0 when the rate limiter is disabled
	IdleWindow             time.Duration
	IdleThresholdReqPerMin int
	MinimumLifespan        time.Duration
	DegradedWindow         time.Duration
	DegradedErrorPct       int
	StartTime              time.Time
}

// Result is the evaluated health state.
type Result struct {
	Status     string
	StatusCode int
	Reason     string
}

// Evaluate checks conditions in priority order:
// shutting-down > overloaded > idle > degraded > healthy.
func Evaluate(cfg Config, t *Tracker, now time.Time) Result {
	if IsShuttingDown() {
		return Result{StatusShuttingDown, http.StatusServiceUnavailable, "signal"}
	}
	if cfg.OverloadWindow > 0 && cfg.RateLimitRPS > 0 && cfg.OverloadThresholdPct > 0 {
		threshold := float64(cfg.RateLimitRPS) * cfg.OverloadWindow.Seconds() * float64(cfg.OverloadThresholdPct) / 100
		if float64(t.Counts(cfg.OverloadWindow).Total()) > threshold {
			return Result{StatusOverloaded, http.StatusServiceUnavailable, "overload_threshold"}
		}
	}
	if cfg.IdleWindow > 0 && cfg.MinimumLifespan > 0 && now.Sub(cfg.StartTime) >= cfg.MinimumLifespan {
		minRequests := float64(cfg.IdleThresholdReqPerMin) * cfg.IdleWindow.Minutes()
		if float64(t.Counts(cfg.IdleWindow).Served()) < minRequests {
			return Result{StatusIdle, http.StatusOK, "low_traffic"}
		}
	}
	if cfg.DegradedWindow > 0 && cfg.DegradedErrorPct > 0 {
		c := t.Counts(cfg.DegradedWindow)
		if served := c.Served(); served > 0 {
			pct := float64(c.Errors) * 100 / float64(served)
			if pct >= float64(cfg.DegradedErrorPct) {
				return Result{StatusDegraded, http.StatusServiceUnavailable, "error_rate_breach"}
			}
		}
	}
	return Result{StatusHealthy, http.StatusOK, ""}
}
