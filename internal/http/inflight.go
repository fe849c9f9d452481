package http

import (
	"context"
	"sync/atomic"
	"time"
)

// inFlight counts requests between MetricsMiddleware entry and exit so shutdown
// can drain them after the listener closes.
type inFlight struct {
	n atomic.Int64
}

func (f *inFlight) begin() { f.n.Add(1) }

func (f *inFlight) done() { f.n.Add(-1) }

func (f *inFlight) count() int64 { return f.n.Load() }

// drain polls every interval until the count is zero or ctx ends.
func (f *inFlight) drain(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for f.count() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

var requestsInFlight inFlight

// InFlightCount returns the number of requests currently being served.
func InFlightCount() int64 {
	return requestsInFlight.count()
}

// WaitForInFlight blocks until in-flight requests reach zero or ctx is done.
func WaitForInFlight(ctx context.Context, checkInterval time.Duration) error {
	return requestsInFlight.drain(ctx, checkInterval)
}
