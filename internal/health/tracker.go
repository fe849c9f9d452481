package health

import (
	"sync"
	"time"
)

// Outcome classifies a finished request for health accounting.
type Outcome int

const (
	OutcomeSuccess Outcome = iota // any answered request below 500, 4xx included
	OutcomeError                  // 5xx
	OutcomeDenied                 // 429 from the rate limiter
)

// Counts is a snapshot of outcomes inside a window.
type Counts struct {
	Success int
	Errors  int
	Denied  int
}

// Total returns every outcome, denials included. Used for overload.
func (c Counts) Total() int { return c.Success + c.Errors + c.Denied }

// Served returns the requests that reached a handler. Used for idle and error rate.
func (c Counts) Served() int { return c.Success + c.Errors }

// Tracker keeps outcome timestamps for sliding-window queries. Entries older
// than maxAge are pruned on write, so windows longer than maxAge under-count.
type Tracker struct {
	mu      sync.Mutex
	maxAge  time.Duration
	now     func() time.Time
	success []time.Time
	errors  []time.Time
	denied  []time.Time
}

// NewTracker returns a Tracker that retains maxAge of history.
func NewTracker(maxAge time.Duration) *Tracker {
	return &Tracker{maxAge: maxAge, now: time.Now}
}

// Record appends one outcome at the current time.
func (t *Tracker) Record(o Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	switch o {
	case OutcomeError:
		t.errors = append(t.errors, now)
	case OutcomeDenied:
		t.denied = append(t.denied, now)
	default:
		t.success = append(t.success, now)
	}
	t.pruneLocked(now)
}

// Counts returns the outcomes recorded within window ending now.
func (t *Tracker) Counts(window time.Duration) Counts {
	t.mu.Lock()
	defer t.mu.Unlock()
	cutoff := t.now().Add(-window)
	return Counts{
		Success: countSince(t.success, cutoff),
		Errors:  countSince(t.errors, cutoff),
		Denied:  countSince(t.denied, cutoff),
	}
}

// Reset clears all recorded outcomes.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.success, t.errors, t.denied = nil, nil, nil
}

// countSince counts timestamps not before cutoff. Timestamps are appended in
// order, so the scan starts from the newest end.
func countSince(times []time.Time, cutoff time.Time) int {
	n := 0
	for i := len(times) - 1; i >= 0 && !times[i].Before(cutoff); i-- {
		n++
	}
	return n
}

func (t *Tracker) pruneLocked(now time.Time) {
	cutoff := now.Add(-t.maxAge)
	for _, s := range []*[]time.Time{&t.success, &t.errors, &t.denied} {
		times := *s
		i := 0
		for ; i < len(times) && times[i].Before(cutoff); i++ {
		}
		if i > 0 {
			*s = append(times[:0], times[i:]...)
		}
	}
}
