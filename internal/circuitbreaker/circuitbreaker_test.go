package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func newTestBreaker(now *time.Time, transitions *[]string) *CircuitBreaker {
	cb := New(Config{
		FailureThreshold: 2,
		SuccessThreshold: 2,
		Timeout:          time.Second,
		Component:        "cache",
		OnStateChange: func(component string, from, to State) {
			*transitions = append(*transitions, component+":"+from.String()+"->"+to.String())
		},
	})
	cb.now = func() time.Time { return *now }
	return cb
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	now := time.Unix(0, 0)
	var transitions []string
	cb := newTestBreaker(&now, &transitions)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := cb.Call(ctx, func() error { return errBoom }); !errors.Is(err, errBoom) {
			t.Fatalf("Call() error = %v, want errBoom", err)
		}
	}
	if cb.State() != StateOpen {
		t.Fatalf("State() = %v, want open", cb.State())
	}

	called := false
	err := cb.Call(ctx, func() error { called = true; return nil })
	if !errors.Is(err, ErrOpen) {
		t.Errorf("Call() while open error = %v, want ErrOpen", err)
	}
	if called {
		t.Error("fn should not run while open")
	}
	if len(transitions) != 1 || transitions[0] != "cache:closed->open" {
		t.Errorf("transitions = %v", transitions)
	}
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	now := time.Unix(0, 0)
	var transitions []string
	cb := newTestBreaker(&now, &transitions)
	ctx := context.Background()

	_ = cb.Call(ctx, func() error { return errBoom })
	_ = cb.Call(ctx, func() error { return errBoom })
	now = now.Add(2 * time.Second)

	if err := cb.Call(ctx, func() error { return nil }); err != nil {
		t.Fatalf("probe Call() error = %v", err)
	}
	if cb.State() != StateHalfOpen {
		t.Fatalf("State() = %v, want half_open after one probe success", cb.State())
	}
	if err := cb.Call(ctx, func() error { return nil }); err != nil {
		t.Fatalf("second probe Call() error = %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("State() = %v, want closed", cb.State())
	}
	want := []string{"cache:closed->open", "cache:open->half_open", "cache:half_open->closed"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transitions[%d] = %q, want %q", i, transitions[i], want[i])
		}
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Unix(0, 0)
	var transitions []string
	cb := newTestBreaker(&now, &transitions)
	ctx := context.Background()

	_ = cb.Call(ctx, func() error { return errBoom })
	_ = cb.Call(ctx, func() error { return errBoom })
	now = now.Add(2 * time.Second)
	_ = cb.Call(ctx, func() error { return errBoom })

	if cb.State() != StateOpen {
		t.Errorf("State() = %v, want open after failed probe", cb.State())
	}
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	now := time.Unix(0, 0)
	var transitions []string
	cb := newTestBreaker(&now, &transitions)
	ctx := context.Background()

	_ = cb.Call(ctx, func() error { return errBoom })
	_ = cb.Call(ctx, func() error { return nil })
	_ = cb.Call(ctx, func() error { return errBoom })

	if cb.State() != StateClosed {
		t.Errorf("State() = %v, want closed; failures were not consecutive", cb.State())
	}
}

func TestCircuitBreaker_CancelledContext(t *testing.T) {
	cb := New(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	if err := cb.Call(ctx, func() error { called = true; return nil }); !errors.Is(err, context.Canceled) {
		t.Errorf("Call() error = %v, want context.Canceled", err)
	}
	if called {
		t.Error("fn should not run with a cancelled context")
	}
}

func TestState_String(t *testing.T) {
	if StateClosed.String() != "closed" || StateOpen.String() != "open" || StateHalfOpen.String() != "half_open" || State(9).String() != "unknown" {
		t.Error("State.String() mismatch")
	}
}
