package http

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInFlight_Count(t *testing.T) {
	var f inFlight
	f.begin()
	f.begin()
	if got := f.count(); got != 2 {
		t.Fatalf("count() = %d, want 2", got)
	}
	f.done()
	f.done()
	if got := f.count(); got != 0 {
		t.Errorf("count() = %d, want 0", got)
	}
}

func TestInFlight_DrainReturnsWhenIdle(t *testing.T) {
	var f inFlight
	f.begin()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- f.drain(ctx, 5*time.Millisecond) }()

	time.Sleep(10 * time.Millisecond)
	f.done()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("drain() = %v, want nil", err)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("drain did not return after count reached zero")
	}
}

func TestInFlight_DrainContextCanceled(t *testing.T) {
	var f inFlight
	f.begin()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := f.drain(ctx, 5*time.Millisecond); !errors.Is(err, context.Canceled) {
		t.Errorf("drain() = %v, want context.Canceled", err)
	}
}
