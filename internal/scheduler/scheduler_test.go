package scheduler

import (
	"context"
	"errors"
	"io"
	"log"
	"sync/atomic"
	"testing"
	"time"
)

func discard() *log.Logger { return log.New(io.Discard, "", 0) }

func counterStep(n *atomic.Int32) Step {
	return func(context.Context, string) error {
		n.Add(1)
		return nil
	}
}

func TestPeriodicTickFiresAfterWarmup(t *testing.T) {
	var n atomic.Int32
	s := New(Config{Interval: time.Hour, Warmup: 30 * time.Millisecond, Debounce: time.Hour},
		nil, counterStep(&n), discard())
	s.Start()
	defer s.Stop()

	if got := n.Load(); got != 0 {
		t.Fatalf("step ran before warm-up: %d", got)
	}
	waitFor(t, func() bool { return n.Load() == 1 })
}

func TestGateSkipsTicksWhileDisconnected(t *testing.T) {
	var n atomic.Int32
	var connected atomic.Bool
	s := New(Config{Interval: 20 * time.Millisecond, Warmup: 1 * time.Millisecond, Debounce: 5 * time.Millisecond},
		connected.Load, counterStep(&n), discard())
	s.Start()
	defer s.Stop()

	time.Sleep(120 * time.Millisecond)
	if got := n.Load(); got != 0 {
		t.Fatalf("decision step invoked while disconnected: %d", got)
	}

	connected.Store(true)
	waitFor(t, func() bool { return n.Load() >= 1 })
}

func TestReactiveTriggerDebounced(t *testing.T) {
	var n atomic.Int32
	s := New(Config{Interval: time.Hour, Warmup: 1 * time.Millisecond, Debounce: time.Hour},
		nil, counterStep(&n), discard())
	s.Start()
	defer s.Stop()

	waitFor(t, func() bool { return n.Load() == 1 }) // warm-up tick

	s.Trigger()
	s.Trigger()
	time.Sleep(100 * time.Millisecond)
	if got := n.Load(); got != 1 {
		t.Fatalf("reactive triggers inside the debounce window must be dropped, got %d runs", got)
	}
}

func TestReactiveTriggerAllowedAfterWindow(t *testing.T) {
	var n atomic.Int32
	s := New(Config{Interval: time.Hour, Warmup: 1 * time.Millisecond, Debounce: 30 * time.Millisecond},
		nil, counterStep(&n), discard())
	s.Start()
	defer s.Stop()

	waitFor(t, func() bool { return n.Load() == 1 })

	time.Sleep(60 * time.Millisecond) // beyond the window
	s.Trigger()
	waitFor(t, func() bool { return n.Load() == 2 })

	s.Trigger() // immediately again: inside the window now
	time.Sleep(100 * time.Millisecond)
	if got := n.Load(); got != 2 {
		t.Fatalf("expected second trigger dropped, got %d runs", got)
	}
}

func TestStepErrorIsSwallowed(t *testing.T) {
	var n atomic.Int32
	step := func(context.Context, string) error {
		n.Add(1)
		return errors.New("engine unreachable")
	}
	s := New(Config{Interval: 20 * time.Millisecond, Warmup: 1 * time.Millisecond, Debounce: 5 * time.Millisecond},
		nil, step, discard())
	s.Start()
	defer s.Stop()

	waitFor(t, func() bool { return n.Load() >= 3 }) // keeps ticking through failures
}

func TestStopCancelsWarmup(t *testing.T) {
	var n atomic.Int32
	s := New(Config{Interval: time.Hour, Warmup: time.Hour, Debounce: time.Hour},
		nil, counterStep(&n), discard())
	s.Start()

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatalf("Stop blocked on warm-up timer")
	}
	if n.Load() != 0 {
		t.Fatalf("step ran despite stop during warm-up")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
