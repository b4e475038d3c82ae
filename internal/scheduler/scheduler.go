// Package scheduler decides when to ask the decision engine for the next
// action. One scheduler instance exists per agent; ticks run on its single
// goroutine, so decision-step invocations never overlap by construction.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	DefaultInterval = 60 * time.Second
	DefaultWarmup   = 10 * time.Second
	DefaultDebounce = 10 * time.Second
)

// Step is the externally supplied decision step. Errors are logged and
// swallowed; they never stop the scheduler.
type Step func(ctx context.Context, trigger string) error

type Config struct {
	Interval time.Duration // periodic tick interval
	Warmup   time.Duration // delay before the first periodic tick
	Debounce time.Duration // window in which reactive triggers are dropped
}

type Scheduler struct {
	cfg  Config
	step Step
	gate func() bool // connectivity gate; a false read skips the tick
	log  *log.Logger

	startOnce sync.Once
	closeOnce sync.Once
	started   bool
	trigger   chan struct{}
	stop      chan struct{}
	done      chan struct{}

	mu      sync.Mutex
	lastRun time.Time

	now func() time.Time // test hook
}

func New(cfg Config, gate func() bool, step Step, logger *log.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Warmup < 0 {
		cfg.Warmup = DefaultWarmup
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if gate == nil {
		gate = func() bool { return true }
	}
	return &Scheduler{
		cfg:     cfg,
		step:    step,
		gate:    gate,
		log:     logger,
		trigger: make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		now:     time.Now,
	}
}

func (s *Scheduler) Start() {
	s.startOnce.Do(func() {
		s.started = true
		go s.run()
	})
}

// Stop cancels the warm-up delay and the periodic timer. An in-flight
// decision step is left to finish and report normally.
func (s *Scheduler) Stop() {
	s.closeOnce.Do(func() {
		close(s.stop)
		if s.started {
			<-s.done
		}
	})
}

// Trigger requests a reactive tick. Non-blocking; if a trigger is already
// queued or the debounce window decides against it, this one is dropped,
// not delayed.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

func (s *Scheduler) run() {
	defer close(s.done)

	warmup := time.NewTimer(s.cfg.Warmup)
	defer warmup.Stop()
	select {
	case <-s.stop:
		return
	case <-warmup.C:
	}

	s.tick("periodic")

	t := time.NewTicker(s.cfg.Interval)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			s.tick("periodic")
		case <-s.trigger:
			if s.withinDebounce() {
				continue
			}
			s.tick("reactive")
		}
	}
}

func (s *Scheduler) withinDebounce() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.lastRun.IsZero() && s.now().Sub(s.lastRun) < s.cfg.Debounce
}

// tick runs one decision step, gated on connectivity. A skipped tick does
// not advance the debounce window.
func (s *Scheduler) tick(kind string) {
	if !s.gate() {
		return
	}
	s.mu.Lock()
	s.lastRun = s.now()
	s.mu.Unlock()

	if err := s.step(context.Background(), kind); err != nil {
		s.log.Printf("%s tick: decision step failed: %v", kind, err)
	}
}
