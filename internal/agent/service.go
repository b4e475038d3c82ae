// Package agent wires the connection client, the world-state cache, the
// scheduler and the decision engine into one runnable service. One Service
// per agent per process.
package agent

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"landrush.ai/internal/client"
	"landrush.ai/internal/config"
	"landrush.ai/internal/engine"
	"landrush.ai/internal/persistence/journal"
	"landrush.ai/internal/persistence/transcript"
	"landrush.ai/internal/scheduler"
	"landrush.ai/internal/status"
	"landrush.ai/internal/tools"
	"landrush.ai/internal/world"
)

const statusRefresh = time.Minute

type Service struct {
	cfg config.Config
	log *log.Logger

	cache    *world.StateCache
	client   *client.Client
	sched    *scheduler.Scheduler
	registry *tools.Registry
	engine   *engine.Client
	status   *status.Writer

	journal    *journal.Journal
	transcript *transcript.Logger

	stopOnce   sync.Once
	stopped    chan struct{}
	refreshOff chan struct{}
}

// New validates the configuration and builds the service. A configuration
// error means nothing gets started: no connection, no scheduler.
func New(cfg config.Config, logger *log.Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Service{
		cfg:        cfg,
		log:        logger,
		cache:      world.NewStateCache(cfg.Events.Max, cfg.EventTTL()),
		stopped:    make(chan struct{}),
		refreshOff: make(chan struct{}),
	}

	s.client = client.New(client.Config{
		ServerURL:         cfg.ServerURL,
		APIKey:            cfg.APIKey,
		AgentID:           cfg.AgentID,
		AgentName:         cfg.AgentName,
		HeartbeatInterval: cfg.HeartbeatInterval(),
		ClaimTimeout:      cfg.ClaimTimeout(),
	}, (*observer)(s), log.New(logger.Writer(), "[client] ", logger.Flags()))

	s.registry = tools.NewRegistry(s.client, s.cache, 0)
	s.engine = engine.New(engine.Config{
		BaseURL: cfg.Engine.BaseURL,
		APIKey:  cfg.Engine.APIKey,
		Model:   cfg.Engine.Model,
	})
	s.sched = scheduler.New(scheduler.Config{
		Interval: cfg.TickInterval(),
		Warmup:   cfg.Warmup(),
		Debounce: cfg.Debounce(),
	}, s.client.IsConnected, s.decisionStep, log.New(logger.Writer(), "[scheduler] ", logger.Flags()))

	statusPath := cfg.StatusFile
	if statusPath == "" {
		statusPath = filepath.Join(cfg.DataDir, "status.json")
	}
	s.status = status.NewWriter(statusPath, cfg.AgentID, cfg.AgentName, cfg.ServerURL)

	return s, nil
}

func (s *Service) Start() error {
	if !s.cfg.DisableJournal {
		j, err := journal.Open(filepath.Join(s.cfg.DataDir, "journal.db"))
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		s.journal = j
	}
	s.transcript = transcript.NewLogger(s.cfg.DataDir)

	s.client.Start()
	s.sched.Start()
	go s.refreshLoop()
	s.log.Printf("agent %s (%s) started against %s", s.cfg.AgentID, s.cfg.AgentName, s.cfg.ServerURL)
	return nil
}

// Stop tears everything down: scheduler first (its in-flight tick is left
// to finish), then the connection, then persistence; the cache is cleared
// last.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		s.sched.Stop()
		s.client.Close()
		close(s.refreshOff)
		if s.journal != nil {
			_ = s.journal.Close()
		}
		if s.transcript != nil {
			_ = s.transcript.Close()
		}
		s.cache.Clear()
		_ = s.status.Flush()
		s.log.Printf("agent stopped")
		close(s.stopped)
	})
}

// Done is closed once Stop has completed (whether initiated locally or by
// a server shutdown command).
func (s *Service) Done() <-chan struct{} { return s.stopped }

func (s *Service) refreshLoop() {
	t := time.NewTicker(statusRefresh)
	defer t.Stop()
	for {
		select {
		case <-s.refreshOff:
			return
		case <-t.C:
			if err := s.status.Flush(); err != nil {
				s.log.Printf("status export: %v", err)
			}
		}
	}
}

// decisionStep is the scheduler's tick body: format the world, ask the
// engine, execute what it chose. All failures are reported upward to be
// logged and swallowed.
func (s *Service) decisionStep(ctx context.Context, trigger string) error {
	snap, haveWorld := s.cache.World()
	events := s.cache.RecentEvents()
	prompt := engine.BuildPrompt(snap, haveWorld, events)

	entry := transcript.DecisionEntry{
		At:      time.Now().UTC().Format(time.RFC3339Nano),
		Trigger: trigger,
		Prompt:  prompt,
	}

	dec, err := s.engine.Decide(ctx, engine.SystemPrompt, prompt, s.registry.Definitions())
	if err != nil {
		entry.Err = err.Error()
		s.writeDecision(entry, 0, err)
		return err
	}
	entry.Text = dec.Text

	for _, call := range dec.Calls {
		rec := transcript.CallRecord{Tool: call.Name, Args: string(call.Arguments)}
		res, cerr := s.registry.Execute(ctx, call.Name, call.Arguments)
		if cerr != nil {
			rec.Err = cerr.Error()
			s.log.Printf("tool %s: %v", call.Name, cerr)
		} else {
			rec.Result = res
			s.log.Printf("tool %s: %s", call.Name, res)
		}
		entry.Calls = append(entry.Calls, rec)
	}

	s.writeDecision(entry, len(dec.Calls), nil)
	return nil
}

func (s *Service) writeDecision(entry transcript.DecisionEntry, calls int, stepErr error) {
	if s.transcript != nil {
		if err := s.transcript.WriteDecision(entry); err != nil {
			s.log.Printf("transcript: %v", err)
		}
	}
	s.journal.RecordDecision(time.Now(), entry.Trigger, entry.Text, calls, stepErr)
}
