package agent

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"

	"landrush.ai/internal/config"
	"landrush.ai/internal/persistence/transcript"
	"landrush.ai/internal/world"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func testConfig(t *testing.T, engineURL string) config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	cfg.ServerURL = "ws://127.0.0.1:1/ws"
	cfg.APIKey = "lr_test"
	cfg.AgentID = "agent-1"
	cfg.AgentName = "tester"
	cfg.Engine.BaseURL = engineURL
	cfg.DataDir = t.TempDir()
	return cfg
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := New(config.Config{}, testLogger()); err == nil {
		t.Fatalf("expected validation error for empty config")
	}
}

func TestStopWithoutStartIsSafe(t *testing.T) {
	s, err := New(testConfig(t, "http://127.0.0.1:1"), testLogger())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	s.Stop()
	s.Stop()
	select {
	case <-s.Done():
	default:
		t.Fatalf("Done not closed after Stop")
	}
}

func TestRecordEventLandsInCache(t *testing.T) {
	s, err := New(testConfig(t, "http://127.0.0.1:1"), testLogger())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	s.recordEvent(world.EventLandClaimed, "parcel (1,2) claimed by agent-1")

	events := s.cache.RecentEvents()
	if len(events) != 1 {
		t.Fatalf("expected 1 cached event, got %d", len(events))
	}
	if events[0].Type != world.EventLandClaimed {
		t.Fatalf("unexpected event type %q", events[0].Type)
	}
	if !strings.Contains(events[0].Summary, "(1,2)") {
		t.Fatalf("unexpected summary %q", events[0].Summary)
	}
}

// readDecisions decodes every transcript entry written under dataDir.
func readDecisions(t *testing.T, dataDir string) []transcript.DecisionEntry {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dataDir, "transcripts", "decisions-*.jsonl.zst"))
	if err != nil || len(matches) == 0 {
		t.Fatalf("no transcript files found: %v", err)
	}
	var out []transcript.DecisionEntry
	for _, path := range matches {
		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("open transcript: %v", err)
		}
		dec, err := zstd.NewReader(f)
		if err != nil {
			t.Fatalf("zstd reader: %v", err)
		}
		sc := bufio.NewScanner(dec)
		sc.Buffer(make([]byte, 0, 1<<20), 1<<20)
		for sc.Scan() {
			var e transcript.DecisionEntry
			if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
				t.Fatalf("bad transcript line: %v", err)
			}
			out = append(out, e)
		}
		dec.Close()
		f.Close()
	}
	return out
}

func TestDecisionStepRecordsTranscript(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"waiting for a better parcel"}}]}`))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	s, err := New(cfg, testLogger())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	s.transcript = transcript.NewLogger(cfg.DataDir)

	s.cache.UpdateWorld(world.Snapshot{GridW: 10, GridH: 10, X: 3, Y: 4, BalanceCents: 500})
	if err := s.decisionStep(context.Background(), "periodic"); err != nil {
		t.Fatalf("decision step: %v", err)
	}
	if err := s.transcript.Close(); err != nil {
		t.Fatalf("close transcript: %v", err)
	}

	entries := readDecisions(t, cfg.DataDir)
	if len(entries) != 1 {
		t.Fatalf("expected 1 transcript entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Trigger != "periodic" {
		t.Fatalf("unexpected trigger %q", e.Trigger)
	}
	if e.Text != "waiting for a better parcel" {
		t.Fatalf("unexpected text %q", e.Text)
	}
	if !strings.Contains(e.Prompt, "(3,4)") {
		t.Fatalf("prompt missing position: %q", e.Prompt)
	}
}

func TestDecisionStepExecutesToolCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{
		  "content":"checking in",
		  "tool_calls":[{"function":{"name":"status","arguments":"{}"}}]
		}}]}`))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	s, err := New(cfg, testLogger())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	s.transcript = transcript.NewLogger(cfg.DataDir)

	s.cache.UpdateWorld(world.Snapshot{GridW: 10, GridH: 10, X: 1, Y: 1})
	if err := s.decisionStep(context.Background(), "reactive"); err != nil {
		t.Fatalf("decision step: %v", err)
	}
	if err := s.transcript.Close(); err != nil {
		t.Fatalf("close transcript: %v", err)
	}

	entries := readDecisions(t, cfg.DataDir)
	if len(entries) != 1 {
		t.Fatalf("expected 1 transcript entry, got %d", len(entries))
	}
	calls := entries[0].Calls
	if len(calls) != 1 || calls[0].Tool != "status" {
		t.Fatalf("unexpected call records: %+v", calls)
	}
	if calls[0].Err != "" {
		t.Fatalf("status tool should not fail: %s", calls[0].Err)
	}
	if !strings.Contains(calls[0].Result, "disconnected") {
		t.Fatalf("status result should report disconnected: %q", calls[0].Result)
	}
}

func TestDecisionStepSurfacesEngineFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	s, err := New(cfg, testLogger())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	s.transcript = transcript.NewLogger(cfg.DataDir)

	if err := s.decisionStep(context.Background(), "periodic"); err == nil {
		t.Fatalf("expected engine failure to propagate")
	}
	if err := s.transcript.Close(); err != nil {
		t.Fatalf("close transcript: %v", err)
	}

	entries := readDecisions(t, cfg.DataDir)
	if len(entries) != 1 || entries[0].Err == "" {
		t.Fatalf("failed decision not recorded: %+v", entries)
	}
}
