// Package journal keeps a local SQLite index of world events and decision
// rounds for offline inspection. Write-only from the agent's point of
// view: the in-memory cache never reads it back, so a restart always
// starts from an empty event log.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

type Journal struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqEvent reqKind = iota + 1
	reqDecision
)

type req struct {
	kind     reqKind
	event    eventRow
	decision decisionRow
}

type eventRow struct {
	At      string
	Kind    string
	Summary string
}

type decisionRow struct {
	At      string
	Trigger string
	Text    string
	Calls   int
	Err     string
}

func Open(path string) (*Journal, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	j := &Journal{
		db: db,
		ch: make(chan req, 4096),
	}
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		j.loop()
	}()
	return j, nil
}

func initPragmas(db *sql.DB) error {
	// WAL suits an append-style workload.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			at TEXT NOT NULL,
			kind TEXT NOT NULL,
			summary TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_kind_at ON events(kind, at);`,
		`CREATE TABLE IF NOT EXISTS decisions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			at TEXT NOT NULL,
			trigger_kind TEXT NOT NULL,
			text TEXT,
			calls INTEGER NOT NULL,
			err TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_at ON decisions(at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (j *Journal) Close() error {
	var err error
	j.once.Do(func() {
		j.closed.Store(true)
		close(j.ch)
		j.wg.Wait()
		err = j.db.Close()
	})
	return err
}

// RecordEvent indexes one notable world event. Dropped, not blocked on,
// when the writer falls behind.
func (j *Journal) RecordEvent(at time.Time, kind, summary string) {
	if j == nil || j.closed.Load() {
		return
	}
	r := eventRow{At: at.UTC().Format(time.RFC3339Nano), Kind: kind, Summary: summary}
	select {
	case j.ch <- req{kind: reqEvent, event: r}:
	default:
	}
}

// RecordDecision indexes one decision round.
func (j *Journal) RecordDecision(at time.Time, trigger, text string, calls int, stepErr error) {
	if j == nil || j.closed.Load() {
		return
	}
	r := decisionRow{
		At:      at.UTC().Format(time.RFC3339Nano),
		Trigger: trigger,
		Text:    text,
		Calls:   calls,
	}
	if stepErr != nil {
		r.Err = stepErr.Error()
	}
	select {
	case j.ch <- req{kind: reqDecision, decision: r}:
	default:
	}
}

func (j *Journal) loop() {
	for r := range j.ch {
		switch r.kind {
		case reqEvent:
			_, _ = j.db.Exec(
				`INSERT INTO events (at, kind, summary) VALUES (?, ?, ?)`,
				r.event.At, r.event.Kind, r.event.Summary,
			)
		case reqDecision:
			_, _ = j.db.Exec(
				`INSERT INTO decisions (at, trigger_kind, text, calls, err) VALUES (?, ?, ?, ?, ?)`,
				r.decision.At, r.decision.Trigger, r.decision.Text, r.decision.Calls, r.decision.Err,
			)
		}
	}
}
