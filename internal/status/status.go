// Package status exports a periodically overwritten record of the agent's
// presence for external inspection. The core never reads it back.
package status

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type Record struct {
	Connected      bool   `json:"connected"`
	AgentID        string `json:"agent_id"`
	AgentName      string `json:"agent_name"`
	ServerURL      string `json:"server_url"`
	ConnectedAt    string `json:"connected_at,omitempty"`
	DisconnectedAt string `json:"disconnected_at,omitempty"`
}

// Writer overwrites one JSON status file atomically on every change.
type Writer struct {
	path string

	mu  sync.Mutex
	rec Record
}

func NewWriter(path, agentID, agentName, serverURL string) *Writer {
	return &Writer{
		path: path,
		rec: Record{
			AgentID:   agentID,
			AgentName: agentName,
			ServerURL: serverURL,
		},
	}
}

func (w *Writer) SetConnected(at time.Time) error {
	w.mu.Lock()
	w.rec.Connected = true
	w.rec.ConnectedAt = at.UTC().Format(time.RFC3339Nano)
	rec := w.rec
	w.mu.Unlock()
	return w.write(rec)
}

func (w *Writer) SetDisconnected(at time.Time) error {
	w.mu.Lock()
	w.rec.Connected = false
	w.rec.DisconnectedAt = at.UTC().Format(time.RFC3339Nano)
	rec := w.rec
	w.mu.Unlock()
	return w.write(rec)
}

// Flush rewrites the current record; used by the periodic refresh.
func (w *Writer) Flush() error {
	w.mu.Lock()
	rec := w.rec
	w.mu.Unlock()
	return w.write(rec)
}

func (w *Writer) write(rec Record) error {
	if w.path == "" {
		return nil
	}
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(w.path, b)
}

func writeFileAtomic(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
