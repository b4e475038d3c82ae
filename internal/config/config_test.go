package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "agent.yaml")
	body := `
server_url: ws://localhost:8080/v1/ws
api_key: lr_test
agent_id: A1
engine:
  base_url: https://api.openai.com/v1
`
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.AgentName != "agent" {
		t.Fatalf("expected default agent_name, got %q", cfg.AgentName)
	}
	if cfg.TickInterval() != 60*time.Second || cfg.Warmup() != 10*time.Second || cfg.Debounce() != 10*time.Second {
		t.Fatalf("scheduler defaults wrong: %+v", cfg.Scheduler)
	}
	if cfg.HeartbeatInterval() != 15*time.Second {
		t.Fatalf("heartbeat default wrong: %v", cfg.HeartbeatInterval())
	}
	if cfg.Events.Max != 50 || cfg.EventTTL() != 10*time.Minute {
		t.Fatalf("events defaults wrong: %+v", cfg.Events)
	}
}

func TestValidateRejectsMissingCredentials(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
	}{
		{"missing server_url", func(c *Config) { c.ServerURL = "" }},
		{"bad scheme", func(c *Config) { c.ServerURL = "http://localhost" }},
		{"missing api_key", func(c *Config) { c.APIKey = "" }},
		{"missing agent_id", func(c *Config) { c.AgentID = "" }},
		{"missing engine base_url", func(c *Config) { c.Engine.BaseURL = "" }},
	}
	for _, tc := range cases {
		cfg := defaults()
		cfg.ServerURL = "ws://localhost:8080/v1/ws"
		cfg.APIKey = "lr_test"
		cfg.AgentID = "A1"
		cfg.Engine.BaseURL = "https://api.openai.com/v1"
		tc.mut(&cfg)
		cfg.Normalize()
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
