package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerURL string `yaml:"server_url"`
	APIKey    string `yaml:"api_key"`
	AgentID   string `yaml:"agent_id"`
	AgentName string `yaml:"agent_name"`

	HeartbeatIntervalS int `yaml:"heartbeat_interval_s"`
	ClaimTimeoutS      int `yaml:"claim_timeout_s"`

	Scheduler SchedulerConfig `yaml:"scheduler"`
	Engine    EngineConfig    `yaml:"engine"`
	Events    EventsConfig    `yaml:"events"`

	DataDir        string `yaml:"data_dir"`
	StatusFile     string `yaml:"status_file"`
	DisableJournal bool   `yaml:"disable_journal"`
}

type SchedulerConfig struct {
	IntervalS int `yaml:"interval_s"`
	WarmupS   int `yaml:"warmup_s"`
	DebounceS int `yaml:"debounce_s"`
}

type EngineConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

type EventsConfig struct {
	Max  int `yaml:"max"`
	TTLS int `yaml:"ttl_s"`
}

// Load reads the agent config. An empty path returns the defaults (which
// fail Validate, since credentials cannot be defaulted).
func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("agent.yaml: %w", err)
	}
	cfg.Normalize()
	return cfg, nil
}

func defaults() Config {
	return Config{
		HeartbeatIntervalS: 15,
		ClaimTimeoutS:      10,
		Scheduler: SchedulerConfig{
			IntervalS: 60,
			WarmupS:   10,
			DebounceS: 10,
		},
		Engine: EngineConfig{
			Model: "gpt-4o-mini",
		},
		Events: EventsConfig{
			Max:  50,
			TTLS: 600,
		},
		DataDir: "./data",
	}
}

func (c *Config) Normalize() {
	c.ServerURL = strings.TrimSpace(c.ServerURL)
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.AgentID = strings.TrimSpace(c.AgentID)
	c.AgentName = strings.TrimSpace(c.AgentName)
	if c.AgentName == "" {
		c.AgentName = "agent"
	}
	d := defaults()
	if c.HeartbeatIntervalS <= 0 {
		c.HeartbeatIntervalS = d.HeartbeatIntervalS
	}
	if c.ClaimTimeoutS <= 0 {
		c.ClaimTimeoutS = d.ClaimTimeoutS
	}
	if c.Scheduler.IntervalS <= 0 {
		c.Scheduler.IntervalS = d.Scheduler.IntervalS
	}
	if c.Scheduler.WarmupS < 0 {
		c.Scheduler.WarmupS = d.Scheduler.WarmupS
	}
	if c.Scheduler.DebounceS <= 0 {
		c.Scheduler.DebounceS = d.Scheduler.DebounceS
	}
	if c.Events.Max <= 0 {
		c.Events.Max = d.Events.Max
	}
	if c.Events.TTLS <= 0 {
		c.Events.TTLS = d.Events.TTLS
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = d.DataDir
	}
}

// Validate reports the startup errors that must stop the service before
// any connection or scheduler is started.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("config: server_url is required")
	}
	if !strings.HasPrefix(c.ServerURL, "ws://") && !strings.HasPrefix(c.ServerURL, "wss://") {
		return fmt.Errorf("config: server_url must be a ws:// or wss:// url, got %q", c.ServerURL)
	}
	if c.APIKey == "" {
		return fmt.Errorf("config: api_key is required")
	}
	if c.AgentID == "" {
		return fmt.Errorf("config: agent_id is required")
	}
	if strings.TrimSpace(c.Engine.BaseURL) == "" {
		return fmt.Errorf("config: engine.base_url is required")
	}
	return nil
}

func (c *Config) HeartbeatInterval() time.Duration { return secs(c.HeartbeatIntervalS) }
func (c *Config) ClaimTimeout() time.Duration      { return secs(c.ClaimTimeoutS) }
func (c *Config) TickInterval() time.Duration      { return secs(c.Scheduler.IntervalS) }
func (c *Config) Warmup() time.Duration            { return secs(c.Scheduler.WarmupS) }
func (c *Config) Debounce() time.Duration          { return secs(c.Scheduler.DebounceS) }
func (c *Config) EventTTL() time.Duration          { return secs(c.Events.TTLS) }

func secs(n int) time.Duration { return time.Duration(n) * time.Second }
