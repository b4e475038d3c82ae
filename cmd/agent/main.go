package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"landrush.ai/internal/agent"
	"landrush.ai/internal/config"
)

func main() {
	var (
		configPath = flag.String("config", "./agent.yaml", "agent config path")

		serverURL = flag.String("server", "", "world server ws url (overrides config)")
		apiKey    = flag.String("api_key", "", "world server api key (overrides config)")
		agentID   = flag.String("agent", "", "agent id (overrides config)")
		dataDir   = flag.String("data", "", "runtime data directory (overrides config)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[agent] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if v := strings.TrimSpace(*serverURL); v != "" {
		cfg.ServerURL = v
	}
	if v := strings.TrimSpace(*apiKey); v != "" {
		cfg.APIKey = v
	}
	if v := strings.TrimSpace(*agentID); v != "" {
		cfg.AgentID = v
	}
	if v := strings.TrimSpace(*dataDir); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("LANDRUSH_ENGINE_API_KEY")); v != "" {
		cfg.Engine.APIKey = v
	}

	svc, err := agent.New(cfg, logger)
	if err != nil {
		logger.Fatalf("configure agent: %v", err)
	}
	if err := svc.Start(); err != nil {
		logger.Fatalf("start agent: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Printf("signal received, shutting down")
		svc.Stop()
	case <-svc.Done():
		// server-side shutdown command already stopped the service
	}
}
