// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package assistant assembles the Movi service: fleet store, tool
// catalog, turn orchestrator, speech providers, and HTTP routes.
//
// # Usage
//
//	cfg := assistant.Config{Port: 8000}
//	svc, err := assistant.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(svc.Run())
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/moviops/movi/services/assistant/agent"
	"github.com/moviops/movi/services/assistant/agent/tools"
	"github.com/moviops/movi/services/assistant/observability"
	"github.com/moviops/movi/services/assistant/routes"
	"github.com/moviops/movi/services/assistant/ttl"
	"github.com/moviops/movi/services/fleet"
	"github.com/moviops/movi/services/llm"
	"github.com/moviops/movi/services/speech"
)

// Service is the assistant lifecycle contract.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use. Run() blocks and
// should only be called once per instance.
type Service interface {
	// Run starts the HTTP server and blocks until it stops.
	Run() error

	// Router returns the configured Gin engine for testing.
	Router() *gin.Engine

	// Close releases the store and background workers. Safe after a
	// failed Run.
	Close() error
}

// Config holds assistant configuration. Zero values use defaults.
type Config struct {
	// Port is the HTTP server port. Default: 8000
	Port int

	// DataDir is the BadgerDB directory. Default: ./data/movi
	DataDir string

	// InMemory runs the fleet store without disk persistence.
	InMemory bool

	// Seed loads the demo fleet dataset at startup.
	Seed bool

	// SessionTimeout is the idle expiry for conversation sessions.
	// Default: 1 hour
	SessionTimeout time.Duration

	// SweepInterval is how often the background session sweeper runs.
	// Default: 10 minutes
	SweepInterval time.Duration

	// GinMode sets the Gin framework mode ("debug", "release", "test").
	GinMode string

	// EnableMetrics registers Prometheus metrics. Default: true
	EnableMetrics bool

	// Logger is the base structured logger. Default: slog.Default()
	Logger *slog.Logger
}

type service struct {
	config    Config
	router    *gin.Engine
	store     *fleet.Store
	orch      *agent.Orchestrator
	sweeper   *ttl.Scheduler
	stopSweep context.CancelFunc
}

func applyConfigDefaults(cfg Config) Config {
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "./data/movi"
	}
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = agent.DefaultSessionTimeout
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = ttl.DefaultSchedulerConfig().Interval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}

// New wires the assistant together: opens the fleet store, builds the
// tool catalog, creates the reasoning and speech clients, and registers
// the HTTP routes.
func New(cfg Config) (Service, error) {
	cfg = applyConfigDefaults(cfg)
	logger := cfg.Logger

	var store *fleet.Store
	var err error
	if cfg.InMemory {
		store, err = fleet.OpenInMemoryStore()
	} else {
		store, err = fleet.OpenStore(fleet.DefaultStoreConfig(cfg.DataDir))
	}
	if err != nil {
		return nil, fmt.Errorf("open fleet store: %w", err)
	}

	s := &service{config: cfg, store: store}

	if cfg.Seed {
		if err := fleet.Seed(store, logger); err != nil {
			s.closeStore()
			return nil, fmt.Errorf("seed fleet data: %w", err)
		}
	}

	fleetSvc := fleet.NewService(store, logger)
	registry, err := tools.BuildRegistry(fleetSvc)
	if err != nil {
		s.closeStore()
		return nil, fmt.Errorf("build tool catalog: %w", err)
	}

	client, err := llm.NewOpenAIClient(logger)
	if err != nil {
		s.closeStore()
		return nil, fmt.Errorf("create reasoning client: %w", err)
	}

	var metrics *observability.AssistantMetrics
	if cfg.EnableMetrics {
		metrics = observability.InitMetrics()
		logger.Info("initialized Prometheus metrics")
	}

	sessions := agent.NewInMemorySessionStore(cfg.SessionTimeout)
	s.orch = agent.NewOrchestrator(
		client,
		registry,
		tools.NewExecutor(registry, logger),
		agent.NewConsequenceEvaluator(fleetSvc, logger),
		sessions,
		agent.WithLogger(logger),
		agent.WithMetrics(metrics),
	)

	// Background sweeper bounds how long idle sessions survive on a
	// quiet deployment.
	s.sweeper = ttl.NewScheduler(sessions, ttl.SchedulerConfig{Interval: cfg.SweepInterval}, logger)
	sweepCtx, cancel := context.WithCancel(context.Background())
	s.stopSweep = cancel
	if err := s.sweeper.Start(sweepCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("start session sweeper: %w", err)
	}

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	s.router = gin.Default()
	routes.SetupRoutes(s.router, s.orch, store,
		speech.NewDeepgramClient(logger),
		speech.NewElevenLabsClient(logger))

	logger.Info("assistant initialized",
		"port", cfg.Port,
		"data_dir", cfg.DataDir,
		"in_memory", cfg.InMemory,
		"session_timeout", cfg.SessionTimeout.String(),
	)
	return s, nil
}

func (s *service) Run() error {
	defer func() { _ = s.Close() }()

	addr := fmt.Sprintf(":%d", s.config.Port)
	slog.Info("starting assistant server", "addr", addr)
	return s.router.Run(addr)
}

func (s *service) Router() *gin.Engine {
	return s.router
}

func (s *service) Close() error {
	if s.stopSweep != nil {
		s.stopSweep()
	}
	if s.sweeper != nil {
		_ = s.sweeper.Stop()
	}
	return s.closeStore()
}

func (s *service) closeStore() error {
	if s.store == nil {
		return nil
	}
	err := s.store.Close()
	s.store = nil
	return err
}

var _ Service = (*service)(nil)
