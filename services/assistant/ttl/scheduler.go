// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ttl runs the background session expiry sweeper.
//
// # Description
//
// Sessions also get swept opportunistically at the start of every turn,
// so this scheduler only bounds how long an abandoned session can
// linger on a quiet deployment. Uses the ticker + done channel pattern
// for graceful shutdown.
package ttl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Sweeper is the slice of the session store the scheduler needs.
type Sweeper interface {
	SweepExpired(now time.Time) int
}

// SchedulerConfig holds configuration for the sweep scheduler.
//
// # Fields
//
//   - Interval: How often to run sweep cycles. Default: 10 minutes.
type SchedulerConfig struct {
	Interval time.Duration
}

// DefaultSchedulerConfig returns the default scheduler configuration.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{Interval: 10 * time.Minute}
}

// Scheduler periodically sweeps expired sessions from a store.
//
// # Thread Safety
//
// All public methods are thread-safe. Only one Start() is allowed until
// Stop() completes.
type Scheduler struct {
	store  Sweeper
	config SchedulerConfig
	logger *slog.Logger

	done    chan struct{}
	mu      sync.Mutex
	running bool
}

// NewScheduler creates a sweep scheduler over the given store.
func NewScheduler(store Sweeper, config SchedulerConfig, logger *slog.Logger) *Scheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultSchedulerConfig().Interval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		store:  store,
		config: config,
		logger: logger.With("component", "ttl"),
		done:   make(chan struct{}),
	}
}

// Start begins the background sweep loop. Returns an error if the
// scheduler is already running. The loop stops when Stop() is called or
// the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is already running")
	}
	s.running = true
	s.done = make(chan struct{}) // reset for restart
	s.mu.Unlock()

	s.logger.Info("session sweep scheduler starting", "interval", s.config.Interval.String())

	go s.runLoop(ctx)
	return nil
}

// Stop signals the loop to exit. Safe to call multiple times.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.logger.Info("session sweep scheduler stopping")
	close(s.done)
	s.running = false
	return nil
}

// RunNow performs an immediate sweep and returns the removed count.
func (s *Scheduler) RunNow() int {
	return s.sweep()
}

func (s *Scheduler) runLoop(ctx context.Context) {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session sweep scheduler stopped (context cancelled)")
			return
		case <-s.done:
			s.logger.Info("session sweep scheduler stopped (stop requested)")
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Scheduler) sweep() int {
	removed := s.store.SweepExpired(time.Now())
	if removed > 0 {
		s.logger.Info("swept expired sessions", "count", removed)
	} else {
		s.logger.Debug("sweep cycle completed (no expired sessions)")
	}
	return removed
}
