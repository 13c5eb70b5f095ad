// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ttl

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct {
	calls atomic.Int64
	out   int
}

func (c *countingSweeper) SweepExpired(time.Time) int {
	c.calls.Add(1)
	return c.out
}

func TestSchedulerRunNow(t *testing.T) {
	sweeper := &countingSweeper{out: 3}
	s := NewScheduler(sweeper, SchedulerConfig{Interval: time.Hour}, nil)

	assert.Equal(t, 3, s.RunNow())
	assert.Equal(t, int64(1), sweeper.calls.Load())
}

func TestSchedulerStartStop(t *testing.T) {
	sweeper := &countingSweeper{}
	s := NewScheduler(sweeper, SchedulerConfig{Interval: 5 * time.Millisecond}, nil)

	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()), "double start must fail")

	assert.Eventually(t, func() bool {
		return sweeper.calls.Load() >= 2
	}, time.Second, time.Millisecond)

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop(), "stop is idempotent")

	// Restart after stop works.
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop())
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	sweeper := &countingSweeper{}
	s := NewScheduler(sweeper, SchedulerConfig{Interval: 5 * time.Millisecond}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	time.Sleep(20 * time.Millisecond)
	before := sweeper.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, before, sweeper.calls.Load(), "no sweeps after cancellation")
}

func TestDefaultSchedulerConfig(t *testing.T) {
	assert.Equal(t, 10*time.Minute, DefaultSchedulerConfig().Interval)

	s := NewScheduler(&countingSweeper{}, SchedulerConfig{}, nil)
	assert.Equal(t, 10*time.Minute, s.config.Interval)
}
