// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// newTestMetrics creates an AssistantMetrics instance with an isolated
// registry so tests don't collide with the global one.
func newTestMetrics(t *testing.T) *AssistantMetrics {
	t.Helper()
	return NewMetricsForRegistry(prometheus.NewRegistry())
}

func TestTurnsTotal(t *testing.T) {
	m := newTestMetrics(t)

	m.TurnsTotal.WithLabelValues("busDashboard", OutcomeReply).Inc()
	m.TurnsTotal.WithLabelValues("busDashboard", OutcomeReply).Inc()
	m.TurnsTotal.WithLabelValues("busDashboard", OutcomePaused).Inc()
	m.TurnsTotal.WithLabelValues("manageRoute", OutcomeReply).Inc()

	if got := testutil.ToFloat64(m.TurnsTotal.WithLabelValues("busDashboard", OutcomeReply)); got != 2 {
		t.Errorf("busDashboard/reply = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.TurnsTotal.WithLabelValues("busDashboard", OutcomePaused)); got != 1 {
		t.Errorf("busDashboard/paused = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.TurnsTotal.WithLabelValues("manageRoute", OutcomeReply)); got != 1 {
		t.Errorf("manageRoute/reply = %v, want 1", got)
	}
}

func TestActionExecutionsTotal(t *testing.T) {
	m := newTestMetrics(t)

	m.ActionExecutionsTotal.WithLabelValues("get_trip_status", "success").Inc()
	m.ActionExecutionsTotal.WithLabelValues("delete_daily_trip", "failure").Inc()

	if got := testutil.ToFloat64(m.ActionExecutionsTotal.WithLabelValues("get_trip_status", "success")); got != 1 {
		t.Errorf("get_trip_status/success = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ActionExecutionsTotal.WithLabelValues("delete_daily_trip", "failure")); got != 1 {
		t.Errorf("delete_daily_trip/failure = %v, want 1", got)
	}
}

func TestConfirmationsTotal(t *testing.T) {
	m := newTestMetrics(t)

	m.ConfirmationsTotal.WithLabelValues("accept").Inc()
	m.ConfirmationsTotal.WithLabelValues("reject").Inc()
	m.ConfirmationsTotal.WithLabelValues("unclear").Inc()
	m.ConfirmationsTotal.WithLabelValues("unclear").Inc()

	if got := testutil.ToFloat64(m.ConfirmationsTotal.WithLabelValues("unclear")); got != 2 {
		t.Errorf("unclear = %v, want 2", got)
	}
}

func TestActiveSessionsGauge(t *testing.T) {
	m := newTestMetrics(t)

	m.ActiveSessions.Set(3)
	if got := testutil.ToFloat64(m.ActiveSessions); got != 3 {
		t.Errorf("active sessions = %v, want 3", got)
	}

	m.ActiveSessions.Set(0)
	if got := testutil.ToFloat64(m.ActiveSessions); got != 0 {
		t.Errorf("active sessions = %v, want 0", got)
	}
}

func TestTurnDurationHistogram(t *testing.T) {
	m := newTestMetrics(t)

	m.TurnDurationSeconds.WithLabelValues("busDashboard").Observe(0.2)
	m.TurnDurationSeconds.WithLabelValues("busDashboard").Observe(1.5)

	count := testutil.CollectAndCount(m.TurnDurationSeconds)
	if count != 1 {
		t.Errorf("expected 1 histogram series, got %d", count)
	}
}
