// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the assistant.
//
// # Description
//
// This package instruments the conversational turn pipeline. Metrics
// include:
//   - Turn counters (by page and outcome)
//   - Turn latency histograms
//   - Action execution counters (by action and outcome)
//   - Confirmation decision counters
//   - Live session gauge
//
// # Integration
//
// Metrics are exposed via the /metrics endpoint. Use with Prometheus +
// Grafana for dashboards and alerting.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal
// locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const metricsNamespace = "movi"

// Subsystem for assistant metrics
const assistantSubsystem = "assistant"

// Turn outcomes for the turns_total counter.
const (
	OutcomeReply        = "reply"
	OutcomeActions      = "actions"
	OutcomePaused       = "paused"
	OutcomeConfirmed    = "confirmed"
	OutcomeCancelled    = "cancelled"
	OutcomeReasked      = "reasked"
	OutcomeBusy         = "busy"
	OutcomeModelFailure = "model_failure"
)

// AssistantMetrics holds all Prometheus metrics for the turn pipeline.
//
// # Fields
//
//   - TurnsTotal: Counter of processed turns by page and outcome
//   - TurnDurationSeconds: Histogram of end-to-end turn latency
//   - ActionExecutionsTotal: Counter of dispatched actions by name and outcome
//   - ConfirmationsTotal: Counter of confirmation decisions
//   - ActiveSessions: Gauge of live sessions in the store
//
// # Thread Safety
//
// All operations are thread-safe.
type AssistantMetrics struct {
	// TurnsTotal counts processed turns.
	// Labels: page, outcome (reply, actions, paused, confirmed,
	// cancelled, reasked, busy, model_failure)
	TurnsTotal *prometheus.CounterVec

	// TurnDurationSeconds measures end-to-end turn latency.
	// Labels: page
	TurnDurationSeconds *prometheus.HistogramVec

	// ActionExecutionsTotal counts dispatched actions.
	// Labels: action, outcome (success, failure)
	ActionExecutionsTotal *prometheus.CounterVec

	// ConfirmationsTotal counts confirmation gate decisions.
	// Labels: decision (accept, reject, unclear)
	ConfirmationsTotal *prometheus.CounterVec

	// ActiveSessions tracks live sessions in the store.
	ActiveSessions prometheus.Gauge
}

// DefaultMetrics is the singleton instance of AssistantMetrics.
// Initialized by InitMetrics().
var DefaultMetrics *AssistantMetrics

// InitMetrics creates and registers all assistant metrics. Call once at
// startup; calling twice panics on duplicate registration.
func InitMetrics() *AssistantMetrics {
	DefaultMetrics = &AssistantMetrics{
		TurnsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: assistantSubsystem,
				Name:      "turns_total",
				Help:      "Total processed conversation turns by page and outcome",
			},
			[]string{"page", "outcome"},
		),

		TurnDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: assistantSubsystem,
				Name:      "turn_duration_seconds",
				Help:      "End-to-end turn processing latency in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"page"},
		),

		ActionExecutionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: assistantSubsystem,
				Name:      "action_executions_total",
				Help:      "Total dispatched tool actions by name and outcome",
			},
			[]string{"action", "outcome"},
		),

		ConfirmationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: assistantSubsystem,
				Name:      "confirmations_total",
				Help:      "Total confirmation gate decisions",
			},
			[]string{"decision"},
		),

		ActiveSessions: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: assistantSubsystem,
				Name:      "active_sessions",
				Help:      "Number of live conversation sessions",
			},
		),
	}

	return DefaultMetrics
}

// NewMetricsForRegistry builds an AssistantMetrics registered against
// the given registry instead of the default one. Tests use this to get
// an isolated metric set.
func NewMetricsForRegistry(reg *prometheus.Registry) *AssistantMetrics {
	factory := promauto.With(reg)
	return &AssistantMetrics{
		TurnsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: assistantSubsystem,
				Name:      "turns_total",
				Help:      "Total processed conversation turns by page and outcome",
			},
			[]string{"page", "outcome"},
		),
		TurnDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: assistantSubsystem,
				Name:      "turn_duration_seconds",
				Help:      "End-to-end turn processing latency in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"page"},
		),
		ActionExecutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: assistantSubsystem,
				Name:      "action_executions_total",
				Help:      "Total dispatched tool actions by name and outcome",
			},
			[]string{"action", "outcome"},
		),
		ConfirmationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: assistantSubsystem,
				Name:      "confirmations_total",
				Help:      "Total confirmation gate decisions",
			},
			[]string{"decision"},
		),
		ActiveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: assistantSubsystem,
				Name:      "active_sessions",
				Help:      "Number of live conversation sessions",
			},
		),
	}
}
