// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package agent implements the conversational turn pipeline: session
// management, model invocation, consequence gating, confirmation
// handling, and tool dispatch.
//
// # Description
//
// One turn is one inbound operator message processed to completion.
// The Orchestrator walks the turn state machine (see StateMachine) and
// is the only writer of session transcripts. Destructive actions pass
// through the ConsequenceEvaluator first; risky ones pause the session
// until the operator answers the confirmation gate.
//
// # Thread Safety
//
// Turns on distinct sessions run concurrently. Turns on the same
// session are serialized by the session busy latch; a second turn
// arriving mid-flight is rejected, never queued.
package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/moviops/movi/services/assistant/agent/tools"
	"github.com/moviops/movi/services/assistant/datatypes"
	"github.com/moviops/movi/services/assistant/observability"
	"github.com/moviops/movi/services/fleet"
	"github.com/moviops/movi/services/llm"
)

// BusyMessage is the reply for a turn rejected by the session latch.
const BusyMessage = "I'm still working on your previous request. Please wait a moment and try again."

// Orchestrator drives the per-turn state machine over a session.
type Orchestrator struct {
	client    llm.Client
	registry  *tools.Registry
	executor  *tools.Executor
	evaluator *ConsequenceEvaluator
	sessions  SessionStore
	machine   *StateMachine
	metrics   *observability.AssistantMetrics
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the orchestrator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics attaches Prometheus metrics. Without this option the
// orchestrator runs unmetered.
func WithMetrics(m *observability.AssistantMetrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithClock overrides the time source. Tests use this to control
// session expiry.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// NewOrchestrator wires the turn pipeline together.
func NewOrchestrator(client llm.Client, registry *tools.Registry, executor *tools.Executor, evaluator *ConsequenceEvaluator, sessions SessionStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:    client,
		registry:  registry,
		executor:  executor,
		evaluator: evaluator,
		sessions:  sessions,
		machine:   NewTurnStateMachine(),
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With("component", "orchestrator")
	return o
}

// Sessions exposes the session store for the ttl sweeper and handlers.
func (o *Orchestrator) Sessions() SessionStore {
	return o.sessions
}

// turn carries the state threaded through one RunTurn call.
type turn struct {
	sess      *datatypes.Session
	message   string
	markStart int
	proposed  []llm.ToolCall
	outcome   string
	success   bool
}

// RunTurn processes one operator message for the given page context and
// returns the reply. It never returns an error to the transport layer;
// failures become operator-facing text with Success=false.
func (o *Orchestrator) RunTurn(ctx context.Context, page, message string, image *datatypes.ImageAttachment) datatypes.ChatResponse {
	start := o.now()
	if swept := o.sessions.SweepExpired(start); swept > 0 {
		o.logger.Info("swept expired sessions", "count", swept)
	}

	key := SessionKey(page)
	sess := o.sessions.GetOrCreate(key, page, start)
	if o.metrics != nil {
		o.metrics.ActiveSessions.Set(float64(o.sessions.Len()))
	}

	if !sess.TryAcquire() {
		o.logger.Warn("turn rejected, session busy", "session", key)
		if o.metrics != nil {
			o.metrics.TurnsTotal.WithLabelValues(page, observability.OutcomeBusy).Inc()
		}
		return datatypes.ChatResponse{
			Response: BusyMessage,
			Success:  false,
			Error:    ErrSessionBusy.Error(),
		}
	}
	defer sess.Release()

	sess.Touch(start)
	if image != nil {
		sess.PendingImage = image
	}

	t := &turn{
		sess:      sess,
		message:   message,
		markStart: len(sess.Messages),
		success:   true,
		outcome:   observability.OutcomeReply,
	}
	sess.Append(llm.Message{Role: llm.RoleUser, Content: message})

	o.walk(ctx, t)

	if o.metrics != nil {
		o.metrics.TurnsTotal.WithLabelValues(page, t.outcome).Inc()
		o.metrics.TurnDurationSeconds.WithLabelValues(page).Observe(o.now().Sub(start).Seconds())
	}

	resp := datatypes.ChatResponse{
		Response: o.replyText(t),
		Success:  t.success,
	}
	if !t.success {
		resp.Error = t.outcome
	}
	return resp
}

// walk runs the state machine until StateDone. Transition failures are
// programming errors; they end the turn with whatever reply has been
// appended so far.
func (o *Orchestrator) walk(ctx context.Context, t *turn) {
	state := StateEntry
	for state != StateDone {
		var next State
		switch state {
		case StateEntry:
			next = o.stepEntry(t)
		case StateModel:
			next = o.stepModel(ctx, t)
		case StateConsequenceCheck:
			next = o.stepConsequenceCheck(t)
		case StateExecute:
			next = o.stepExecute(ctx, t)
		case StateConfirm:
			next = o.stepConfirm(ctx, t)
		default:
			o.logger.Error("unhandled state, ending turn", "state", state)
			return
		}

		validated, err := o.machine.Transition(state, next)
		if err != nil {
			o.logger.Error("turn aborted", "error", err)
			return
		}
		state = validated
	}
}

// stepEntry routes to the confirmation gate only when a confirmation is
// pending and the newest transcript message came from the operator.
func (o *Orchestrator) stepEntry(t *turn) State {
	last := t.sess.LastMessage()
	if t.sess.ConfirmationPending && last != nil && last.Role == llm.RoleUser {
		return StateConfirm
	}
	return StateModel
}

// stepModel invokes the reasoning service. A pending image is described
// once and folded into the transcript before the chat call.
func (o *Orchestrator) stepModel(ctx context.Context, t *turn) State {
	sess := t.sess

	if img := sess.PendingImage; img != nil {
		desc, err := o.client.DescribeImage(ctx, img.Data, img.MIMEType, t.message, sess.Page)
		if err != nil {
			o.logger.Warn("image analysis failed, continuing without it", "session", sess.Key, "error", err)
		} else {
			sess.Append(llm.Message{Role: llm.RoleSystem, Content: "📷 Image Analysis:\n" + desc})
		}
		sess.PendingImage = nil
	}

	reply, err := o.client.Chat(ctx, SystemPrompt(sess.Page), sess.Messages, o.registry.Definitions())
	if err != nil {
		o.logger.Error("model call failed", "session", sess.Key, "error", err)
		sess.Append(llm.Message{Role: llm.RoleAssistant, Content: ModelFallbackMessage})
		t.outcome = observability.OutcomeModelFailure
		t.success = false
		return StateDone
	}

	sess.Append(llm.Message{Role: llm.RoleAssistant, Content: reply.Content, ToolCalls: reply.ToolCalls})

	if len(reply.ToolCalls) == 0 {
		t.outcome = observability.OutcomeReply
		return StateDone
	}
	t.proposed = reply.ToolCalls
	return StateConsequenceCheck
}

// stepConsequenceCheck evaluates the first proposed invocation. When it
// is risky the invocation is stored, the pause is recorded against its
// call ID, and the warning becomes the reply. Only the first invocation
// is evaluated; a risky action proposed alongside others is still
// caught because execution is all-or-nothing per turn.
func (o *Orchestrator) stepConsequenceCheck(t *turn) State {
	info, risky := o.evaluator.Evaluate(t.proposed[0])
	if !risky {
		return StateExecute
	}

	call := t.proposed[0]
	t.sess.SetPending(&call, info)
	t.sess.Append(
		llm.Message{Role: llm.RoleTool, Content: PauseMessage, ToolCallID: call.ID},
		llm.Message{Role: llm.RoleAssistant, Content: WarningMessage(info)},
	)
	o.logger.Info("action paused for confirmation",
		"session", t.sess.Key, "action", call.Name, "consequence", info.Type)
	t.outcome = observability.OutcomePaused
	return StateDone
}

// stepExecute dispatches every proposed invocation and records each
// result as a tool message. Tool failures are results, not turn
// failures.
func (o *Orchestrator) stepExecute(ctx context.Context, t *turn) State {
	for _, call := range t.proposed {
		res := o.executor.Execute(ctx, call.Name, call.Arguments)
		o.recordExecution(res)
		t.sess.Append(llm.Message{
			Role:       llm.RoleTool,
			Content:    fleet.FormatToolOutput(call.Name, res.Output),
			ToolCallID: call.ID,
		})
	}
	t.outcome = observability.OutcomeActions
	return StateDone
}

// stepConfirm classifies the operator's reply to a pending warning.
func (o *Orchestrator) stepConfirm(ctx context.Context, t *turn) State {
	sess := t.sess

	// Pending flag without a stored invocation means corrupted state.
	// Reset and treat the message as a fresh request.
	if sess.PendingInvocation == nil {
		o.logger.Warn("confirmation pending with no stored invocation, resetting", "session", sess.Key)
		sess.ClearPending()
		return StateModel
	}

	decision := ClassifyConfirmation(t.message)
	if o.metrics != nil {
		o.metrics.ConfirmationsTotal.WithLabelValues(decision.String()).Inc()
	}

	switch decision {
	case DecisionAccept:
		call := *sess.PendingInvocation
		sess.ClearPending()

		res := o.executor.Execute(ctx, call.Name, call.Arguments)
		o.recordExecution(res)

		output := fleet.FormatToolOutput(call.Name, res.Output)
		ack := "✅ Action completed\n\n" + output
		if res.Failed {
			ack = "❌ " + res.Output
		}
		sess.Append(
			llm.Message{Role: llm.RoleTool, Content: output, ToolCallID: call.ID},
			llm.Message{Role: llm.RoleAssistant, Content: ack},
		)
		o.logger.Info("confirmed action executed",
			"session", sess.Key, "action", call.Name, "failed", res.Failed)
		t.outcome = observability.OutcomeConfirmed
		return StateDone

	case DecisionReject:
		o.logger.Info("action cancelled", "session", sess.Key, "action", sess.PendingInvocation.Name)
		sess.ClearPending()
		sess.Append(llm.Message{Role: llm.RoleAssistant, Content: cancelledMessage})
		t.outcome = observability.OutcomeCancelled
		return StateDone

	default:
		// Pending state survives untouched so the next reply hits the
		// gate again.
		sess.Append(llm.Message{Role: llm.RoleAssistant, Content: reAskMessage})
		t.outcome = observability.OutcomeReasked
		return StateDone
	}
}

func (o *Orchestrator) recordExecution(res tools.Result) {
	if o.metrics == nil {
		return
	}
	outcome := "success"
	if res.Failed {
		outcome = "failure"
	}
	o.metrics.ActionExecutionsTotal.WithLabelValues(res.ActionName, outcome).Inc()
}

// replyText extracts the turn reply: the content of the most recent
// non-operator message appended during this turn.
func (o *Orchestrator) replyText(t *turn) string {
	msgs := t.sess.Messages
	for i := len(msgs) - 1; i >= t.markStart; i-- {
		if msgs[i].Role != llm.RoleUser {
			return msgs[i].Content
		}
	}
	return ""
}
