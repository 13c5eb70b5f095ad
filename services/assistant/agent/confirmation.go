// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import "strings"

// Decision is the outcome of classifying a confirmation reply.
type Decision int

const (
	// DecisionUnclear means the reply matched neither vocabulary; the
	// gate re-asks and the pending action stays pending.
	DecisionUnclear Decision = iota

	// DecisionAccept means the operator confirmed the paused action.
	DecisionAccept

	// DecisionReject means the operator cancelled the paused action.
	DecisionReject
)

// String returns the decision name for logs and metrics labels.
func (d Decision) String() string {
	switch d {
	case DecisionAccept:
		return "accept"
	case DecisionReject:
		return "reject"
	default:
		return "unclear"
	}
}

// Fixed confirmation vocabularies. Matching is exact-token over the
// trimmed, lower-cased reply: "yes please" is deliberately unclear, so
// a qualified answer gets re-asked rather than guessed at.
var (
	acceptTokens = map[string]bool{
		"yes": true, "y": true, "confirm": true, "proceed": true, "ok": true, "sure": true,
	}
	rejectTokens = map[string]bool{
		"no": true, "n": true, "cancel": true, "abort": true, "stop": true, "nope": true,
	}
)

// ClassifyConfirmation maps an operator reply onto a Decision.
func ClassifyConfirmation(reply string) Decision {
	token := strings.ToLower(strings.TrimSpace(reply))
	switch {
	case acceptTokens[token]:
		return DecisionAccept
	case rejectTokens[token]:
		return DecisionReject
	default:
		return DecisionUnclear
	}
}

// Gate reply texts.
const (
	cancelledMessage = "✋ Action cancelled\n\nThe operation was not performed. How else can I help you?"

	reAskMessage = "I didn't understand your response. Please reply with:\n" +
		"• 'yes' to proceed with the action\n" +
		"• 'no' to cancel"
)
