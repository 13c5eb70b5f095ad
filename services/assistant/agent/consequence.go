// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"fmt"
	"log/slog"

	"github.com/moviops/movi/services/assistant/datatypes"
	"github.com/moviops/movi/services/fleet"
	"github.com/moviops/movi/services/llm"
)

// FleetChecker is the read-only slice of the fleet service the
// consequence evaluator needs. *fleet.Service satisfies it.
type FleetChecker interface {
	CheckTripHasBookings(tripName string) (fleet.BookingStatus, error)
	CheckRouteHasActiveTrips(routeName string) (fleet.RouteTripStatus, error)
}

// ConsequenceEvaluator decides whether a proposed invocation needs
// operator confirmation before it may execute. The risk rules are
// operational knowledge, not model judgment: a fixed set of
// destructive actions is checked against live fleet data.
//
// Evaluation fails open: if the fleet read errs, the action is treated
// as safe and the error is logged. The subsequent execution hits the
// same store and surfaces the real failure as a tool result.
type ConsequenceEvaluator struct {
	fleet  FleetChecker
	logger *slog.Logger
}

// NewConsequenceEvaluator creates an evaluator over the given fleet
// reader.
func NewConsequenceEvaluator(fleet FleetChecker, logger *slog.Logger) *ConsequenceEvaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsequenceEvaluator{fleet: fleet, logger: logger.With("component", "consequence")}
}

// Evaluate checks one proposed invocation. It returns the consequence
// details and true when the action is risky and must be confirmed;
// (nil, false) for safe actions, unknown subjects, and read failures.
func (e *ConsequenceEvaluator) Evaluate(call llm.ToolCall) (*datatypes.ConsequenceInfo, bool) {
	switch call.Name {
	case "remove_vehicle_from_trip":
		tripName, _ := call.Arguments["trip_name"].(string)
		status, err := e.fleet.CheckTripHasBookings(tripName)
		if err != nil {
			e.logger.Error("booking check failed, treating action as safe", "trip", tripName, "error", err)
			return nil, false
		}
		if !status.HasBookings {
			return nil, false
		}
		return &datatypes.ConsequenceInfo{
			Type:              datatypes.ConsequenceVehicleRemoval,
			TripName:          tripName,
			BookingPercentage: status.Percentage,
		}, true

	case "delete_daily_trip":
		tripName, _ := call.Arguments["trip_name"].(string)
		status, err := e.fleet.CheckTripHasBookings(tripName)
		if err != nil {
			e.logger.Error("booking check failed, treating action as safe", "trip", tripName, "error", err)
			return nil, false
		}
		if !status.HasBookings {
			return nil, false
		}
		return &datatypes.ConsequenceInfo{
			Type:              datatypes.ConsequenceTripDeletion,
			TripName:          tripName,
			BookingPercentage: status.Percentage,
		}, true

	case "deactivate_route":
		routeName, _ := call.Arguments["route_name"].(string)
		status, err := e.fleet.CheckRouteHasActiveTrips(routeName)
		if err != nil {
			e.logger.Error("trip count check failed, treating action as safe", "route", routeName, "error", err)
			return nil, false
		}
		if !status.HasTrips {
			return nil, false
		}
		return &datatypes.ConsequenceInfo{
			Type:        datatypes.ConsequenceRouteDeactivation,
			RouteName:   routeName,
			ActiveTrips: status.Count,
		}, true
	}

	return nil, false
}

// PauseMessage is the tool-result text recorded for a paused action.
const PauseMessage = "⏸️ Action paused pending confirmation. No changes made yet."

// WarningMessage renders the operator-facing risk warning for a
// consequence. Each warning names the consequence, quantifies the
// impact, states that nothing has changed yet, and asks for an explicit
// yes/no.
func WarningMessage(info *datatypes.ConsequenceInfo) string {
	switch info.Type {
	case datatypes.ConsequenceVehicleRemoval:
		return fmt.Sprintf(
			"⚠️ CONSEQUENCE WARNING\n\n"+
				"I can remove the vehicle from '%s'. However, please be aware that:\n\n"+
				"• This trip is currently %v%% booked by employees\n"+
				"• Removing the vehicle will cancel these bookings\n"+
				"• Trip-sheet generation will fail\n"+
				"• Affected employees will need to be notified\n\n"+
				"This is a high-impact operation.\n\n"+
				"❓ Do you want to proceed? (Reply 'yes' to confirm or 'no' to cancel)",
			info.TripName, info.BookingPercentage)

	case datatypes.ConsequenceTripDeletion:
		return fmt.Sprintf(
			"⚠️ CONSEQUENCE WARNING\n\n"+
				"I can delete the trip '%s'. However, please be aware that:\n\n"+
				"• This trip is currently %v%% booked by employees\n"+
				"• Deleting this trip will permanently remove all bookings\n"+
				"• Assigned vehicle and driver will be freed up\n"+
				"• Affected employees will need to be notified and rescheduled\n"+
				"• This action cannot be undone\n\n"+
				"This is a high-impact operation.\n\n"+
				"❓ Do you want to proceed? (Reply 'yes' to confirm or 'no' to cancel)",
			info.TripName, info.BookingPercentage)

	case datatypes.ConsequenceRouteDeactivation:
		return fmt.Sprintf(
			"⚠️ CONSEQUENCE WARNING\n\n"+
				"I can deactivate route '%s'. However, please be aware that:\n\n"+
				"• This route currently has %d active trip(s)\n"+
				"• Deactivating will affect these trips\n"+
				"• New bookings will be disabled\n"+
				"• Existing schedules may need adjustment\n\n"+
				"This is a high-impact operation.\n\n"+
				"❓ Do you want to proceed? (Reply 'yes' to confirm or 'no' to cancel)",
			info.RouteName, info.ActiveTrips)
	}

	return "⚠️ CONSEQUENCE WARNING\n\nThis action has operational consequences.\n\n" +
		"No changes have been made yet.\n\n" +
		"❓ Do you want to proceed? (Reply 'yes' to confirm or 'no' to cancel)"
}
