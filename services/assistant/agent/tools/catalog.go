// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tools

import (
	"context"
	"fmt"

	"github.com/moviops/movi/services/fleet"
)

// Argument decoding helpers. Invocation arguments arrive as untyped
// JSON maps from the model; these coerce and validate them.

func stringArg(args map[string]any, key string, required bool) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("missing required argument %q", key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string", key)
	}
	if required && s == "" {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	return s, nil
}

func floatArg(args map[string]any, key string, fallback float64) (float64, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return fallback, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("argument %q must be a number", key)
	}
}

func boolArg(args map[string]any, key string, fallback bool) (bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return fallback, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("argument %q must be a boolean", key)
	}
	return b, nil
}

func stringSliceArg(args map[string]any, key string) ([]string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, fmt.Errorf("missing required argument %q", key)
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("argument %q must be an array of strings", key)
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("argument %q must be an array of strings", key)
		}
		out = append(out, s)
	}
	return out, nil
}

// Schema construction helpers.

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func numberProp(description string) map[string]any {
	return map[string]any{"type": "number", "description": description}
}

func boolProp(description string) map[string]any {
	return map[string]any{"type": "boolean", "description": description}
}

// BuildRegistry assembles the full fleet action catalog over the given
// data service: three dynamic reads, three static reads, creates,
// high-consequence deletes, and the roster lookups.
func BuildRegistry(svc *fleet.Service) (*Registry, error) {
	r := NewRegistry()

	actions := []*Action{
		{
			Name: "get_trip_status",
			Description: "Gets the live status and booking percentage for a specific trip. " +
				"Use this when the user asks about trip status, booking information, or trip details.",
			Parameters: objectSchema(map[string]any{
				"trip_name": stringProp("The display name of the trip (e.g., 'Bulk - 00:01')"),
			}, "trip_name"),
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				tripName, err := stringArg(args, "trip_name", true)
				if err != nil {
					return "", err
				}
				return svc.QueryTripStatus(tripName)
			},
		},
		{
			Name: "get_unassigned_vehicles",
			Description: "Returns the count and list of vehicles that are not currently assigned to any trip. " +
				"Use this when the user asks how many vehicles are not assigned or wants to see available vehicles.",
			Parameters: objectSchema(map[string]any{}),
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				return svc.QueryUnassignedVehicles()
			},
		},
		{
			Name: "get_trip_bookings",
			Description: "Gets detailed booking information for a specific trip. " +
				"Use this when the user specifically asks about bookings or capacity.",
			Parameters: objectSchema(map[string]any{
				"trip_name": stringProp("The display name of the trip"),
			}, "trip_name"),
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				tripName, err := stringArg(args, "trip_name", true)
				if err != nil {
					return "", err
				}
				return svc.QueryTripBookingDetails(tripName)
			},
		},
		{
			Name: "list_stops_for_path",
			Description: "Lists all stops in order for a given path. " +
				"Use this when the user asks what stops are in a path.",
			Parameters: objectSchema(map[string]any{
				"path_name": stringProp("The name of the path (e.g., 'Path-1', 'Path-2')"),
			}, "path_name"),
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				pathName, err := stringArg(args, "path_name", true)
				if err != nil {
					return "", err
				}
				return svc.QueryStopsForPath(pathName)
			},
		},
		{
			Name: "list_routes_for_path",
			Description: "Shows all routes that use a specific path. " +
				"Use this when the user asks which routes use a path.",
			Parameters: objectSchema(map[string]any{
				"path_name": stringProp("The name of the path"),
			}, "path_name"),
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				pathName, err := stringArg(args, "path_name", true)
				if err != nil {
					return "", err
				}
				return svc.QueryRoutesForPath(pathName)
			},
		},
		{
			Name: "list_all_routes",
			Description: "Lists all routes, optionally filtered by status. " +
				"Use this when the user asks to see all routes or only active ones.",
			Parameters: objectSchema(map[string]any{
				"status": stringProp("Optional filter - 'active' or 'deactivated'. Leave empty for all routes."),
			}),
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				status, err := stringArg(args, "status", false)
				if err != nil {
					return "", err
				}
				return svc.QueryAllRoutes(status)
			},
		},
		{
			Name: "create_daily_trip",
			Description: "Creates a new daily trip for an existing route. " +
				"Use this when the user asks to create or add a daily trip.",
			Parameters: objectSchema(map[string]any{
				"route_name":         stringProp("The display name of the route (e.g., 'Path-1 - 07:00')"),
				"display_name":       stringProp("The display name for the new trip (e.g., 'Morning Run - 07:30')"),
				"booking_percentage": numberProp("Initial booking percentage (0-100, default 0)"),
				"live_status":        stringProp("Initial status (default 'NOT STARTED')"),
			}, "route_name", "display_name"),
			Mutating: true,
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				routeName, err := stringArg(args, "route_name", true)
				if err != nil {
					return "", err
				}
				displayName, err := stringArg(args, "display_name", true)
				if err != nil {
					return "", err
				}
				booking, err := floatArg(args, "booking_percentage", 0)
				if err != nil {
					return "", err
				}
				liveStatus, err := stringArg(args, "live_status", false)
				if err != nil {
					return "", err
				}
				return svc.CreateDailyTrip(routeName, displayName, booking, liveStatus)
			},
		},
		{
			Name: "assign_vehicle_and_driver",
			Description: "Assigns a vehicle and driver to a specific trip. " +
				"Use this when the user asks to assign or deploy a vehicle and driver.",
			Parameters: objectSchema(map[string]any{
				"trip_name":       stringProp("The display name of the trip"),
				"vehicle_license": stringProp("The license plate of the vehicle (e.g., 'MH-12-3456')"),
				"driver_name":     stringProp("The full name of the driver (e.g., 'Amit Kumar')"),
			}, "trip_name", "vehicle_license", "driver_name"),
			Mutating: true,
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				tripName, err := stringArg(args, "trip_name", true)
				if err != nil {
					return "", err
				}
				vehicleLicense, err := stringArg(args, "vehicle_license", true)
				if err != nil {
					return "", err
				}
				driverName, err := stringArg(args, "driver_name", true)
				if err != nil {
					return "", err
				}
				return svc.CreateDeployment(tripName, vehicleLicense, driverName)
			},
		},
		{
			Name: "delete_daily_trip",
			Description: "Deletes a daily trip and its deployment. HIGH CONSEQUENCE ACTION - " +
				"this removes the trip and affects any bookings. Use when the user asks to delete or remove a trip.",
			Parameters: objectSchema(map[string]any{
				"trip_name": stringProp("The display name of the trip to delete"),
			}, "trip_name"),
			Mutating: true,
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				tripName, err := stringArg(args, "trip_name", true)
				if err != nil {
					return "", err
				}
				return svc.DeleteDailyTrip(tripName)
			},
		},
		{
			Name: "remove_vehicle_from_trip",
			Description: "Removes the assigned vehicle from a specific trip. HIGH CONSEQUENCE ACTION - " +
				"this may affect bookings and trip-sheet generation.",
			Parameters: objectSchema(map[string]any{
				"trip_name": stringProp("The display name of the trip"),
			}, "trip_name"),
			Mutating: true,
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				tripName, err := stringArg(args, "trip_name", true)
				if err != nil {
					return "", err
				}
				return svc.RemoveVehicleFromTrip(tripName)
			},
		},
		{
			Name: "create_new_stop",
			Description: "Creates a new stop location. " +
				"Use this when the user asks to create or add a new stop.",
			Parameters: objectSchema(map[string]any{
				"stop_name": stringProp("Name of the new stop (e.g., 'Odeon Circle')"),
				"latitude":  numberProp("Latitude coordinate (e.g., 12.9716)"),
				"longitude": numberProp("Longitude coordinate (e.g., 77.5946)"),
			}, "stop_name", "latitude", "longitude"),
			Mutating: true,
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				stopName, err := stringArg(args, "stop_name", true)
				if err != nil {
					return "", err
				}
				lat, err := floatArg(args, "latitude", 0)
				if err != nil {
					return "", err
				}
				lon, err := floatArg(args, "longitude", 0)
				if err != nil {
					return "", err
				}
				return svc.CreateStop(stopName, lat, lon)
			},
		},
		{
			Name: "create_new_path",
			Description: "Creates a new path as an ordered sequence of existing stops. " +
				"Use this when the user asks to create a new path.",
			Parameters: objectSchema(map[string]any{
				"path_name": stringProp("Name for the new path (e.g., 'Tech-Loop')"),
				"stop_names": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "List of stop names in order",
				},
			}, "path_name", "stop_names"),
			Mutating: true,
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				pathName, err := stringArg(args, "path_name", true)
				if err != nil {
					return "", err
				}
				stopNames, err := stringSliceArg(args, "stop_names")
				if err != nil {
					return "", err
				}
				return svc.CreatePath(pathName, stopNames)
			},
		},
		{
			Name: "create_new_route",
			Description: "Creates a new route by assigning a time to an existing path. " +
				"Use this when the user asks to create a new route with a specific time.",
			Parameters: objectSchema(map[string]any{
				"path_name":  stringProp("Name of the existing path (e.g., 'Path-1')"),
				"shift_time": stringProp("Time in HH:MM format (e.g., '19:45')"),
				"direction":  stringProp("Direction - 'Inbound', 'Outbound', or 'Circular'"),
			}, "path_name", "shift_time", "direction"),
			Mutating: true,
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				pathName, err := stringArg(args, "path_name", true)
				if err != nil {
					return "", err
				}
				shiftTime, err := stringArg(args, "shift_time", true)
				if err != nil {
					return "", err
				}
				direction, err := stringArg(args, "direction", true)
				if err != nil {
					return "", err
				}
				return svc.CreateRoute(pathName, shiftTime, direction)
			},
		},
		{
			Name: "deactivate_route",
			Description: "Deactivates a route. HIGH CONSEQUENCE ACTION - " +
				"this may affect active trips using the route.",
			Parameters: objectSchema(map[string]any{
				"route_name": stringProp("The display name of the route (e.g., 'Path-1 - 07:00')"),
			}, "route_name"),
			Mutating: true,
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				routeName, err := stringArg(args, "route_name", true)
				if err != nil {
					return "", err
				}
				return svc.DeactivateRoute(routeName)
			},
		},
		{
			Name: "get_all_drivers",
			Description: "Lists all drivers, optionally filtered by assignment status. " +
				"Use this when the user asks about drivers or the driver roster.",
			Parameters: objectSchema(map[string]any{
				"assigned_only": boolProp("If true, only show drivers currently assigned to trips"),
			}),
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				assignedOnly, err := boolArg(args, "assigned_only", false)
				if err != nil {
					return "", err
				}
				return svc.QueryDrivers(assignedOnly)
			},
		},
		{
			Name: "get_vehicle_details",
			Description: "Gets detailed information about a specific vehicle. " +
				"Use this when the user asks about a vehicle's details or status.",
			Parameters: objectSchema(map[string]any{
				"license_plate": stringProp("The license plate of the vehicle (e.g., 'KA-01-AB-1234')"),
			}, "license_plate"),
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				plate, err := stringArg(args, "license_plate", true)
				if err != nil {
					return "", err
				}
				return svc.QueryVehicleDetails(plate)
			},
		},
	}

	for _, a := range actions {
		if err := r.Register(a); err != nil {
			return nil, err
		}
	}
	return r, nil
}
