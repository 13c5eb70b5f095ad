// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package fleet

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/moviops/movi/pkg/validation"
)

// Service exposes the named fleet operations the assistant's action
// catalog maps onto, plus the read checks used by consequence
// evaluation.
//
// Query and mutation methods return operator-facing result strings:
// successes are prefixed with a check mark, domain failures (entity not
// found, duplicate name) are plain sentences. A non-nil error means the
// store itself failed, not that the operation was domain-invalid.
//
// Thread Safety: safe for concurrent use; every method runs in a single
// BadgerDB transaction.
type Service struct {
	store  *Store
	logger *slog.Logger
}

// NewService creates a fleet service over the given store.
func NewService(store *Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger.With("component", "fleet")}
}

// Store returns the underlying store, for listings and seeding.
func (s *Service) Store() *Store {
	return s.store
}

// formatPercent renders a booking percentage without a trailing ".0".
func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// =============================================================================
// Read operations - trips
// =============================================================================

// QueryTripStatus returns status information for a trip, including its
// deployment if one exists.
func (s *Service) QueryTripStatus(tripName string) (string, error) {
	var out string
	err := s.store.view(func(txn *badger.Txn) error {
		var trip DailyTrip
		if err := get(txn, prefixTrip+tripName, &trip); err != nil {
			if errors.Is(err, ErrNotFound) {
				out = fmt.Sprintf("Trip '%s' not found.", tripName)
				return nil
			}
			return err
		}

		vehicleInfo := ""
		driverInfo := ""
		var dep Deployment
		if err := get(txn, prefixDeployment+tripName, &dep); err == nil {
			if dep.VehiclePlate != "" {
				vehicleInfo = fmt.Sprintf(", Vehicle: %s", dep.VehiclePlate)
			}
			if dep.DriverName != "" {
				driverInfo = fmt.Sprintf(", Driver: %s", dep.DriverName)
			}
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}

		out = fmt.Sprintf("Trip '%s': Status: %s, Booking: %s%%%s%s",
			tripName, trip.LiveStatus, formatPercent(trip.BookingPercentage), vehicleInfo, driverInfo)
		return nil
	})
	return out, err
}

// QueryTripBookingDetails returns booking information for a trip.
func (s *Service) QueryTripBookingDetails(tripName string) (string, error) {
	var out string
	err := s.store.view(func(txn *badger.Txn) error {
		var trip DailyTrip
		if err := get(txn, prefixTrip+tripName, &trip); err != nil {
			if errors.Is(err, ErrNotFound) {
				out = fmt.Sprintf("Trip '%s' not found.", tripName)
				return nil
			}
			return err
		}
		out = fmt.Sprintf("Trip '%s' is %s%% booked.", tripName, formatPercent(trip.BookingPercentage))
		return nil
	})
	return out, err
}

// CheckTripHasBookings reports whether a trip has live bookings. An
// unknown trip reports no bookings.
func (s *Service) CheckTripHasBookings(tripName string) (BookingStatus, error) {
	var status BookingStatus
	err := s.store.view(func(txn *badger.Txn) error {
		var trip DailyTrip
		if err := get(txn, prefixTrip+tripName, &trip); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			return err
		}
		status = BookingStatus{
			HasBookings: trip.BookingPercentage > 0,
			Percentage:  trip.BookingPercentage,
		}
		return nil
	})
	return status, err
}

// =============================================================================
// Read operations - vehicles and drivers
// =============================================================================

// QueryUnassignedVehicles lists vehicles not referenced by any
// deployment.
func (s *Service) QueryUnassignedVehicles() (string, error) {
	vehicles, err := s.store.ListVehicles()
	if err != nil {
		return "", err
	}
	deployments, err := s.store.ListDeployments()
	if err != nil {
		return "", err
	}

	assigned := make(map[string]bool, len(deployments))
	for _, d := range deployments {
		if d.VehiclePlate != "" {
			assigned[d.VehiclePlate] = true
		}
	}

	var unassigned []string
	for _, v := range vehicles {
		if !assigned[v.LicensePlate] {
			unassigned = append(unassigned, fmt.Sprintf("%s (%s)", v.LicensePlate, v.Type))
		}
	}

	if len(unassigned) == 0 {
		return "All vehicles are currently assigned.", nil
	}
	return fmt.Sprintf("Unassigned vehicles (%d): %s", len(unassigned), strings.Join(unassigned, ", ")), nil
}

// QueryVehicleDetails returns details for a specific vehicle, including
// its current assignment.
func (s *Service) QueryVehicleDetails(licensePlate string) (string, error) {
	var out string
	err := s.store.view(func(txn *badger.Txn) error {
		var vehicle Vehicle
		if err := get(txn, prefixVehicle+licensePlate, &vehicle); err != nil {
			if errors.Is(err, ErrNotFound) {
				out = fmt.Sprintf("Vehicle '%s' not found.", licensePlate)
				return nil
			}
			return err
		}

		assignment := "Not assigned"
		err := scan(txn, prefixDeployment, func(d Deployment) {
			if d.VehiclePlate == licensePlate {
				assignment = fmt.Sprintf("Assigned to trip '%s'", d.TripName)
			}
		})
		if err != nil {
			return err
		}

		out = fmt.Sprintf("Vehicle %s: Type: %s, Capacity: %d, Status: %s",
			vehicle.LicensePlate, vehicle.Type, vehicle.Capacity, assignment)
		return nil
	})
	return out, err
}

// QueryDrivers lists drivers, optionally restricted to those currently
// assigned to a trip. Long rosters are truncated at ten entries.
func (s *Service) QueryDrivers(assignedOnly bool) (string, error) {
	drivers, err := s.store.ListDrivers()
	if err != nil {
		return "", err
	}

	if assignedOnly {
		deployments, err := s.store.ListDeployments()
		if err != nil {
			return "", err
		}
		assigned := make(map[string]bool, len(deployments))
		for _, d := range deployments {
			if d.DriverName != "" {
				assigned[d.DriverName] = true
			}
		}
		var filtered []Driver
		for _, d := range drivers {
			if assigned[d.Name] {
				filtered = append(filtered, d)
			}
		}
		drivers = filtered
	}

	if len(drivers) == 0 {
		return "No drivers found.", nil
	}

	shown := drivers
	if len(shown) > 10 {
		shown = shown[:10]
	}
	entries := make([]string, 0, len(shown))
	for _, d := range shown {
		entries = append(entries, fmt.Sprintf("%s (%s)", d.Name, d.PhoneNumber))
	}
	list := strings.Join(entries, ", ")
	if len(drivers) > 10 {
		list += fmt.Sprintf(", ... and %d more", len(drivers)-10)
	}
	return fmt.Sprintf("Drivers (%d): %s", len(drivers), list), nil
}

// =============================================================================
// Read operations - paths and routes
// =============================================================================

// QueryStopsForPath returns the ordered stops of a path.
func (s *Service) QueryStopsForPath(pathName string) (string, error) {
	var out string
	err := s.store.view(func(txn *badger.Txn) error {
		var path Path
		if err := get(txn, prefixPath+pathName, &path); err != nil {
			if errors.Is(err, ErrNotFound) {
				out = fmt.Sprintf("Path '%s' not found.", pathName)
				return nil
			}
			return err
		}
		out = fmt.Sprintf("Path '%s' stops: %s", pathName, strings.Join(path.StopNames, " → "))
		return nil
	})
	return out, err
}

// QueryRoutesForPath lists the routes that use a path.
func (s *Service) QueryRoutesForPath(pathName string) (string, error) {
	var out string
	err := s.store.view(func(txn *badger.Txn) error {
		var path Path
		if err := get(txn, prefixPath+pathName, &path); err != nil {
			if errors.Is(err, ErrNotFound) {
				out = fmt.Sprintf("Path '%s' not found.", pathName)
				return nil
			}
			return err
		}

		var routes []Route
		if err := scan(txn, prefixRoute, func(r Route) {
			if r.PathName == pathName {
				routes = append(routes, r)
			}
		}); err != nil {
			return err
		}

		if len(routes) == 0 {
			out = fmt.Sprintf("No routes found for path '%s'.", pathName)
			return nil
		}
		entries := make([]string, 0, len(routes))
		for _, r := range routes {
			entries = append(entries, fmt.Sprintf("%s (%s)", r.DisplayName, r.Status))
		}
		out = fmt.Sprintf("Routes for '%s' (%d): %s", pathName, len(routes), strings.Join(entries, ", "))
		return nil
	})
	return out, err
}

// QueryAllRoutes lists all routes, optionally filtered by status
// ("active" or "deactivated"). Long lists are truncated at ten entries.
func (s *Service) QueryAllRoutes(status string) (string, error) {
	routes, err := s.store.ListRoutes()
	if err != nil {
		return "", err
	}

	if status != "" {
		var filtered []Route
		for _, r := range routes {
			if r.Status == status {
				filtered = append(filtered, r)
			}
		}
		routes = filtered
	}

	if len(routes) == 0 {
		suffix := ""
		if status != "" {
			suffix = " with status " + status
		}
		return fmt.Sprintf("No routes found%s.", suffix), nil
	}

	shown := routes
	if len(shown) > 10 {
		shown = shown[:10]
	}
	lines := make([]string, 0, len(shown))
	for _, r := range shown {
		lines = append(lines, fmt.Sprintf("- %s: %s → %s (%s)", r.DisplayName, r.StartPoint, r.EndPoint, r.Status))
	}
	list := strings.Join(lines, "\n")
	if len(routes) > 10 {
		list += fmt.Sprintf("\n... and %d more routes", len(routes)-10)
	}
	return fmt.Sprintf("Routes (%d):\n%s", len(routes), list), nil
}

// CheckRouteHasActiveTrips reports how many trips run on a route. An
// unknown route reports zero trips.
func (s *Service) CheckRouteHasActiveTrips(routeName string) (RouteTripStatus, error) {
	var status RouteTripStatus
	err := s.store.view(func(txn *badger.Txn) error {
		var route Route
		if err := get(txn, prefixRoute+routeName, &route); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			return err
		}
		count := 0
		if err := scan(txn, prefixTrip, func(t DailyTrip) {
			if t.RouteName == routeName {
				count++
			}
		}); err != nil {
			return err
		}
		status = RouteTripStatus{HasTrips: count > 0, Count: count}
		return nil
	})
	return status, err
}

// =============================================================================
// Create operations
// =============================================================================

// CreateStop creates a new stop location.
func (s *Service) CreateStop(stopName string, latitude, longitude float64) (string, error) {
	if err := validation.EntityName(stopName); err != nil {
		return fmt.Sprintf("❌ Invalid stop name: %v.", err), nil
	}
	if err := validation.Coordinate(latitude, longitude); err != nil {
		return fmt.Sprintf("❌ Invalid coordinates: %v.", err), nil
	}
	var out string
	err := s.store.update(func(txn *badger.Txn) error {
		already, err := exists(txn, prefixStop+stopName)
		if err != nil {
			return err
		}
		if already {
			out = fmt.Sprintf("Stop '%s' already exists.", stopName)
			return nil
		}
		if err := put(txn, prefixStop+stopName, Stop{Name: stopName, Latitude: latitude, Longitude: longitude}); err != nil {
			return err
		}
		out = fmt.Sprintf("✅ Created stop '%s' at (%v, %v)", stopName, latitude, longitude)
		return nil
	})
	if err == nil {
		s.logger.Info("stop created", "stop", stopName)
	}
	return out, err
}

// CreatePath creates a new path from an ordered list of stop names.
// Every stop must already exist.
func (s *Service) CreatePath(pathName string, stopNames []string) (string, error) {
	if err := validation.EntityName(pathName); err != nil {
		return fmt.Sprintf("❌ Invalid path name: %v.", err), nil
	}
	var out string
	err := s.store.update(func(txn *badger.Txn) error {
		already, err := exists(txn, prefixPath+pathName)
		if err != nil {
			return err
		}
		if already {
			out = fmt.Sprintf("Path '%s' already exists.", pathName)
			return nil
		}
		for _, stopName := range stopNames {
			found, err := exists(txn, prefixStop+stopName)
			if err != nil {
				return err
			}
			if !found {
				out = fmt.Sprintf("❌ Stop '%s' not found. Please create it first.", stopName)
				return nil
			}
		}
		if err := put(txn, prefixPath+pathName, Path{Name: pathName, StopNames: stopNames}); err != nil {
			return err
		}
		out = fmt.Sprintf("✅ Created path '%s' with %d stops", pathName, len(stopNames))
		return nil
	})
	if err == nil {
		s.logger.Info("path created", "path", pathName, "stops", len(stopNames))
	}
	return out, err
}

// CreateRoute creates a route on an existing path. The route display
// name is derived as "<path> - <shift time>" and its endpoints come
// from the path's first and last stops.
func (s *Service) CreateRoute(pathName, shiftTime, direction string) (string, error) {
	var out string
	err := s.store.update(func(txn *badger.Txn) error {
		var path Path
		if err := get(txn, prefixPath+pathName, &path); err != nil {
			if errors.Is(err, ErrNotFound) {
				out = fmt.Sprintf("❌ Path '%s' not found.", pathName)
				return nil
			}
			return err
		}

		startPoint, endPoint := "Unknown", "Unknown"
		if len(path.StopNames) > 0 {
			startPoint = path.StopNames[0]
			endPoint = path.StopNames[len(path.StopNames)-1]
		}

		displayName := fmt.Sprintf("%s - %s", pathName, shiftTime)
		route := Route{
			DisplayName: displayName,
			PathName:    pathName,
			ShiftTime:   shiftTime,
			Direction:   direction,
			StartPoint:  startPoint,
			EndPoint:    endPoint,
			Status:      RouteActive,
		}
		if err := put(txn, prefixRoute+displayName, route); err != nil {
			return err
		}
		out = fmt.Sprintf("✅ Created route '%s'", displayName)
		return nil
	})
	if err == nil {
		s.logger.Info("route created", "path", pathName, "shift_time", shiftTime)
	}
	return out, err
}

// CreateDailyTrip creates a trip for an existing route, along with an
// empty deployment record.
func (s *Service) CreateDailyTrip(routeName, displayName string, bookingPercentage float64, liveStatus string) (string, error) {
	if err := validation.EntityName(displayName); err != nil {
		return fmt.Sprintf("❌ Invalid trip name: %v.", err), nil
	}
	if liveStatus == "" {
		liveStatus = "NOT STARTED"
	}
	var out string
	err := s.store.update(func(txn *badger.Txn) error {
		routeFound, err := exists(txn, prefixRoute+routeName)
		if err != nil {
			return err
		}
		if !routeFound {
			out = fmt.Sprintf("❌ Route '%s' not found.", routeName)
			return nil
		}
		already, err := exists(txn, prefixTrip+displayName)
		if err != nil {
			return err
		}
		if already {
			out = fmt.Sprintf("❌ Trip '%s' already exists.", displayName)
			return nil
		}
		if bookingPercentage < 0 || bookingPercentage > 100 {
			out = "❌ Booking percentage must be between 0 and 100."
			return nil
		}

		trip := DailyTrip{
			DisplayName:       displayName,
			RouteName:         routeName,
			BookingPercentage: bookingPercentage,
			LiveStatus:        liveStatus,
		}
		if err := put(txn, prefixTrip+displayName, trip); err != nil {
			return err
		}
		if err := put(txn, prefixDeployment+displayName, Deployment{TripName: displayName}); err != nil {
			return err
		}
		out = fmt.Sprintf("✅ Created daily trip '%s' for route '%s'", displayName, routeName)
		return nil
	})
	if err == nil {
		s.logger.Info("daily trip created", "trip", displayName, "route", routeName)
	}
	return out, err
}

// CreateDeployment assigns a vehicle and driver to a trip, creating or
// updating the trip's deployment record.
func (s *Service) CreateDeployment(tripName, vehicleLicense, driverName string) (string, error) {
	var out string
	err := s.store.update(func(txn *badger.Txn) error {
		tripFound, err := exists(txn, prefixTrip+tripName)
		if err != nil {
			return err
		}
		if !tripFound {
			out = fmt.Sprintf("❌ Trip '%s' not found.", tripName)
			return nil
		}
		vehicleFound, err := exists(txn, prefixVehicle+vehicleLicense)
		if err != nil {
			return err
		}
		if !vehicleFound {
			out = fmt.Sprintf("❌ Vehicle '%s' not found.", vehicleLicense)
			return nil
		}
		driverFound, err := exists(txn, prefixDriver+driverName)
		if err != nil {
			return err
		}
		if !driverFound {
			out = fmt.Sprintf("❌ Driver '%s' not found.", driverName)
			return nil
		}

		action := "Created"
		var dep Deployment
		if err := get(txn, prefixDeployment+tripName, &dep); err == nil {
			action = "Updated"
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		dep = Deployment{TripName: tripName, VehiclePlate: vehicleLicense, DriverName: driverName}
		if err := put(txn, prefixDeployment+tripName, dep); err != nil {
			return err
		}
		out = fmt.Sprintf("✅ %s deployment: %s with driver %s assigned to '%s'",
			action, vehicleLicense, driverName, tripName)
		return nil
	})
	if err == nil {
		s.logger.Info("deployment saved", "trip", tripName, "vehicle", vehicleLicense, "driver", driverName)
	}
	return out, err
}

// =============================================================================
// Delete and update operations
// =============================================================================

// DeleteDailyTrip deletes a trip and its deployment. Consequence
// checking for live bookings happens in the assistant before this is
// ever called; the operation itself is unconditional.
func (s *Service) DeleteDailyTrip(tripName string) (string, error) {
	var out string
	err := s.store.update(func(txn *badger.Txn) error {
		var trip DailyTrip
		if err := get(txn, prefixTrip+tripName, &trip); err != nil {
			if errors.Is(err, ErrNotFound) {
				out = fmt.Sprintf("❌ Trip '%s' not found.", tripName)
				return nil
			}
			return err
		}

		hadAssignment := false
		var dep Deployment
		if err := get(txn, prefixDeployment+tripName, &dep); err == nil {
			hadAssignment = dep.VehiclePlate != "" || dep.DriverName != ""
			if err := txn.Delete([]byte(prefixDeployment + tripName)); err != nil {
				return err
			}
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}

		if err := txn.Delete([]byte(prefixTrip + tripName)); err != nil {
			return err
		}

		assignmentInfo := ""
		if hadAssignment {
			assignmentInfo = " (freed up assigned vehicle/driver)"
		}
		bookingInfo := ""
		if trip.BookingPercentage > 0 {
			bookingInfo = fmt.Sprintf(" [had %s%% bookings]", formatPercent(trip.BookingPercentage))
		}
		out = fmt.Sprintf("✅ Deleted daily trip '%s'%s%s", tripName, assignmentInfo, bookingInfo)
		return nil
	})
	if err == nil {
		s.logger.Info("daily trip deleted", "trip", tripName)
	}
	return out, err
}

// RemoveVehicleFromTrip removes the assigned vehicle from a trip,
// keeping the driver.
func (s *Service) RemoveVehicleFromTrip(tripName string) (string, error) {
	var out string
	err := s.store.update(func(txn *badger.Txn) error {
		tripFound, err := exists(txn, prefixTrip+tripName)
		if err != nil {
			return err
		}
		if !tripFound {
			out = fmt.Sprintf("❌ Trip '%s' not found.", tripName)
			return nil
		}

		var dep Deployment
		if err := get(txn, prefixDeployment+tripName, &dep); err != nil {
			if errors.Is(err, ErrNotFound) {
				out = fmt.Sprintf("No vehicle assigned to trip '%s'.", tripName)
				return nil
			}
			return err
		}
		if dep.VehiclePlate == "" {
			out = fmt.Sprintf("No vehicle assigned to trip '%s'.", tripName)
			return nil
		}

		removed := dep.VehiclePlate
		dep.VehiclePlate = ""
		if err := put(txn, prefixDeployment+tripName, dep); err != nil {
			return err
		}
		out = fmt.Sprintf("✅ Removed vehicle %s from trip '%s'", removed, tripName)
		return nil
	})
	if err == nil {
		s.logger.Info("vehicle removed from trip", "trip", tripName)
	}
	return out, err
}

// DeactivateRoute sets a route's status to deactivated.
func (s *Service) DeactivateRoute(routeName string) (string, error) {
	var out string
	err := s.store.update(func(txn *badger.Txn) error {
		var route Route
		if err := get(txn, prefixRoute+routeName, &route); err != nil {
			if errors.Is(err, ErrNotFound) {
				out = fmt.Sprintf("❌ Route '%s' not found.", routeName)
				return nil
			}
			return err
		}
		if route.Status == RouteDeactivated {
			out = fmt.Sprintf("Route '%s' is already deactivated.", routeName)
			return nil
		}
		route.Status = RouteDeactivated
		if err := put(txn, prefixRoute+routeName, route); err != nil {
			return err
		}
		out = fmt.Sprintf("✅ Route '%s' has been deactivated", routeName)
		return nil
	})
	if err == nil {
		s.logger.Info("route deactivated", "route", routeName)
	}
	return out, err
}
