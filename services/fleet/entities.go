// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package fleet implements the transport data service: stops, paths,
// routes, vehicles, drivers, daily trips, and deployments, backed by an
// embedded BadgerDB store.
//
// Static assets (stops, paths, routes) describe the network. Dynamic
// assets (vehicles, drivers, daily trips, deployments) describe a day
// of operations. All entities are keyed by their operator-visible name
// rather than a synthetic ID; the chat assistant refers to everything
// by display name.
package fleet

// Stop is a physical stop location.
type Stop struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Path is an ordered sequence of stops.
type Path struct {
	Name      string   `json:"name"`
	StopNames []string `json:"stop_names"`
}

// Route status values.
const (
	RouteActive      = "active"
	RouteDeactivated = "deactivated"
)

// Route combines a Path with timing information.
type Route struct {
	DisplayName string `json:"display_name"` // e.g. "Path-2 - 19:45"
	PathName    string `json:"path_name"`
	ShiftTime   string `json:"shift_time"` // e.g. "19:45"
	Direction   string `json:"direction"`  // "Inbound", "Outbound", "Circular"
	StartPoint  string `json:"start_point"`
	EndPoint    string `json:"end_point"`
	Status      string `json:"status"` // RouteActive or RouteDeactivated
}

// Vehicle is a transport vehicle (Bus or Cab).
type Vehicle struct {
	LicensePlate string `json:"license_plate"`
	Type         string `json:"type"` // "Bus" or "Cab"
	Capacity     int    `json:"capacity"`
}

// Driver is a driver on the roster.
type Driver struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

// DailyTrip is a single trip instance on a route.
type DailyTrip struct {
	DisplayName       string  `json:"display_name"` // e.g. "Bulk - 00:01"
	RouteName         string  `json:"route_name"`
	BookingPercentage float64 `json:"booking_status_percentage"` // 0-100
	LiveStatus        string  `json:"live_status"`               // e.g. "DEPLOYED", "NOT STARTED"
}

// Deployment links a vehicle and a driver to a daily trip. Either
// assignment may be empty.
type Deployment struct {
	TripName     string `json:"trip_name"`
	VehiclePlate string `json:"vehicle_plate,omitempty"`
	DriverName   string `json:"driver_name,omitempty"`
}

// BookingStatus reports whether a trip has live bookings. Used by the
// assistant's consequence checks before destructive trip operations.
type BookingStatus struct {
	HasBookings bool    `json:"has_bookings"`
	Percentage  float64 `json:"percentage"`
}

// RouteTripStatus reports how many trips currently run on a route.
type RouteTripStatus struct {
	HasTrips bool `json:"has_trips"`
	Count    int  `json:"count"`
}
