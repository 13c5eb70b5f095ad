// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package fleet

import (
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Seed populates the store with the demo fleet: a Bengaluru network of
// stops, paths, and routes, plus a day of trips and deployments.
// Existing data under the fleet prefixes is replaced.
//
// The "Bulk - 00:01" trip is seeded at 25% booking with a vehicle and
// driver assigned, so destructive operations on it trip the
// consequence warning out of the box.
func Seed(store *Store, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	stops := []Stop{
		{Name: "Gavipuram", Latitude: 12.9350, Longitude: 77.5850},
		{Name: "Peenya", Latitude: 13.0330, Longitude: 77.5200},
		{Name: "Temple", Latitude: 12.9480, Longitude: 77.5820},
		{Name: "Electronic City", Latitude: 12.8450, Longitude: 77.6600},
		{Name: "Whitefield", Latitude: 12.9698, Longitude: 77.7499},
		{Name: "Marathahalli", Latitude: 12.9591, Longitude: 77.6974},
		{Name: "Koramangala", Latitude: 12.9352, Longitude: 77.6245},
		{Name: "HSR Layout", Latitude: 12.9121, Longitude: 77.6446},
		{Name: "Indiranagar", Latitude: 12.9784, Longitude: 77.6408},
		{Name: "JP Nagar", Latitude: 12.9082, Longitude: 77.5855},
		{Name: "BTM Layout", Latitude: 12.9165, Longitude: 77.6101},
		{Name: "Jayanagar", Latitude: 12.9250, Longitude: 77.5937},
		{Name: "MG Road", Latitude: 12.9750, Longitude: 77.6060},
		{Name: "Bangalore Airport", Latitude: 13.1986, Longitude: 77.7066},
	}

	paths := []Path{
		{Name: "Path-1", StopNames: []string{"Gavipuram", "Temple", "Koramangala", "MG Road"}},
		{Name: "Path-2", StopNames: []string{"Peenya", "Whitefield", "Marathahalli", "Indiranagar"}},
		{Name: "Tech-Park-Route", StopNames: []string{"Electronic City", "BTM Layout", "Jayanagar", "JP Nagar"}},
		{Name: "Airport-Express", StopNames: []string{"Bangalore Airport", "MG Road", "Indiranagar", "Whitefield"}},
		{Name: "South-Loop", StopNames: []string{"Koramangala", "HSR Layout", "BTM Layout", "JP Nagar", "Gavipuram"}},
	}

	mkRoute := func(pathName, shiftTime, direction, status string, reversed bool) Route {
		var path Path
		for _, p := range paths {
			if p.Name == pathName {
				path = p
			}
		}
		start := path.StopNames[0]
		end := path.StopNames[len(path.StopNames)-1]
		if reversed {
			start, end = end, start
		}
		return Route{
			DisplayName: fmt.Sprintf("%s - %s", pathName, shiftTime),
			PathName:    pathName,
			ShiftTime:   shiftTime,
			Direction:   direction,
			StartPoint:  start,
			EndPoint:    end,
			Status:      status,
		}
	}

	routes := []Route{
		mkRoute("Path-1", "07:00", "Inbound", RouteActive, false),
		mkRoute("Path-1", "19:00", "Outbound", RouteActive, true),
		mkRoute("Path-2", "08:30", "Inbound", RouteActive, false),
		mkRoute("Path-2", "19:45", "Outbound", RouteActive, true),
		mkRoute("Tech-Park-Route", "09:00", "Inbound", RouteActive, false),
		mkRoute("Airport-Express", "05:30", "Inbound", RouteActive, false),
		mkRoute("South-Loop", "06:45", "Circular", RouteActive, false),
		mkRoute("South-Loop", "18:00", "Circular", RouteDeactivated, false),
	}

	vehicles := []Vehicle{
		{LicensePlate: "KA-01-AB-1234", Type: "Bus", Capacity: 40},
		{LicensePlate: "KA-02-CD-5678", Type: "Bus", Capacity: 45},
		{LicensePlate: "KA-03-EF-9012", Type: "Bus", Capacity: 40},
		{LicensePlate: "MH-12-3456", Type: "Bus", Capacity: 50},
		{LicensePlate: "KA-05-GH-3456", Type: "Bus", Capacity: 40},
		{LicensePlate: "KA-06-IJ-7890", Type: "Cab", Capacity: 6},
		{LicensePlate: "KA-07-KL-1234", Type: "Cab", Capacity: 4},
		{LicensePlate: "KA-08-MN-5678", Type: "Cab", Capacity: 6},
		{LicensePlate: "KA-09-OP-9012", Type: "Bus", Capacity: 40},
		{LicensePlate: "KA-10-QR-3456", Type: "Bus", Capacity: 45},
	}

	drivers := []Driver{
		{Name: "Amit Kumar", PhoneNumber: "+91-9876543210"},
		{Name: "Rajesh Singh", PhoneNumber: "+91-9876543211"},
		{Name: "Suresh Patel", PhoneNumber: "+91-9876543212"},
		{Name: "Vijay Sharma", PhoneNumber: "+91-9876543213"},
		{Name: "Prakash Reddy", PhoneNumber: "+91-9876543214"},
		{Name: "Deepak Rao", PhoneNumber: "+91-9876543215"},
		{Name: "Ravi Kumar", PhoneNumber: "+91-9876543216"},
		{Name: "Anil Verma", PhoneNumber: "+91-9876543217"},
		{Name: "Manoj Gupta", PhoneNumber: "+91-9876543218"},
		{Name: "Sandeep Jain", PhoneNumber: "+91-9876543219"},
	}

	trips := []DailyTrip{
		{DisplayName: "Bulk - 00:01", RouteName: "Path-1 - 07:00", BookingPercentage: 25.0, LiveStatus: "00:01 IN"},
		{DisplayName: "Path-1 Evening - 19:00", RouteName: "Path-1 - 19:00", BookingPercentage: 60.0, LiveStatus: "DEPLOYED"},
		{DisplayName: "Path Path - 00:02", RouteName: "Path-2 - 08:30", BookingPercentage: 0.0, LiveStatus: "NOT STARTED"},
		{DisplayName: "Path-2 Evening - 19:45", RouteName: "Path-2 - 19:45", BookingPercentage: 45.0, LiveStatus: "DEPLOYED"},
		{DisplayName: "Tech-Park Morning", RouteName: "Tech-Park-Route - 09:00", BookingPercentage: 80.0, LiveStatus: "EN ROUTE"},
		{DisplayName: "Airport Express - 05:30", RouteName: "Airport-Express - 05:30", BookingPercentage: 30.0, LiveStatus: "DEPLOYED"},
		{DisplayName: "South Circular - Morning", RouteName: "South-Loop - 06:45", BookingPercentage: 15.0, LiveStatus: "READY"},
		{DisplayName: "Path-1 Extra - 07:15", RouteName: "Path-1 - 07:00", BookingPercentage: 0.0, LiveStatus: "NOT STARTED"},
	}

	deployments := []Deployment{
		{TripName: "Bulk - 00:01", VehiclePlate: "KA-01-AB-1234", DriverName: "Amit Kumar"},
		{TripName: "Path-1 Evening - 19:00", VehiclePlate: "KA-02-CD-5678", DriverName: "Rajesh Singh"},
		{TripName: "Path Path - 00:02"},
		{TripName: "Path-2 Evening - 19:45", VehiclePlate: "KA-03-EF-9012", DriverName: "Suresh Patel"},
		{TripName: "Tech-Park Morning", VehiclePlate: "MH-12-3456", DriverName: "Vijay Sharma"},
		{TripName: "Airport Express - 05:30", VehiclePlate: "KA-05-GH-3456", DriverName: "Prakash Reddy"},
		{TripName: "South Circular - Morning", VehiclePlate: "KA-06-IJ-7890", DriverName: "Deepak Rao"},
		{TripName: "Path-1 Extra - 07:15"},
	}

	err := store.update(func(txn *badger.Txn) error {
		if err := clearPrefixes(txn); err != nil {
			return err
		}
		for _, v := range stops {
			if err := put(txn, prefixStop+v.Name, v); err != nil {
				return err
			}
		}
		for _, v := range paths {
			if err := put(txn, prefixPath+v.Name, v); err != nil {
				return err
			}
		}
		for _, v := range routes {
			if err := put(txn, prefixRoute+v.DisplayName, v); err != nil {
				return err
			}
		}
		for _, v := range vehicles {
			if err := put(txn, prefixVehicle+v.LicensePlate, v); err != nil {
				return err
			}
		}
		for _, v := range drivers {
			if err := put(txn, prefixDriver+v.Name, v); err != nil {
				return err
			}
		}
		for _, v := range trips {
			if err := put(txn, prefixTrip+v.DisplayName, v); err != nil {
				return err
			}
		}
		for _, v := range deployments {
			if err := put(txn, prefixDeployment+v.TripName, v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("fleet: seed: %w", err)
	}

	logger.Info("fleet store seeded",
		"stops", len(stops),
		"paths", len(paths),
		"routes", len(routes),
		"vehicles", len(vehicles),
		"drivers", len(drivers),
		"trips", len(trips),
		"deployments", len(deployments))
	return nil
}

func clearPrefixes(txn *badger.Txn) error {
	prefixes := []string{
		prefixStop, prefixPath, prefixRoute, prefixVehicle,
		prefixDriver, prefixTrip, prefixDeployment,
	}
	for _, prefix := range prefixes {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		var keys [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
	}
	return nil
}
