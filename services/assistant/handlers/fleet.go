// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moviops/movi/services/fleet"
)

// The listing endpoints back the dashboard tables. They read straight
// from the store; the assistant is not involved.

func listEndpoint[T any](name string, list func() ([]T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := list()
		if err != nil {
			slog.Error("listing failed", "entity", name, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list " + name})
			return
		}
		c.JSON(http.StatusOK, gin.H{name: items, "count": len(items)})
	}
}

// ListStops returns every stop.
func ListStops(store *fleet.Store) gin.HandlerFunc {
	return listEndpoint("stops", store.ListStops)
}

// ListPaths returns every path with its ordered stop names.
func ListPaths(store *fleet.Store) gin.HandlerFunc {
	return listEndpoint("paths", store.ListPaths)
}

// ListRoutes returns every route.
func ListRoutes(store *fleet.Store) gin.HandlerFunc {
	return listEndpoint("routes", store.ListRoutes)
}

// ListVehicles returns every vehicle.
func ListVehicles(store *fleet.Store) gin.HandlerFunc {
	return listEndpoint("vehicles", store.ListVehicles)
}

// ListDrivers returns every driver.
func ListDrivers(store *fleet.Store) gin.HandlerFunc {
	return listEndpoint("drivers", store.ListDrivers)
}

// ListTrips returns every daily trip.
func ListTrips(store *fleet.Store) gin.HandlerFunc {
	return listEndpoint("trips", store.ListTrips)
}

// ListDeployments returns every trip deployment.
func ListDeployments(store *fleet.Store) gin.HandlerFunc {
	return listEndpoint("deployments", store.ListDeployments)
}
