// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviops/movi/services/fleet"
)

func newCatalog(t *testing.T) (*Registry, *Executor) {
	t.Helper()
	store, err := fleet.OpenInMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, fleet.Seed(store, nil))

	registry, err := BuildRegistry(fleet.NewService(store, nil))
	require.NoError(t, err)
	return registry, NewExecutor(registry, nil)
}

func TestBuildRegistryCatalog(t *testing.T) {
	registry, _ := newCatalog(t)

	assert.Equal(t, 16, registry.Count())

	expected := []string{
		"assign_vehicle_and_driver",
		"create_daily_trip",
		"create_new_path",
		"create_new_route",
		"create_new_stop",
		"deactivate_route",
		"delete_daily_trip",
		"get_all_drivers",
		"get_trip_bookings",
		"get_trip_status",
		"get_unassigned_vehicles",
		"get_vehicle_details",
		"list_all_routes",
		"list_routes_for_path",
		"list_stops_for_path",
		"remove_vehicle_from_trip",
	}
	assert.Equal(t, expected, registry.Names())

	// High-consequence and create actions are marked mutating.
	for _, name := range []string{
		"create_daily_trip", "assign_vehicle_and_driver", "delete_daily_trip",
		"remove_vehicle_from_trip", "create_new_stop", "create_new_path",
		"create_new_route", "deactivate_route",
	} {
		a, err := registry.Get(name)
		require.NoError(t, err)
		assert.True(t, a.Mutating, "%s should be mutating", name)
	}
	for _, name := range []string{"get_trip_status", "list_all_routes", "get_all_drivers"} {
		a, err := registry.Get(name)
		require.NoError(t, err)
		assert.False(t, a.Mutating, "%s should be read-only", name)
	}
}

func TestCatalogDispatch(t *testing.T) {
	_, exec := newCatalog(t)
	ctx := context.Background()

	t.Run("read action", func(t *testing.T) {
		res := exec.Execute(ctx, "get_trip_bookings", map[string]any{"trip_name": "Bulk - 00:01"})
		assert.False(t, res.Failed)
		assert.Equal(t, "Trip 'Bulk - 00:01' is 25% booked.", res.Output)
	})

	t.Run("no-argument action", func(t *testing.T) {
		res := exec.Execute(ctx, "get_unassigned_vehicles", nil)
		assert.False(t, res.Failed)
		assert.Contains(t, res.Output, "Unassigned vehicles")
	})

	t.Run("missing required argument", func(t *testing.T) {
		res := exec.Execute(ctx, "get_trip_status", map[string]any{})
		assert.True(t, res.Failed)
		assert.Contains(t, res.Output, "Error executing tool 'get_trip_status':")
		assert.Contains(t, res.Output, `"trip_name"`)
	})

	t.Run("mutating action", func(t *testing.T) {
		res := exec.Execute(ctx, "create_new_stop", map[string]any{
			"stop_name": "Odeon Circle",
			"latitude":  12.9716,
			"longitude": 77.5946,
		})
		assert.False(t, res.Failed)
		assert.Contains(t, res.Output, "✅ Created stop 'Odeon Circle'")
	})

	t.Run("array argument", func(t *testing.T) {
		res := exec.Execute(ctx, "create_new_path", map[string]any{
			"path_name":  "Test-Loop",
			"stop_names": []any{"Gavipuram", "Temple"},
		})
		assert.False(t, res.Failed)
		assert.Equal(t, "✅ Created path 'Test-Loop' with 2 stops", res.Output)
	})

	t.Run("definitions cover every action", func(t *testing.T) {
		registry, _ := newCatalog(t)
		defs := registry.Definitions()
		assert.Len(t, defs, 16)
		for _, def := range defs {
			assert.NotEmpty(t, def.Description, "%s needs a description", def.Name)
			assert.Equal(t, "object", def.Parameters["type"])
		}
	})
}
