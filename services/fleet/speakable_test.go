// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package fleet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpeakableIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"license plate", "KA-10-QR-3456", "K A dash 1 0 dash Q R dash 3 4 5 6"},
		{"single segment", "MH12", "M H 1 2"},
		{"lowercase input", "ka-01", "K A dash 0 1"},
		{"empty", "", ""},
		{"dangling dash", "KA-", "K A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SpeakableIdentifier(tt.input))
		})
	}
}

func TestFormatTripStatus(t *testing.T) {
	t.Run("full status with vehicle and driver", func(t *testing.T) {
		in := "Trip 'Bulk - 00:01': Status: 00:01 IN, Booking: 25.0%, Vehicle: KA-01-AB-1234, Driver: Amit Kumar"
		out := FormatTripStatus(in)
		assert.Contains(t, out, "The Bulk - 00:01 trip is currently 00:01 IN.")
		assert.Contains(t, out, "It's 25 percent booked.")
		assert.Contains(t, out, "The assigned vehicle is K A dash 0 1 dash A B dash 1 2 3 4.")
		assert.Contains(t, out, "The driver on duty is Amit Kumar.")
	})

	t.Run("no vehicle or driver", func(t *testing.T) {
		in := "Trip 'Path Path - 00:02': Status: NOT STARTED, Booking: 0%"
		out := FormatTripStatus(in)
		assert.Contains(t, out, "There is no vehicle assigned right now.")
		assert.Contains(t, out, "No driver has been assigned yet.")
	})

	t.Run("non-matching text passes through", func(t *testing.T) {
		assert.Equal(t, "Trip 'X' not found.", FormatTripStatus("Trip 'X' not found."))
	})
}

func TestFormatToolOutput(t *testing.T) {
	t.Run("errors untouched", func(t *testing.T) {
		in := "Error executing tool 'get_trip_status': boom"
		assert.Equal(t, in, FormatToolOutput("get_trip_status", in))
	})

	t.Run("trip status reformatted", func(t *testing.T) {
		in := "Trip 'Bulk - 00:01': Status: DEPLOYED, Booking: 60.0%"
		out := FormatToolOutput("get_trip_status", in)
		assert.Contains(t, out, "It's 60 percent booked.")
	})

	t.Run("other actions untouched", func(t *testing.T) {
		in := "Unassigned vehicles (4): KA-07-KL-1234 (Cab)"
		assert.Equal(t, in, FormatToolOutput("get_unassigned_vehicles", in))
	})
}
