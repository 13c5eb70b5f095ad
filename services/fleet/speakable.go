// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package fleet

import (
	"fmt"
	"regexp"
	"strings"
)

// Assistant replies are spoken aloud through text-to-speech. The
// helpers here rewrite dense identifiers and colon-separated status
// dumps into sentences that read naturally.

// SpeakableIdentifier converts identifiers like license plates into a
// TTS-friendly form.
//
// Example: "KA-10-QR-3456" -> "K A dash 1 0 dash Q R dash 3 4 5 6".
func SpeakableIdentifier(identifier string) string {
	if identifier == "" {
		return ""
	}
	var parts []string
	for _, segment := range strings.Split(identifier, "-") {
		cleaned := strings.TrimSpace(segment)
		if cleaned == "" {
			continue
		}
		chars := strings.Split(strings.ToUpper(cleaned), "")
		parts = append(parts, strings.Join(chars, " "))
	}
	return strings.Join(parts, " dash ")
}

var tripStatusPattern = regexp.MustCompile(
	`^Trip '(.+?)': Status: ([^,]+), Booking: ([\d.]+)%` +
		`(?:, Vehicle: ([^,]+))?` +
		`(?:, Driver: (.+))?$`)

// FormatTripStatus converts raw trip status output into a natural,
// TTS-friendly sentence. Input that doesn't match the status shape is
// returned unchanged.
func FormatTripStatus(raw string) string {
	text := strings.TrimSpace(raw)
	m := tripStatusPattern.FindStringSubmatch(text)
	if m == nil {
		return text
	}

	tripName, status, booking, vehicle, driver := m[1], strings.TrimSpace(m[2]), strings.TrimSpace(m[3]), m[4], m[5]
	booking = strings.TrimSuffix(booking, ".0")

	parts := []string{
		fmt.Sprintf("The %s trip is currently %s.", tripName, status),
		fmt.Sprintf("It's %s percent booked.", booking),
	}

	if isSpokenValue(vehicle) {
		parts = append(parts, fmt.Sprintf("The assigned vehicle is %s.", SpeakableIdentifier(vehicle)))
	} else {
		parts = append(parts, "There is no vehicle assigned right now.")
	}

	if isSpokenValue(driver) {
		parts = append(parts, fmt.Sprintf("The driver on duty is %s.", driver))
	} else {
		parts = append(parts, "No driver has been assigned yet.")
	}

	return strings.Join(parts, " ")
}

func isSpokenValue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "none", "null", "n/a":
		return false
	}
	return true
}

// FormatToolOutput post-processes an action result into speakable
// language. Error messages pass through untouched.
func FormatToolOutput(actionName, raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(text), "error") {
		return text
	}
	if actionName == "get_trip_status" {
		return FormatTripStatus(text)
	}
	return text
}
