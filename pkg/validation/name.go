// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation for user-provided
// identifiers. Entity names come straight from chat messages, so they
// are validated before they become store keys.
package validation

import (
	"fmt"
	"strings"
	"unicode"
)

// maxNameLength bounds entity names. Longer inputs are almost always
// the model echoing a whole sentence into a name argument.
const maxNameLength = 80

// EntityName validates a fleet entity name (stop, path, route, trip).
//
// Valid names:
//   - Non-empty after trimming whitespace
//   - At most 80 characters
//   - No control characters
//
// Returns an error describing the first violation.
func EntityName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("name must not be empty")
	}
	if len(trimmed) > maxNameLength {
		return fmt.Errorf("name exceeds %d characters", maxNameLength)
	}
	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return fmt.Errorf("name contains control characters")
		}
	}
	return nil
}

// Coordinate validates a latitude/longitude pair.
func Coordinate(latitude, longitude float64) error {
	if latitude < -90 || latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", latitude)
	}
	if longitude < -180 || longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", longitude)
	}
	return nil
}
