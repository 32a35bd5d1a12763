// Copyright (C) 2025 Daily Secrets (dev@dailysecrets.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation utilities for user-provided
// request fields.
//
// This package contains validators for inputs that end up in provider
// queries and storage keys. Using these validators keeps malformed
// coordinates and body names out of the pipeline before any calculation
// starts.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// bodyNamePattern matches valid celestial body names.
// Allows: letters, with optional single spaces between words (e.g. "North Node").
// Max length: 32 characters.
var bodyNamePattern = regexp.MustCompile(`^[A-Za-z]+(?: [A-Za-z]+)*$`)

// ValidateLatitude checks that a latitude is finite and within [-90, 90]
// degrees.
func ValidateLatitude(lat float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) {
		return fmt.Errorf("latitude must be finite")
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %.4f out of range [-90, 90]", lat)
	}
	return nil
}

// ValidateLongitude checks that a longitude is finite and within
// [-180, 180] degrees.
func ValidateLongitude(lon float64) error {
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		return fmt.Errorf("longitude must be finite")
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("longitude %.4f out of range [-180, 180]", lon)
	}
	return nil
}

// ValidateCoordinates checks a latitude/longitude pair together.
func ValidateCoordinates(lat, lon float64) error {
	if err := ValidateLatitude(lat); err != nil {
		return err
	}
	return ValidateLongitude(lon)
}

// ValidateBodyName validates a celestial body name.
//
// Valid names:
//   - 1-32 characters
//   - Letters only, single spaces between words
//
// Returns an error if the name is invalid.
func ValidateBodyName(name string) error {
	if name == "" {
		return fmt.Errorf("body name cannot be empty")
	}
	if len(name) > 32 {
		return fmt.Errorf("body name too long: %d characters (max 32)", len(name))
	}
	if !bodyNamePattern.MatchString(name) {
		return fmt.Errorf("invalid body name: %q (letters and single spaces only)", name)
	}
	return nil
}

// SanitizeBodyName normalizes and validates a body name. Matching between
// resolved and reference bodies is case-insensitive, so the canonical form
// is title-cased with interior spaces removed ("north node" -> "NorthNode").
func SanitizeBodyName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if err := ValidateBodyName(trimmed); err != nil {
		return "", err
	}
	words := strings.Fields(trimmed)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, ""), nil
}
