// Copyright (C) 2025 Daily Secrets (dev@dailysecrets.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sources

import (
	"context"
	"math"

	"github.com/dailysecrets/astrocore/services/ephemeris/datatypes"
)

// meanElements holds the J2000 mean longitude, the daily motion rate, the
// maximum ecliptic latitude amplitude, and a typical geocentric distance
// for one body. Suitable for a medium-accuracy chart, not for navigation.
type meanElements struct {
	l0Deg      float64 // mean longitude at J2000.0
	rateDeg    float64 // mean daily motion, degrees/day
	latAmpDeg  float64 // ecliptic latitude amplitude
	distanceAU float64
}

var meanElementTable = map[datatypes.Body]meanElements{
	datatypes.BodySun:       {280.460, 0.9856474, 0.0, 1.000},
	datatypes.BodyMoon:      {218.316, 13.176396, 5.145, 0.00257},
	datatypes.BodyMercury:   {252.251, 4.0923344, 7.005, 0.85},
	datatypes.BodyVenus:     {181.980, 1.6021302, 3.395, 1.14},
	datatypes.BodyMars:      {355.433, 0.5240330, 1.850, 1.52},
	datatypes.BodyJupiter:   {34.351, 0.0830853, 1.303, 5.20},
	datatypes.BodySaturn:    {50.077, 0.0334442, 2.489, 9.54},
	datatypes.BodyUranus:    {314.055, 0.0117258, 0.773, 19.19},
	datatypes.BodyNeptune:   {304.348, 0.0059951, 1.770, 30.07},
	datatypes.BodyPluto:     {238.958, 0.0039757, 17.16, 39.48},
	datatypes.BodyNorthNode: {125.045, -0.0529539, 0.0, 0.00257},
}

// LocalSource computes planetary positions in-process from mean orbital
// elements. It is fully deterministic: the same BirthMoment always yields
// the same SourceOutput, with no I/O and no randomness. Accuracy is on the
// order of a degree for the slow bodies and a few degrees for the Moon,
// which is why results carry the medium accuracy tier.
type LocalSource struct{}

// NewLocalSource returns the in-process mean-element calculator.
func NewLocalSource() *LocalSource { return &LocalSource{} }

func (s *LocalSource) Name() string               { return "local" }
func (s *LocalSource) Kind() datatypes.SourceKind { return datatypes.SourceLocal }

// FetchPositions evaluates the mean-element table at the moment's Julian
// day. The only failure mode is an invalid moment, reported as a
// malformed-input SourceError.
func (s *LocalSource) FetchPositions(_ context.Context, m datatypes.BirthMoment) (datatypes.SourceOutput, error) {
	const op = "local.FetchPositions"

	if err := m.Validate(); err != nil {
		return datatypes.SourceOutput{}, &SourceError{Kind: KindMalformedResponse, Op: op, Err: err}
	}

	jd := JulianDay(m.UTCDateTime)
	days := jd - j2000

	bodies := datatypes.CoreBodies()
	positions := make([]datatypes.PlanetPosition, 0, len(bodies))
	for _, b := range bodies {
		el := meanElementTable[b]
		lon := datatypes.NormalizeDegrees(el.l0Deg + el.rateDeg*days)

		// Latitude follows a sinusoid through the node, a crude stand-in
		// for the real inclination geometry.
		lat := el.latAmpDeg * math.Sin(lon*degToRad)

		positions = append(positions, datatypes.PlanetPosition{
			Body:          b,
			LongitudeDeg:  lon,
			LatitudeDeg:   lat,
			DistanceAU:    el.distanceAU,
			DailySpeedDeg: el.rateDeg,
		})
	}

	return datatypes.SourceOutput{
		Positions: positions,
		Angles:    chartAnglesFor(m),
	}, nil
}
