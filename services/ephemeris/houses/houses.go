// Copyright (C) 2025 Daily Secrets (dev@dailysecrets.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package houses derives the twelve house cusps of a chart from its
// ascendant and midheaven. The usual geometry is Porphyry quadrant
// division, each of the four quadrants split into three equal arcs;
// Calculate documents the fallback for inverted angle geometry.
package houses

import (
	"errors"
	"fmt"
	"math"

	"github.com/dailysecrets/astrocore/services/ephemeris/datatypes"
)

// ErrDegenerateInput is returned when the ascendant and midheaven
// coincide or sit exactly opposite each other, leaving no usable cusp
// spacing. Callers serve the chart without houses rather than
// fabricating cusps.
var ErrDegenerateInput = errors.New("degenerate angles: ascendant coincides with or opposes midheaven")

// degenerateEpsilonDeg is the angular slack below which two angles are
// treated as coincident.
const degenerateEpsilonDeg = 1e-6

// Calculate returns exactly 12 cusps in house order. House 1 is pinned to
// the ascendant and house 10 to the midheaven; walking the cusps from
// house 1 in zodiacal order, each is strictly ahead of the previous
// modulo 360.
//
// In the usual geometry the midheaven lies in the back half of the
// circle, the angles fall in zodiacal order asc, IC, desc, MC, and each
// quadrant is trisected. Provider-supplied or high-latitude angles can
// invert that order, placing the midheaven zodiacally ahead of the
// ascendant; pinning the IC and descendant there would break cusp
// monotonicity, so instead houses 1 through 10 divide the forward
// asc-to-MC arc evenly and houses 11 and 12 divide the remainder.
func Calculate(angles datatypes.ChartAngles) ([]datatypes.HouseCusp, error) {
	asc := datatypes.NormalizeDegrees(angles.AscendantDeg)
	mc := datatypes.NormalizeDegrees(angles.MidheavenDeg)

	// Forward arc from the ascendant to the midheaven.
	arcAscMC := datatypes.NormalizeDegrees(mc - asc)
	if arcAscMC < degenerateEpsilonDeg ||
		arcAscMC > 360-degenerateEpsilonDeg ||
		math.Abs(arcAscMC-180) < degenerateEpsilonDeg {
		return nil, fmt.Errorf("%w: ascendant=%.6f midheaven=%.6f", ErrDegenerateInput, asc, mc)
	}

	var longitudes [12]float64
	if arcAscMC > 180 {
		ic := datatypes.NormalizeDegrees(mc + 180)
		desc := datatypes.NormalizeDegrees(asc + 180)
		arcAscIC := arcAscMC - 180
		arcICDesc := 180 - arcAscIC

		longitudes = [12]float64{
			asc,
			asc + arcAscIC/3,
			asc + 2*arcAscIC/3,
			ic,
			ic + arcICDesc/3,
			ic + 2*arcICDesc/3,
			desc,
			desc + arcAscIC/3,
			desc + 2*arcAscIC/3,
			mc,
			mc + arcICDesc/3,
			mc + 2*arcICDesc/3,
		}
	} else {
		// Inverted geometry: even division keeps the pins and the
		// monotone walk.
		forward := arcAscMC / 9
		back := (360 - arcAscMC) / 3
		for i := 0; i < 10; i++ {
			longitudes[i] = asc + float64(i)*forward
		}
		longitudes[10] = mc + back
		longitudes[11] = mc + 2*back
	}

	cusps := make([]datatypes.HouseCusp, 12)
	for i, lon := range longitudes {
		cusps[i] = datatypes.HouseCusp{
			HouseNumber:  i + 1,
			LongitudeDeg: datatypes.NormalizeDegrees(lon),
		}
	}
	return cusps, nil
}
