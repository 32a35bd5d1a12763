// Copyright (C) 2025 Daily Secrets (dev@dailysecrets.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package aspects detects the five major aspects between body pairs.
package aspects

import (
	"github.com/dailysecrets/astrocore/services/ephemeris/datatypes"
)

// definition is one row of the aspect table: the exact angle and the
// maximum deviation from it that still counts.
type definition struct {
	kind     datatypes.AspectKind
	angleDeg float64
	orbDeg   float64
}

// table is checked in order and the first match wins, so a separation
// inside two orb windows (possible only through the table's own overlap
// at the edges) is classified by the earlier row.
var table = []definition{
	{datatypes.AspectConjunction, 0, 8},
	{datatypes.AspectSextile, 60, 6},
	{datatypes.AspectSquare, 90, 8},
	{datatypes.AspectTrine, 120, 8},
	{datatypes.AspectOpposition, 180, 8},
}

// Detect returns every aspect between distinct body pairs. Pairs are
// visited in input order (i before j), so output order is deterministic
// for a given position slice. Pairs whose separation matches no row are
// omitted entirely.
func Detect(positions []datatypes.PlanetPosition) []datatypes.Aspect {
	var found []datatypes.Aspect
	for i := 0; i < len(positions); i++ {
		for j := i + 1; j < len(positions); j++ {
			sep := datatypes.ShorterArc(positions[i].LongitudeDeg, positions[j].LongitudeDeg)
			if a, ok := classify(sep); ok {
				found = append(found, datatypes.Aspect{
					BodyA:  positions[i].Body,
					BodyB:  positions[j].Body,
					Kind:   a.kind,
					OrbDeg: abs(sep - a.angleDeg),
				})
			}
		}
	}
	return found
}

// classify finds the first table row whose orb window contains the
// separation.
func classify(sepDeg float64) (definition, bool) {
	for _, d := range table {
		if abs(sepDeg-d.angleDeg) <= d.orbDeg {
			return d, true
		}
	}
	return definition{}, false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
