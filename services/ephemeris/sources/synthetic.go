// Copyright (C) 2025 Daily Secrets (dev@dailysecrets.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sources

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/dailysecrets/astrocore/services/ephemeris/datatypes"
)

// SyntheticSource is the terminal fallback. It fabricates a structurally
// complete chart so downstream rendering never sees a hole, and it never
// fails. Output is deterministic per BirthMoment: the generator is seeded
// from the moment's cache key, so retries for the same request line up.
// Results are tagged with the placeholder accuracy tier and the resolver
// never caches them.
type SyntheticSource struct{}

// NewSyntheticSource returns the placeholder generator.
func NewSyntheticSource() *SyntheticSource { return &SyntheticSource{} }

func (s *SyntheticSource) Name() string               { return "synthetic" }
func (s *SyntheticSource) Kind() datatypes.SourceKind { return datatypes.SourceSynthetic }

// goldenAngleDeg spaces fabricated longitudes so no two bodies collide.
const goldenAngleDeg = 137.50776405

// FetchPositions always succeeds.
func (s *SyntheticSource) FetchPositions(_ context.Context, m datatypes.BirthMoment) (datatypes.SourceOutput, error) {
	h := fnv.New64a()
	h.Write([]byte(m.CacheKey()))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	base := rng.Float64() * 360.0

	bodies := datatypes.CoreBodies()
	positions := make([]datatypes.PlanetPosition, 0, len(bodies))
	for i, b := range bodies {
		// Golden-angle spacing keeps longitudes distinct; the jitter stays
		// well under half the spacing gap.
		lon := datatypes.NormalizeDegrees(base + float64(i)*goldenAngleDeg + rng.Float64()*10.0)

		positions = append(positions, datatypes.PlanetPosition{
			Body:          b,
			LongitudeDeg:  lon,
			LatitudeDeg:   (rng.Float64()*2 - 1) * 5.0,
			DistanceAU:    0.3 + rng.Float64()*39.0,
			DailySpeedDeg: snapSpeed(b, rng),
		})
	}

	asc := datatypes.NormalizeDegrees(base + rng.Float64()*360.0)
	return datatypes.SourceOutput{
		Positions: positions,
		Angles: datatypes.ChartAngles{
			AscendantDeg: asc,
			MidheavenDeg: datatypes.NormalizeDegrees(asc + 270.0),
		},
	}, nil
}

// snapSpeed picks a daily motion in a plausible band for the body so
// fabricated charts do not show Pluto outrunning the Moon.
func snapSpeed(b datatypes.Body, rng *rand.Rand) float64 {
	var lo, hi float64
	switch b {
	case datatypes.BodyMoon:
		lo, hi = 11.0, 15.0
	case datatypes.BodySun, datatypes.BodyMercury, datatypes.BodyVenus:
		lo, hi = 0.5, 4.0
	case datatypes.BodyMars:
		lo, hi = 0.2, 0.8
	case datatypes.BodyNorthNode:
		lo, hi = -0.06, -0.04
	default:
		lo, hi = 0.001, 0.1
	}
	return math.Round((lo+rng.Float64()*(hi-lo))*1e4) / 1e4
}
