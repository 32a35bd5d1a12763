// Copyright (C) 2025 Daily Secrets (dev@dailysecrets.app)
// Tests for aspect detection.

package aspects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailysecrets/astrocore/services/ephemeris/datatypes"
)

func pos(b datatypes.Body, lon float64) datatypes.PlanetPosition {
	return datatypes.PlanetPosition{Body: b, LongitudeDeg: lon}
}

func TestDetect_ExactAspects(t *testing.T) {
	tests := []struct {
		name string
		lonB float64
		want datatypes.AspectKind
	}{
		{"conjunction", 0, datatypes.AspectConjunction},
		{"sextile", 60, datatypes.AspectSextile},
		{"square", 90, datatypes.AspectSquare},
		{"trine", 120, datatypes.AspectTrine},
		{"opposition", 180, datatypes.AspectOpposition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := Detect([]datatypes.PlanetPosition{
				pos(datatypes.BodySun, 0),
				pos(datatypes.BodyMoon, tt.lonB),
			})
			require.Len(t, found, 1)
			assert.Equal(t, tt.want, found[0].Kind)
			assert.InDelta(t, 0.0, found[0].OrbDeg, 1e-9)
			assert.Equal(t, datatypes.BodySun, found[0].BodyA)
			assert.Equal(t, datatypes.BodyMoon, found[0].BodyB)
		})
	}
}

func TestDetect_SquareYieldsExactlyOneAspect(t *testing.T) {
	// 90 degrees sits inside only the square window; the pair must not
	// also be reported as anything else.
	found := Detect([]datatypes.PlanetPosition{
		pos(datatypes.BodySun, 0),
		pos(datatypes.BodyMars, 90),
	})
	require.Len(t, found, 1)
	assert.Equal(t, datatypes.AspectSquare, found[0].Kind)
}

func TestDetect_OrbBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		sep     float64
		matched bool
		want    datatypes.AspectKind
	}{
		{"conjunction at orb edge", 8.0, true, datatypes.AspectConjunction},
		{"just past conjunction orb", 8.01, false, ""},
		{"sextile low edge", 54.0, true, datatypes.AspectSextile},
		{"just under sextile window", 53.9, false, ""},
		{"sextile high edge", 66.0, true, datatypes.AspectSextile},
		{"between sextile and square", 70.0, false, ""},
		{"square low edge", 82.0, true, datatypes.AspectSquare},
		{"opposition low edge", 172.0, true, datatypes.AspectOpposition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := Detect([]datatypes.PlanetPosition{
				pos(datatypes.BodySun, 10),
				pos(datatypes.BodyVenus, 10+tt.sep),
			})
			if !tt.matched {
				assert.Empty(t, found)
				return
			}
			require.Len(t, found, 1)
			assert.Equal(t, tt.want, found[0].Kind)
		})
	}
}

func TestDetect_SeparationUsesShorterArc(t *testing.T) {
	// 350 and 10 are 20 degrees apart across the seam, no aspect; 355
	// and 2 are 7 degrees apart, a conjunction.
	assert.Empty(t, Detect([]datatypes.PlanetPosition{
		pos(datatypes.BodySun, 350),
		pos(datatypes.BodyMoon, 10),
	}))

	found := Detect([]datatypes.PlanetPosition{
		pos(datatypes.BodySun, 355),
		pos(datatypes.BodyMoon, 2),
	})
	require.Len(t, found, 1)
	assert.Equal(t, datatypes.AspectConjunction, found[0].Kind)
	assert.InDelta(t, 7.0, found[0].OrbDeg, 1e-9)
}

func TestDetect_StablePairOrder(t *testing.T) {
	positions := []datatypes.PlanetPosition{
		pos(datatypes.BodySun, 0),
		pos(datatypes.BodyMoon, 90),
		pos(datatypes.BodyMars, 180),
	}
	found := Detect(positions)
	require.Len(t, found, 3)

	assert.Equal(t, []datatypes.Body{datatypes.BodySun, datatypes.BodySun, datatypes.BodyMoon},
		[]datatypes.Body{found[0].BodyA, found[1].BodyA, found[2].BodyA})
	assert.Equal(t, []datatypes.Body{datatypes.BodyMoon, datatypes.BodyMars, datatypes.BodyMars},
		[]datatypes.Body{found[0].BodyB, found[1].BodyB, found[2].BodyB})
	assert.Equal(t, datatypes.AspectSquare, found[0].Kind)
	assert.Equal(t, datatypes.AspectOpposition, found[1].Kind)
	assert.Equal(t, datatypes.AspectSquare, found[2].Kind)

	// Same input, same output.
	assert.Equal(t, found, Detect(positions))
}

func TestDetect_NoSelfOrDuplicatePairs(t *testing.T) {
	found := Detect([]datatypes.PlanetPosition{
		pos(datatypes.BodySun, 0),
		pos(datatypes.BodyMoon, 3),
	})
	require.Len(t, found, 1, "each unordered pair is reported at most once")
}

func TestDetect_EmptyAndSingleInput(t *testing.T) {
	assert.Empty(t, Detect(nil))
	assert.Empty(t, Detect([]datatypes.PlanetPosition{pos(datatypes.BodySun, 0)}))
}
