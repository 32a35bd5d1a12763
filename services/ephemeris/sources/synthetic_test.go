// Copyright (C) 2025 Daily Secrets (dev@dailysecrets.app)
// Tests for the placeholder position generator.

package sources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailysecrets/astrocore/services/ephemeris/datatypes"
)

func TestSyntheticSource_NeverFails(t *testing.T) {
	src := NewSyntheticSource()

	// Even a nonsensical moment produces a structurally complete chart.
	out, err := src.FetchPositions(context.Background(), datatypes.BirthMoment{})
	require.NoError(t, err)
	assert.Len(t, out.Positions, len(datatypes.CoreBodies()))
}

func TestSyntheticSource_DeterministicPerMoment(t *testing.T) {
	src := NewSyntheticSource()
	a, err := src.FetchPositions(context.Background(), testMoment())
	require.NoError(t, err)
	b, err := src.FetchPositions(context.Background(), testMoment())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSyntheticSource_DifferentMomentsDiffer(t *testing.T) {
	src := NewSyntheticSource()
	a, _ := src.FetchPositions(context.Background(), testMoment())

	other := testMoment()
	other.Latitude = -33.8688
	b, _ := src.FetchPositions(context.Background(), other)

	assert.NotEqual(t, a.Positions[0].LongitudeDeg, b.Positions[0].LongitudeDeg)
}

func TestSyntheticSource_LongitudesDistinctAndInRange(t *testing.T) {
	src := NewSyntheticSource()
	out, err := src.FetchPositions(context.Background(), testMoment())
	require.NoError(t, err)

	seen := make([]float64, 0, len(out.Positions))
	for _, p := range out.Positions {
		assert.GreaterOrEqual(t, p.LongitudeDeg, 0.0)
		assert.Less(t, p.LongitudeDeg, 360.0)
		for _, prior := range seen {
			assert.Greater(t, datatypes.ShorterArc(p.LongitudeDeg, prior), 1.0,
				"body %s clustered at %.4f", p.Body, p.LongitudeDeg)
		}
		seen = append(seen, p.LongitudeDeg)
	}
}

func TestSyntheticSource_AllFieldsPopulated(t *testing.T) {
	src := NewSyntheticSource()
	out, err := src.FetchPositions(context.Background(), testMoment())
	require.NoError(t, err)

	for _, p := range out.Positions {
		assert.NotEmpty(t, p.Body)
		assert.Greater(t, p.DistanceAU, 0.0)
		assert.NotZero(t, p.DailySpeedDeg)
	}
	assert.GreaterOrEqual(t, out.Angles.AscendantDeg, 0.0)
	assert.Less(t, out.Angles.AscendantDeg, 360.0)
	assert.GreaterOrEqual(t, out.Angles.MidheavenDeg, 0.0)
	assert.Less(t, out.Angles.MidheavenDeg, 360.0)
}

func TestSyntheticSource_PlausibleSpeeds(t *testing.T) {
	src := NewSyntheticSource()
	out, err := src.FetchPositions(context.Background(), testMoment())
	require.NoError(t, err)

	for _, p := range out.Positions {
		switch p.Body {
		case datatypes.BodyMoon:
			assert.Greater(t, p.DailySpeedDeg, 10.0)
		case datatypes.BodyNorthNode:
			assert.Less(t, p.DailySpeedDeg, 0.0)
		}
	}
}

func TestSyntheticSource_KindIsSynthetic(t *testing.T) {
	src := NewSyntheticSource()
	assert.Equal(t, datatypes.SourceSynthetic, src.Kind())
	assert.Equal(t, "placeholder", src.Kind().AccuracyTier())
}
