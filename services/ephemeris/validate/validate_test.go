// Copyright (C) 2025 Daily Secrets (dev@dailysecrets.app)
// Tests for position validation.

package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailysecrets/astrocore/services/ephemeris/datatypes"
)

func pos(b datatypes.Body, lon float64) datatypes.PlanetPosition {
	return datatypes.PlanetPosition{Body: b, LongitudeDeg: lon}
}

func TestValidate_WithinToleranceIsValid(t *testing.T) {
	s := New(Config{})
	records := s.Validate(
		[]datatypes.PlanetPosition{pos(datatypes.BodySun, 54.40)},
		[]datatypes.PlanetPosition{pos(datatypes.BodySun, 54.45)},
	)
	require.Len(t, records, 1)
	assert.Equal(t, datatypes.BodySun, records[0].BodyName)
	assert.Equal(t, datatypes.VerdictValid, records[0].Verdict)
	require.NotNil(t, records[0].DifferenceDeg)
	assert.InDelta(t, 0.05, *records[0].DifferenceDeg, 1e-9)
	assert.Equal(t, 0.1, records[0].ToleranceDeg)
}

func TestValidate_BoundaryIsInclusive(t *testing.T) {
	s := New(Config{})

	exactly := s.Validate(
		[]datatypes.PlanetPosition{pos(datatypes.BodySun, 100.0)},
		[]datatypes.PlanetPosition{pos(datatypes.BodySun, 100.1)},
	)
	assert.Equal(t, datatypes.VerdictValid, exactly[0].Verdict)

	over := s.Validate(
		[]datatypes.PlanetPosition{pos(datatypes.BodySun, 100.0)},
		[]datatypes.PlanetPosition{pos(datatypes.BodySun, 100.1000001)},
	)
	assert.Equal(t, datatypes.VerdictInvalid, over[0].Verdict)
}

func TestValidate_MoonGetsLooserTolerance(t *testing.T) {
	s := New(Config{})

	records := s.Validate(
		[]datatypes.PlanetPosition{
			pos(datatypes.BodySun, 10.0),
			pos(datatypes.BodyMoon, 200.0),
		},
		[]datatypes.PlanetPosition{
			pos(datatypes.BodySun, 10.15),
			pos(datatypes.BodyMoon, 200.15),
		},
	)
	require.Len(t, records, 2)
	assert.Equal(t, datatypes.VerdictInvalid, records[0].Verdict, "0.15 exceeds the default 0.1")
	assert.Equal(t, datatypes.VerdictValid, records[1].Verdict, "0.15 is within the Moon's 0.2")
	assert.Equal(t, 0.2, records[1].ToleranceDeg)
}

func TestValidate_CaseInsensitiveBodyMatch(t *testing.T) {
	s := New(Config{})
	records := s.Validate(
		[]datatypes.PlanetPosition{pos(datatypes.BodyMoon, 200.0)},
		[]datatypes.PlanetPosition{pos("moon", 200.15)},
	)
	require.Len(t, records, 1)
	assert.Equal(t, datatypes.VerdictValid, records[0].Verdict)
	assert.NotNil(t, records[0].ReferenceLongitude)
}

func TestValidate_WrapAroundSeam(t *testing.T) {
	s := New(Config{})
	records := s.Validate(
		[]datatypes.PlanetPosition{pos(datatypes.BodySun, 359.95)},
		[]datatypes.PlanetPosition{pos(datatypes.BodySun, 0.02)},
	)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].DifferenceDeg)
	assert.InDelta(t, 0.07, *records[0].DifferenceDeg, 1e-9)
	assert.Equal(t, datatypes.VerdictValid, records[0].Verdict)
}

func TestValidate_MissingReferencePassesVacuously(t *testing.T) {
	s := New(Config{})
	records := s.Validate(
		[]datatypes.PlanetPosition{
			pos(datatypes.BodySun, 10.0),
			pos(datatypes.BodyPluto, 250.0),
		},
		[]datatypes.PlanetPosition{pos(datatypes.BodySun, 10.0)},
	)
	require.Len(t, records, 2)

	assert.Equal(t, datatypes.VerdictValid, records[1].Verdict)
	assert.Nil(t, records[1].ReferenceLongitude)
	assert.Nil(t, records[1].DifferenceDeg)
}

func TestValidate_NilReferenceAllValid(t *testing.T) {
	s := New(Config{})
	records := s.Validate(
		[]datatypes.PlanetPosition{
			pos(datatypes.BodySun, 10.0),
			pos(datatypes.BodyMoon, 20.0),
		},
		nil,
	)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, datatypes.VerdictValid, rec.Verdict)
		assert.Nil(t, rec.DifferenceDeg)
	}
}

func TestValidate_ConfiguredOverridesReplaceDefaults(t *testing.T) {
	s := New(Config{
		DefaultToleranceDeg: 0.5,
		BodyTolerances:      map[string]float64{"MERCURY": 1.0},
	})

	assert.Equal(t, 1.0, s.ToleranceFor(datatypes.BodyMercury))
	assert.Equal(t, 0.5, s.ToleranceFor(datatypes.BodySun))
	// Explicit config replaces the built-in Moon override.
	assert.Equal(t, 0.5, s.ToleranceFor(datatypes.BodyMoon))
}

func TestValidate_EmptyResolvedYieldsEmptyRecords(t *testing.T) {
	s := New(Config{})
	records := s.Validate(nil, nil)
	assert.Empty(t, records)
}
