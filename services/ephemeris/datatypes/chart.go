// Copyright (C) 2025 Daily Secrets (dev@dailysecrets.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes defines the chart domain model shared by the ephemeris
// pipeline: birth moments, planetary positions, house cusps, aspects,
// validation records, and the ChartResult aggregate returned to callers.
//
// All types here are plain values. Nothing in this package performs I/O,
// and a ChartResult owns its nested slices for the lifetime of the request
// that produced it.
package datatypes

import (
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// momentValidate is the validator instance for chart datatypes.
// Initialized in init() with custom validators.
var momentValidate *validator.Validate

func init() {
	momentValidate = validator.New()

	_ = momentValidate.RegisterValidation("finite", validateFinite)
}

// validateFinite rejects NaN and infinite float fields. The numeric range
// tags alone miss NaN, which compares false against every bound.
func validateFinite(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// =============================================================================
// Bodies
// =============================================================================

// Body identifies a celestial body by its canonical name.
type Body string

const (
	BodySun       Body = "Sun"
	BodyMoon      Body = "Moon"
	BodyMercury   Body = "Mercury"
	BodyVenus     Body = "Venus"
	BodyMars      Body = "Mars"
	BodyJupiter   Body = "Jupiter"
	BodySaturn    Body = "Saturn"
	BodyUranus    Body = "Uranus"
	BodyNeptune   Body = "Neptune"
	BodyPluto     Body = "Pluto"
	BodyNorthNode Body = "NorthNode"
)

// CoreBodies lists the bodies every source is expected to produce, in the
// traditional Sun-to-Pluto order plus the lunar north node.
func CoreBodies() []Body {
	return []Body{
		BodySun, BodyMoon, BodyMercury, BodyVenus, BodyMars,
		BodyJupiter, BodySaturn, BodyUranus, BodyNeptune, BodyPluto,
		BodyNorthNode,
	}
}

// =============================================================================
// Inputs
// =============================================================================

// BirthMoment is the calculation input: a UTC instant plus a geographic
// coordinate. It is constructed once per request and never mutated.
type BirthMoment struct {
	// UTCDateTime is the already-normalized UTC instant. Timezone
	// resolution happens upstream; this package trusts the caller.
	UTCDateTime time.Time `json:"utc_datetime" validate:"required"`

	// Latitude in degrees, [-90, 90].
	Latitude float64 `json:"latitude" validate:"finite,gte=-90,lte=90"`

	// Longitude in degrees, [-180, 180].
	Longitude float64 `json:"longitude" validate:"finite,gte=-180,lte=180"`

	// ElevationM is the observer elevation in meters. Defaults to 0.
	ElevationM float64 `json:"elevation_m" validate:"finite"`
}

// Validate checks the coordinate ranges and that a timestamp is present.
func (m BirthMoment) Validate() error {
	if err := momentValidate.Struct(m); err != nil {
		return fmt.Errorf("invalid birth moment: %w", err)
	}
	return nil
}

// CacheKey derives the resolver cache key from the rounded moment: the
// instant truncated to the second and coordinates at 4 decimal places.
// Two requests within ~11m of each other on the ground share a key.
func (m BirthMoment) CacheKey() string {
	return fmt.Sprintf("chart:%s:%.4f:%.4f",
		m.UTCDateTime.UTC().Truncate(time.Second).Format(time.RFC3339),
		m.Latitude, m.Longitude)
}

// =============================================================================
// Positions
// =============================================================================

// PlanetPosition is one body's resolved ecliptic position. Produced fresh
// per resolution; a new value replaces it, it is never mutated in place.
type PlanetPosition struct {
	Body Body `json:"name"`

	// LongitudeDeg is the ecliptic longitude, always normalized to [0, 360).
	LongitudeDeg float64 `json:"longitude_deg"`

	// LatitudeDeg is the ecliptic latitude in [-90, 90].
	LatitudeDeg float64 `json:"latitude_deg"`

	// DistanceAU is the geocentric distance in astronomical units.
	DistanceAU float64 `json:"distance_au"`

	// DailySpeedDeg is the signed daily motion in degrees; negative while
	// retrograde.
	DailySpeedDeg float64 `json:"daily_speed_deg"`
}

// ChartAngles carries the source-computed chart axes. Deriving these from
// sidereal time is source-specific astronomy, so they travel with the
// positions rather than being recomputed by the pipeline.
type ChartAngles struct {
	AscendantDeg float64 `json:"ascendant_deg"`
	MidheavenDeg float64 `json:"midheaven_deg"`
}

// SourceOutput is what a PositionSource produces for one BirthMoment.
type SourceOutput struct {
	Positions []PlanetPosition `json:"positions"`
	Angles    ChartAngles      `json:"angles"`
}

// =============================================================================
// Derived data
// =============================================================================

// HouseCusp is one of the twelve house boundaries. House 1 is the
// ascendant, house 10 the midheaven.
type HouseCusp struct {
	HouseNumber  int     `json:"house_number"`
	LongitudeDeg float64 `json:"longitude_deg"`
}

// AspectKind names a recognized angular relationship between two bodies.
type AspectKind string

const (
	AspectConjunction AspectKind = "Conjunction"
	AspectSextile     AspectKind = "Sextile"
	AspectSquare      AspectKind = "Square"
	AspectTrine       AspectKind = "Trine"
	AspectOpposition  AspectKind = "Opposition"
)

// Aspect records one classified pairwise relationship. The set is
// recomputed wholesale per resolution, never patched incrementally.
type Aspect struct {
	BodyA Body       `json:"body_a"`
	BodyB Body       `json:"body_b"`
	Kind  AspectKind `json:"kind"`

	// OrbDeg is the absolute deviation from the aspect's exact angle.
	OrbDeg float64 `json:"orb_deg"`
}

// =============================================================================
// Validation
// =============================================================================

// Verdict is the outcome of cross-checking one body against a reference.
type Verdict string

const (
	VerdictValid   Verdict = "Valid"
	VerdictInvalid Verdict = "Invalid"
)

// ValidationRecord is the cross-check result for one body. When the
// reference source had no entry for the body, ReferenceLongitude and
// DifferenceDeg are nil and the verdict is Valid: absence of contradiction,
// not confirmation. Callers needing strict validation must treat the nil
// case separately.
type ValidationRecord struct {
	BodyName           Body     `json:"body_name"`
	ResolvedLongitude  float64  `json:"resolved_longitude"`
	ReferenceLongitude *float64 `json:"reference_longitude"`
	DifferenceDeg      *float64 `json:"difference_deg"`
	ToleranceDeg       float64  `json:"tolerance_deg"`
	Verdict            Verdict  `json:"verdict"`
}

// =============================================================================
// Provenance and the aggregate result
// =============================================================================

// SourceKind tags which provider class actually produced a result.
type SourceKind string

const (
	SourceRemote    SourceKind = "Remote"
	SourceLocal     SourceKind = "Local"
	SourceSynthetic SourceKind = "Synthetic"
)

// AccuracyTier maps a source kind to the trust level callers surface in UI.
func (k SourceKind) AccuracyTier() string {
	switch k {
	case SourceRemote:
		return "high"
	case SourceLocal:
		return "medium"
	case SourceSynthetic:
		return "placeholder"
	default:
		return "unknown"
	}
}

// Provenance describes where a result came from. SourceUsed and CacheHit
// are always populated so callers can surface trust indicators.
type Provenance struct {
	SourceUsed   SourceKind `json:"source_used"`
	AccuracyTier string     `json:"accuracy_tier"`
	CacheHit     bool       `json:"cache_hit"`
	ResolvedAt   time.Time  `json:"resolved_at"`
}

// ChartResult is the aggregate root returned by the pipeline. It is
// request-scoped; nothing is shared across requests except through the
// cache, which stores SourceOutput values, not ChartResults.
type ChartResult struct {
	Positions []PlanetPosition `json:"positions"`

	// Houses holds exactly 12 cusps, or is empty when HousesDegenerate.
	Houses []HouseCusp `json:"houses"`

	// HousesDegenerate flags that cusp derivation was rejected
	// (ascendant coincided with the midheaven) and Houses is empty.
	HousesDegenerate bool `json:"houses_degenerate,omitempty"`

	Aspects    []Aspect           `json:"aspects,omitempty"`
	Validation []ValidationRecord `json:"validation,omitempty"`
	Provenance Provenance         `json:"provenance"`
}

// =============================================================================
// Angle helpers
// =============================================================================

// NormalizeDegrees wraps an angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// ShorterArc returns the angular separation between two longitudes along
// the shorter arc, in [0, 180].
func ShorterArc(lon1, lon2 float64) float64 {
	d := math.Abs(NormalizeDegrees(lon1) - NormalizeDegrees(lon2))
	if d > 180 {
		d = 360 - d
	}
	return d
}
