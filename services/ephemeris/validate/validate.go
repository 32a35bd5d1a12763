// Copyright (C) 2025 Daily Secrets (dev@dailysecrets.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validate compares resolved planetary positions against an
// independent reference and issues per-body verdicts.
//
// # Description
//
// Validation is advisory: it grades agreement between two sources, it
// never blocks a chart from being served. A body with no reference
// counterpart passes vacuously, so a partial or absent reference set can
// only ever improve confidence, not degrade availability.
package validate

import (
	"strings"

	"github.com/dailysecrets/astrocore/services/ephemeris/datatypes"
	"github.com/dailysecrets/astrocore/services/ephemeris/observability"
)

const (
	// DefaultToleranceDeg is the agreement bound for most bodies.
	DefaultToleranceDeg = 0.1

	// MoonToleranceDeg is looser because the Moon moves about thirteen
	// degrees a day, so small time disagreements between sources show up
	// as larger longitude spread.
	MoonToleranceDeg = 0.2
)

// Config configures a Service. Zero values take the package defaults.
type Config struct {
	// DefaultToleranceDeg applies to any body without an override.
	DefaultToleranceDeg float64

	// BodyTolerances overrides the default per body. Keys are matched
	// case-insensitively.
	BodyTolerances map[string]float64

	Metrics *observability.EphemerisMetrics
}

// Service grades resolved positions against reference positions.
type Service struct {
	defaultTol float64
	byBody     map[string]float64
	metrics    *observability.EphemerisMetrics
}

// New builds a Service. With an empty config the contract tolerances
// apply: 0.1 degrees for every body except the Moon at 0.2.
func New(cfg Config) *Service {
	s := &Service{
		defaultTol: cfg.DefaultToleranceDeg,
		byBody:     make(map[string]float64),
		metrics:    cfg.Metrics,
	}
	if s.defaultTol <= 0 {
		s.defaultTol = DefaultToleranceDeg
	}
	if cfg.BodyTolerances == nil {
		s.byBody[strings.ToLower(string(datatypes.BodyMoon))] = MoonToleranceDeg
	} else {
		for name, tol := range cfg.BodyTolerances {
			s.byBody[strings.ToLower(name)] = tol
		}
	}
	return s
}

// ToleranceFor returns the tolerance applied to a body, matching
// case-insensitively.
func (s *Service) ToleranceFor(body datatypes.Body) float64 {
	if tol, ok := s.byBody[strings.ToLower(string(body))]; ok {
		return tol
	}
	return s.defaultTol
}

// Validate grades every resolved position. The difference is measured
// along the shorter arc, so longitudes straddling the 0/360 seam compare
// correctly. The tolerance bound is inclusive: a difference exactly equal
// to the tolerance is Valid. Bodies absent from reference pass with no
// recorded difference.
func (s *Service) Validate(resolved, reference []datatypes.PlanetPosition) []datatypes.ValidationRecord {
	refByBody := make(map[string]datatypes.PlanetPosition, len(reference))
	for _, p := range reference {
		refByBody[strings.ToLower(string(p.Body))] = p
	}

	records := make([]datatypes.ValidationRecord, 0, len(resolved))
	for _, p := range resolved {
		rec := datatypes.ValidationRecord{
			BodyName:          p.Body,
			ResolvedLongitude: p.LongitudeDeg,
			ToleranceDeg:      s.ToleranceFor(p.Body),
			Verdict:           datatypes.VerdictValid,
		}

		if ref, ok := refByBody[strings.ToLower(string(p.Body))]; ok {
			refLon := ref.LongitudeDeg
			diff := datatypes.ShorterArc(p.LongitudeDeg, refLon)
			rec.ReferenceLongitude = &refLon
			rec.DifferenceDeg = &diff
			if diff > rec.ToleranceDeg {
				rec.Verdict = datatypes.VerdictInvalid
			}
		}

		s.metrics.RecordValidationVerdict(string(rec.Verdict))
		records = append(records, rec)
	}
	return records
}
