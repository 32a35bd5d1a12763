// Copyright (C) 2025 Daily Secrets (dev@dailysecrets.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package pipeline composes resolution, house derivation, aspect
// detection, validation, and archival behind one facade.
//
// # Description
//
// ResolveChart is the single entry point the HTTP handlers and the CLI
// call. Its guarantee mirrors the resolver's: given a valid BirthMoment
// it always produces a complete ChartResult. Degradation shows up in the
// result (placeholder provenance, empty houses with the degenerate flag)
// rather than as an error. The only error path is an invalid moment.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/dailysecrets/astrocore/pkg/logging"
	"github.com/dailysecrets/astrocore/services/ephemeris/aspects"
	"github.com/dailysecrets/astrocore/services/ephemeris/datatypes"
	"github.com/dailysecrets/astrocore/services/ephemeris/houses"
	"github.com/dailysecrets/astrocore/services/ephemeris/resolver"
	"github.com/dailysecrets/astrocore/services/ephemeris/sources"
	"github.com/dailysecrets/astrocore/services/ephemeris/storage/chartstore"
	"github.com/dailysecrets/astrocore/services/ephemeris/validate"
)

// ErrNoArchive is returned by Archived when the facade was built without
// an archive store.
var ErrNoArchive = errors.New("chart archive not configured")

// Options selects the optional stages of a resolution.
type Options struct {
	// Validate grades resolved positions against the reference source.
	Validate bool

	// IncludeAspects adds major-aspect detection to the result.
	IncludeAspects bool
}

// Config wires a Facade. Resolver is required; everything else is
// optional and its stage degrades to a no-op when absent.
type Config struct {
	Resolver  *resolver.Resolver
	Validator *validate.Service

	// Reference supplies independent positions for validation. Fetch
	// failures are tolerated: bodies without a reference pass vacuously.
	Reference sources.PositionSource

	// Archive persists non-placeholder results for later replay.
	Archive *chartstore.Store

	Logger *logging.Logger
}

// Facade is the chart resolution pipeline.
type Facade struct {
	resolver  *resolver.Resolver
	validator *validate.Service
	reference sources.PositionSource
	archive   *chartstore.Store
	logger    *logging.Logger
}

// New builds a Facade from cfg.
func New(cfg Config) (*Facade, error) {
	if cfg.Resolver == nil {
		return nil, errors.New("resolver is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	validator := cfg.Validator
	if validator == nil {
		validator = validate.New(validate.Config{})
	}
	return &Facade{
		resolver:  cfg.Resolver,
		validator: validator,
		reference: cfg.Reference,
		archive:   cfg.Archive,
		logger:    logger,
	}, nil
}

// ResolveChart resolves positions for the moment and assembles the full
// chart. It returns an error only for an invalid moment; every other
// failure degrades in place.
func (f *Facade) ResolveChart(ctx context.Context, m datatypes.BirthMoment, opts Options) (datatypes.ChartResult, error) {
	if err := m.Validate(); err != nil {
		return datatypes.ChartResult{}, fmt.Errorf("invalid birth moment: %w", err)
	}

	res := f.resolver.Resolve(ctx, m)

	result := datatypes.ChartResult{
		Positions:  res.Output.Positions,
		Provenance: res.Provenance,
	}

	cusps, err := houses.Calculate(res.Output.Angles)
	if err != nil {
		// A chart without houses still renders; the flag tells the
		// client why they are missing.
		f.logger.Warn("house derivation rejected",
			"error", err,
			"source", string(res.Provenance.SourceUsed))
		result.HousesDegenerate = true
		result.Houses = []datatypes.HouseCusp{}
	} else {
		result.Houses = cusps
	}

	if opts.IncludeAspects {
		result.Aspects = aspects.Detect(res.Output.Positions)
	}

	if opts.Validate {
		result.Validation = f.validator.Validate(res.Output.Positions, f.referencePositions(ctx, m, res.Provenance))
	}

	f.maybeArchive(ctx, m, result)
	return result, nil
}

// referencePositions fetches the independent reference set for
// validation. It returns nil, making validation vacuous, when no
// reference is configured, when the chart itself came from the reference
// source class, when the chart is placeholder data, or when the fetch
// fails.
func (f *Facade) referencePositions(ctx context.Context, m datatypes.BirthMoment, prov datatypes.Provenance) []datatypes.PlanetPosition {
	if f.reference == nil {
		return nil
	}
	if prov.SourceUsed == datatypes.SourceSynthetic {
		// Grading fabricated placeholders against an ephemeris would
		// report noise as Invalid.
		return nil
	}
	if prov.SourceUsed == f.reference.Kind() {
		return nil
	}

	out, err := f.reference.FetchPositions(ctx, m)
	if err != nil {
		f.logger.Warn("reference fetch failed, validation is vacuous",
			"source", f.reference.Name(),
			"error", err)
		return nil
	}
	return out.Positions
}

// maybeArchive persists the result when an archive is configured and the
// chart is not placeholder data. Failures are logged, never surfaced.
func (f *Facade) maybeArchive(ctx context.Context, m datatypes.BirthMoment, result datatypes.ChartResult) {
	if f.archive == nil || result.Provenance.SourceUsed == datatypes.SourceSynthetic {
		return
	}
	if err := f.archive.Put(ctx, m.CacheKey(), result); err != nil {
		f.logger.Warn("chart archive write failed", "error", err)
	}
}

// Archived loads a previously archived chart by its cache key.
func (f *Facade) Archived(ctx context.Context, key string) (datatypes.ChartResult, error) {
	if f.archive == nil {
		return datatypes.ChartResult{}, ErrNoArchive
	}
	return f.archive.Get(ctx, key)
}
