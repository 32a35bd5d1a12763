// Copyright (C) 2025 Daily Secrets (dev@dailysecrets.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package resolver walks an ordered chain of position sources until one
// produces a chart, caching successful non-synthetic results.
//
// # Description
//
// The resolver is the availability layer of the ephemeris service. It
// guarantees that Resolve always hands back a complete SourceOutput with
// provenance: authoritative when the remote provider answers, medium
// accuracy when the in-process calculator serves, and placeholder data
// from the synthetic generator as the terminal fallback. Resolve never
// returns an error; degradation is expressed through provenance, not
// through failure.
//
// # Thread Safety
//
// A Resolver is safe for concurrent use. All mutable state lives in the
// cache store, which carries its own lock.
package resolver

import (
	"context"
	"time"

	"github.com/dailysecrets/astrocore/pkg/logging"
	"github.com/dailysecrets/astrocore/services/ephemeris/cache"
	"github.com/dailysecrets/astrocore/services/ephemeris/datatypes"
	"github.com/dailysecrets/astrocore/services/ephemeris/observability"
	"github.com/dailysecrets/astrocore/services/ephemeris/sources"
)

const (
	// DefaultRemoteTimeout bounds one remote provider round trip.
	DefaultRemoteTimeout = 10 * time.Second

	// DefaultCacheTTL matches how often chart positions meaningfully drift
	// for the app's daily-reading use case.
	DefaultCacheTTL = 24 * time.Hour
)

// Candidate pairs a source with its caching policy. Synthetic output is
// never cached regardless of the flag; a placeholder must not mask a
// provider that has recovered.
type Candidate struct {
	Source    sources.PositionSource
	Cacheable bool
}

// CachedChart is what the resolver stores per cache key: the positions
// plus which source class originally produced them, so cache hits can
// report honest provenance.
type CachedChart struct {
	Output datatypes.SourceOutput
	Origin datatypes.SourceKind
}

// Config configures a Resolver. Zero-value durations take the package
// defaults; a nil Cache disables caching entirely.
type Config struct {
	Candidates    []Candidate
	Cache         *cache.Store[CachedChart]
	CacheTTL      time.Duration
	RemoteTimeout time.Duration
	Logger        *logging.Logger
	Metrics       *observability.EphemerisMetrics
	Now           func() time.Time
}

// Resolver resolves a BirthMoment to positions via ordered fallback.
type Resolver struct {
	candidates    []Candidate
	cache         *cache.Store[CachedChart]
	cacheTTL      time.Duration
	remoteTimeout time.Duration
	logger        *logging.Logger
	metrics       *observability.EphemerisMetrics
	now           func() time.Time
	terminal      sources.PositionSource
}

// Resolution is the resolver's answer: a complete chart plus where it
// came from.
type Resolution struct {
	Output     datatypes.SourceOutput
	Provenance datatypes.Provenance
}

// New builds a Resolver from cfg. The candidate chain is used in order;
// if it does not end with a synthetic source, a terminal synthetic
// candidate is appended so resolution can never come up empty.
func New(cfg Config) *Resolver {
	r := &Resolver{
		candidates:    cfg.Candidates,
		cache:         cfg.Cache,
		cacheTTL:      cfg.CacheTTL,
		remoteTimeout: cfg.RemoteTimeout,
		logger:        cfg.Logger,
		metrics:       cfg.Metrics,
		now:           cfg.Now,
		terminal:      sources.NewSyntheticSource(),
	}
	if r.cacheTTL <= 0 {
		r.cacheTTL = DefaultCacheTTL
	}
	if r.remoteTimeout <= 0 {
		r.remoteTimeout = DefaultRemoteTimeout
	}
	if r.logger == nil {
		r.logger = logging.Default()
	}
	if r.now == nil {
		r.now = time.Now
	}

	needTerminal := true
	for _, c := range r.candidates {
		if c.Source.Kind() == datatypes.SourceSynthetic {
			needTerminal = false
		}
	}
	if needTerminal {
		r.candidates = append(r.candidates, Candidate{Source: r.terminal})
	}
	return r
}

// Resolve produces positions for the moment. The cache is consulted
// first; on a miss the candidate chain runs in order and the first
// success wins. Resolve never returns an error: the synthetic terminal
// always answers, and that degradation is visible in the provenance.
func (r *Resolver) Resolve(ctx context.Context, m datatypes.BirthMoment) Resolution {
	started := r.now()
	key := m.CacheKey()

	if r.cache != nil {
		if hit, ok := r.cache.Get(key); ok {
			r.metrics.RecordCacheEvent(true)
			r.metrics.RecordResolution("cache", false, r.now().Sub(started).Seconds())
			return Resolution{
				Output: hit.Output,
				Provenance: datatypes.Provenance{
					SourceUsed:   hit.Origin,
					AccuracyTier: hit.Origin.AccuracyTier(),
					CacheHit:     true,
					ResolvedAt:   r.now().UTC(),
				},
			}
		}
		r.metrics.RecordCacheEvent(false)
	}

	for _, c := range r.candidates {
		out, err := r.fetch(ctx, c.Source, m)
		if err != nil {
			kind := sources.KindOf(err)
			r.logger.Warn("position source failed",
				"source", c.Source.Name(),
				"kind", string(kind),
				"error", err)
			r.metrics.RecordSourceFailure(c.Source.Name(), string(kind))
			continue
		}

		origin := c.Source.Kind()
		if r.cache != nil && c.Cacheable && origin != datatypes.SourceSynthetic {
			r.cache.Put(key, CachedChart{Output: out, Origin: origin}, r.cacheTTL)
		}

		degraded := origin == datatypes.SourceSynthetic
		r.metrics.RecordResolution(c.Source.Name(), degraded, r.now().Sub(started).Seconds())
		if degraded {
			r.logger.Warn("serving placeholder positions", "cache_key", key)
		}
		return Resolution{
			Output: out,
			Provenance: datatypes.Provenance{
				SourceUsed:   origin,
				AccuracyTier: origin.AccuracyTier(),
				CacheHit:     false,
				ResolvedAt:   r.now().UTC(),
			},
		}
	}

	// Unreachable when the chain holds a synthetic terminal, but a
	// misconfigured chain still must not surface an error.
	out, _ := r.terminal.FetchPositions(ctx, m)
	r.metrics.RecordResolution(r.terminal.Name(), true, r.now().Sub(started).Seconds())
	return Resolution{
		Output: out,
		Provenance: datatypes.Provenance{
			SourceUsed:   datatypes.SourceSynthetic,
			AccuracyTier: datatypes.SourceSynthetic.AccuracyTier(),
			CacheHit:     false,
			ResolvedAt:   r.now().UTC(),
		},
	}
}

// fetch runs one source with the timeout policy for its kind. Remote
// fetches detach from the caller's cancellation so an abandoned request
// still populates the cache for the next caller, bounded by the remote
// timeout instead.
func (r *Resolver) fetch(ctx context.Context, src sources.PositionSource, m datatypes.BirthMoment) (datatypes.SourceOutput, error) {
	if src.Kind() != datatypes.SourceRemote {
		return src.FetchPositions(ctx, m)
	}
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.remoteTimeout)
	defer cancel()
	return src.FetchPositions(fctx, m)
}
