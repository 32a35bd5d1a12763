// Copyright (C) 2025 Daily Secrets (dev@dailysecrets.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package sources defines the PositionSource capability and its three
// provider variants:
//
//   - RemoteSource: networked, authoritative ephemeris provider
//   - LocalSource: in-process deterministic mean-element calculation
//   - SyntheticSource: last-resort placeholder data, explicitly flagged
//
// The resolver orders these into a fallback chain; each variant only knows
// how to produce a SourceOutput for one BirthMoment or fail with a
// classified SourceError.
package sources

import (
	"context"
	"errors"
	"fmt"

	"github.com/dailysecrets/astrocore/services/ephemeris/datatypes"
)

// ErrorKind classifies a source failure for fallback and logging policy.
type ErrorKind string

const (
	// KindUnavailable is a network/DNS/connection failure, or a provider
	// that reported itself unable to serve. Recoverable by fallback.
	KindUnavailable ErrorKind = "unavailable"

	// KindTimeout means the configured wall-clock bound elapsed.
	// Recoverable by fallback; never retried against the same source.
	KindTimeout ErrorKind = "timeout"

	// KindMalformedResponse means a response arrived but failed schema or
	// range validation. Recoverable by fallback, but logged distinctly:
	// it signals a provider-side contract breach, not transience.
	KindMalformedResponse ErrorKind = "malformed_response"
)

// SourceError is the classified failure returned by every PositionSource.
type SourceError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *SourceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// KindOf extracts the ErrorKind from err, defaulting to KindUnavailable
// for errors that did not come from a source.
func KindOf(err error) ErrorKind {
	var se *SourceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnavailable
}

// PositionSource is the capability the resolver chains over. FetchPositions
// computes or fetches planetary positions plus chart angles for one moment.
// Implementations must return either a complete SourceOutput or a
// *SourceError; partial output is not part of the contract.
type PositionSource interface {
	// Name identifies the source in logs and metrics.
	Name() string

	// Kind reports which provenance tag results from this source carry.
	Kind() datatypes.SourceKind

	// FetchPositions produces positions for the moment. Blocking
	// implementations must honor ctx cancellation and deadlines.
	FetchPositions(ctx context.Context, m datatypes.BirthMoment) (datatypes.SourceOutput, error)
}
