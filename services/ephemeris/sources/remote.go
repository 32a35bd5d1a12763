// Copyright (C) 2025 Daily Secrets (dev@dailysecrets.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/dailysecrets/astrocore/pkg/validation"
	"github.com/dailysecrets/astrocore/services/ephemeris/datatypes"
)

// HTTPClient interface allows injecting mock HTTP clients for testing
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// RemoteConfig configures a RemoteSource.
type RemoteConfig struct {
	// BaseURL is the provider endpoint, e.g. "https://ephemeris.example.com".
	BaseURL string
	// APIKey is sent as a bearer token when non-empty.
	APIKey string
	// HTTPClient defaults to http.DefaultClient when nil.
	HTTPClient HTTPClient
}

// RemoteSource fetches authoritative positions from an external ephemeris
// provider over HTTP. All failures are classified into a *SourceError so
// the resolver can fall through without inspecting transport details.
type RemoteSource struct {
	baseURL string
	apiKey  string
	client  HTTPClient
}

// NewRemoteSource builds a RemoteSource from cfg.
func NewRemoteSource(cfg RemoteConfig) *RemoteSource {
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &RemoteSource{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  client,
	}
}

func (s *RemoteSource) Name() string               { return "remote" }
func (s *RemoteSource) Kind() datatypes.SourceKind { return datatypes.SourceRemote }

// --- Provider wire structs ---

type remotePositionsRequest struct {
	Bodies      []string `json:"bodies"`
	UTCDateTime string   `json:"utc_datetime"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	ElevationM  float64  `json:"elevation_m"`
}

type remotePosition struct {
	Name         string  `json:"name"`
	LongitudeDeg float64 `json:"longitude_deg"`
	LatitudeDeg  float64 `json:"latitude_deg"`
	DistanceAU   float64 `json:"distance_au"`
	DailySpeed   float64 `json:"daily_speed_deg"`
}

type remoteAngles struct {
	AscendantDeg float64 `json:"ascendant_deg"`
	MidheavenDeg float64 `json:"midheaven_deg"`
}

type remotePositionsResponse struct {
	Success   bool             `json:"success"`
	Error     string           `json:"error"`
	Positions []remotePosition `json:"positions"`
	Angles    *remoteAngles    `json:"angles"`
}

// FetchPositions requests positions for every core body plus the chart
// angles in a single round trip. The caller bounds the wall clock through
// ctx; a deadline hit is reported as KindTimeout.
func (s *RemoteSource) FetchPositions(ctx context.Context, m datatypes.BirthMoment) (datatypes.SourceOutput, error) {
	const op = "remote.FetchPositions"

	bodies := datatypes.CoreBodies()
	names := make([]string, len(bodies))
	for i, b := range bodies {
		names[i] = string(b)
	}

	payload := remotePositionsRequest{
		Bodies:      names,
		UTCDateTime: m.UTCDateTime.UTC().Format("2006-01-02T15:04:05Z"),
		Latitude:    m.Latitude,
		Longitude:   m.Longitude,
		ElevationM:  m.ElevationM,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return datatypes.SourceOutput{}, &SourceError{Kind: KindUnavailable, Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/positions", bytes.NewReader(body))
	if err != nil {
		return datatypes.SourceOutput{}, &SourceError{Kind: KindUnavailable, Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return datatypes.SourceOutput{}, &SourceError{Kind: classifyTransportError(err), Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		kind := KindMalformedResponse
		if resp.StatusCode >= http.StatusInternalServerError ||
			resp.StatusCode == http.StatusTooManyRequests {
			kind = KindUnavailable
		}
		return datatypes.SourceOutput{}, &SourceError{
			Kind: kind, Op: op,
			Err: fmt.Errorf("provider returned status %s", resp.Status),
		}
	}

	var decoded remotePositionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return datatypes.SourceOutput{}, &SourceError{Kind: KindMalformedResponse, Op: op, Err: err}
	}
	if !decoded.Success {
		return datatypes.SourceOutput{}, &SourceError{
			Kind: KindUnavailable, Op: op,
			Err: fmt.Errorf("provider reported failure: %s", decoded.Error),
		}
	}

	out, err := adaptRemoteResponse(decoded, bodies)
	if err != nil {
		return datatypes.SourceOutput{}, &SourceError{Kind: KindMalformedResponse, Op: op, Err: err}
	}
	return out, nil
}

// adaptRemoteResponse converts the provider shape into a SourceOutput,
// enforcing that every requested body appears exactly once with in-range
// values and that chart angles are present. Provider body names are
// canonicalized, so "north node" and "NorthNode" both satisfy the
// NorthNode slot.
func adaptRemoteResponse(decoded remotePositionsResponse, requested []datatypes.Body) (datatypes.SourceOutput, error) {
	byName := make(map[string]remotePosition, len(decoded.Positions))
	for _, p := range decoded.Positions {
		canonical, err := validation.SanitizeBodyName(p.Name)
		if err != nil {
			return datatypes.SourceOutput{}, fmt.Errorf("body name: %w", err)
		}
		key := strings.ToLower(canonical)
		if _, dup := byName[key]; dup {
			return datatypes.SourceOutput{}, fmt.Errorf("duplicate body %q in response", p.Name)
		}
		byName[key] = p
	}

	positions := make([]datatypes.PlanetPosition, 0, len(requested))
	for _, b := range requested {
		p, ok := byName[strings.ToLower(string(b))]
		if !ok {
			return datatypes.SourceOutput{}, fmt.Errorf("body %q missing from response", b)
		}
		if err := checkPositionRanges(p); err != nil {
			return datatypes.SourceOutput{}, fmt.Errorf("body %q: %w", b, err)
		}
		positions = append(positions, datatypes.PlanetPosition{
			Body:          b,
			LongitudeDeg:  p.LongitudeDeg,
			LatitudeDeg:   p.LatitudeDeg,
			DistanceAU:    p.DistanceAU,
			DailySpeedDeg: p.DailySpeed,
		})
	}

	if decoded.Angles == nil {
		return datatypes.SourceOutput{}, errors.New("angles missing from response")
	}
	if !inRange(decoded.Angles.AscendantDeg, 0, 360) || !inRange(decoded.Angles.MidheavenDeg, 0, 360) {
		return datatypes.SourceOutput{}, errors.New("angles out of range")
	}

	return datatypes.SourceOutput{
		Positions: positions,
		Angles: datatypes.ChartAngles{
			AscendantDeg: decoded.Angles.AscendantDeg,
			MidheavenDeg: decoded.Angles.MidheavenDeg,
		},
	}, nil
}

func checkPositionRanges(p remotePosition) error {
	for _, v := range []float64{p.LongitudeDeg, p.LatitudeDeg, p.DistanceAU, p.DailySpeed} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("non-finite value")
		}
	}
	if !inRange(p.LongitudeDeg, 0, 360) {
		return fmt.Errorf("longitude %.4f outside [0,360)", p.LongitudeDeg)
	}
	if p.LatitudeDeg < -90 || p.LatitudeDeg > 90 {
		return fmt.Errorf("latitude %.4f outside [-90,90]", p.LatitudeDeg)
	}
	if p.DistanceAU < 0 {
		return errors.New("negative distance")
	}
	return nil
}

// inRange reports v in the half-open interval [lo, hi).
func inRange(v, lo, hi float64) bool {
	return v >= lo && v < hi
}

// classifyTransportError maps transport-level failures to an ErrorKind.
// Deadline expiry maps to KindTimeout; everything else is KindUnavailable.
func classifyTransportError(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return KindTimeout
	}
	return KindUnavailable
}
