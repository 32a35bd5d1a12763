// Copyright (C) 2025 Daily Secrets (dev@dailysecrets.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dailysecrets/astrocore/services/ephemeris/datatypes"
	"github.com/dailysecrets/astrocore/services/ephemeris/pipeline"
	"github.com/dailysecrets/astrocore/services/ephemeris/resolver"
	"github.com/dailysecrets/astrocore/services/ephemeris/sources"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	resolveTime     string  // Birth moment, RFC 3339 UTC
	resolveLat      float64 // Latitude in decimal degrees
	resolveLon      float64 // Longitude in decimal degrees
	resolveElev     float64 // Elevation in meters
	resolveValidate bool    // Grade positions against the reference
	resolveAspects  bool    // Include major aspects
	resolveOffline  bool    // Skip the service, use the built-in calculator
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// resolveCmd resolves one chart and prints it as JSON.
//
// # Examples
//
//	astroctl resolve --time 1990-05-15T12:00:00Z --lat 6.9271 --lon 79.8612
//	astroctl resolve --offline --time 1990-05-15T12:00:00Z --lat 6.9271 --lon 79.8612
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a chart for a birth moment",
	Long: `Resolves planetary positions, house cusps, and optionally aspects
and validation for a birth moment.

By default the request goes to the configured ephemeris service. With
--offline the chart is computed in-process from mean orbital elements,
which needs no network and no running service.`,
	Run: runResolveCommand,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveTime, "time", "", "Birth moment in RFC 3339 UTC (required)")
	resolveCmd.Flags().Float64Var(&resolveLat, "lat", 0, "Latitude in decimal degrees (required)")
	resolveCmd.Flags().Float64Var(&resolveLon, "lon", 0, "Longitude in decimal degrees (required)")
	resolveCmd.Flags().Float64Var(&resolveElev, "elev", 0, "Elevation in meters")
	resolveCmd.Flags().BoolVar(&resolveValidate, "validate", false, "Include per-body validation records")
	resolveCmd.Flags().BoolVar(&resolveAspects, "aspects", false, "Include major aspects")
	resolveCmd.Flags().BoolVar(&resolveOffline, "offline", false, "Compute locally instead of calling the service")
	_ = resolveCmd.MarkFlagRequired("time")
	_ = resolveCmd.MarkFlagRequired("lat")
	_ = resolveCmd.MarkFlagRequired("lon")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runResolveCommand(cmd *cobra.Command, args []string) {
	when, err := time.Parse(time.RFC3339, resolveTime)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid --time, expected RFC 3339: %v\n", err)
		os.Exit(1)
	}

	var result datatypes.ChartResult
	if resolveOffline {
		result, err = resolveOfflineChart(when)
	} else {
		result, err = resolveViaService(when)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Resolve failed: %v\n", err)
		os.Exit(1)
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Encode failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(encoded))
}

// resolveOfflineChart runs the pipeline in-process with the built-in
// calculator only.
func resolveOfflineChart(when time.Time) (datatypes.ChartResult, error) {
	facade, err := pipeline.New(pipeline.Config{
		Resolver: resolver.New(resolver.Config{
			Candidates: []resolver.Candidate{
				{Source: sources.NewLocalSource(), Cacheable: false},
			},
		}),
	})
	if err != nil {
		return datatypes.ChartResult{}, err
	}

	moment := datatypes.BirthMoment{
		UTCDateTime: when.UTC(),
		Latitude:    resolveLat,
		Longitude:   resolveLon,
		ElevationM:  resolveElev,
	}
	return facade.ResolveChart(context.Background(), moment, pipeline.Options{
		Validate:       resolveValidate,
		IncludeAspects: resolveAspects,
	})
}

// resolveViaService posts the request to the configured ephemeris
// service.
func resolveViaService(when time.Time) (datatypes.ChartResult, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"utc_datetime":    when.UTC().Format(time.RFC3339),
		"latitude":        resolveLat,
		"longitude":       resolveLon,
		"elevation_m":     resolveElev,
		"validate":        resolveValidate,
		"include_aspects": resolveAspects,
	})
	if err != nil {
		return datatypes.ChartResult{}, err
	}

	client := &http.Client{Timeout: time.Duration(config.TimeoutSeconds) * time.Second}
	resp, err := client.Post(config.ServiceURL+"/v1/chart/resolve", "application/json", bytes.NewReader(payload))
	if err != nil {
		return datatypes.ChartResult{}, fmt.Errorf("call ephemeris service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return datatypes.ChartResult{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return datatypes.ChartResult{}, fmt.Errorf("service returned %s: %s", resp.Status, string(body))
	}

	var result datatypes.ChartResult
	if err := json.Unmarshal(body, &result); err != nil {
		return datatypes.ChartResult{}, fmt.Errorf("decode service response: %w", err)
	}
	return result, nil
}
