// Copyright (C) 2025 Daily Secrets (dev@dailysecrets.app)
// Tests for the astroctl resolve command helpers.

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dailysecrets/astrocore/services/ephemeris/datatypes"
)

func TestConfigYAMLParsing(t *testing.T) {
	var cfg Config
	raw := []byte("service_url: http://astro.internal:9000\ntimeout_seconds: 30\n")
	require.NoError(t, yaml.Unmarshal(raw, &cfg))
	assert.Equal(t, "http://astro.internal:9000", cfg.ServiceURL)
	assert.Equal(t, 30, cfg.TimeoutSeconds)
}

func TestResolveOfflineChart(t *testing.T) {
	resolveLat = 6.9271
	resolveLon = 79.8612
	resolveValidate = false
	resolveAspects = true

	when := time.Date(1990, 5, 15, 12, 0, 0, 0, time.UTC)
	result, err := resolveOfflineChart(when)
	require.NoError(t, err)

	assert.Len(t, result.Positions, len(datatypes.CoreBodies()))
	assert.Len(t, result.Houses, 12)
	assert.Equal(t, datatypes.SourceLocal, result.Provenance.SourceUsed)
	assert.NotNil(t, result.Aspects)
}

func TestResolveOfflineChart_InvalidCoordinates(t *testing.T) {
	resolveLat = 91
	resolveLon = 0

	_, err := resolveOfflineChart(time.Date(1990, 5, 15, 12, 0, 0, 0, time.UTC))
	assert.Error(t, err)
}

func TestResolveViaService(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(datatypes.ChartResult{
			Provenance: datatypes.Provenance{SourceUsed: datatypes.SourceRemote, AccuracyTier: "high"},
		})
	}))
	defer server.Close()

	config.ServiceURL = server.URL
	config.TimeoutSeconds = 5
	resolveLat = 6.9271
	resolveLon = 79.8612
	resolveValidate = true

	result, err := resolveViaService(time.Date(1990, 5, 15, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, datatypes.SourceRemote, result.Provenance.SourceUsed)
	assert.Equal(t, "1990-05-15T12:00:00Z", gotBody["utc_datetime"])
	assert.Equal(t, true, gotBody["validate"])
}

func TestResolveViaService_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	config.ServiceURL = server.URL
	config.TimeoutSeconds = 5

	_, err := resolveViaService(time.Date(1990, 5, 15, 12, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
