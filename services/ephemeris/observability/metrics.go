// Copyright (C) 2025 Daily Secrets (dev@dailysecrets.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides metrics and instrumentation for the
// ephemeris service.
//
// # Description
//
// This package implements Prometheus metrics for monitoring chart
// resolution. Metrics include:
//   - Resolution counters (by source and status)
//   - Cache hit/miss counters
//   - Source failure counters (by source and error kind)
//   - Resolution latency histograms
//
// # Integration
//
// Metrics are exposed via the /metrics endpoint. Use with Prometheus +
// Grafana for dashboards and alerting.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metric Definitions
// =============================================================================

// Namespace for all metrics
const metricsNamespace = "astrocore"

// Subsystem for ephemeris metrics
const ephemerisSubsystem = "ephemeris"

// EphemerisMetrics holds all Prometheus metrics for chart resolution.
//
// # Description
//
// Provides counters and histograms for monitoring resolver behavior and
// source health. Initialize once at startup via InitMetrics().
//
// # Fields
//
//   - ResolutionsTotal: Counter of chart resolutions by source and status
//   - CacheEventsTotal: Counter of cache lookups by outcome
//   - SourceFailuresTotal: Counter of source failures by source and kind
//   - ResolutionDurationSeconds: Histogram of end-to-end resolution latency
//   - ValidationVerdictsTotal: Counter of validation verdicts by body
//
// # Thread Safety
//
// All operations are thread-safe.
type EphemerisMetrics struct {
	// ResolutionsTotal counts resolutions by originating source and status.
	// Labels: source (remote, local, synthetic, cache), status (success, degraded)
	ResolutionsTotal *prometheus.CounterVec

	// CacheEventsTotal counts cache lookups.
	// Labels: outcome (hit, miss)
	CacheEventsTotal *prometheus.CounterVec

	// SourceFailuresTotal counts classified source failures.
	// Labels: source, kind (unavailable, timeout, malformed_response)
	SourceFailuresTotal *prometheus.CounterVec

	// ResolutionDurationSeconds measures end-to-end resolution latency.
	// Labels: source
	ResolutionDurationSeconds *prometheus.HistogramVec

	// ValidationVerdictsTotal counts validation verdicts.
	// Labels: verdict (Valid, Invalid)
	ValidationVerdictsTotal *prometheus.CounterVec
}

// DefaultMetrics is the singleton instance of EphemerisMetrics.
// Initialized by InitMetrics().
var DefaultMetrics *EphemerisMetrics

// InitMetrics initializes the default metrics instance.
//
// # Description
//
// Creates and registers all Prometheus metrics on the default registry.
// Safe to call more than once; subsequent calls return the existing
// instance instead of panicking on duplicate registration.
//
// # Outputs
//
//   - *EphemerisMetrics: The initialized metrics instance.
func InitMetrics() *EphemerisMetrics {
	if DefaultMetrics != nil {
		return DefaultMetrics
	}

	DefaultMetrics = &EphemerisMetrics{
		ResolutionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: ephemerisSubsystem,
				Name:      "resolutions_total",
				Help:      "Total chart resolutions by source and status",
			},
			[]string{"source", "status"},
		),

		CacheEventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: ephemerisSubsystem,
				Name:      "cache_events_total",
				Help:      "Total position cache lookups by outcome",
			},
			[]string{"outcome"},
		),

		SourceFailuresTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: ephemerisSubsystem,
				Name:      "source_failures_total",
				Help:      "Total position source failures by source and error kind",
			},
			[]string{"source", "kind"},
		),

		ResolutionDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: ephemerisSubsystem,
				Name:      "resolution_duration_seconds",
				Help:      "End-to-end chart resolution latency in seconds",
				Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 15.0},
			},
			[]string{"source"},
		),

		ValidationVerdictsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: ephemerisSubsystem,
				Name:      "validation_verdicts_total",
				Help:      "Total per-body validation verdicts",
			},
			[]string{"verdict"},
		),
	}

	return DefaultMetrics
}

// =============================================================================
// Helper Methods
// =============================================================================

// RecordResolution records a completed resolution. A degraded resolution is
// one served by the synthetic fallback.
func (m *EphemerisMetrics) RecordResolution(source string, degraded bool, seconds float64) {
	if m == nil {
		return
	}
	status := "success"
	if degraded {
		status = "degraded"
	}
	m.ResolutionsTotal.WithLabelValues(source, status).Inc()
	m.ResolutionDurationSeconds.WithLabelValues(source).Observe(seconds)
}

// RecordCacheEvent records one cache lookup outcome.
func (m *EphemerisMetrics) RecordCacheEvent(hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.CacheEventsTotal.WithLabelValues(outcome).Inc()
}

// RecordSourceFailure records a classified source failure.
func (m *EphemerisMetrics) RecordSourceFailure(source, kind string) {
	if m == nil {
		return
	}
	m.SourceFailuresTotal.WithLabelValues(source, kind).Inc()
}

// RecordValidationVerdict records one per-body validation verdict.
func (m *EphemerisMetrics) RecordValidationVerdict(verdict string) {
	if m == nil {
		return
	}
	m.ValidationVerdictsTotal.WithLabelValues(verdict).Inc()
}
