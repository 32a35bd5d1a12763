// Copyright (C) 2025 Daily Secrets (dev@dailysecrets.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dailysecrets/astrocore/pkg/validation"
	"github.com/dailysecrets/astrocore/services/ephemeris/datatypes"
	"github.com/dailysecrets/astrocore/services/ephemeris/pipeline"
	"github.com/dailysecrets/astrocore/services/ephemeris/storage/chartstore"
)

// ChartResolveRequest is the body of POST /v1/chart/resolve.
// Coordinates use pointers so binding can tell a missing field from a
// legitimate zero (the equator and the prime meridian are real places).
// IncludeAspects is a pointer for the same reason: omitted means true.
type ChartResolveRequest struct {
	UTCDateTime    string   `json:"utc_datetime" binding:"required"`
	Latitude       *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude      *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
	ElevationM     float64  `json:"elevation_m"`
	Validate       bool     `json:"validate"`
	IncludeAspects *bool    `json:"include_aspects"`
}

// HealthCheck reports service liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "astrocore-ephemeris"})
}

// HandleChartResolve resolves a full chart for a birth moment.
//
// Source failures never surface as 5xx here: the pipeline degrades to
// placeholder data instead, and the response provenance says so. The
// only client-visible failure is a request that fails validation.
func HandleChartResolve(facade *pipeline.Facade) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ChartResolveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}

		when, err := time.Parse(time.RFC3339, req.UTCDateTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid utc_datetime, expected RFC 3339", "details": err.Error()})
			return
		}

		// Shared validator also rejects non-finite coordinates, which
		// the binding range tags do not.
		if err := validation.ValidateCoordinates(*req.Latitude, *req.Longitude); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates", "details": err.Error()})
			return
		}

		moment := datatypes.BirthMoment{
			UTCDateTime: when.UTC(),
			Latitude:    *req.Latitude,
			Longitude:   *req.Longitude,
			ElevationM:  req.ElevationM,
		}

		includeAspects := true
		if req.IncludeAspects != nil {
			includeAspects = *req.IncludeAspects
		}

		result, err := facade.ResolveChart(c.Request.Context(), moment, pipeline.Options{
			Validate:       req.Validate,
			IncludeAspects: includeAspects,
		})
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid birth moment", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// HandleChartArchive returns a previously archived chart by cache key.
func HandleChartArchive(facade *pipeline.Facade) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("key")
		if key == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Key is required"})
			return
		}

		result, err := facade.Archived(c.Request.Context(), key)
		switch {
		case errors.Is(err, chartstore.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "No archived chart for key", "key": key})
		case errors.Is(err, pipeline.ErrNoArchive):
			c.JSON(http.StatusNotImplemented, gin.H{"error": "Chart archive is not enabled"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Archive lookup failed", "details": err.Error()})
		default:
			c.JSON(http.StatusOK, result)
		}
	}
}
