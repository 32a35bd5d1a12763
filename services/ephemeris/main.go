// Copyright (C) 2025 Daily Secrets (dev@dailysecrets.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dailysecrets/astrocore/pkg/logging"
	"github.com/dailysecrets/astrocore/services/ephemeris/cache"
	"github.com/dailysecrets/astrocore/services/ephemeris/observability"
	"github.com/dailysecrets/astrocore/services/ephemeris/pipeline"
	"github.com/dailysecrets/astrocore/services/ephemeris/resolver"
	"github.com/dailysecrets/astrocore/services/ephemeris/routes"
	"github.com/dailysecrets/astrocore/services/ephemeris/sources"
	"github.com/dailysecrets/astrocore/services/ephemeris/storage/chartstore"
	"github.com/dailysecrets/astrocore/services/ephemeris/validate"
)

// Configuration from environment
var (
	remoteURL    = os.Getenv("ASTRO_REMOTE_URL")
	remoteAPIKey = os.Getenv("ASTRO_REMOTE_API_KEY")
	archivePath  = os.Getenv("ASTRO_ARCHIVE_PATH")
	logDir       = os.Getenv("ASTRO_LOG_DIR")
)

func main() {
	logger := logging.New(logging.Config{
		Level:   logging.LevelInfo,
		Service: "astrocore-ephemeris",
		LogDir:  logDir,
		JSON:    true,
	})
	defer logger.Close()

	metrics := observability.InitMetrics()

	logger.Info("Starting ephemeris service",
		"remote_configured", remoteURL != "",
		"archive_path", archivePath)

	// Candidate chain: remote provider first when configured, then the
	// in-process calculator. The resolver appends the synthetic terminal.
	var candidates []resolver.Candidate
	if remoteURL != "" {
		candidates = append(candidates, resolver.Candidate{
			Source: sources.NewRemoteSource(sources.RemoteConfig{
				BaseURL:    remoteURL,
				APIKey:     remoteAPIKey,
				HTTPClient: &http.Client{Timeout: 30 * time.Second},
			}),
			Cacheable: true,
		})
	}
	candidates = append(candidates, resolver.Candidate{
		Source:    sources.NewLocalSource(),
		Cacheable: true,
	})

	store := cache.New[resolver.CachedChart](cache.Config{
		MaxEntries: envInt("ASTRO_CACHE_MAX_ENTRIES", 10000),
	})

	res := resolver.New(resolver.Config{
		Candidates:    candidates,
		Cache:         store,
		CacheTTL:      envDuration("ASTRO_CACHE_TTL", resolver.DefaultCacheTTL),
		RemoteTimeout: envDuration("ASTRO_REMOTE_TIMEOUT", resolver.DefaultRemoteTimeout),
		Logger:        logger,
		Metrics:       metrics,
	})

	var archive *chartstore.Store
	if archivePath != "" {
		var err error
		archive, err = chartstore.Open(chartstore.Config{
			Path:       archivePath,
			SyncWrites: true,
			Logger:     logger.Slog(),
		})
		if err != nil {
			logger.Error("Failed to open chart archive", "path", archivePath, "error", err)
			os.Exit(1)
		}
		defer archive.Close()
	}

	facade, err := pipeline.New(pipeline.Config{
		Resolver:  res,
		Validator: validate.New(validate.Config{Metrics: metrics}),
		Reference: sources.NewLocalSource(),
		Archive:   archive,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("Failed to build pipeline", "error", err)
		os.Exit(1)
	}

	router := gin.Default()
	routes.SetupRoutes(router, facade)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8010"
	}

	logger.Info("Starting ephemeris API server", "port", port)
	if err := router.Run(":" + port); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return v
}
