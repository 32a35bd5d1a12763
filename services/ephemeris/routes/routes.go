// Copyright (C) 2025 Daily Secrets (dev@dailysecrets.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dailysecrets/astrocore/services/ephemeris/handlers"
	"github.com/dailysecrets/astrocore/services/ephemeris/pipeline"
)

// SetupRoutes registers the ephemeris service's HTTP surface.
func SetupRoutes(router *gin.Engine, facade *pipeline.Facade) {
	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1 group
	v1 := router.Group("/v1")
	{
		chart := v1.Group("/chart")
		{
			chart.POST("/resolve", handlers.HandleChartResolve(facade))
			chart.GET("/archive/:key", handlers.HandleChartArchive(facade))
		}
	}
}
