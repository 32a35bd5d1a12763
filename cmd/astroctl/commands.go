// Copyright (C) 2025 Daily Secrets (dev@dailysecrets.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "astroctl",
	Short: "Command line client for the astrocore ephemeris service",
	Long: `astroctl resolves astrological charts against the astrocore
ephemeris service, or fully offline using the built-in calculator.

Examples:
  astroctl resolve --time 1990-05-15T12:00:00Z --lat 6.9271 --lon 79.8612
  astroctl resolve --offline --time 1990-05-15T12:00:00Z --lat 6.9271 --lon 79.8612 --aspects
  astroctl health`,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(healthCmd)
}
