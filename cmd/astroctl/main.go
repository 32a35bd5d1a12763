// Copyright (C) 2025 Daily Secrets (dev@dailysecrets.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config holds CLI configuration loaded from config.yaml.
type Config struct {
	// ServiceURL is the base URL of the ephemeris service.
	ServiceURL string `yaml:"service_url"`

	// TimeoutSeconds bounds each request to the service.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

var config = Config{
	ServiceURL:     "http://localhost:8010",
	TimeoutSeconds: 15,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		// config.yaml is optional; defaults target a local service.
		yamlFile, err := os.ReadFile("config.yaml")
		if err != nil {
			return
		}
		if err := yaml.Unmarshal(yamlFile, &config); err != nil {
			log.Fatalf("Error parsing config.yaml: %v", err)
		}
	}
}
