// Copyright (C) 2025 Daily Secrets (dev@dailysecrets.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check whether the ephemeris service is up",
	Run:   runHealthCommand,
}

func runHealthCommand(cmd *cobra.Command, args []string) {
	client := &http.Client{Timeout: time.Duration(config.TimeoutSeconds) * time.Second}

	resp, err := client.Get(config.ServiceURL + "/health")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service unreachable at %s: %v\n", config.ServiceURL, err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Service unhealthy: %s: %s\n", resp.Status, string(body))
		os.Exit(1)
	}
	fmt.Println(string(body))
}
