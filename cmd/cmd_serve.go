// Copyright 2025 The Eventify Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/eventify/eventify/envcheck"
	"github.com/eventify/eventify/server"
	"github.com/spf13/cobra"
)

var serveOptions struct {
	skipEnvCheck bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the geocode proxy and map pages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if !serveOptions.skipEnvCheck {
			if err := requireEnv(nil, os.Stderr, isTerminal(os.Stderr)); err != nil {
				return err
			}
		}

		client, err := newGeocoder(cfg)
		if err != nil {
			return err
		}

		srv := server.New(client, server.Options{
			Listen:  cfg.Listen,
			BaseURL: cfg.BaseURL(),
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("📍 Geocoding: %s\n", cfg.Geocoder.SearchURL)
		fmt.Printf("🗺️  Open %s/map?location=Paris in your browser\n", cfg.BaseURL())

		return srv.Run(ctx)
	},
}

// requireEnv refuses to go on when a required variable is missing or blank,
// printing the banner to w first.
func requireEnv(lookup func(string) (string, bool), w io.Writer, color bool) error {
	report := envcheck.Check(lookup)
	if report.OK() {
		return nil
	}

	if err := report.Write(w, color); err != nil {
		return fmt.Errorf("reporting missing environment variables: %w", err)
	}

	return report.Err()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(
		&serveOptions.skipEnvCheck,
		"skip-env-check",
		false,
		"Start even if required environment variables are missing",
	)
}
