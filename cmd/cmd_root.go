// Copyright 2025 The Eventify Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/eventify/eventify/config"
	"github.com/eventify/eventify/envcheck"
	"github.com/eventify/eventify/geocode"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootOptions struct {
	configPath string
	httpTrace  bool
}

var rootCmd = &cobra.Command{
	Use:   "eventify",
	Short: "event location services",
	Long: `
eventify resolves event locations into coordinates through an OpenStreetMap
Nominatim proxy and renders them as single-pin maps.
`,
	SilenceUsage: true,
}

var Version = "dev"

func Execute(version string) {
	Version = version
	rootCmd.Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&rootOptions.configPath,
		"config",
		"",
		"YAML configuration file",
	)
	rootCmd.PersistentFlags().BoolVar(
		&rootOptions.httpTrace,
		"http-trace",
		false,
		"Dump outgoing geocoding requests and responses to stderr",
	)
}

// loadConfig reads the configuration and the dotenv files it names. The
// files may carry EVENTIFY_* overrides, so the configuration is read again
// once they are in the environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(rootOptions.configPath, nil)
	if err != nil {
		return nil, err
	}

	if err := envcheck.LoadFiles(cfg.EnvFiles...); err != nil {
		return nil, err
	}

	return config.Load(rootOptions.configPath, nil)
}

func newGeocoder(cfg *config.Config) (*geocode.NominatimClient, error) {
	opts := cfg.ClientOptions()
	if rootOptions.httpTrace {
		opts.TraceWriter = os.Stderr
		opts.TraceBody = true
	}

	client, err := geocode.NewNominatimClient(opts)
	if err != nil {
		return nil, fmt.Errorf("creating geocoder: %w", err)
	}

	return client, nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
