// Copyright 2025 The Eventify Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/eventify/eventify/geocode"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugGeocodeOptions struct {
	file  string
	delay time.Duration
}

var debugGeocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Resolve locations through the configured provider",
	Long: `Reads one location per line and prints it followed by the coordinates of
the first candidate, or the error.

$ echo "Champ de Mars, Paris" | eventify debug geocode
Champ de Mars, Paris		{"lat":48.8556,"lng":2.2986}
	`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		client, err := newGeocoder(cfg)
		if err != nil {
			return err
		}

		locations, err := readLocations(debugGeocodeOptions.file)
		if err != nil {
			return err
		}

		return geocodeAll(cmd.Context(), client, locations, os.Stdout)
	},
}

// readLocations returns the non-empty lines of path, or of stdin when path
// is empty.
func readLocations(path string) ([]string, error) {
	input := os.Stdin

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening locations: %w", err)
		}
		defer f.Close()

		input = f
	} else if isTerminal(input) {
		fmt.Fprintln(os.Stderr, "Enter locations to resolve, one per line…")
	}

	var locations []string

	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			locations = append(locations, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	return locations, nil
}

func geocodeAll(ctx context.Context, client *geocode.NominatimClient, locations []string, out io.Writer) error {
	var bar *progressbar.ProgressBar
	if debugGeocodeOptions.file != "" && isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(len(locations),
			progressbar.OptionSetDescription("Geocoding"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	for i, location := range locations {
		if i > 0 && debugGeocodeOptions.delay > 0 {
			select {
			case <-time.After(debugGeocodeOptions.delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		result, err := client.Geocode(ctx, location)
		if err != nil {
			fmt.Fprintf(out, "%s\t%q\n", location, err.Error())
		} else {
			s, err := json.Marshal(result.Point)
			if err != nil {
				return fmt.Errorf("encoding %q: %w", location, err)
			}

			fmt.Fprintf(out, "%s\t\t%s\n", location, s)
		}

		if bar != nil {
			if err := bar.Add(1); err != nil {
				return fmt.Errorf("updating progress: %w", err)
			}
		}
	}

	return nil
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugGeocodeCmd)
	debugGeocodeCmd.Flags().StringVarP(
		&debugGeocodeOptions.file,
		"file",
		"f",
		"",
		"Read locations from this file instead of stdin",
	)
	// Nominatim's usage policy allows one request per second.
	debugGeocodeCmd.Flags().DurationVar(
		&debugGeocodeOptions.delay,
		"delay",
		time.Second,
		"Pause between consecutive lookups",
	)
}
