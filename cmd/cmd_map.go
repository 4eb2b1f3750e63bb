// Copyright 2025 The Eventify Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/eventify/eventify/mapview"
	"github.com/spf13/cobra"
)

var mapOptions struct {
	proxyURL string
	out      string
	timeout  time.Duration
}

var mapCmd = &cobra.Command{
	Use:   "map <location>",
	Short: "Render the map page for a location",
	Long: `Looks the location up through a running geocode proxy and writes the
resulting HTML page.

$ eventify map "Champ de Mars, Paris" --out map.html
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		proxyURL := mapOptions.proxyURL
		if proxyURL == "" {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			proxyURL = cfg.BaseURL()
		}

		r := mapview.NewRenderer(mapview.NewProxyClient(proxyURL, nil))
		defer r.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), mapOptions.timeout)
		defer cancel()

		r.SetLocation(ctx, args[0])

		state, err := r.Wait(ctx)
		if err != nil {
			return fmt.Errorf("waiting for %q: %w", args[0], err)
		}

		log.Printf("map for %q: %s %s", args[0], state.Phase, state.Message)

		var w io.Writer = os.Stdout

		if mapOptions.out != "" {
			f, err := os.Create(mapOptions.out)
			if err != nil {
				return fmt.Errorf("creating output: %w", err)
			}
			defer f.Close()

			w = f
		}

		return state.RenderPage(w)
	},
}

func init() {
	rootCmd.AddCommand(mapCmd)
	mapCmd.Flags().StringVar(
		&mapOptions.proxyURL,
		"proxy-url",
		"",
		"Base URL of the eventify server (defaults to the configured public URL)",
	)
	mapCmd.Flags().StringVarP(
		&mapOptions.out,
		"out",
		"o",
		"",
		"Write the page to this file instead of stdout",
	)
	mapCmd.Flags().DurationVar(
		&mapOptions.timeout,
		"timeout",
		30*time.Second,
		"Maximum time to wait for the lookup",
	)
}
