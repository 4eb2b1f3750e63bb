// Copyright 2025 The Eventify Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"os"

	"github.com/eventify/eventify/envcheck"
	"github.com/spf13/cobra"
)

var checkEnvOptions struct {
	envFiles []string
}

var checkEnvCmd = &cobra.Command{
	Use:   "check-env",
	Short: "Verify that the required environment variables are set",
	Long: `Loads the dotenv files (variables already in the environment win) and lists
every required variable that is missing or blank. Exits with status 1 when
any is.`,
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := envcheck.LoadFiles(checkEnvOptions.envFiles...); err != nil {
			return err
		}

		report := envcheck.Check(nil)
		if report.OK() {
			return report.Write(os.Stdout, isTerminal(os.Stdout))
		}

		if err := report.Write(os.Stderr, isTerminal(os.Stderr)); err != nil {
			return err
		}

		return report.Err()
	},
}

func init() {
	rootCmd.AddCommand(checkEnvCmd)
	checkEnvCmd.Flags().StringSliceVar(
		&checkEnvOptions.envFiles,
		"env-file",
		[]string{".env.local"},
		"Dotenv files to load before checking",
	)
}
