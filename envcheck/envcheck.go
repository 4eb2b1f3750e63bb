// Copyright 2025 The Eventify Authors
// SPDX-License-Identifier: Apache-2.0

// Package envcheck verifies that the environment variables the application
// depends on are present before anything starts.
package envcheck

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// RequiredKeys must be set to a non-blank value.
var RequiredKeys = []string{
	"MONGODB_URI",
	"NEXT_PUBLIC_CLERK_SIGN_IN_URL",
	"NEXT_PUBLIC_CLERK_SIGN_UP_URL",
	"NEXT_PUBLIC_CLERK_AFTER_SIGN_IN_URL",
	"NEXT_PUBLIC_CLERK_AFTER_SIGN_UP_URL",
	"NEXT_PUBLIC_CLERK_PUBLISHABLE_KEY",
	"CLERK_SECRET_KEY",
	"WEBHOOK_SECRET",
	"UPLOADTHING_SECRET",
	"UPLOADTHING_APP_ID",
	"STRIPE_SECRET_KEY",
	"STRIPE_WEBHOOK_SECRET",
	"NEXT_PUBLIC_STRIPE_PUBLISHABLE_KEY",
	"NEXT_PUBLIC_SERVER_URL",
	"GEMINI_API_KEY",
}

// OptionalKeys are reported when unset but never fail the check.
var OptionalKeys = []string{
	"EMAIL_USER",
	"EMAIL_PASS",
}

// Report is the outcome of Check. Every list keeps the declaration order.
type Report struct {
	// Missing holds required keys that are unset or empty.
	Missing []string
	// Blank holds required keys whose value is only whitespace.
	Blank []string
	// MissingOptional holds optional keys that are unset or blank.
	MissingOptional []string
}

// MissingKeysError lists the required keys that failed the check.
type MissingKeysError struct {
	Missing []string
	Blank   []string
}

func (e *MissingKeysError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(e.Missing, ", "))
	}

	if len(e.Blank) > 0 {
		parts = append(parts, "blank: "+strings.Join(e.Blank, ", "))
	}

	return "required environment variables not set (" + strings.Join(parts, "; ") + ")"
}

// Check inspects the environment through lookup. A nil lookup reads the
// process environment.
func Check(lookup func(string) (string, bool)) Report {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var r Report

	for _, key := range RequiredKeys {
		v, ok := lookup(key)

		switch {
		case !ok || v == "":
			r.Missing = append(r.Missing, key)
		case strings.TrimSpace(v) == "":
			r.Blank = append(r.Blank, key)
		}
	}

	for _, key := range OptionalKeys {
		if v, ok := lookup(key); !ok || strings.TrimSpace(v) == "" {
			r.MissingOptional = append(r.MissingOptional, key)
		}
	}

	return r
}

// OK reports whether every required key is set.
func (r Report) OK() bool {
	return len(r.Missing) == 0 && len(r.Blank) == 0
}

// Err returns a *MissingKeysError when the report is not OK.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}

	return &MissingKeysError{Missing: r.Missing, Blank: r.Blank}
}

// LoadFiles loads the given dotenv files into the process environment.
// Values already present in the environment win, and files that do not exist
// are skipped.
func LoadFiles(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}

		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}

	return nil
}

const (
	rule  = "========================================================"
	thin  = "--------------------------------------------------------"
	red   = "\x1b[31m"
	green = "\x1b[32m"
	reset = "\x1b[0m"
)

// Write prints the human readable diagnostic for the report. color enables
// ANSI colors on the header lines.
func (r Report) Write(w io.Writer, color bool) error {
	paint := func(code, s string) string {
		if !color {
			return s
		}

		return code + s + reset
	}

	var b strings.Builder

	if r.OK() {
		b.WriteString("\n" + paint(green, "✅ All essential environment variables are set! You're ready to `eventify serve`.") + "\n")

		if len(r.MissingOptional) > 0 {
			fmt.Fprintf(&b, "Optional variables not set (email delivery disabled): %s\n", strings.Join(r.MissingOptional, ", "))
		}

		b.WriteString("\n")

		_, err := io.WriteString(w, b.String())

		return err
	}

	b.WriteString("\n" + rule + "\n")
	b.WriteString(paint(red, "  🚨 ENVIRONMENT VARIABLE SETUP WARNING 🚨") + "\n")
	b.WriteString(rule + "\n\n")

	if len(r.Missing) > 0 {
		b.WriteString("The following REQUIRED environment variables are MISSING from your .env.local file:\n")

		for _, key := range r.Missing {
			b.WriteString("- " + key + "\n")
		}
	}

	if len(r.Blank) > 0 {
		b.WriteString("\nThe following REQUIRED environment variables are PRESENT but have UNDEFINED/EMPTY values:\n")

		for _, key := range r.Blank {
			b.WriteString("- " + key + "\n")
		}
	}

	b.WriteString("\n" + thin + "\n")
	b.WriteString("Please refer to the `⚡ Getting Started` section in `README.md`\n")
	b.WriteString("for detailed instructions on how to obtain and set these values.\n")
	b.WriteString("Ensure `http://localhost:3000` is set for `NEXT_PUBLIC_SERVER_URL` in development.\n")
	b.WriteString(thin + "\n\n")

	_, err := io.WriteString(w, b.String())

	return err
}
