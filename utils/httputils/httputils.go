// Copyright 2025 The Eventify Authors
// SPDX-License-Identifier: Apache-2.0

// Package httputils provides http.RoundTripper decorators for outbound calls.
package httputils

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"strings"
	"time"
)

/////////////////////////////////////////
/// RountTrippers

// redactedHeaders never reach the trace output.
var redactedHeaders = []string{"Authorization", "Cookie", "Set-Cookie"}

// LoggingRoundTripper adds a very primitive logging to a http transaction.
type LoggingRoundTripper struct {
	Transport http.RoundTripper
	Writer    io.Writer
	DumpBody  bool
}

func transport(rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		return http.DefaultTransport
	}

	return rt
}

// abbreviate prefixes every line and keeps the dump within a few screens.
func abbreviate(lines []string, prefix rune) []string {
	const maxLines, maxChars = 256, 512

	if len(lines) > maxLines {
		lines = append(lines[:maxLines], "…")
	}

	for i, line := range lines {
		line = redact(line)
		if len(line) > maxChars {
			line = line[0:maxChars] + "…"
		}

		lines[i] = fmt.Sprintf("%c %s", prefix, line)
	}

	return lines
}

func redact(line string) string {
	for _, h := range redactedHeaders {
		if len(line) > len(h) && strings.EqualFold(line[:len(h)+1], h+":") {
			return h + ": [redacted]"
		}
	}

	return line
}

func (t *LoggingRoundTripper) dumpRequest(req *http.Request) error {
	dump, err := httputil.DumpRequestOut(req, t.DumpBody)
	if err != nil {
		return fmt.Errorf("tracing HTTP request: %w", err)
	}

	lines := abbreviate(strings.Split(strings.TrimRight(string(dump), "\r\n"), "\n"), '>')
	lines = append(lines, "")
	_, err = fmt.Fprint(t.Writer, strings.Join(lines, "\n"))

	return err
}

func (t *LoggingRoundTripper) dumpResponse(resp *http.Response, duration time.Duration) error {
	dump, err := httputil.DumpResponse(resp, t.DumpBody)
	if err != nil {
		return fmt.Errorf("tracing HTTP response: %w", err)
	}

	_, err = fmt.Fprintf(t.Writer, "< RESPONSE: [%v]\n", duration)
	if err != nil {
		return fmt.Errorf("tracing HTTP response: %w", err)
	}

	lines := abbreviate(strings.Split(strings.TrimRight(string(dump), "\r\n"), "\n"), '<')
	lines = append(lines, "")
	_, err = fmt.Fprint(t.Writer, strings.Join(lines, "\n"))

	return err
}

// RoundTrip implements the http.RoundTripper interface.
func (t *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	next := transport(t.Transport)
	if t.Writer == nil {
		return next.RoundTrip(req)
	}

	if err := t.dumpRequest(req); err != nil {
		return nil, err
	}

	start := time.Now()

	resp, err := next.RoundTrip(req)
	if err != nil {
		fmt.Fprintf(t.Writer, "< ERROR: [%v] %v\n", time.Since(start), err)

		return nil, err
	}

	if err := t.dumpResponse(resp, time.Since(start)); err != nil {
		resp.Body.Close()

		return nil, err
	}

	return resp, nil
}

// AppendRequestHeadersRoundTripper adds headers to every outgoing request.
// Providers such as Nominatim reject traffic without an identifying
// User-Agent, so the client identity is attached here rather than at each
// call site.
type AppendRequestHeadersRoundTripper struct {
	Transport http.RoundTripper
	Headers   map[string]string
}

// RoundTrip implements the http.RoundTripper interface.
func (t *AppendRequestHeadersRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request.
	out := req.Clone(req.Context())
	for k, v := range t.Headers {
		out.Header.Set(k, v)
	}

	return transport(t.Transport).RoundTrip(out)
}
