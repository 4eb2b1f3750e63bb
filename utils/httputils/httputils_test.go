// Copyright 2025 The Eventify Authors
// SPDX-License-Identifier: Apache-2.0

package httputils

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

// recordingRoundTripper returns a canned response and keeps the last request.
type recordingRoundTripper struct {
	lastRequest *http.Request
	body        string
	err         error
}

func (d *recordingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	d.lastRequest = req
	if d.err != nil {
		return nil, d.err
	}

	return &http.Response{
		Status:     "200 OK",
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(d.body)),
	}, nil
}

//////////////////////////////////
// Test LoggingRoundTripper

// TestLoggingRoundTripper verifies that the LoggingRoundTripper logs both the request and
// the response (including timing information).
func TestLoggingRoundTripper(t *testing.T) {
	var logBuffer bytes.Buffer

	lt := &LoggingRoundTripper{
		Transport: &recordingRoundTripper{body: `[{"lat":"48.8566","lon":"2.3522"}]`},
		Writer:    &logBuffer,
		DumpBody:  true,
	}

	req, err := http.NewRequest(http.MethodGet, "http://nominatim.test/search?format=json&q=Paris", nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Authorization", "Bearer secret-token")

	resp, err := lt.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip returned error: %v", err)
	}

	body, _ := io.ReadAll(resp.Body)
	if string(body) != `[{"lat":"48.8566","lon":"2.3522"}]` {
		t.Errorf("response body was consumed by the trace. Got: %q", body)
	}

	logContent := logBuffer.String()
	if !strings.Contains(logContent, "> GET /search?format=json&q=Paris") {
		t.Errorf("log does not contain request info. Got: %s", logContent)
	}

	if !strings.Contains(logContent, "< RESPONSE: [") {
		t.Errorf("log does not contain response header with timing info. Got: %s", logContent)
	}

	if !strings.Contains(logContent, `"lat":"48.8566"`) {
		t.Errorf("log does not contain response body. Got: %s", logContent)
	}

	if strings.Contains(logContent, "secret-token") {
		t.Errorf("log leaks the Authorization header. Got: %s", logContent)
	}
}

func TestLoggingRoundTripperWithoutWriter(t *testing.T) {
	inner := &recordingRoundTripper{body: "[]"}
	lt := &LoggingRoundTripper{Transport: inner}

	req, _ := http.NewRequest(http.MethodGet, "http://nominatim.test/search", nil)
	if _, err := lt.RoundTrip(req); err != nil {
		t.Fatalf("RoundTrip returned error: %v", err)
	}

	if inner.lastRequest != req {
		t.Errorf("request was not forwarded untouched")
	}
}

func TestLoggingRoundTripperTransportError(t *testing.T) {
	var logBuffer bytes.Buffer

	failure := errors.New("connection refused")
	lt := &LoggingRoundTripper{
		Transport: &recordingRoundTripper{err: failure},
		Writer:    &logBuffer,
	}

	req, _ := http.NewRequest(http.MethodGet, "http://nominatim.test/search", nil)
	if _, err := lt.RoundTrip(req); !errors.Is(err, failure) {
		t.Fatalf("expected %v, got %v", failure, err)
	}

	if !strings.Contains(logBuffer.String(), "< ERROR: [") {
		t.Errorf("log does not mention the failure. Got: %s", logBuffer.String())
	}
}

//////////////////////////////////
// Test AppendRequestHeadersRoundTripper

func TestAppendRequestHeadersRoundTripper(t *testing.T) {
	dummy := &recordingRoundTripper{}

	atr := &AppendRequestHeadersRoundTripper{
		Transport: dummy,
		Headers: map[string]string{
			"User-Agent": "EventifyApp/1.0 (contact@eventify.example)",
		},
	}

	req, err := http.NewRequest(http.MethodGet, "http://nominatim.test/search", nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	if _, err = atr.RoundTrip(req); err != nil {
		t.Fatalf("RoundTrip returned error: %v", err)
	}

	if dummy.lastRequest == nil {
		t.Fatalf("dummy transport did not receive any request")
	}

	if got := dummy.lastRequest.Header.Get("User-Agent"); got != "EventifyApp/1.0 (contact@eventify.example)" {
		t.Errorf("expected the client identification header, but got '%s'", got)
	}

	if got := req.Header.Get("User-Agent"); got != "" {
		t.Errorf("the caller's request was modified: User-Agent is '%s'", got)
	}
}
