// Copyright 2025 The Eventify Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/eventify/eventify/utils/httputils"
)

const (
	// DefaultSearchURL is the public OpenStreetMap Nominatim search endpoint.
	DefaultSearchURL = "https://nominatim.openstreetmap.org/search"
	// DefaultUserAgent identifies the application as required by the
	// Nominatim usage policy.
	DefaultUserAgent = "EventifyApp/1.0 (contact@eventify.example)"
	// DefaultTimeout bounds a single provider call.
	DefaultTimeout = 10 * time.Second
)

// maxPayloadSize caps the provider payload relayed to callers.
const maxPayloadSize = 4 << 20

// ClientOptions configuration for NominatimClient.
type ClientOptions struct {
	// SearchURL is the provider search endpoint
	SearchURL string

	// UserAgent is the client identification sent with every request
	UserAgent string

	// Timeout for a single provider call
	Timeout time.Duration

	// Enables light tracing of HTTP requests and responses
	TraceWriter io.Writer

	// Enables full HTTP body tracing
	TraceBody bool

	// Transport overrides the underlying transport (tests)
	Transport http.RoundTripper
}

// NominatimClient queries a Nominatim compatible search endpoint.
type NominatimClient struct {
	searchURL *url.URL
	client    *http.Client
}

// NewNominatimClient creates a new client with the provided options.
func NewNominatimClient(options *ClientOptions) (*NominatimClient, error) {
	if options == nil {
		options = &ClientOptions{}
	}

	searchURL := options.SearchURL
	if searchURL == "" {
		searchURL = DefaultSearchURL
	}

	u, err := url.Parse(searchURL)
	if err != nil {
		return nil, fmt.Errorf("parsing search url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("search url must be http(s): %s", searchURL)
	}

	userAgent := DefaultUserAgent
	if options.UserAgent != "" {
		userAgent = options.UserAgent
	}

	timeout := DefaultTimeout
	if options.Timeout > 0 {
		timeout = options.Timeout
	}

	loggingTransport := &httputils.LoggingRoundTripper{
		Writer:    options.TraceWriter,
		DumpBody:  options.TraceBody,
		Transport: options.Transport,
	}

	headerTransport := &httputils.AppendRequestHeadersRoundTripper{
		Headers: map[string]string{
			"User-Agent": userAgent,
			"Accept":     "application/json",
		},
		Transport: loggingTransport,
	}

	return &NominatimClient{
		searchURL: u,
		client: &http.Client{
			Timeout:   timeout,
			Transport: headerTransport,
		},
	}, nil
}

// EncodeQueryComponent percent-encodes s the way browsers'
// encodeURIComponent does (spaces become %20, not '+').
func EncodeQueryComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func (c *NominatimClient) requestURL(location string) string {
	u := *c.searchURL

	query := "format=json&q=" + EncodeQueryComponent(location)
	if u.RawQuery != "" {
		query = u.RawQuery + "&" + query
	}

	u.RawQuery = query

	return u.String()
}

// Search issues a single request to the provider and returns its JSON
// payload untouched. There are no retries.
func (c *NominatimClient) Search(ctx context.Context, location string) ([]byte, error) {
	if location == "" {
		return nil, &GeocodingError{Type: ErrorTypeMissingParameter, Message: MessageMissingLocation}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(location), nil)
	if err != nil {
		return nil, fmt.Errorf("building geocoding request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &GeocodingError{
			Type:    ErrorTypeUpstreamFailure,
			Message: "geocoding request failed",
			Err:     err,
		}
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPayloadSize))

		return nil, ClassifyHTTPError(resp.StatusCode)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadSize))
	if err != nil {
		return nil, &GeocodingError{
			Type:    ErrorTypeUpstreamFailure,
			Message: "reading geocoding response",
			Err:     err,
		}
	}

	if !json.Valid(payload) {
		return nil, &GeocodingError{
			Type:    ErrorTypeUpstreamFailure,
			Message: fmt.Sprintf("geocoding provider returned %d bytes of invalid JSON", len(payload)),
		}
	}

	return payload, nil
}

// Geocode resolves location to its first candidate.
func (c *NominatimClient) Geocode(ctx context.Context, location string) (*GeocodingResult, error) {
	payload, err := c.Search(ctx, location)
	if err != nil {
		return nil, err
	}

	candidates, err := DecodeCandidates(payload)
	if err != nil {
		return nil, err
	}

	return First(candidates)
}
