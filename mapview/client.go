// Copyright 2025 The Eventify Authors
// SPDX-License-Identifier: Apache-2.0

package mapview

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/eventify/eventify/geocode"
)

// ProxyClient performs lookups against the /api/geocode route.
type ProxyClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewProxyClient creates a client for the proxy served at baseURL. A nil
// httpClient gets a default one with a timeout.
func NewProxyClient(baseURL string, httpClient *http.Client) *ProxyClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &ProxyClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Lookup implements Lookuper.
func (c *ProxyClient) Lookup(ctx context.Context, location string) ([]geocode.Candidate, error) {
	endpoint := c.baseURL + "/api/geocode?location=" + geocode.EncodeQueryComponent(location)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building proxy request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling geocode proxy: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading geocode proxy response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode proxy responded with %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	return geocode.DecodeCandidates(payload)
}
