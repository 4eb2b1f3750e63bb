// Copyright 2025 The Eventify Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode resolves free-text locations through an external
// geocoding provider and exposes the result over HTTP.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/eventify/eventify/spatial"
)

// Decimal is a coordinate as found on the wire. Nominatim sends strings, but
// bare JSON numbers are accepted as well.
type Decimal string

// UnmarshalJSON implements json.Unmarshaler.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*d = Decimal(text)

		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err == nil {
		*d = Decimal(number.String())

		return nil
	}

	return fmt.Errorf("coordinate must be a string or number, got %s", data)
}

// Candidate is a single match as returned by the provider.
type Candidate struct {
	Lat         Decimal `json:"lat"`
	Lon         Decimal `json:"lon"`
	DisplayName string  `json:"display_name,omitempty"`
}

// GeocodingResult is the first usable match of a lookup.
type GeocodingResult struct {
	Point       spatial.Point
	DisplayName string
}

// Searcher returns the raw provider payload for a location.
type Searcher interface {
	Search(ctx context.Context, location string) ([]byte, error)
}

// DecodeCandidates parses a provider payload.
func DecodeCandidates(payload []byte) ([]Candidate, error) {
	var candidates []Candidate
	if err := json.Unmarshal(payload, &candidates); err != nil {
		return nil, &GeocodingError{
			Type:    ErrorTypeParseFailure,
			Message: "decoding geocoding response",
			Err:     err,
		}
	}

	return candidates, nil
}

// First takes the first candidate and parses its coordinates. Remaining
// candidates are ignored.
func First(candidates []Candidate) (*GeocodingResult, error) {
	if len(candidates) == 0 {
		return nil, &GeocodingError{
			Type:    ErrorTypeNotFound,
			Message: "location not found",
		}
	}

	c := candidates[0]

	p, err := spatial.ParsePoint(string(c.Lat), string(c.Lon))
	if err != nil {
		return nil, &GeocodingError{
			Type:    ErrorTypeParseFailure,
			Message: fmt.Sprintf("invalid coordinates in first candidate (lat=%q, lon=%q)", c.Lat, c.Lon),
			Err:     err,
		}
	}

	return &GeocodingResult{Point: p, DisplayName: c.DisplayName}, nil
}
