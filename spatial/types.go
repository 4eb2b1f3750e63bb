// Copyright 2025 The Eventify Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidPoint is returned when a latitude/longitude pair can't be used
// to place a marker.
var ErrInvalidPoint = errors.New("spatial: invalid point")

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// Validate checks that both components are finite and inside the WGS84 ranges.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90 (got %v)", ErrInvalidPoint, p.Lat)
	}

	if math.IsNaN(p.Lng) || math.IsInf(p.Lng, 0) || p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180 (got %v)", ErrInvalidPoint, p.Lng)
	}

	return nil
}

// ParsePoint builds a Point out of the decimal strings geocoding providers
// usually answer with.
func ParsePoint(lat, lng string) (Point, error) {
	latValue, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: latitude %q: %w", ErrInvalidPoint, lat, err)
	}

	lngValue, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: longitude %q: %w", ErrInvalidPoint, lng, err)
	}

	p := Point{Lat: latValue, Lng: lngValue}
	if err := p.Validate(); err != nil {
		return Point{}, err
	}

	return p, nil
}
