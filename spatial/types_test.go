// Copyright 2025 The Eventify Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"errors"
	"testing"
)

func TestParsePoint(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng string
		expected Point
		fail     bool
	}{
		{"paris", "48.8566", "2.3522", Point{Lat: 48.8566, Lng: 2.3522}, false},
		{"montevideo", "-34.9011", "-56.1645", Point{Lat: -34.9011, Lng: -56.1645}, false},
		{"padded", " 10.5 ", "\t-3", Point{Lat: 10.5, Lng: -3}, false},
		{"not a number", "abc", "2.3522", Point{}, true},
		{"empty longitude", "48.8566", "", Point{}, true},
		{"nan", "NaN", "2.3522", Point{}, true},
		{"latitude out of range", "91", "0", Point{}, true},
		{"longitude out of range", "0", "-180.5", Point{}, true},
		{"infinite", "0", "Inf", Point{}, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ParsePoint(test.lat, test.lng)
			if test.fail {
				if !errors.Is(err, ErrInvalidPoint) {
					t.Fatalf("expected ErrInvalidPoint, got %v", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}

			if got != test.expected {
				t.Errorf("expected %v but got %v", test.expected, got)
			}
		})
	}
}

func TestPointString(t *testing.T) {
	p := Point{Lat: 48.8566, Lng: 2.3522}
	if got, expected := p.String(), "POINT(2.352200 48.856600)"; got != expected {
		t.Errorf("expected %q but got %q", expected, got)
	}
}
