// Copyright 2025 The Eventify Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"errors"
	"fmt"
	"net/http"
)

// Messages returned to API callers. Details stay in the logs.
const (
	MessageMissingLocation = "Location parameter is required"
	MessageFetchFailed     = "Failed to fetch coordinates"
)

// GeocodingError represents a geocoding failure with its category.
type GeocodingError struct {
	Type    ErrorType
	Message string
	Err     error
}

// ErrorType categorizes geocoding errors.
type ErrorType int

const (
	// ErrorTypeUnknown unclassified failure.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeMissingParameter the caller omitted the location.
	ErrorTypeMissingParameter
	// ErrorTypeUpstreamFailure the provider was unreachable or answered with an error status.
	ErrorTypeUpstreamFailure
	// ErrorTypeNotFound the provider answered with zero candidates.
	ErrorTypeNotFound
	// ErrorTypeParseFailure a candidate carried coordinates that are not usable numbers.
	ErrorTypeParseFailure
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeMissingParameter:
		return "missing_parameter"
	case ErrorTypeUpstreamFailure:
		return "upstream_failure"
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeParseFailure:
		return "parse_failure"
	default:
		return "unknown"
	}
}

func (e *GeocodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *GeocodingError) Unwrap() error {
	return e.Err
}

// TypeOf returns the category of err, or ErrorTypeUnknown when err isn't a
// GeocodingError.
func TypeOf(err error) ErrorType {
	var geoErr *GeocodingError
	if errors.As(err, &geoErr) {
		return geoErr.Type
	}

	return ErrorTypeUnknown
}

// IsMissingParameter reports whether the caller omitted the location.
func IsMissingParameter(err error) bool {
	return TypeOf(err) == ErrorTypeMissingParameter
}

// IsUpstreamFailure reports whether the provider call failed.
func IsUpstreamFailure(err error) bool {
	return TypeOf(err) == ErrorTypeUpstreamFailure
}

// IsNotFound reports whether the provider had no candidates.
func IsNotFound(err error) bool {
	return TypeOf(err) == ErrorTypeNotFound
}

// IsParseFailure reports whether the first candidate was unusable.
func IsParseFailure(err error) bool {
	return TypeOf(err) == ErrorTypeParseFailure
}

// ClassifyHTTPError turns a non-success provider status into an upstream failure.
func ClassifyHTTPError(statusCode int) *GeocodingError {
	var reason string

	switch statusCode {
	case http.StatusTooManyRequests:
		reason = "rate limit reached"
	case http.StatusForbidden:
		reason = "access denied, check the usage policy and User-Agent"
	case http.StatusBadRequest:
		reason = "invalid request"
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		reason = "service unavailable"
	default:
		reason = "unexpected status"
	}

	return &GeocodingError{
		Type:    ErrorTypeUpstreamFailure,
		Message: fmt.Sprintf("geocoding provider responded with %d (%s)", statusCode, reason),
	}
}
