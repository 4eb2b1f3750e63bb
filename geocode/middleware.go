// Copyright 2025 The Eventify Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// RequestIDHeader carries the correlation id in and out.
	RequestIDHeader = "X-Request-ID"

	requestIDKey = "request_id"
)

// Metrics holds the prometheus collectors of the HTTP surface.
type Metrics struct {
	lookups            *prometheus.CounterVec
	upstreamDuration   prometheus.Histogram
	httpDuration       *prometheus.HistogramVec
	responseStatusCode *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventify",
			Name:      "geocode_lookups_total",
			Help:      "The total number of geocode lookups by outcome",
		}, []string{"outcome"}),
		upstreamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "eventify",
			Name:      "geocode_upstream_duration_seconds",
			Help:      "The duration of calls to the geocoding provider",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "eventify",
			Name:      "request_duration_seconds",
			Help:      "The duration of request",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		responseStatusCode: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventify",
			Name:      "response_status_code",
			Help:      "The status code of http response",
		}, []string{"status", "method", "path"}),
	}
	reg.MustRegister(m.lookups, m.upstreamDuration, m.httpDuration, m.responseStatusCode)

	return m
}

func (m *Metrics) observeLookup(outcome string, upstream time.Duration) {
	if m == nil {
		return
	}

	m.lookups.WithLabelValues(outcome).Inc()

	if upstream > 0 {
		m.upstreamDuration.Observe(upstream.Seconds())
	}
}

// Middleware records request durations and status codes. Unmatched routes
// share a single path label.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if m == nil {
			ctx.Next()

			return
		}

		start := time.Now()

		ctx.Next()

		path := ctx.FullPath()
		if path == "" {
			path = "unmatched"
		}

		method := ctx.Request.Method
		m.httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		m.responseStatusCode.WithLabelValues(strconv.Itoa(ctx.Writer.Status()), method, path).Inc()
	}
}

// RequestIDMiddleware propagates the caller's X-Request-ID or assigns a new one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}

		ctx.Set(requestIDKey, id)
		ctx.Header(RequestIDHeader, id)
		ctx.Next()
	}
}

// RequestID returns the correlation id of the request, or "-".
func RequestID(ctx *gin.Context) string {
	if id := ctx.GetString(requestIDKey); id != "" {
		return id
	}

	return "-"
}
