// Copyright 2025 The Eventify Authors
// SPDX-License-Identifier: Apache-2.0

// Package server assembles the HTTP surface of eventify.
package server

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/eventify/eventify/geocode"
	"github.com/eventify/eventify/mapview"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed assets/location-marker.svg
var markerIcon []byte

const (
	defaultMapTimeout = 20 * time.Second
	shutdownTimeout   = 15 * time.Second
)

type Options struct {
	// Listen is the address to bind.
	Listen string
	// BaseURL is where the map page reaches the geocode proxy.
	BaseURL string
	// MapTimeout bounds the lookup behind a /map request.
	MapTimeout time.Duration
}

type Server struct {
	searcher   geocode.Searcher
	registry   *prometheus.Registry
	metrics    *geocode.Metrics
	listen     string
	baseURL    string
	mapTimeout time.Duration
	httpClient *http.Client
}

func New(searcher geocode.Searcher, opts Options) *Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mapTimeout := opts.MapTimeout
	if mapTimeout <= 0 {
		mapTimeout = defaultMapTimeout
	}

	return &Server{
		searcher:   searcher,
		registry:   reg,
		metrics:    geocode.NewMetrics(reg),
		listen:     opts.Listen,
		baseURL:    opts.BaseURL,
		mapTimeout: mapTimeout,
		httpClient: &http.Client{Timeout: mapTimeout},
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(geocode.RequestIDMiddleware(), s.metrics.Middleware())

	geocode.NewProxy(s.searcher, s.metrics).Register(r)

	r.GET("/map", s.mapView)
	r.GET("/healthz", s.healthz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	r.GET(mapview.MarkerIconPath, s.icon)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Printf("listening on %s (map pages via %s)", s.listen, s.baseURL)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving http: %w", err)
		}

		return nil
	case <-ctx.Done():
	}

	log.Print("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	return nil
}

func (s *Server) healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) icon(ctx *gin.Context) {
	ctx.Header("Cache-Control", "public, max-age=86400")
	ctx.Data(http.StatusOK, "image/svg+xml", markerIcon)
}

func (s *Server) mapView(ctx *gin.Context) {
	location := ctx.Query("location")
	if location == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": geocode.MessageMissingLocation})

		return
	}

	lookupCtx, cancel := context.WithTimeout(ctx.Request.Context(), s.mapTimeout)
	defer cancel()

	r := mapview.NewRenderer(mapview.NewProxyClient(s.baseURL, s.httpClient))
	defer r.Close()

	r.SetLocation(lookupCtx, location)

	state, err := r.Wait(lookupCtx)
	if err != nil {
		log.Printf("[%s] map for %q still loading: %v", geocode.RequestID(ctx), location, err)
	}

	var buf bytes.Buffer
	if err := state.RenderPage(&buf); err != nil {
		log.Printf("[%s] %v", geocode.RequestID(ctx), err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render map"})

		return
	}

	ctx.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
