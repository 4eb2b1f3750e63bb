// Copyright 2025 The Eventify Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Proxy relays location lookups to the provider.
type Proxy struct {
	searcher Searcher
	metrics  *Metrics
}

// NewProxy creates a proxy backed by searcher. metrics may be nil.
func NewProxy(searcher Searcher, metrics *Metrics) *Proxy {
	return &Proxy{
		searcher: searcher,
		metrics:  metrics,
	}
}

// Register mounts the proxy routes on r.
func (p *Proxy) Register(r gin.IRoutes) {
	r.GET("/api/geocode", p.geocode)
}

func (p *Proxy) geocode(ctx *gin.Context) {
	location := ctx.Query("location")
	if location == "" {
		p.metrics.observeLookup(ErrorTypeMissingParameter.String(), 0)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": MessageMissingLocation})

		return
	}

	start := time.Now()

	payload, err := p.searcher.Search(ctx.Request.Context(), location)
	if err != nil {
		p.metrics.observeLookup(TypeOf(err).String(), time.Since(start))
		log.Printf("[%s] geocoding API error for %q: %v", RequestID(ctx), location, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": MessageFetchFailed})

		return
	}

	p.metrics.observeLookup("ok", time.Since(start))
	ctx.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}
