// Copyright 2025 The Eventify Authors
// SPDX-License-Identifier: Apache-2.0

// Package mapview turns a location into a single-pin map.
//
// A Renderer starts in the Loading phase. Every change of location issues
// one lookup through the geocode proxy; the first candidate becomes the map
// center (Ready), while an empty result or any failure ends in Error with a
// short message meant for end users. Lookups are tagged with a sequence
// number and only the most recent one may update the state.
package mapview

import (
	"context"
	"log"
	"sync"

	"github.com/eventify/eventify/geocode"
	"github.com/eventify/eventify/spatial"
)

// User facing messages.
const (
	MessageLoading   = "Loading map..."
	MessageNotFound  = "Location could not be found on the map."
	MessageLoadError = "There was an error loading the map. Please try again later."
)

// Phase of a Renderer.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseError
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseError:
		return "error"
	case PhaseReady:
		return "ready"
	default:
		return "loading"
	}
}

// State is a snapshot of what the renderer shows.
type State struct {
	Phase    Phase
	Location string
	// Message is set in PhaseError.
	Message string
	// Point is set in PhaseReady.
	Point spatial.Point
}

// Lookuper resolves a location into provider candidates.
type Lookuper interface {
	Lookup(ctx context.Context, location string) ([]geocode.Candidate, error)
}

// Renderer owns the map state of a single location widget.
type Renderer struct {
	lookup Lookuper

	// notifyMu keeps listener calls in the order of the transitions. It is
	// always acquired before mu.
	notifyMu sync.Mutex

	mu        sync.Mutex
	started   bool
	location  string
	seq       uint64
	state     State
	cancel    context.CancelFunc
	settled   chan struct{}
	listeners []func(State)
}

// NewRenderer creates a renderer in the Loading phase.
func NewRenderer(lookup Lookuper) *Renderer {
	settled := make(chan struct{})
	close(settled)

	return &Renderer{
		lookup:  lookup,
		settled: settled,
	}
}

// OnChange registers fn to be called after every state transition, in
// order. fn may read the state but must not call SetLocation.
func (r *Renderer) OnChange(fn func(State)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.listeners = append(r.listeners, fn)
}

// State returns the current snapshot.
func (r *Renderer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state
}

// SetLocation updates the location. When the value changes (or on the first
// call) the pending lookup is abandoned and, for a non-empty location, a new
// one starts in the background. An empty location leaves the renderer in
// Loading without calling the proxy.
func (r *Renderer) SetLocation(ctx context.Context, location string) {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()

	if r.started && location == r.location {
		r.mu.Unlock()

		return
	}

	r.started = true
	r.location = location
	r.seq++
	seq := r.seq

	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}

	r.state = State{Phase: PhaseLoading, Location: location}

	var (
		lookupCtx context.Context
		settled   = make(chan struct{})
	)

	if location == "" {
		close(settled)
	} else {
		lookupCtx, r.cancel = context.WithCancel(ctx)
	}

	r.settled = settled
	state, listeners := r.snapshot()
	r.mu.Unlock()

	notify(state, listeners)

	if location != "" {
		go r.resolve(lookupCtx, seq, location, settled)
	}
}

// Wait blocks until the latest lookup settles and returns the resulting
// state. If the location changes while waiting, it waits for the new lookup.
func (r *Renderer) Wait(ctx context.Context) (State, error) {
	for {
		r.mu.Lock()
		settled := r.settled
		r.mu.Unlock()

		select {
		case <-settled:
			r.mu.Lock()
			if r.settled == settled {
				s := r.state
				r.mu.Unlock()

				return s, nil
			}
			r.mu.Unlock()
		case <-ctx.Done():
			return r.State(), ctx.Err()
		}
	}
}

// Close abandons the pending lookup, if any.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *Renderer) resolve(ctx context.Context, seq uint64, location string, settled chan struct{}) {
	defer close(settled)

	candidates, err := r.lookup.Lookup(ctx, location)
	next := settle(location, candidates, err)

	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	if seq != r.seq {
		r.mu.Unlock()
		log.Printf("discarding stale map lookup for %q", location)

		return
	}

	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}

	r.state = next
	state, listeners := r.snapshot()
	r.mu.Unlock()

	notify(state, listeners)
}

// snapshot copies what the listeners need. Must be called with r.mu held.
func (r *Renderer) snapshot() (State, []func(State)) {
	return r.state, append([]func(State){}, r.listeners...)
}

// notify runs the listeners without holding r.mu, so they may call State.
// Callers hold notifyMu, which is always taken before r.mu.
func notify(state State, listeners []func(State)) {
	for _, fn := range listeners {
		fn(state)
	}
}

func settle(location string, candidates []geocode.Candidate, err error) State {
	if err != nil {
		log.Printf("map lookup for %q failed: %v", location, err)

		return State{Phase: PhaseError, Location: location, Message: MessageLoadError}
	}

	result, err := geocode.First(candidates)

	switch {
	case geocode.IsNotFound(err):
		return State{Phase: PhaseError, Location: location, Message: MessageNotFound}
	case err != nil:
		log.Printf("map lookup for %q failed: %v", location, err)

		return State{Phase: PhaseError, Location: location, Message: MessageLoadError}
	}

	if result.DisplayName != "" {
		log.Printf("map for %q centered on %s (%s)", location, result.Point, result.DisplayName)
	}

	return State{Phase: PhaseReady, Location: location, Point: result.Point}
}
