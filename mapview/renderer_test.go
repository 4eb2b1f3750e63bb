// Copyright 2025 The Eventify Authors
// SPDX-License-Identifier: Apache-2.0

package mapview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/eventify/eventify/geocode"
	"github.com/eventify/eventify/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnswer struct {
	candidates []geocode.Candidate
	err        error
	// gate, when set, holds the lookup until it is closed or the lookup
	// context is cancelled.
	gate chan struct{}
}

type fakeLookup struct {
	mu        sync.Mutex
	answers   map[string]fakeAnswer
	calls     []string
	cancelled []string
}

func newFakeLookup(answers map[string]fakeAnswer) *fakeLookup {
	return &fakeLookup{answers: answers}
}

func (f *fakeLookup) Lookup(ctx context.Context, location string) ([]geocode.Candidate, error) {
	f.mu.Lock()
	f.calls = append(f.calls, location)
	answer := f.answers[location]
	f.mu.Unlock()

	if answer.gate != nil {
		select {
		case <-answer.gate:
		case <-ctx.Done():
			f.mu.Lock()
			f.cancelled = append(f.cancelled, location)
			f.mu.Unlock()

			return nil, ctx.Err()
		}
	}

	return answer.candidates, answer.err
}

func (f *fakeLookup) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string{}, f.calls...)
}

func (f *fakeLookup) Cancelled() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string{}, f.cancelled...)
}

func wait(t *testing.T, r *Renderer) State {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	state, err := r.Wait(ctx)
	require.NoError(t, err)

	return state
}

var paris = []geocode.Candidate{
	{Lat: "48.8566", Lon: "2.3522", DisplayName: "Paris, Île-de-France, France"},
	{Lat: "33.6609", Lon: "-95.5555", DisplayName: "Paris, Texas"},
}

func TestRendererStartsLoading(t *testing.T) {
	r := NewRenderer(newFakeLookup(nil))

	assert.Equal(t, PhaseLoading, r.State().Phase)
}

func TestRendererReady(t *testing.T) {
	lookup := newFakeLookup(map[string]fakeAnswer{"Paris": {candidates: paris}})
	r := NewRenderer(lookup)

	r.SetLocation(context.Background(), "Paris")
	state := wait(t, r)

	assert.Equal(t, State{
		Phase:    PhaseReady,
		Location: "Paris",
		Point:    spatial.Point{Lat: 48.8566, Lng: 2.3522},
	}, state)
	assert.Equal(t, []string{"Paris"}, lookup.Calls())
}

func TestRendererErrors(t *testing.T) {
	tests := []struct {
		name    string
		answer  fakeAnswer
		message string
	}{
		{"empty result", fakeAnswer{candidates: []geocode.Candidate{}}, MessageNotFound},
		{"proxy failure", fakeAnswer{err: errors.New("geocode proxy responded with 500")}, MessageLoadError},
		{"bad coordinates", fakeAnswer{candidates: []geocode.Candidate{{Lat: "north", Lon: "2"}}}, MessageLoadError},
		{"out of range", fakeAnswer{candidates: []geocode.Candidate{{Lat: "123.4", Lon: "2"}}}, MessageLoadError},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := NewRenderer(newFakeLookup(map[string]fakeAnswer{"Atlantis": test.answer}))

			r.SetLocation(context.Background(), "Atlantis")
			state := wait(t, r)

			assert.Equal(t, PhaseError, state.Phase)
			assert.Equal(t, test.message, state.Message)
			assert.Equal(t, "Atlantis", state.Location)
		})
	}
}

func TestRendererEmptyLocationSkipsLookup(t *testing.T) {
	lookup := newFakeLookup(nil)
	r := NewRenderer(lookup)

	r.SetLocation(context.Background(), "")
	state := wait(t, r)

	assert.Equal(t, PhaseLoading, state.Phase)
	assert.Empty(t, lookup.Calls())
}

func TestRendererSameLocationLooksUpOnce(t *testing.T) {
	lookup := newFakeLookup(map[string]fakeAnswer{"Paris": {candidates: paris}})
	r := NewRenderer(lookup)

	r.SetLocation(context.Background(), "Paris")
	wait(t, r)
	r.SetLocation(context.Background(), "Paris")
	state := wait(t, r)

	assert.Equal(t, PhaseReady, state.Phase)
	assert.Equal(t, []string{"Paris"}, lookup.Calls())
}

func TestRendererLocationChangeResetsToLoading(t *testing.T) {
	gate := make(chan struct{})
	lookup := newFakeLookup(map[string]fakeAnswer{
		"Paris":  {candidates: paris},
		"Berlin": {candidates: []geocode.Candidate{{Lat: "52.52", Lon: "13.405"}}, gate: gate},
	})
	r := NewRenderer(lookup)

	r.SetLocation(context.Background(), "Paris")
	require.Equal(t, PhaseReady, wait(t, r).Phase)

	r.SetLocation(context.Background(), "Berlin")
	assert.Equal(t, State{Phase: PhaseLoading, Location: "Berlin"}, r.State())

	close(gate)
	state := wait(t, r)
	assert.Equal(t, spatial.Point{Lat: 52.52, Lng: 13.405}, state.Point)
}

func TestRendererDiscardsStaleLookup(t *testing.T) {
	slow := make(chan struct{})
	lookup := newFakeLookup(map[string]fakeAnswer{
		"Paris":      {candidates: paris, gate: slow},
		"Montevideo": {candidates: []geocode.Candidate{{Lat: "-34.9058", Lon: "-56.1913"}}},
	})
	r := NewRenderer(lookup)

	r.SetLocation(context.Background(), "Paris")
	r.SetLocation(context.Background(), "Montevideo")

	state := wait(t, r)
	assert.Equal(t, "Montevideo", state.Location)
	assert.Equal(t, spatial.Point{Lat: -34.9058, Lng: -56.1913}, state.Point)

	assert.Eventually(t, func() bool {
		return len(lookup.Cancelled()) == 1
	}, time.Second, 5*time.Millisecond, "superseded lookup must be cancelled")
	assert.Equal(t, []string{"Paris"}, lookup.Cancelled())

	close(slow)
	assert.Never(t, func() bool {
		return r.State().Location != "Montevideo"
	}, 50*time.Millisecond, 5*time.Millisecond)
}

func TestRendererOnChange(t *testing.T) {
	lookup := newFakeLookup(map[string]fakeAnswer{"Paris": {candidates: paris}})
	r := NewRenderer(lookup)

	var (
		mu     sync.Mutex
		phases []Phase
	)

	r.OnChange(func(s State) {
		mu.Lock()
		defer mu.Unlock()

		phases = append(phases, s.Phase)
	})

	r.SetLocation(context.Background(), "Paris")
	wait(t, r)

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, []Phase{PhaseLoading, PhaseReady}, phases)
}

func TestRendererOnChangeReadsStateDuringLocationChange(t *testing.T) {
	lookup := newFakeLookup(map[string]fakeAnswer{
		"Paris": {candidates: paris},
		"Lyon":  {candidates: []geocode.Candidate{{Lat: "45.764", Lon: "4.8357"}}},
	})
	r := NewRenderer(lookup)

	var (
		entered = make(chan struct{})
		release = make(chan struct{})
		seen    = make(chan State, 1)
	)

	r.OnChange(func(s State) {
		if s.Phase != PhaseReady || s.Location != "Paris" {
			return
		}

		close(entered)
		<-release
		seen <- r.State()
	})

	r.SetLocation(context.Background(), "Paris")

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("listener never saw Paris ready")
	}

	changed := make(chan struct{})

	go func() {
		r.SetLocation(context.Background(), "Lyon")
		close(changed)
	}()

	// Let SetLocation reach the point where it waits for the listener.
	time.Sleep(20 * time.Millisecond)
	close(release)

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("SetLocation blocked behind a listener reading the state")
	}

	assert.Equal(t, State{
		Phase:    PhaseReady,
		Location: "Paris",
		Point:    spatial.Point{Lat: 48.8566, Lng: 2.3522},
	}, <-seen)

	state := wait(t, r)
	assert.Equal(t, "Lyon", state.Location)
	assert.Equal(t, spatial.Point{Lat: 45.764, Lng: 4.8357}, state.Point)
}

func TestRendererClose(t *testing.T) {
	lookup := newFakeLookup(map[string]fakeAnswer{"Paris": {candidates: paris, gate: make(chan struct{})}})
	r := NewRenderer(lookup)

	r.SetLocation(context.Background(), "Paris")
	r.Close()

	state := wait(t, r)
	assert.Equal(t, PhaseError, state.Phase)
	assert.Equal(t, MessageLoadError, state.Message)
	assert.Equal(t, []string{"Paris"}, lookup.Cancelled())
}

func TestRendererWaitHonoursContext(t *testing.T) {
	lookup := newFakeLookup(map[string]fakeAnswer{"Paris": {candidates: paris, gate: make(chan struct{})}})
	r := NewRenderer(lookup)
	defer r.Close()

	r.SetLocation(context.Background(), "Paris")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	state, err := r.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, PhaseLoading, state.Phase)
}
