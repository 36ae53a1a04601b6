// Package telemetry collects structured records of completed journeys.
package telemetry

import (
	"sync"

	"github.com/wayfarer-sim/wayfarer/internal/clock"
	"github.com/wayfarer-sim/wayfarer/internal/route"
)

// Journey is the record emitted when a trip completes.
type Journey struct {
	ID          string
	Traveler    string
	Origin      string
	Destination string
	StartDay    int
	StartTime   clock.Clock
	EndDay      int
	EndTime     clock.Clock
	Duration    float64 // minutes
	Mode        route.Mode
	Distance    float64 // meters
}

// Sink receives completed journeys. Persistence format is up to the sink.
type Sink interface {
	Record(j Journey) error
}

// MemorySink keeps journeys in memory, newest last.
type MemorySink struct {
	mu       sync.Mutex
	journeys []Journey
}

// NewMemorySink returns an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Record appends the journey.
func (s *MemorySink) Record(j Journey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journeys = append(s.journeys, j)
	return nil
}

// Journeys returns a copy of everything recorded so far.
func (s *MemorySink) Journeys() []Journey {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Journey, len(s.journeys))
	copy(out, s.journeys)
	return out
}
