// Package memory stores a traveler's past experiences with travel: per-route
// travel time and comfort averages, a comfort rating cache keyed by road type,
// and the justifications behind past mode choices.
package memory

import (
	"github.com/wayfarer-sim/wayfarer/internal/clock"
	"github.com/wayfarer-sim/wayfarer/internal/network"
	"github.com/wayfarer-sim/wayfarer/internal/route"
)

// Entry is the remembered outcome of one exact (mode, path) route.
//
// TravelTime is a running average over Count completed trips:
// mean' = ((mean*count)+new)/(count+1). Count only increases. Comfort follows
// the same rule over the trips that produced comfort samples; it and the
// per-trip accumulation buffers are used for active (walk/bike) entries only.
type Entry struct {
	TravelTime float64
	Count      int
	Comfort    float64

	active bool
	// Comfort averages only over trips that produced samples, so it keeps
	// its own denominator.
	comfortCount int
	// Transient per-trip accumulation, cleared when the trip is folded in.
	edgeComfort []float64
	edgeLengths []float64
}

// Active reports whether this entry tracks comfort.
func (e *Entry) Active() bool {
	return e.active
}

// AddComfortSample records the comfort score for one traversed edge, weighted
// by the edge's length in the eventual trip-level average.
func (e *Entry) AddComfortSample(score float64, edgeLength float64) {
	if !e.active {
		return
	}
	e.edgeComfort = append(e.edgeComfort, score)
	e.edgeLengths = append(e.edgeLengths, edgeLength)
}

// tripComfort finalizes the length-weighted comfort mean of the current trip.
func (e *Entry) tripComfort() (float64, bool) {
	var weighted, total float64
	for i, c := range e.edgeComfort {
		weighted += c * e.edgeLengths[i]
		total += e.edgeLengths[i]
	}
	if total == 0 {
		return 0, false
	}
	return weighted / total, true
}

// TravelMemory is one traveler's persistent store of travel experience, plus
// the network-wide comfort cache for roads they have already rated.
type TravelMemory struct {
	routes  map[string]*Entry
	comfort map[network.RoadType]map[route.Mode]int
	choices []ModeChoice
}

// ModeChoice records a route decision and its free-text justification, for
// later inspection.
type ModeChoice struct {
	Day           int
	Time          clock.Clock
	Origin        string
	Destination   string
	Mode          route.Mode
	Justification string
}

// New returns an empty travel memory.
func New() *TravelMemory {
	return &TravelMemory{
		routes:  make(map[string]*Entry),
		comfort: make(map[network.RoadType]map[route.Mode]int),
	}
}

// Get returns the entry for the exact route key, or nil if the route has never
// been completed. A missing entry is always recoverable: callers estimate from
// the network instead.
func (m *TravelMemory) Get(key string) *Entry {
	return m.routes[key]
}

// InitOrGet returns the entry for the key, creating it if needed. The entry
// kind (active or not) is fixed at creation from the mode.
func (m *TravelMemory) InitOrGet(mode route.Mode, key string) *Entry {
	if e, ok := m.routes[key]; ok {
		return e
	}
	e := &Entry{active: mode.Active()}
	m.routes[key] = e
	return e
}

// Complete folds a finished trip into the entry. For active entries the
// length-weighted comfort accumulated over the trip is folded into the
// lifetime comfort average first, and the accumulation buffers are cleared so
// the next trip on this route starts empty.
func (m *TravelMemory) Complete(e *Entry, elapsed float64) {
	if e.active {
		if trip, ok := e.tripComfort(); ok {
			e.Comfort = (e.Comfort*float64(e.comfortCount) + trip) / float64(e.comfortCount+1)
			e.comfortCount++
		}
		e.edgeComfort = nil
		e.edgeLengths = nil
	}
	e.TravelTime = (e.TravelTime*float64(e.Count) + elapsed) / float64(e.Count+1)
	e.Count++
}

// GetComfort looks up the cached comfort score for a road type and mode.
func (m *TravelMemory) GetComfort(rt network.RoadType, mode route.Mode) (int, bool) {
	byMode, ok := m.comfort[rt]
	if !ok {
		return 0, false
	}
	score, ok := byMode[mode]
	return score, ok
}

// StoreComfort caches a comfort score. Entries never expire for the run;
// re-deriving the same rating yields the same value, so last-writer-wins is
// safe.
func (m *TravelMemory) StoreComfort(rt network.RoadType, mode route.Mode, score int) {
	if m.comfort[rt] == nil {
		m.comfort[rt] = make(map[route.Mode]int)
	}
	m.comfort[rt][mode] = score
}

// RecordChoice appends a mode-choice justification.
func (m *TravelMemory) RecordChoice(c ModeChoice) {
	m.choices = append(m.choices, c)
}

// Choices returns the recorded mode choices, oldest first.
func (m *TravelMemory) Choices() []ModeChoice {
	return m.choices
}
