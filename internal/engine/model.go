// Package engine runs the tick-based travel simulation: it owns the shared
// networks and locations, advances the clock, steps every traveler, and
// aggregates per-mode occupancy statistics.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/paulmach/orb"

	"github.com/wayfarer-sim/wayfarer/internal/clock"
	"github.com/wayfarer-sim/wayfarer/internal/network"
	"github.com/wayfarer-sim/wayfarer/internal/route"
	"github.com/wayfarer-sim/wayfarer/internal/telemetry"
	"github.com/wayfarer-sim/wayfarer/internal/traveler"
)

// Config holds the simulation's timing and cost parameters.
type Config struct {
	TickMinutes       float64
	DefaultSpeedLimit float64 // km/h, applied where an edge declares no usable limit
	CarSpeedFactor    float64 // fraction of the limit cars actually average
	Days              int
	DayStart          clock.Clock
	DrivingExtraTime  float64 // minutes added to drive estimates (parking etc.)
	CyclingExtraTime  float64 // minutes added to bike estimates
	Seed              int64
}

// DefaultConfig returns the standard parameters: 5-minute ticks, 30 km/h
// fallback limit, cars averaging 75% of the limit, days starting at 04:00.
func DefaultConfig() Config {
	return Config{
		TickMinutes:       5,
		DefaultSpeedLimit: 30,
		CarSpeedFactor:    0.75,
		Days:              1,
		DayStart:          clock.New(4, 0),
		DrivingExtraTime:  3,
		CyclingExtraTime:  2,
		Seed:              42,
	}
}

// Location is a named place snapped onto the networks by coordinate.
type Location struct {
	Name  string
	Point orb.Point
}

// Model is the complete simulation state. It implements traveler.World.
type Model struct {
	cfg       Config
	networks  map[route.Mode]*network.Network
	locations map[string]orb.Point
	names     []string
	travelers []*traveler.Traveler
	sink      telemetry.Sink
	rng       *rand.Rand

	now clock.Clock
	day int
}

// NewModel assembles a model from built networks, locations, and travelers.
// The drive network must have been built with the config's speed parameters.
func NewModel(cfg Config, nets map[route.Mode]*network.Network, locs []Location, travelers []*traveler.Traveler, sink telemetry.Sink) (*Model, error) {
	for _, m := range route.All {
		if nets[m] == nil {
			return nil, fmt.Errorf("no network for mode %q", m)
		}
	}
	byName := make(map[string]orb.Point, len(locs))
	names := make([]string, 0, len(locs))
	for _, l := range locs {
		if _, dup := byName[l.Name]; dup {
			return nil, fmt.Errorf("duplicate location %q", l.Name)
		}
		byName[l.Name] = l.Point
		names = append(names, l.Name)
	}
	return &Model{
		cfg:       cfg,
		networks:  nets,
		locations: byName,
		names:     names,
		travelers: travelers,
		sink:      sink,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		now:       cfg.DayStart,
	}, nil
}

func (m *Model) Network(mode route.Mode) *network.Network { return m.networks[mode] }

func (m *Model) LocationCoords(name string) (orb.Point, bool) {
	pt, ok := m.locations[name]
	return pt, ok
}

func (m *Model) IsLocation(name string) bool {
	_, ok := m.locations[name]
	return ok
}

func (m *Model) LocationNames() []string { return m.names }

func (m *Model) TickMinutes() float64  { return m.cfg.TickMinutes }
func (m *Model) DayStart() clock.Clock { return m.cfg.DayStart }

func (m *Model) ExtraTime(mode route.Mode) float64 {
	switch mode {
	case route.ModeDrive:
		return m.cfg.DrivingExtraTime
	case route.ModeBike:
		return m.cfg.CyclingExtraTime
	default:
		return 0
	}
}

func (m *Model) RecordJourney(j telemetry.Journey) {
	if err := m.sink.Record(j); err != nil {
		slog.Error("journey record failed", "traveler", j.Traveler, "error", err)
	}
}

// Now returns the current simulation clock.
func (m *Model) Now() clock.Clock { return m.now }

// Day returns the current simulation day, starting at 0.
func (m *Model) Day() int { return m.day }

// Travelers returns the roster. Callers must treat it as read-only.
func (m *Model) Travelers() []*traveler.Traveler { return m.travelers }

// Occupancy counts travelers currently en route, by mode.
func (m *Model) Occupancy() map[route.Mode]int {
	counts := make(map[route.Mode]int, len(route.All))
	for _, t := range m.travelers {
		if t.State == traveler.StateTraveling {
			counts[t.Mode()]++
		}
	}
	return counts
}

// Step advances the simulation by one tick: travelers act in a freshly
// shuffled order, then the clock moves forward and the day rolls over at
// midnight.
func (m *Model) Step(ctx context.Context) error {
	order := m.rng.Perm(len(m.travelers))
	for _, i := range order {
		if err := m.travelers[i].Step(ctx, m, m.now, m.day); err != nil {
			return fmt.Errorf("traveler %s: %w", m.travelers[i].Name, err)
		}
	}

	next, rolled := m.now.Advance(m.cfg.TickMinutes)
	m.now = next
	if rolled {
		m.day++
	}
	return nil
}

// Run steps the model until the configured number of days has elapsed,
// logging a summary line at the start of each day.
func (m *Model) Run(ctx context.Context) error {
	slog.Info("simulation started",
		"days", m.cfg.Days, "travelers", len(m.travelers),
		"tick_minutes", m.cfg.TickMinutes)

	lastReported := -1
	for m.day < m.cfg.Days {
		if err := ctx.Err(); err != nil {
			return err
		}
		if m.day != lastReported {
			m.reportDay()
			lastReported = m.day
		}
		if err := m.Step(ctx); err != nil {
			return err
		}
	}
	slog.Info("simulation finished", "days", m.day)
	return nil
}

func (m *Model) reportDay() {
	occ := m.Occupancy()
	slog.Info("day started",
		"day", m.day,
		"time", m.now.String(),
		"walking", occ[route.ModeWalk],
		"cycling", occ[route.ModeBike],
		"driving", occ[route.ModeDrive],
	)
}
