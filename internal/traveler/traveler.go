// Package traveler implements the per-agent travel state machine: day
// planning, destination resolution, route choice, tick-by-tick traversal, and
// memory updates on arrival.
package traveler

import (
	"context"
	"log/slog"

	"github.com/paulmach/orb"

	"github.com/wayfarer-sim/wayfarer/internal/clock"
	"github.com/wayfarer-sim/wayfarer/internal/memory"
	"github.com/wayfarer-sim/wayfarer/internal/network"
	"github.com/wayfarer-sim/wayfarer/internal/oracle"
	"github.com/wayfarer-sim/wayfarer/internal/route"
	"github.com/wayfarer-sim/wayfarer/internal/telemetry"
)

// State is a traveler's position in the travel loop. Day planning, routing,
// and arrival are transient steps within a tick; between ticks a traveler is
// idle, waiting on its plan, or traveling.
type State string

const (
	StateIdle      State = "idle"     // no plan for today
	StateWaiting   State = "waiting"  // has a plan, next action not yet imminent
	StateTraveling State = "traveling"
)

// World is everything a traveler can see outside itself: shared read-only
// networks and locations, the simulation's timing parameters, and the
// journey sink.
type World interface {
	Network(m route.Mode) *network.Network
	LocationCoords(name string) (orb.Point, bool)
	IsLocation(name string) bool
	LocationNames() []string
	TickMinutes() float64
	DayStart() clock.Clock
	// ExtraTime is the fixed access overhead for a mode, e.g. parking the
	// car or locking up the bike, added to candidate estimates.
	ExtraTime(m route.Mode) float64
	RecordJourney(j telemetry.Journey)
}

// destinationAttempts bounds the oracle retry loop when resolving where an
// action happens.
const destinationAttempts = 3

// candidatesPerMode caps how many ranked paths are drawn per mode; planning
// cost grows with rank.
const candidatesPerMode = 3

// Traveler is one simulated person. Each traveler owns its route, trip, and
// memory exclusively; only the networks and its own comfort cache are shared.
type Traveler struct {
	Name        string
	Home        string
	Description string

	WalkSpeed float64 // km/h
	BikeSpeed float64 // km/h
	HasBike   bool
	HasCar    bool

	State    State
	Location string    // canonical location name; destination while en route
	Position orb.Point

	Memory *memory.TravelMemory

	advisor *oracle.Advisor
	plan    []oracle.PlanAction

	trip     *route.Trip
	current  *route.Route
	entry    *memory.Entry
	distance float64 // meters, full planned path
	startDay int
}

// New creates a traveler at their home location.
func New(name, home, description string, homeCoords orb.Point, advisor *oracle.Advisor) *Traveler {
	return &Traveler{
		Name:        name,
		Home:        home,
		Description: description,
		WalkSpeed:   5,
		BikeSpeed:   15,
		State:       StateIdle,
		Location:    home,
		Position:    homeCoords,
		Memory:      memory.New(),
		advisor:     advisor,
	}
}

func (t *Traveler) persona() oracle.Persona {
	return oracle.Persona{Name: t.Name, Home: t.Home, Description: t.Description}
}

// Mode returns the mode currently in use, or "" when not traveling.
func (t *Traveler) Mode() route.Mode {
	if t.current == nil {
		return ""
	}
	return t.current.Mode
}

// Destination returns where the traveler is headed, or "" when not traveling.
func (t *Traveler) Destination() string {
	if t.trip == nil {
		return ""
	}
	return t.trip.Destination
}

// PlanRemaining returns how many actions are left in today's plan.
func (t *Traveler) PlanRemaining() int {
	return len(t.plan)
}

func (t *Traveler) speedFor(m route.Mode) float64 {
	switch m {
	case route.ModeWalk:
		return t.WalkSpeed
	case route.ModeBike:
		return t.BikeSpeed
	default:
		return 0 // drive: speed comes from the limit
	}
}

func (t *Traveler) availableModes() []route.Mode {
	modes := []route.Mode{route.ModeWalk}
	if t.HasBike {
		modes = append(modes, route.ModeBike)
	}
	if t.HasCar {
		modes = append(modes, route.ModeDrive)
	}
	return modes
}

// Step advances the traveler by one tick. Errors indicate graph
// inconsistencies (malformed input data) and are fatal to the run.
func (t *Traveler) Step(ctx context.Context, w World, now clock.Clock, day int) error {
	switch t.State {
	case StateTraveling:
		return t.move(ctx, w, now, day, w.TickMinutes())
	case StateWaiting:
		return t.maybeStartNextAction(ctx, w, now, day)
	case StateIdle:
		if now.TimeTo(w.DayStart()) < w.TickMinutes() {
			t.plan = t.advisor.PlanDay(ctx, t.persona())
			slog.Debug("day planned", "traveler", t.Name, "actions", len(t.plan))
			t.State = StateWaiting
			return t.maybeStartNextAction(ctx, w, now, day)
		}
	}
	return nil
}

// maybeStartNextAction fires when the next planned action is imminent: within
// a lookahead window of roughly two ticks, so actions starting mid-tick are
// not missed.
func (t *Traveler) maybeStartNextAction(ctx context.Context, w World, now clock.Clock, day int) error {
	if len(t.plan) == 0 {
		t.State = StateIdle
		return nil
	}
	next := t.plan[0]
	if now.TimeTo(next.Time) >= 2*w.TickMinutes() {
		return nil
	}
	t.plan = t.plan[1:]

	dest, ok := t.resolveDestination(ctx, w, next.Action)
	if !ok {
		slog.Warn("no valid location for action, abandoning it",
			"traveler", t.Name, "action", next.Action)
		return nil
	}
	if dest == t.Location {
		return nil // already there
	}
	return t.startTrip(ctx, w, now, day, dest, next.Time)
}

// resolveDestination asks the oracle where the action happens, retrying up to
// the attempt bound. Unknown names don't count as answers.
func (t *Traveler) resolveDestination(ctx context.Context, w World, action string) (string, bool) {
	for attempt := 0; attempt < destinationAttempts; attempt++ {
		name, err := t.advisor.ActionLocation(ctx, t.persona(), t.Location, action, w.LocationNames())
		if err != nil {
			continue
		}
		if w.IsLocation(name) {
			return name, true
		}
	}
	return "", false
}
