// Package route holds the trip and route value objects shared between the
// traveler state machine, the networks, and travel memory.
package route

import (
	"strconv"
	"strings"

	"github.com/wayfarer-sim/wayfarer/internal/clock"
	"github.com/wayfarer-sim/wayfarer/internal/network"
)

// Mode is a means of transport.
type Mode string

const (
	ModeDrive Mode = "drive"
	ModeWalk  Mode = "walk"
	ModeBike  Mode = "bike"
)

// All lists every mode, in the order candidates are gathered.
var All = []Mode{ModeWalk, ModeBike, ModeDrive}

// Active reports whether the mode is human-powered. Comfort is only sampled
// for active modes; driving comfort is modelled as invariant.
func (m Mode) Active() bool {
	return m == ModeWalk || m == ModeBike
}

// Trip is an origin/destination/start-time intent. Immutable once created; it
// is discarded when its route completes.
type Trip struct {
	Origin      string
	Destination string
	StartTime   clock.Clock
}

// Route is a chosen mode plus the traversal state of its planned path.
// Full is the path as planned, kept for memory keying; Progress shrinks from
// the front as edges complete.
type Route struct {
	Mode     Mode
	Full     []network.NodeID
	Progress network.Progress
}

// New creates a route at the start of the given path.
func New(mode Mode, path []network.NodeID) Route {
	full := make([]network.NodeID, len(path))
	copy(full, path)
	return Route{Mode: mode, Full: full, Progress: network.Progress{Path: full}}
}

// Key identifies this exact (mode, path) pair for travel memory. Matching is
// exact: no partial or path-similarity lookups.
func (r Route) Key() string {
	return Key(r.Mode, r.Full)
}

// Key builds the memory key for a mode and node path.
func Key(mode Mode, path []network.NodeID) string {
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return string(mode) + ":" + strings.Join(parts, "-")
}
