package network

import (
	"strconv"
	"strings"
)

const mphToKmh = 1.609344

// coster is the per-mode cost strategy: how long an edge takes to traverse and
// what weight path planning ranks by.
type coster interface {
	// edgeTime returns the traversal time of e in minutes. speed (km/h) is
	// only meaningful for active modes.
	edgeTime(e *Edge, speed float64) float64
	// weight is the planning cost of e (drive: time; active: distance).
	weight(e *Edge) float64
}

// driveCost derives edge times from speed limits. The traveler-supplied speed
// is unused: cars move at the limit scaled by a factor modelling that nobody
// drives exactly at it.
type driveCost struct {
	defaultLimit float64 // km/h, applied when an edge declares no limit
	speedFactor  float64
}

func (d driveCost) edgeTime(e *Edge, _ float64) float64 {
	carSpeed := d.speedLimit(e) * d.speedFactor
	return (e.Length / 1000) / carSpeed * 60
}

func (d driveCost) weight(e *Edge) float64 {
	return d.edgeTime(e, 0)
}

// speedLimit extracts the edge's speed limit in km/h. Edges declaring several
// limits (at a limit-change point) get the arithmetic mean; undeclared or
// unparseable limits fall back to the configured default.
func (d driveCost) speedLimit(e *Edge) float64 {
	if len(e.MaxSpeed) == 0 {
		return d.defaultLimit
	}
	var sum float64
	var n int
	for _, raw := range e.MaxSpeed {
		v, ok := parseLimit(raw)
		if !ok {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return d.defaultLimit
	}
	return sum / float64(n)
}

// parseLimit converts a raw limit string such as "30 mph" or "50" to km/h.
func parseLimit(raw string) (float64, bool) {
	parts := strings.Fields(raw)
	if len(parts) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(parts[0], 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	if len(parts) > 1 && parts[1] == "mph" {
		v *= mphToKmh
	}
	return v, true
}

// activeCost is the walking/cycling strategy: edge time comes purely from edge
// length and the traveler's own speed, and planning ranks by distance.
type activeCost struct{}

func (activeCost) edgeTime(e *Edge, speed float64) float64 {
	return (e.Length / 1000) / speed * 60
}

func (activeCost) weight(e *Edge) float64 {
	return e.Length
}
