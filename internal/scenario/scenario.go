// Package scenario synthesizes small self-contained simulation inputs: a
// jittered grid street network per mode, a set of named locations snapped to
// nodes, and a traveler roster. Noise-based jitter keeps the layout organic
// while staying deterministic per seed.
package scenario

import (
	"fmt"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/wayfarer-sim/wayfarer/internal/engine"
	"github.com/wayfarer-sim/wayfarer/internal/network"
	"github.com/wayfarer-sim/wayfarer/internal/route"
)

// GenConfig holds scenario generation parameters.
type GenConfig struct {
	Rows    int
	Cols    int
	Spacing float64 // meters between grid nodes before jitter
	Seed    int64
	Curved  float64 // fraction of edges given a bowed polyline
}

// DefaultGenConfig returns a village-sized scenario: a 6×6 grid at 250 m
// spacing, about 1.5 km across.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Rows:    6,
		Cols:    6,
		Spacing: 250,
		Seed:    42,
		Curved:  0.25,
	}
}

// Resident describes one generated traveler before wiring.
type Resident struct {
	Name        string
	Home        string
	Description string
	HasBike     bool
	HasCar      bool
}

// Scenario is a complete generated input set.
type Scenario struct {
	Graphs    map[route.Mode]*network.Graph
	Locations []engine.Location
	Residents []Resident
}

var residentTemplates = []Resident{
	{Name: "Ada", Description: "A retired teacher who walks everywhere she can.", HasBike: false, HasCar: false},
	{Name: "Ben", Description: "A software developer who cycles to clear his head.", HasBike: true, HasCar: false},
	{Name: "Carol", Description: "A nurse working shifts, drives when pressed for time.", HasBike: false, HasCar: true},
	{Name: "Dev", Description: "A student with a bike and not much patience.", HasBike: true, HasCar: false},
	{Name: "Elena", Description: "Runs the corner shop, owns a car and a sturdy bike.", HasBike: true, HasCar: true},
	{Name: "Frank", Description: "A delivery driver who knows every shortcut.", HasBike: false, HasCar: true},
}

var placeNames = []string{
	"Corner Shop", "Supermarket", "Office", "School", "Park", "Cafe",
	"Library", "Clinic", "Gym", "Pub",
}

// highway classes for the drive graph, roughly from quiet to fast.
var driveClasses = []struct {
	highway string
	limit   string
}{
	{"residential", "20 mph"},
	{"tertiary", "30 mph"},
	{"trunk", "40 mph"},
}

// Generate builds a deterministic scenario from the config.
func Generate(cfg GenConfig) (*Scenario, error) {
	if cfg.Rows < 2 || cfg.Cols < 2 {
		return nil, fmt.Errorf("grid must be at least 2x2, got %dx%d", cfg.Rows, cfg.Cols)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	jitterX := opensimplex.NewNormalized(cfg.Seed)
	jitterY := opensimplex.NewNormalized(cfg.Seed + 1)
	classNoise := opensimplex.NewNormalized(cfg.Seed + 2)

	// Node coordinates: a regular grid displaced by up to 30% of the spacing.
	pts := make(map[network.NodeID]orb.Point, cfg.Rows*cfg.Cols)
	nodeID := func(r, c int) network.NodeID {
		return network.NodeID(r*cfg.Cols + c + 1)
	}
	for r := 0; r < cfg.Rows; r++ {
		for c := 0; c < cfg.Cols; c++ {
			fx, fy := float64(c), float64(r)
			dx := (jitterX.Eval2(fx*0.7, fy*0.7) - 0.5) * cfg.Spacing * 0.6
			dy := (jitterY.Eval2(fx*0.7, fy*0.7) - 0.5) * cfg.Spacing * 0.6
			pts[nodeID(r, c)] = orb.Point{fx*cfg.Spacing + dx, fy*cfg.Spacing + dy}
		}
	}

	graphs := map[route.Mode]*network.Graph{
		route.ModeWalk:  network.NewGraph(),
		route.ModeBike:  network.NewGraph(),
		route.ModeDrive: network.NewGraph(),
	}
	for r := 0; r < cfg.Rows; r++ {
		for c := 0; c < cfg.Cols; c++ {
			id := nodeID(r, c)
			for _, g := range graphs {
				if err := g.AddNode(id, pts[id]); err != nil {
					return nil, err
				}
			}
		}
	}

	// Edges: 4-neighbour connections, both directions, every mode sharing the
	// same geometry. The drive graph gets a road class and speed limit drawn
	// from smooth noise so classes form contiguous corridors.
	addLink := func(u, v network.NodeID) error {
		geom, length := edgeGeometry(pts[u], pts[v], rng, cfg.Curved)
		cls := driveClasses[classIndex(classNoise, pts[u], cfg.Spacing)]

		for mode, g := range graphs {
			e := network.Edge{U: u, V: v, Length: length, Geometry: geom}
			switch mode {
			case route.ModeDrive:
				e.Highway = cls.highway
				e.MaxSpeed = []string{cls.limit}
			case route.ModeBike:
				e.Highway = "cycleway"
			default:
				e.Highway = "footway"
			}
			if err := g.AddEdge(e); err != nil {
				return err
			}
			rev := e
			rev.U, rev.V = v, u
			rev.Geometry = reverse(geom)
			if err := g.AddEdge(rev); err != nil {
				return err
			}
		}
		return nil
	}
	for r := 0; r < cfg.Rows; r++ {
		for c := 0; c < cfg.Cols; c++ {
			if c+1 < cfg.Cols {
				if err := addLink(nodeID(r, c), nodeID(r, c+1)); err != nil {
					return nil, err
				}
			}
			if r+1 < cfg.Rows {
				if err := addLink(nodeID(r, c), nodeID(r+1, c)); err != nil {
					return nil, err
				}
			}
		}
	}

	// Locations on distinct nodes: one home per resident, then public places.
	ids := make([]network.NodeID, 0, len(pts))
	for r := 0; r < cfg.Rows; r++ {
		for c := 0; c < cfg.Cols; c++ {
			ids = append(ids, nodeID(r, c))
		}
	}
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	needed := len(residentTemplates) + len(placeNames)
	if needed > len(ids) {
		return nil, fmt.Errorf("grid too small: %d nodes for %d locations", len(ids), needed)
	}

	var locations []engine.Location
	residents := make([]Resident, len(residentTemplates))
	next := 0
	for i, tmpl := range residentTemplates {
		home := tmpl.Name + "'s house"
		locations = append(locations, engine.Location{Name: home, Point: pts[ids[next]]})
		next++
		residents[i] = tmpl
		residents[i].Home = home
	}
	for _, name := range placeNames {
		locations = append(locations, engine.Location{Name: name, Point: pts[ids[next]]})
		next++
	}

	return &Scenario{Graphs: graphs, Locations: locations, Residents: residents}, nil
}

// edgeGeometry returns the polyline for a link and its length. A fraction of
// links bow sideways through a displaced midpoint; the rest are straight.
func edgeGeometry(a, b orb.Point, rng *rand.Rand, curved float64) (orb.LineString, float64) {
	if rng.Float64() >= curved {
		return nil, planar.Distance(a, b)
	}
	mid := orb.Point{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2}
	// Perpendicular displacement of up to 15% of the span.
	dx, dy := b[0]-a[0], b[1]-a[1]
	off := (rng.Float64() - 0.5) * 0.3
	mid[0] += -dy * off
	mid[1] += dx * off
	line := orb.LineString{a, mid, b}
	return line, planar.Distance(a, mid) + planar.Distance(mid, b)
}

// classIndex maps a node position onto a road class via smooth noise.
func classIndex(n opensimplex.Noise, pt orb.Point, spacing float64) int {
	v := n.Eval2(pt[0]/(spacing*3), pt[1]/(spacing*3))
	idx := int(v * float64(len(driveClasses)))
	if idx >= len(driveClasses) {
		idx = len(driveClasses) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

func reverse(line orb.LineString) orb.LineString {
	if line == nil {
		return nil
	}
	out := make(orb.LineString, len(line))
	for i, p := range line {
		out[len(line)-1-i] = p
	}
	return out
}
