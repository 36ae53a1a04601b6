package scenario

import (
	"math"
	"testing"

	"github.com/paulmach/orb/planar"

	"github.com/wayfarer-sim/wayfarer/internal/network"
	"github.com/wayfarer-sim/wayfarer/internal/route"
)

func TestGenerateProducesConnectedModes(t *testing.T) {
	s, err := Generate(DefaultGenConfig())
	if err != nil {
		t.Fatal(err)
	}

	for _, m := range route.All {
		g := s.Graphs[m]
		if g == nil {
			t.Fatalf("no graph for mode %q", m)
		}
		if len(g.Nodes()) != 36 {
			t.Fatalf("%s graph has %d nodes, want 36", m, len(g.Nodes()))
		}
		// Corner to corner must be routable.
		n := network.NewActiveNetwork(g)
		it := n.PlanPaths(1, 36)
		if _, ok := it.Next(); !ok {
			t.Fatalf("%s graph: no path across the grid", m)
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	a, err := Generate(DefaultGenConfig())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(DefaultGenConfig())
	if err != nil {
		t.Fatal(err)
	}

	if len(a.Locations) != len(b.Locations) {
		t.Fatalf("location counts differ: %d vs %d", len(a.Locations), len(b.Locations))
	}
	for i := range a.Locations {
		if a.Locations[i] != b.Locations[i] {
			t.Fatalf("location %d differs: %+v vs %+v", i, a.Locations[i], b.Locations[i])
		}
	}
	na, _ := a.Graphs[route.ModeWalk].Node(7)
	nb, _ := b.Graphs[route.ModeWalk].Node(7)
	if na.Point != nb.Point {
		t.Fatalf("node 7 differs: %v vs %v", na.Point, nb.Point)
	}
}

func TestDriveEdgesCarrySpeedLimits(t *testing.T) {
	s, err := Generate(DefaultGenConfig())
	if err != nil {
		t.Fatal(err)
	}
	e, err := s.Graphs[route.ModeDrive].Edge(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if e.Highway == "" || len(e.MaxSpeed) != 1 {
		t.Fatalf("drive edge missing class or limit: %+v", e)
	}
	walk, err := s.Graphs[route.ModeWalk].Edge(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(walk.MaxSpeed) != 0 {
		t.Fatalf("walk edge has a speed limit: %+v", walk)
	}
}

func TestEdgeLengthMatchesGeometry(t *testing.T) {
	s, err := Generate(DefaultGenConfig())
	if err != nil {
		t.Fatal(err)
	}
	g := s.Graphs[route.ModeWalk]
	for _, n := range g.Nodes() {
		for _, m := range g.Nodes() {
			e, err := g.Edge(n.ID, m.ID)
			if err != nil {
				continue
			}
			want := 0.0
			if e.Geometry == nil {
				want = planar.Distance(n.Point, m.Point)
			} else {
				for i := 1; i < len(e.Geometry); i++ {
					want += planar.Distance(e.Geometry[i-1], e.Geometry[i])
				}
			}
			if math.Abs(e.Length-want) > 1e-6 {
				t.Fatalf("edge (%d,%d): length %v, geometry length %v", n.ID, m.ID, e.Length, want)
			}
		}
	}
}

func TestResidentsHaveHomes(t *testing.T) {
	s, err := Generate(DefaultGenConfig())
	if err != nil {
		t.Fatal(err)
	}
	locs := make(map[string]bool, len(s.Locations))
	for _, l := range s.Locations {
		locs[l.Name] = true
	}
	if len(s.Residents) == 0 {
		t.Fatal("no residents generated")
	}
	for _, r := range s.Residents {
		if !locs[r.Home] {
			t.Fatalf("resident %s has unknown home %q", r.Name, r.Home)
		}
	}
}
