package engine

import (
	"context"
	"testing"

	"github.com/paulmach/orb"

	"github.com/wayfarer-sim/wayfarer/internal/clock"
	"github.com/wayfarer-sim/wayfarer/internal/network"
	"github.com/wayfarer-sim/wayfarer/internal/oracle"
	"github.com/wayfarer-sim/wayfarer/internal/route"
	"github.com/wayfarer-sim/wayfarer/internal/telemetry"
	"github.com/wayfarer-sim/wayfarer/internal/traveler"
)

// twoNodeNets builds identical 500 m two-node graphs for every mode.
func twoNodeNets(t *testing.T) map[route.Mode]*network.Network {
	t.Helper()
	build := func() *network.Graph {
		g := network.NewGraph()
		if err := g.AddNode(1, orb.Point{0, 0}); err != nil {
			t.Fatal(err)
		}
		if err := g.AddNode(2, orb.Point{500, 0}); err != nil {
			t.Fatal(err)
		}
		for _, e := range []network.Edge{
			{U: 1, V: 2, Length: 500, Highway: "residential"},
			{U: 2, V: 1, Length: 500, Highway: "residential"},
		} {
			if err := g.AddEdge(e); err != nil {
				t.Fatal(err)
			}
		}
		return g
	}
	cfg := DefaultConfig()
	return map[route.Mode]*network.Network{
		route.ModeWalk:  network.NewActiveNetwork(build()),
		route.ModeBike:  network.NewActiveNetwork(build()),
		route.ModeDrive: network.NewDriveNetwork(build(), cfg.DefaultSpeedLimit, cfg.CarSpeedFactor),
	}
}

func testLocations() []Location {
	return []Location{
		{Name: "Home", Point: orb.Point{0, 0}},
		{Name: "Work", Point: orb.Point{500, 0}},
	}
}

func TestRunCompletesConfiguredDays(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Days = 2

	// A nil responder leaves the advisor on deterministic fallbacks, so the
	// run needs no oracle.
	advisor := oracle.NewAdvisor(nil)
	travelers := []*traveler.Traveler{
		traveler.New("Ada", "Home", "", orb.Point{0, 0}, advisor),
		traveler.New("Ben", "Home", "", orb.Point{0, 0}, advisor),
	}

	sink := &telemetry.MemorySink{}
	m, err := NewModel(cfg, twoNodeNets(t), testLocations(), travelers, sink)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if m.Day() != 2 {
		t.Fatalf("day = %d, want 2", m.Day())
	}
	if !m.Now().Equal(clock.New(0, 0)) {
		t.Fatalf("clock = %s, want 00:00", m.Now())
	}
}

func TestStepAdvancesClockAndRollsDay(t *testing.T) {
	cfg := DefaultConfig()
	m, err := NewModel(cfg, twoNodeNets(t), testLocations(), nil, &telemetry.MemorySink{})
	if err != nil {
		t.Fatal(err)
	}

	if err := m.Step(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !m.Now().Equal(clock.New(4, 5)) {
		t.Fatalf("clock after one tick = %s, want 04:05", m.Now())
	}
	if m.Day() != 0 {
		t.Fatalf("day = %d, want 0", m.Day())
	}

	// 04:05 to midnight is 1195 minutes, 239 more ticks.
	for i := 0; i < 239; i++ {
		if err := m.Step(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if m.Day() != 1 {
		t.Fatalf("day after rollover = %d, want 1", m.Day())
	}
	if !m.Now().Equal(clock.New(0, 0)) {
		t.Fatalf("clock after rollover = %s, want 00:00", m.Now())
	}
}

func TestNewModelValidation(t *testing.T) {
	cfg := DefaultConfig()
	nets := twoNodeNets(t)

	delete(nets, route.ModeBike)
	if _, err := NewModel(cfg, nets, testLocations(), nil, &telemetry.MemorySink{}); err == nil {
		t.Fatal("missing mode network accepted")
	}

	dup := []Location{
		{Name: "Home", Point: orb.Point{0, 0}},
		{Name: "Home", Point: orb.Point{500, 0}},
	}
	if _, err := NewModel(cfg, twoNodeNets(t), dup, nil, &telemetry.MemorySink{}); err == nil {
		t.Fatal("duplicate location accepted")
	}
}

func TestOccupancyCountsEnRouteTravelers(t *testing.T) {
	cfg := DefaultConfig()
	advisor := oracle.NewAdvisor(nil)
	tr := traveler.New("Ada", "Home", "", orb.Point{0, 0}, advisor)
	m, err := NewModel(cfg, twoNodeNets(t), testLocations(), []*traveler.Traveler{tr}, &telemetry.MemorySink{})
	if err != nil {
		t.Fatal(err)
	}
	occ := m.Occupancy()
	if occ[route.ModeWalk] != 0 || occ[route.ModeBike] != 0 || occ[route.ModeDrive] != 0 {
		t.Fatalf("occupancy of idle roster = %v", occ)
	}
}
