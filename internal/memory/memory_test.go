package memory

import (
	"math"
	"math/rand"
	"testing"

	"github.com/wayfarer-sim/wayfarer/internal/network"
	"github.com/wayfarer-sim/wayfarer/internal/route"
)

func TestRunningAverage(t *testing.T) {
	m := New()
	e := m.InitOrGet(route.ModeDrive, "drive:1-2-3")

	m.Complete(e, 10)
	m.Complete(e, 20)

	if e.Count != 2 {
		t.Errorf("count = %d, want 2", e.Count)
	}
	if math.Abs(e.TravelTime-15) > 1e-9 {
		t.Errorf("mean travel time = %v, want 15", e.TravelTime)
	}
}

// The final mean is independent of the order observations arrive in.
func TestRunningAverageOrderIndependent(t *testing.T) {
	durations := []float64{3, 7.5, 12, 18, 25, 40}
	var sum float64
	for _, d := range durations {
		sum += d
	}
	want := sum / float64(len(durations))

	for trial := 0; trial < 5; trial++ {
		rng := rand.New(rand.NewSource(int64(trial)))
		shuffled := append([]float64(nil), durations...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		m := New()
		e := m.InitOrGet(route.ModeDrive, "drive:9-8")
		for _, d := range shuffled {
			m.Complete(e, d)
		}
		if math.Abs(e.TravelTime-want) > 1e-9 {
			t.Errorf("trial %d: mean = %v, want %v", trial, e.TravelTime, want)
		}
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	m := New()
	if e := m.Get("walk:1-2"); e != nil {
		t.Errorf("expected nil for unknown route, got %+v", e)
	}
}

func TestInitOrGetIdempotent(t *testing.T) {
	m := New()
	a := m.InitOrGet(route.ModeWalk, "walk:1-2")
	b := m.InitOrGet(route.ModeWalk, "walk:1-2")
	if a != b {
		t.Error("InitOrGet created a second entry for the same key")
	}
	if !a.Active() {
		t.Error("walk entry should be active")
	}
	if m.InitOrGet(route.ModeDrive, "drive:1-2").Active() {
		t.Error("drive entry should not be active")
	}
}

func TestActiveComfortWeightedByLength(t *testing.T) {
	m := New()
	e := m.InitOrGet(route.ModeBike, "bike:1-2-3")

	// 8 over 300m and 2 over 100m: trip comfort = (8*300 + 2*100)/400 = 6.5.
	e.AddComfortSample(8, 300)
	e.AddComfortSample(2, 100)
	m.Complete(e, 12)

	if math.Abs(e.Comfort-6.5) > 1e-9 {
		t.Errorf("comfort = %v, want 6.5", e.Comfort)
	}

	// Buffers must be cleared: a second trip with its own samples averages the
	// two trip-level values, not the raw accumulations.
	e.AddComfortSample(4, 500)
	m.Complete(e, 14)

	if math.Abs(e.Comfort-(6.5+4)/2) > 1e-9 {
		t.Errorf("comfort after second trip = %v, want %v", e.Comfort, (6.5+4)/2)
	}
	if math.Abs(e.TravelTime-13) > 1e-9 {
		t.Errorf("travel time = %v, want 13", e.TravelTime)
	}
}

// A completed trip without comfort samples must not dilute the comfort mean.
func TestComfortMeanUnaffectedBySamplelessTrips(t *testing.T) {
	m := New()
	e := m.InitOrGet(route.ModeWalk, "walk:1-2")

	m.Complete(e, 10)
	m.Complete(e, 12)

	e.AddComfortSample(8, 100)
	m.Complete(e, 11)

	if math.Abs(e.Comfort-8) > 1e-9 {
		t.Errorf("comfort = %v, want 8", e.Comfort)
	}
	if e.Count != 3 {
		t.Errorf("count = %d, want 3", e.Count)
	}

	// Travel time still averages over every completed trip.
	if math.Abs(e.TravelTime-11) > 1e-9 {
		t.Errorf("travel time = %v, want 11", e.TravelTime)
	}
}

func TestComfortSamplesIgnoredForPassiveEntry(t *testing.T) {
	m := New()
	e := m.InitOrGet(route.ModeDrive, "drive:1-2")
	e.AddComfortSample(9, 100)
	m.Complete(e, 5)
	if e.Comfort != 0 {
		t.Errorf("drive entry comfort = %v, want 0", e.Comfort)
	}
}

func TestComfortCacheIdempotent(t *testing.T) {
	m := New()
	rt := network.RoadType{Highway: "residential", MaxSpeed: "20 mph"}

	if _, ok := m.GetComfort(rt, route.ModeBike); ok {
		t.Fatal("unexpected cache hit before store")
	}
	m.StoreComfort(rt, route.ModeBike, 7)

	for i := 0; i < 2; i++ {
		score, ok := m.GetComfort(rt, route.ModeBike)
		if !ok || score != 7 {
			t.Errorf("lookup %d = (%d, %v), want (7, true)", i, score, ok)
		}
	}

	// Same road type, other mode: separate slot.
	if _, ok := m.GetComfort(rt, route.ModeWalk); ok {
		t.Error("walk score should not be cached yet")
	}

	// Value-equal key constructed independently still hits.
	same := network.RoadType{Highway: "residential", MaxSpeed: "20 mph"}
	if score, ok := m.GetComfort(same, route.ModeBike); !ok || score != 7 {
		t.Error("value-equal road type did not hit the cache")
	}
}
