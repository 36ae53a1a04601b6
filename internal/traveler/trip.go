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

// pathOption is a concrete candidate: a mode, the planned node path, and the
// network estimate shown to the oracle.
type pathOption struct {
	mode route.Mode
	path []network.NodeID
	est  float64
}

// startTrip gathers candidate routes across available modes, asks the oracle
// to choose, and switches to traveling.
func (t *Traveler) startTrip(ctx context.Context, w World, now clock.Clock, day int, dest string, startTime clock.Clock) error {
	destCoords, ok := w.LocationCoords(dest)
	if !ok {
		slog.Warn("destination has no coordinates", "traveler", t.Name, "destination", dest)
		return nil
	}

	options, samePair, err := t.gatherOptions(w, destCoords)
	if err != nil {
		return err
	}
	if len(options) == 0 {
		if samePair {
			// Origin and destination share a nearest node: nothing to
			// traverse, the traveler is effectively already there.
			t.Location = dest
			t.Position = destCoords
			return nil
		}
		slog.Warn("no route to destination, abandoning action",
			"traveler", t.Name, "destination", dest)
		return nil
	}

	annotated := make([]oracle.Candidate, len(options))
	for i, opt := range options {
		c := oracle.Candidate{Mode: opt.mode, EstimatedTime: opt.est}
		if e := t.Memory.Get(route.Key(opt.mode, opt.path)); e != nil {
			c.Known = true
			c.Count = e.Count
			c.MeanTime = e.TravelTime
			if e.Active() {
				c.MeanComfort = e.Comfort
				c.HasComfort = true
			}
		}
		annotated[i] = c
	}

	idx, justification := t.advisor.ChooseRoute(ctx, t.persona(), t.Location, dest, annotated)
	chosen := options[idx]
	t.Memory.RecordChoice(memory.ModeChoice{
		Day:           day,
		Time:          now,
		Origin:        t.Location,
		Destination:   dest,
		Mode:          chosen.mode,
		Justification: justification,
	})

	n := w.Network(chosen.mode)
	startCoords, err := n.NodeCoords(chosen.path[0])
	if err != nil {
		return err
	}
	distance, err := n.PathLength(chosen.path)
	if err != nil {
		return err
	}

	r := route.New(chosen.mode, chosen.path)
	// A trip nominally starting mid-tick begins traversal partway through the
	// tick: a signed offset carries the difference into the first traversal.
	r.Progress.Offset = w.TickMinutes() - now.TimeTo(startTime)

	t.trip = &route.Trip{Origin: t.Location, Destination: dest, StartTime: startTime}
	t.current = &r
	t.entry = t.Memory.InitOrGet(chosen.mode, r.Key())
	t.distance = distance
	t.startDay = day
	t.Position = startCoords
	t.State = StateTraveling

	slog.Debug("trip started",
		"traveler", t.Name, "origin", t.trip.Origin, "destination", dest,
		"mode", chosen.mode, "start", startTime.String())
	return nil
}

// gatherOptions draws up to candidatesPerMode ranked paths from each mode the
// traveler has access to. samePair reports whether any mode resolved origin
// and destination to the same nearest node.
func (t *Traveler) gatherOptions(w World, destCoords orb.Point) ([]pathOption, bool, error) {
	var options []pathOption
	samePair := false

	for _, m := range t.availableModes() {
		n := w.Network(m)
		source, err := n.NearestNode(t.Position)
		if err != nil {
			slog.Warn("nearest-node lookup failed", "traveler", t.Name, "mode", m, "error", err)
			continue
		}
		target, err := n.NearestNode(destCoords)
		if err != nil {
			continue
		}
		if source == target {
			samePair = true
			continue
		}

		it := n.PlanPaths(source, target)
		for k := 0; k < candidatesPerMode; k++ {
			path, ok := it.Next()
			if !ok {
				break
			}
			dur, err := n.PathDuration(path, t.speedFor(m))
			if err != nil {
				return nil, false, err
			}
			options = append(options, pathOption{
				mode: m,
				path: path,
				est:  dur + w.ExtraTime(m),
			})
		}
	}
	return options, samePair, nil
}

// move advances the active route by budget minutes, sampling comfort for the
// edges crossed, and handles arrival.
func (t *Traveler) move(ctx context.Context, w World, now clock.Clock, day int, budget float64) error {
	n := w.Network(t.current.Mode)
	speed := t.speedFor(t.current.Mode)
	before := t.current.Progress

	after, pos, leftover, err := n.Traverse(before, budget, speed)
	if err != nil {
		return err
	}

	if t.current.Mode.Active() {
		if err := t.sampleComfort(ctx, w, n, before.Path, after.Path, pos == nil); err != nil {
			return err
		}
	}

	if pos != nil {
		t.current.Progress = after
		t.Position = *pos
		return nil
	}
	if err := t.arrive(w, now, day, leftover); err != nil {
		return err
	}
	// Arriving early in the tick may make the next planned action imminent
	// already; chain into it so back-to-back trips don't lose a tick.
	if leftover > 0 {
		return t.maybeStartNextAction(ctx, w, now, day)
	}
	return nil
}

// sampleComfort rates every edge whose start node was consumed this tick,
// using the memoized per-(road type, mode) score or asking the oracle on
// first encounter. Each sample is weighted by edge length for the trip-level
// average. Driving trips never sample; car comfort is modelled as invariant.
func (t *Traveler) sampleComfort(ctx context.Context, w World, n *network.Network, oldPath, newPath []network.NodeID, arrived bool) error {
	crossed := len(oldPath) - 1 // arrival consumes every remaining edge
	if !arrived {
		crossed = 0
		for crossed < len(oldPath) && oldPath[crossed] != newPath[0] {
			crossed++
		}
	}

	mode := t.current.Mode
	for i := 0; i < crossed; i++ {
		e, err := n.Graph().Edge(oldPath[i], oldPath[i+1])
		if err != nil {
			return err
		}
		rt := e.RoadType()
		score, ok := t.Memory.GetComfort(rt, mode)
		if !ok {
			score = t.advisor.RateComfort(ctx, t.persona(), rt, mode)
			t.Memory.StoreComfort(rt, mode, score)
		}
		t.entry.AddComfortSample(float64(score), e.Length)
	}
	return nil
}

// arrive completes the trip: folds the observed duration (and comfort, for
// active modes) into memory, emits the journey record, and chains into the
// next plan action if time is left in the tick.
func (t *Traveler) arrive(w World, now clock.Clock, day int, leftover float64) error {
	endTime, _ := now.Advance(w.TickMinutes() - leftover)
	elapsed := t.trip.StartTime.TimeTo(endTime)
	t.Memory.Complete(t.entry, elapsed)

	destCoords, _ := w.LocationCoords(t.trip.Destination)
	w.RecordJourney(telemetry.Journey{
		Traveler:    t.Name,
		Origin:      t.trip.Origin,
		Destination: t.trip.Destination,
		StartDay:    t.startDay,
		StartTime:   t.trip.StartTime,
		EndDay:      day,
		EndTime:     endTime,
		Duration:    elapsed,
		Mode:        t.current.Mode,
		Distance:    t.distance,
	})
	slog.Debug("trip completed",
		"traveler", t.Name, "destination", t.trip.Destination,
		"mode", t.current.Mode, "minutes", elapsed)

	t.Location = t.trip.Destination
	t.Position = destCoords
	t.trip = nil
	t.current = nil
	t.entry = nil
	t.distance = 0
	t.State = StateWaiting
	return nil
}
