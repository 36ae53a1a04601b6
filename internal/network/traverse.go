package network

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
)

// Progress is the remaining portion of a planned path: the nodes still ahead of
// the traveler and the elapsed minutes into the first edge. Traverse returns a
// fresh value each tick rather than mutating in place, so in-flight routes can
// be inspected safely.
type Progress struct {
	Path   []NodeID
	Offset float64 // minutes into the first edge of Path
}

// Remaining returns the traversal time left on the path, in minutes.
func (n *Network) Remaining(p Progress, speed float64) (float64, error) {
	total, err := n.PathDuration(p.Path, speed)
	if err != nil {
		return 0, err
	}
	return total - p.Offset, nil
}

// Traverse moves along the path for budget minutes. speed (km/h) matters only
// for walk/bike networks.
//
// If the path's remaining time exceeds the budget, the returned Progress starts
// at the edge the traveler ends up on, the position is interpolated along that
// edge's geometry, and leftover is 0. Otherwise the traveler arrives: the
// position is nil (the caller substitutes the destination's canonical
// coordinates) and leftover is the unused part of the budget. A budget that
// covers the remaining time exactly counts as arrival.
func (n *Network) Traverse(p Progress, budget, speed float64) (Progress, *orb.Point, float64, error) {
	total, err := n.PathDuration(p.Path, speed)
	if err != nil {
		return Progress{}, nil, 0, err
	}
	elapsed := budget + p.Offset
	if elapsed >= total {
		last := p.Path[len(p.Path)-1]
		return Progress{Path: []NodeID{last}}, nil, elapsed - total, nil
	}

	var cum float64
	for i := 0; i < len(p.Path)-1; i++ {
		e, err := n.g.Edge(p.Path[i], p.Path[i+1])
		if err != nil {
			return Progress{}, nil, 0, errors.Wrap(err, "traverse")
		}
		edgeTime := n.cost.edgeTime(e, speed)
		if cum+edgeTime > elapsed {
			within := elapsed - cum
			pos, err := n.pointAlongEdge(e, within/edgeTime)
			if err != nil {
				return Progress{}, nil, 0, err
			}
			return Progress{Path: p.Path[i:], Offset: within}, &pos, 0, nil
		}
		cum += edgeTime
	}
	// Unreachable: elapsed < total guarantees the loop finds an edge.
	return Progress{}, nil, 0, errors.New("traverse: ran off end of path")
}

// pointAlongEdge interpolates a position along the edge's geometry. progress is
// the fraction of the edge already covered, e.g. 0.4 means 40% along.
func (n *Network) pointAlongEdge(e *Edge, progress float64) (orb.Point, error) {
	line := e.Geometry
	if len(line) < 2 {
		u, err := n.g.Node(e.U)
		if err != nil {
			return orb.Point{}, err
		}
		v, err := n.g.Node(e.V)
		if err != nil {
			return orb.Point{}, err
		}
		line = orb.LineString{u.Point, v.Point}
	}
	return interpolate(line, progress), nil
}

// interpolate returns the point the given fraction of the way along a polyline.
func interpolate(line orb.LineString, frac float64) orb.Point {
	if frac <= 0 {
		return line[0]
	}
	if frac >= 1 {
		return line[len(line)-1]
	}
	target := frac * planar.Length(line)
	var walked float64
	for i := 0; i < len(line)-1; i++ {
		seg := planar.Distance(line[i], line[i+1])
		if walked+seg >= target && seg > 0 {
			t := (target - walked) / seg
			return orb.Point{
				line[i][0] + t*(line[i+1][0]-line[i][0]),
				line[i][1] + t*(line[i+1][1]-line[i][1]),
			}
		}
		walked += seg
	}
	return line[len(line)-1]
}
