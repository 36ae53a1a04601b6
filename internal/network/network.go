package network

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// Network is a mode-specific graph query service. The graph and spatial index
// are never mutated after construction, so a Network is safe to share.
type Network struct {
	g    *Graph
	tree *kdTree
	cost coster
}

// NewDriveNetwork wraps a drive graph. defaultLimit (km/h) applies to edges
// with no declared speed limit; speedFactor scales limits down to realistic
// car speeds.
func NewDriveNetwork(g *Graph, defaultLimit, speedFactor float64) *Network {
	return &Network{
		g:    g,
		tree: buildKDTree(g.Nodes()),
		cost: driveCost{defaultLimit: defaultLimit, speedFactor: speedFactor},
	}
}

// NewActiveNetwork wraps a walking or cycling graph. Edge times depend on the
// traveler's own speed; there is no concept of a speed limit.
func NewActiveNetwork(g *Graph) *Network {
	return &Network{
		g:    g,
		tree: buildKDTree(g.Nodes()),
		cost: activeCost{},
	}
}

// Graph exposes the underlying graph for read-only queries.
func (n *Network) Graph() *Graph {
	return n.g
}

// NearestNode returns the graph node closest to the given coordinates.
func (n *Network) NearestNode(pt orb.Point) (NodeID, error) {
	idx := n.tree.nearest(pt)
	if idx < 0 {
		return 0, errors.New("nearest node query on empty graph")
	}
	return n.g.Nodes()[idx].ID, nil
}

// NodeCoords returns the coordinates of the given node.
func (n *Network) NodeCoords(id NodeID) (orb.Point, error) {
	node, err := n.g.Node(id)
	if err != nil {
		return orb.Point{}, err
	}
	return node.Point, nil
}

// EdgeTime returns the traversal time of e in minutes. speed (km/h) is used
// only by walk/bike networks.
func (n *Network) EdgeTime(e *Edge, speed float64) float64 {
	return n.cost.edgeTime(e, speed)
}

// PathDuration returns the total traversal time of the path in minutes.
func (n *Network) PathDuration(path []NodeID, speed float64) (float64, error) {
	var total float64
	for i := 0; i < len(path)-1; i++ {
		e, err := n.g.Edge(path[i], path[i+1])
		if err != nil {
			return 0, errors.Wrap(err, "path duration")
		}
		total += n.cost.edgeTime(e, speed)
	}
	return total, nil
}

// PathLength returns the total length of the path in meters.
func (n *Network) PathLength(path []NodeID) (float64, error) {
	var total float64
	for i := 0; i < len(path)-1; i++ {
		e, err := n.g.Edge(path[i], path[i+1])
		if err != nil {
			return 0, errors.Wrap(err, "path length")
		}
		total += e.Length
	}
	return total, nil
}
