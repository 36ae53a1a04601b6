// Package network provides the per-mode transport graph: nearest-node lookup,
// edge traversal cost, ranked path planning, and time-stepped partial-edge
// traversal with position interpolation.
package network

import (
	"strings"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// NodeID identifies a node within one mode's graph.
type NodeID = int64

// Node is a point in a transport graph with projected 2D coordinates.
type Node struct {
	ID    NodeID
	Point orb.Point
}

// Edge is a directed connection between two nodes.
//
// MaxSpeed holds the edge's declared speed limits (e.g. "30 mph"); edges at a
// limit-change point can declare more than one. Geometry is an optional explicit
// polyline; when empty the edge is a straight line between its endpoints.
type Edge struct {
	U, V     NodeID
	Length   float64 // meters
	MaxSpeed []string
	Geometry orb.LineString
	Highway  string // road classification, e.g. "residential"
}

// RoadType is the value-equal comfort cache key for an edge: its highway
// classification plus the raw speed-limit string.
type RoadType struct {
	Highway  string
	MaxSpeed string
}

// RoadType returns the cache key describing this edge's kind of road.
func (e *Edge) RoadType() RoadType {
	return RoadType{Highway: e.Highway, MaxSpeed: strings.Join(e.MaxSpeed, ";")}
}

// Graph is a directed multi-edge graph. Parallel edges between the same node
// pair are accepted but only the first one added (the primary) is used by
// traversal and planning.
type Graph struct {
	nodes []Node
	byID  map[NodeID]int        // node ID → index into nodes
	out   map[NodeID][]*Edge    // outgoing primary edges, insertion order
	pair  map[[2]NodeID]*Edge   // (u, v) → primary edge
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		byID: make(map[NodeID]int),
		out:  make(map[NodeID][]*Edge),
		pair: make(map[[2]NodeID]*Edge),
	}
}

// AddNode adds a node to the graph. Adding a duplicate ID is an error.
func (g *Graph) AddNode(id NodeID, pt orb.Point) error {
	if _, exists := g.byID[id]; exists {
		return errors.Errorf("node %d already exists", id)
	}
	g.byID[id] = len(g.nodes)
	g.nodes = append(g.nodes, Node{ID: id, Point: pt})
	return nil
}

// AddEdge adds a directed edge. Both endpoints must already exist. A second
// edge for the same (u, v) pair is silently dropped; the first one added
// stays the primary and is the only edge queries ever see.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.byID[e.U]; !ok {
		return errors.Errorf("edge (%d,%d): source node not found", e.U, e.V)
	}
	if _, ok := g.byID[e.V]; !ok {
		return errors.Errorf("edge (%d,%d): target node not found", e.U, e.V)
	}
	key := [2]NodeID{e.U, e.V}
	if _, dup := g.pair[key]; dup {
		return nil // keep the primary
	}
	stored := e
	g.pair[key] = &stored
	g.out[e.U] = append(g.out[e.U], &stored)
	return nil
}

// Edge returns the primary edge from u to v. A missing edge on a path the
// caller believes exists indicates malformed input data and is surfaced as a
// hard error.
func (g *Graph) Edge(u, v NodeID) (*Edge, error) {
	e, ok := g.pair[[2]NodeID{u, v}]
	if !ok {
		return nil, errors.Errorf("no edge from %d to %d", u, v)
	}
	return e, nil
}

// Node returns the node with the given ID.
func (g *Graph) Node(id NodeID) (Node, error) {
	idx, ok := g.byID[id]
	if !ok {
		return Node{}, errors.Errorf("node %d not found", id)
	}
	return g.nodes[idx], nil
}

// Nodes returns the graph's nodes in insertion order.
func (g *Graph) Nodes() []Node {
	return g.nodes
}

// outgoing returns u's outgoing primary edges in insertion order.
func (g *Graph) outgoing(u NodeID) []*Edge {
	return g.out[u]
}
