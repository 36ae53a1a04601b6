package network

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// kdTree is a static 2-d tree over node coordinates, built once at network
// construction and read-only thereafter.
type kdTree struct {
	root *kdNode
}

type kdNode struct {
	point       orb.Point
	listIndex   int // index into the graph's node listing, used for tie-breaks
	axis        int // 0 = x, 1 = y
	left, right *kdNode
}

func buildKDTree(nodes []Node) *kdTree {
	entries := make([]*kdNode, len(nodes))
	for i, n := range nodes {
		entries[i] = &kdNode{point: n.Point, listIndex: i}
	}
	return &kdTree{root: buildKDSubtree(entries, 0)}
}

func buildKDSubtree(entries []*kdNode, depth int) *kdNode {
	if len(entries) == 0 {
		return nil
	}
	axis := depth % 2
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].point[axis] < entries[j].point[axis]
	})
	mid := len(entries) / 2
	node := entries[mid]
	node.axis = axis
	node.left = buildKDSubtree(entries[:mid], depth+1)
	node.right = buildKDSubtree(entries[mid+1:], depth+1)
	return node
}

// nearest returns the listing index of the node closest to pt by Euclidean
// distance. Exact ties resolve to the lower listing index (stable but
// arbitrary; real coordinate collisions are vanishingly rare).
func (t *kdTree) nearest(pt orb.Point) int {
	bestIdx := -1
	bestDist := 0.0
	var walk func(n *kdNode)
	walk = func(n *kdNode) {
		if n == nil {
			return
		}
		d := planar.Distance(n.point, pt)
		if bestIdx == -1 || d < bestDist || (d == bestDist && n.listIndex < bestIdx) {
			bestIdx = n.listIndex
			bestDist = d
		}
		diff := pt[n.axis] - n.point[n.axis]
		near, far := n.left, n.right
		if diff > 0 {
			near, far = n.right, n.left
		}
		walk(near)
		// The far side can still hold the winner (or an equal-distance node
		// with a lower index) when the splitting plane is within reach.
		if abs(diff) <= bestDist {
			walk(far)
		}
	}
	walk(t.root)
	return bestIdx
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
