package network

import (
	"container/heap"
	"fmt"
	"math"
)

// PathIter lazily yields paths from source to target, cheapest first under the
// mode's cost function. Producing the k-th path costs more than the (k-1)-th,
// so callers should only draw as many paths as they need.
type PathIter struct {
	n              *Network
	source, target NodeID
	found          [][]NodeID
	candidates     candidateHeap
	seen           map[string]bool
	exhausted      bool
}

// PlanPaths returns a ranked path iterator. Re-invoking restarts the sequence.
func (n *Network) PlanPaths(source, target NodeID) *PathIter {
	return &PathIter{
		n:      n,
		source: source,
		target: target,
		seen:   make(map[string]bool),
	}
}

// Next returns the next-cheapest path, or false when no further path exists.
func (it *PathIter) Next() ([]NodeID, bool) {
	if it.exhausted {
		return nil, false
	}

	if len(it.found) == 0 {
		best, _, ok := it.n.shortest(it.source, it.target, nil, nil)
		if !ok {
			it.exhausted = true
			return nil, false
		}
		it.found = append(it.found, best)
		it.seen[pathKey(best)] = true
		return best, true
	}

	// Yen: spur off every prefix of the previously yielded path.
	prev := it.found[len(it.found)-1]
	for i := 0; i < len(prev)-1; i++ {
		spurNode := prev[i]
		rootPath := prev[: i+1 : i+1]

		bannedEdges := make(map[[2]NodeID]bool)
		for _, p := range it.found {
			if len(p) > i+1 && sameNodes(p[:i+1], rootPath) {
				bannedEdges[[2]NodeID{p[i], p[i+1]}] = true
			}
		}
		bannedNodes := make(map[NodeID]bool)
		for _, id := range rootPath[:i] {
			bannedNodes[id] = true
		}

		spurPath, _, ok := it.n.shortest(spurNode, it.target, bannedEdges, bannedNodes)
		if !ok {
			continue
		}
		total := append(rootPath, spurPath[1:]...)
		key := pathKey(total)
		if it.seen[key] {
			continue
		}
		cost, err := it.n.pathWeight(total)
		if err != nil {
			continue
		}
		it.seen[key] = true
		heap.Push(&it.candidates, rankedPath{nodes: total, cost: cost})
	}

	if it.candidates.Len() == 0 {
		it.exhausted = true
		return nil, false
	}
	next := heap.Pop(&it.candidates).(rankedPath)
	it.found = append(it.found, next.nodes)
	return next.nodes, true
}

func (n *Network) pathWeight(path []NodeID) (float64, error) {
	var total float64
	for i := 0; i < len(path)-1; i++ {
		e, err := n.g.Edge(path[i], path[i+1])
		if err != nil {
			return 0, err
		}
		total += n.cost.weight(e)
	}
	return total, nil
}

// shortest runs Dijkstra from source to target, honoring banned edges and
// nodes. Returns the node path, its cost, and whether a path exists.
func (n *Network) shortest(source, target NodeID, bannedEdges map[[2]NodeID]bool, bannedNodes map[NodeID]bool) ([]NodeID, float64, bool) {
	dist := map[NodeID]float64{source: 0}
	prev := make(map[NodeID]NodeID)
	visited := make(map[NodeID]bool)

	pq := &nodeQueue{{id: source, priority: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*nodeItem)
		u := item.id
		if visited[u] {
			continue
		}
		visited[u] = true
		if u == target {
			break
		}
		for _, e := range n.g.outgoing(u) {
			if bannedNodes[e.V] || bannedEdges[[2]NodeID{e.U, e.V}] {
				continue
			}
			alt := dist[u] + n.cost.weight(e)
			if old, ok := dist[e.V]; !ok || alt < old {
				dist[e.V] = alt
				prev[e.V] = u
				heap.Push(pq, &nodeItem{id: e.V, priority: alt})
			}
		}
	}

	d, ok := dist[target]
	if !ok || !visited[target] || math.IsInf(d, 1) {
		return nil, 0, false
	}
	path := []NodeID{target}
	for at := target; at != source; {
		at = prev[at]
		path = append([]NodeID{at}, path...)
	}
	return path, d, true
}

func sameNodes(a, b []NodeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func pathKey(path []NodeID) string {
	key := ""
	for _, id := range path {
		key += fmt.Sprintf("%d,", id)
	}
	return key
}

// rankedPath is a candidate in Yen's algorithm, ordered by cost.
type rankedPath struct {
	nodes []NodeID
	cost  float64
}

type candidateHeap []rankedPath

func (h candidateHeap) Len() int      { return len(h) }
func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h candidateHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	return pathKey(h[i].nodes) < pathKey(h[j].nodes)
}

func (h *candidateHeap) Push(x any) { *h = append(*h, x.(rankedPath)) }
func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// nodeItem and nodeQueue implement the Dijkstra priority queue.
type nodeItem struct {
	id       NodeID
	priority float64
}

type nodeQueue []*nodeItem

func (pq nodeQueue) Len() int            { return len(pq) }
func (pq nodeQueue) Less(i, j int) bool  { return pq[i].priority < pq[j].priority }
func (pq nodeQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *nodeQueue) Push(x any)         { *pq = append(*pq, x.(*nodeItem)) }
func (pq *nodeQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
