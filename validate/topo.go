package validate

import (
	"sort"

	"github.com/flowengine/flowengine/engerr"
	"github.com/flowengine/flowengine/graph"
)

// TopologicalOrder implements spec §4.7's indegree-elimination pass: build
// indegree per node counting only input ports with an incoming edge, seed a
// ready queue with indegree-zero nodes in insertion order, repeatedly pop
// the head, append to order, and decrement indegree of nodes on the other
// end of each outgoing edge; newly ready nodes join the queue at their
// insertion rank. If fewer nodes are ordered than exist, the graph has a
// cycle.
func TopologicalOrder(g *graph.Graph) ([]string, error) {
	ids := g.NodeIDs()
	rank := make(map[string]int, len(ids))
	indegree := make(map[string]int, len(ids))
	for i, id := range ids {
		rank[id] = i
		indegree[id] = 0
	}
	for _, e := range g.Edges() {
		indegree[e.ToNode]++
	}

	// Seed: indegree-zero nodes, in insertion order.
	var ready []string
	for _, id := range ids {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]string, 0, len(ids))
	for len(ready) > 0 {
		cur := ready[0]
		ready = ready[1:]
		order = append(order, cur)

		var newlyReady []string
		for _, e := range g.EdgesFrom(cur) {
			indegree[e.ToNode]--
			if indegree[e.ToNode] == 0 {
				newlyReady = append(newlyReady, e.ToNode)
			}
		}
		sort.Slice(newlyReady, func(i, j int) bool { return rank[newlyReady[i]] < rank[newlyReady[j]] })
		ready = mergeSorted(ready, newlyReady, rank)
	}

	if len(order) < len(ids) {
		return nil, &engerr.ValidationError{Reason: "cycle detected"}
	}
	return order, nil
}

// mergeSorted merges two slices already sorted by insertion rank, used to
// keep the ready queue in insertion order as new nodes become ready
// mid-pass.
func mergeSorted(a, b []string, rank map[string]int) []string {
	if len(b) == 0 {
		return a
	}
	out := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if rank[a[i]] <= rank[b[j]] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
