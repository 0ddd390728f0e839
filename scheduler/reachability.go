package scheduler

import (
	"sort"

	"github.com/flowengine/flowengine/graph"
	"github.com/flowengine/flowengine/node"
)

// producers returns the ids of every EventProducer node in g, in insertion
// order.
func producers(g *graph.Graph) []string {
	var out []string
	for _, n := range g.Nodes() {
		if n.NodeKind() == node.EventProducer {
			out = append(out, n.ID())
		}
	}
	return out
}

// downstream computes the forward-edge closure from nodeID, excluding
// nodeID itself (spec §4.7).
func downstream(g *graph.Graph, nodeID string) map[string]bool {
	seen := make(map[string]bool)
	var visit func(string)
	visit = func(id string) {
		for _, e := range g.EdgesFrom(id) {
			if seen[e.ToNode] {
				continue
			}
			seen[e.ToNode] = true
			visit(e.ToNode)
		}
	}
	visit(nodeID)
	return seen
}

// baseLayer returns the ids of every node not reachable from any producer,
// in g's topological order.
func baseLayer(order []string, g *graph.Graph) []string {
	reachable := make(map[string]bool)
	for _, p := range producers(g) {
		for id := range downstream(g, p) {
			reachable[id] = true
		}
	}
	var base []string
	for _, id := range order {
		if !reachable[id] {
			base = append(base, id)
		}
	}
	return base
}

// roots returns the EventProducers with no other EventProducer upstream of
// them (i.e. not in any other producer's downstream set), in topological
// order.
func roots(order []string, g *graph.Graph) []string {
	allProducers := producers(g)
	producerSet := make(map[string]bool, len(allProducers))
	for _, p := range allProducers {
		producerSet[p] = true
	}

	downstreamOfOtherProducer := make(map[string]bool)
	for _, p := range allProducers {
		for id := range downstream(g, p) {
			if id != p && producerSet[id] {
				downstreamOfOtherProducer[id] = true
			}
		}
	}

	var out []string
	for _, id := range order {
		if producerSet[id] && !downstreamOfOtherProducer[id] {
			out = append(out, id)
		}
	}
	return out
}

// immediateSubRoots returns the EventProducers inside downstream(producer)
// that have no EventProducer ancestor within that set other than producer
// itself — the nested producers driven recursively at each of producer's
// ticks (spec §4.7 step 2b).
func immediateSubRoots(order []string, g *graph.Graph, producer string) []string {
	ds := downstream(g, producer)

	var subProducers []string
	for id := range ds {
		if n, ok := g.NodeByID(id); ok && n.NodeKind() == node.EventProducer {
			subProducers = append(subProducers, id)
		}
	}

	shadowed := make(map[string]bool)
	for _, p := range subProducers {
		for id := range downstream(g, p) {
			if id == p {
				continue
			}
			for _, q := range subProducers {
				if q == id {
					shadowed[id] = true
				}
			}
		}
	}

	var out []string
	for _, p := range subProducers {
		if !shadowed[p] {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		oi, oj := indexOf(order, out[i]), indexOf(order, out[j])
		return oi < oj
	})
	return out
}

func indexOf(order []string, id string) int {
	for i, v := range order {
		if v == id {
			return i
		}
	}
	return -1
}
