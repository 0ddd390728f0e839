package registry

import (
	"github.com/flowengine/flowengine/engerr"
	"github.com/flowengine/flowengine/graph"
	"github.com/flowengine/flowengine/graphdef"
	"github.com/flowengine/flowengine/value"
)

// Assemble builds a live graph.Graph from a Definition: it resolves edges
// (explicit or legacy auto-binding, spec §4.4), instantiates nodes via
// Build, and wires the resolved edges into the graph. The returned
// defaults map carries each node's inline defaults for scheduler input
// collection (spec §4.8).
func (r *Registry) Assemble(def *graphdef.Definition) (*graph.Graph, map[string]map[string]value.Value, error) {
	edges, err := def.ResolveEdges()
	if err != nil {
		return nil, nil, err
	}

	built, err := r.Build(def)
	if err != nil {
		return nil, nil, err
	}

	g := graph.New()
	// Preserve definition order for the scheduler's insertion-order
	// tie-breaker (spec §4.7).
	for _, nd := range def.Nodes {
		n := built.Nodes[nd.ID]
		if err := g.AddNode(n); err != nil {
			return nil, nil, &engerr.ValidationError{NodeID: nd.ID, Reason: err.Error()}
		}
	}
	for _, e := range edges {
		g.AddEdge(graph.Edge{
			FromNode: e.FromNodeID, FromPort: e.FromPort,
			ToNode: e.ToNodeID, ToPort: e.ToPort,
		})
	}

	return g, built.Defaults, nil
}
