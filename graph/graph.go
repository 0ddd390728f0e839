// Package graph is the live, in-memory graph that the registry materializes
// from a graphdef.Definition, and that validate and scheduler operate on.
// It plays the role the teacher's BasicGraph plays for the envelope model,
// adapted to the spec's typed-port edge model (spec §3, §4.4).
package graph

import (
	"fmt"

	"github.com/flowengine/flowengine/node"
)

// Edge is a directed, single-consumer connection between two ports (spec
// §3): at most one edge may target a given (ToNode, ToPort).
type Edge struct {
	FromNode string
	FromPort string
	ToNode   string
	ToPort   string
}

// Graph is an unordered collection of nodes keyed by id plus the resolved
// edge set (spec §3's "Graph (live)"). The stop signal and data pool are
// scheduler-owned, not part of this type, since the data pool exists only
// for the duration of a single run and the same Graph can in principle be
// re-run.
type Graph struct {
	nodes     map[string]node.Node
	nodeOrder []string // insertion order, used as the tie-breaker in topological sort
	edges     []Edge
}

// New builds an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]node.Node)}
}

// AddNode adds a node to the graph. Returns an error if a node with the
// same id already exists (spec invariant: "Node ids are unique").
func (g *Graph) AddNode(n node.Node) error {
	if n == nil {
		return fmt.Errorf("graph: cannot add nil node")
	}
	if _, exists := g.nodes[n.ID()]; exists {
		return fmt.Errorf("graph: duplicate node id %q", n.ID())
	}
	g.nodes[n.ID()] = n
	g.nodeOrder = append(g.nodeOrder, n.ID())
	return nil
}

// AddEdge appends e to the edge set without validating it; validation is
// validate.Graph's job, run once before every execution (spec §4.6).
func (g *Graph) AddEdge(e Edge) {
	g.edges = append(g.edges, e)
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []node.Node {
	out := make([]node.Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		out = append(out, g.nodes[id])
	}
	return out
}

// NodeIDs returns all node ids in insertion order.
func (g *Graph) NodeIDs() []string {
	out := make([]string, len(g.nodeOrder))
	copy(out, g.nodeOrder)
	return out
}

// NodeByID retrieves a node by id.
func (g *Graph) NodeByID(id string) (node.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Edges returns all edges.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// EdgesInto returns the edges targeting nodeID's input ports (at most one
// per input port, once validated).
func (g *Graph) EdgesInto(nodeID string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.ToNode == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// EdgesFrom returns the edges whose source is nodeID.
func (g *Graph) EdgesFrom(nodeID string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.FromNode == nodeID {
			out = append(out, e)
		}
	}
	return out
}
