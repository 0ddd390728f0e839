// Package pool implements the data pool (spec C8): values keyed by
// (producing_node_id, output_port_name), plus the per-node input
// collection step the scheduler runs before every Execute/OnUpdate-driven
// Simple pass.
package pool

import (
	"fmt"

	"github.com/flowengine/flowengine/engerr"
	"github.com/flowengine/flowengine/graph"
	"github.com/flowengine/flowengine/node"
	"github.com/flowengine/flowengine/value"
)

type key struct {
	nodeID string
	port   string
}

// Pool stores each node's published outputs. A Pool may chain to a parent:
// reads fall through to the parent when the key is absent locally, and
// writes are always local — this is how tick_pool = parent ∪ {producer
// output} is expressed (spec §4.7 step 2b): later (more local) writes
// shadow earlier (more outer) ones without mutating the outer pool.
type Pool struct {
	parent *Pool
	values map[key]value.Value
}

// New creates a root pool with no parent.
func New() *Pool {
	return &Pool{values: make(map[key]value.Value)}
}

// Child creates a pool that reads through to p but writes only to itself,
// used to build a producer's tick_pool from its visible parent pool.
func (p *Pool) Child() *Pool {
	return &Pool{parent: p, values: make(map[key]value.Value)}
}

// Set publishes a value for (nodeID, port), local to this pool.
func (p *Pool) Set(nodeID, port string, v value.Value) {
	p.values[key{nodeID, port}] = v
}

// SetAll publishes every entry of outputs under nodeID.
func (p *Pool) SetAll(nodeID string, outputs node.Values) {
	for port, v := range outputs {
		p.Set(nodeID, port, v)
	}
}

// Get reads (nodeID, port), falling through to the parent chain.
func (p *Pool) Get(nodeID, port string) (value.Value, bool) {
	for cur := p; cur != nil; cur = cur.parent {
		if v, ok := cur.values[key{nodeID, port}]; ok {
			return v, true
		}
	}
	return value.Value{}, false
}

// CollectInputs runs spec §4.8's input collection step for node n: for each
// declared input port, read the edge source from the pool if one targets
// it, else use the matching inline default, else leave it absent; then run
// the node's default input validator.
func CollectInputs(g *graph.Graph, p *Pool, n node.Node, defaults map[string]value.Value) (node.Values, error) {
	incoming := make(map[string]graph.Edge, len(n.InputPorts()))
	for _, e := range g.EdgesInto(n.ID()) {
		incoming[e.ToPort] = e
	}

	inputs := make(node.Values, len(n.InputPorts()))
	for _, port := range n.InputPorts() {
		if e, ok := incoming[port.Name()]; ok {
			v, ok := p.Get(e.FromNode, e.FromPort)
			if !ok {
				return nil, &engerr.RuntimeError{
					NodeID: n.ID(), Port: port.Name(),
					Reason: fmt.Sprintf("no value published at %s.%s", e.FromNode, e.FromPort),
				}
			}
			inputs[port.Name()] = v
			continue
		}
		if v, ok := defaults[port.Name()]; ok {
			inputs[port.Name()] = v
		}
	}

	if err := node.ValidateInputs(n, inputs); err != nil {
		return nil, &engerr.RuntimeError{NodeID: n.ID(), Reason: err.Error(), Cause: err}
	}
	return inputs, nil
}
