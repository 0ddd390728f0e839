// Package validate implements the graph validator (spec C6): structural,
// edge, inline-default, required-input, and acyclicity checks run before
// every execution.
package validate

import (
	"fmt"

	"github.com/flowengine/flowengine/engerr"
	"github.com/flowengine/flowengine/graph"
	"github.com/flowengine/flowengine/node"
	"github.com/flowengine/flowengine/port"
	"github.com/flowengine/flowengine/value"
)

// Graph runs all of spec §4.6's checks in order and returns the first
// failure. Defaults carries each node's inline default values (from
// registry.Assemble) keyed by node id then port name.
func Graph(g *graph.Graph, defaults map[string]map[string]value.Value) error {
	if err := structural(g); err != nil {
		return err
	}
	if err := edges(g); err != nil {
		return err
	}
	if err := inlineDefaultTypes(g, defaults); err != nil {
		return err
	}
	if err := requiredInputs(g, defaults); err != nil {
		return err
	}
	if _, err := TopologicalOrder(g); err != nil {
		return err
	}
	return nil
}

// structural checks: ids unique (already enforced by graph.AddNode, but
// ports must additionally be unique within each node's input and output
// sets), and no output port declared more than once.
func structural(g *graph.Graph) error {
	for _, n := range g.Nodes() {
		if err := node.UniquePortNames(n.ID(), "input", n.InputPorts()); err != nil {
			return &engerr.ValidationError{NodeID: n.ID(), Reason: err.Error()}
		}
		if err := node.UniquePortNames(n.ID(), "output", n.OutputPorts()); err != nil {
			return &engerr.ValidationError{NodeID: n.ID(), Reason: err.Error()}
		}
	}
	return nil
}

// edges checks endpoint existence, direction, type match, and at-most-one
// incoming edge per input port (spec §4.6 step 2, §3 invariants).
func edges(g *graph.Graph) error {
	incoming := make(map[string]int) // "nodeID.portName" -> count

	for _, e := range g.Edges() {
		fromNode, ok := g.NodeByID(e.FromNode)
		if !ok {
			return &engerr.ValidationError{NodeID: e.FromNode, Reason: fmt.Sprintf("edge references unknown source node %q", e.FromNode)}
		}
		toNode, ok := g.NodeByID(e.ToNode)
		if !ok {
			return &engerr.ValidationError{NodeID: e.ToNode, Reason: fmt.Sprintf("edge references unknown target node %q", e.ToNode)}
		}

		fromPort, ok := findPort(fromNode.OutputPorts(), e.FromPort)
		if !ok {
			return &engerr.ValidationError{NodeID: e.FromNode, Port: e.FromPort, Reason: "edge source does not name a declared output port"}
		}
		toPort, ok := findPort(toNode.InputPorts(), e.ToPort)
		if !ok {
			return &engerr.ValidationError{NodeID: e.ToNode, Port: e.ToPort, Reason: "edge target does not name a declared input port"}
		}

		if !fromPort.Type().Equal(toPort.Type()) {
			return &engerr.ValidationError{
				NodeID: e.ToNode, Port: e.ToPort,
				Reason: fmt.Sprintf("type mismatch: %s.%s is %s but %s.%s is %s", e.FromNode, e.FromPort, fromPort.Type(), e.ToNode, e.ToPort, toPort.Type()),
			}
		}

		key := e.ToNode + "." + e.ToPort
		incoming[key]++
		if incoming[key] > 1 {
			return &engerr.ValidationError{NodeID: e.ToNode, Port: e.ToPort, Reason: "input port has more than one incoming edge"}
		}
	}
	return nil
}

func findPort(ports []port.Port, name string) (port.Port, bool) {
	for _, p := range ports {
		if p.Name() == name {
			return p, true
		}
	}
	return port.Port{}, false
}

// inlineDefaultTypes checks that any inline default attached to a node
// matches the declared type of the input port it targets.
func inlineDefaultTypes(g *graph.Graph, defaults map[string]map[string]value.Value) error {
	for nodeID, ports := range defaults {
		n, ok := g.NodeByID(nodeID)
		if !ok {
			continue
		}
		for portName, v := range ports {
			p, ok := findPort(n.InputPorts(), portName)
			if !ok {
				return &engerr.ValidationError{NodeID: nodeID, Port: portName, Reason: "inline default names unknown input port"}
			}
			if !value.Satisfies(v, p.Type()) {
				return &engerr.ValidationError{NodeID: nodeID, Port: portName, Reason: fmt.Sprintf("inline default type %s does not match port type %s", value.TypeOf(v), p.Type())}
			}
		}
	}
	return nil
}

// requiredInputs checks that every required input port either has an
// incoming edge or a matching-type inline default (spec §4.6 step 4).
func requiredInputs(g *graph.Graph, defaults map[string]map[string]value.Value) error {
	hasEdge := make(map[string]bool) // "nodeID.portName"
	for _, e := range g.Edges() {
		hasEdge[e.ToNode+"."+e.ToPort] = true
	}

	for _, n := range g.Nodes() {
		for _, p := range n.InputPorts() {
			if !p.Required() {
				continue
			}
			if hasEdge[n.ID()+"."+p.Name()] {
				continue
			}
			if _, ok := defaults[n.ID()][p.Name()]; ok {
				continue
			}
			return &engerr.ValidationError{NodeID: n.ID(), Port: p.Name(), Reason: "required input has no incoming edge and no inline default"}
		}
	}
	return nil
}
