// Package builder provides a fluent constructor for graphdef.Definition
// documents, the way the teacher's GraphBuilder provides one for its live
// BasicGraph — adapted here to build the persisted form directly, since
// that is what gets handed to the registry and, ultimately, saved to disk.
package builder

import (
	"encoding/json"
	"fmt"

	"github.com/flowengine/flowengine/graphdef"
	"github.com/flowengine/flowengine/value"
)

// Builder accumulates nodes, edges, and errors, the way GraphBuilder does:
// every method returns the receiver so calls chain, and errors collect
// rather than panic or abort early, surfacing together at Build.
type Builder struct {
	def  graphdef.Definition
	errs []error
}

// New starts an empty definition builder.
func New() *Builder {
	return &Builder{}
}

// Node appends a node definition built by NodeSpec.
func (b *Builder) Node(spec NodeSpec) *Builder {
	if spec.ID == "" {
		b.errs = append(b.errs, fmt.Errorf("builder: node missing id"))
		return b
	}
	if spec.NodeType == "" {
		b.errs = append(b.errs, fmt.Errorf("builder: node %q missing node_type", spec.ID))
		return b
	}
	nd := graphdef.NodeDef{
		ID:          spec.ID,
		Name:        spec.Name,
		Description: spec.Description,
		NodeType:    spec.NodeType,
	}
	for _, p := range spec.Inputs {
		nd.InputPorts = append(nd.InputPorts, p)
	}
	for _, p := range spec.Outputs {
		nd.OutputPorts = append(nd.OutputPorts, p)
	}
	if len(spec.InlineDefaults) > 0 {
		nd.InlineValues = make(map[string]json.RawMessage, len(spec.InlineDefaults))
		for port, raw := range spec.InlineDefaults {
			nd.InlineValues[port] = raw
		}
	}
	b.def.Nodes = append(b.def.Nodes, nd)
	return b
}

// Edge appends an explicit edge. Once any explicit edge is added, the
// definition no longer triggers legacy auto-binding (spec §4.4).
func (b *Builder) Edge(fromNode, fromPort, toNode, toPort string) *Builder {
	b.def.Edges = append(b.def.Edges, graphdef.EdgeDef{
		FromNodeID: fromNode, FromPort: fromPort,
		ToNodeID: toNode, ToPort: toPort,
	})
	return b
}

// Build returns the accumulated Definition, or the first error recorded
// while building it.
func (b *Builder) Build() (*graphdef.Definition, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	out := b.def
	return &out, nil
}

// NodeSpec describes one node for Node(). Port builds from graphdef's own
// PortDef so callers don't need to hand-construct TypeLiteral values.
type NodeSpec struct {
	ID             string
	Name           string
	Description    string
	NodeType       string
	Inputs         []graphdef.PortDef
	Outputs        []graphdef.PortDef
	InlineDefaults map[string]json.RawMessage
}

// Port builds a PortDef from a declared value.Type, mirroring the shape
// registry.Build expects InlineDefaults to be checked against.
func Port(name string, t value.Type, required bool) graphdef.PortDef {
	return graphdef.PortDef{Name: name, DataType: graphdef.FromType(t), Required: required}
}

// StringDefault marshals s as an inline default literal for a String port.
func StringDefault(s string) json.RawMessage {
	raw, _ := json.Marshal(s)
	return raw
}

// IntDefault marshals i as an inline default literal for an Integer port.
func IntDefault(i int64) json.RawMessage {
	raw, _ := json.Marshal(i)
	return raw
}

// BoolDefault marshals b as an inline default literal for a Boolean port.
func BoolDefault(b bool) json.RawMessage {
	raw, _ := json.Marshal(b)
	return raw
}

// FloatDefault marshals f as an inline default literal for a Float port.
func FloatDefault(f float64) json.RawMessage {
	raw, _ := json.Marshal(f)
	return raw
}
