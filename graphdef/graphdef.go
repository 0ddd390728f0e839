// Package graphdef implements the persisted graph schema (spec C4 / §6):
// the on-disk JSON representation of nodes, edges, ports, and inline
// defaults, plus legacy auto-binding edge resolution.
package graphdef

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/flowengine/flowengine/engerr"
	"github.com/flowengine/flowengine/port"
	"github.com/flowengine/flowengine/value"
)

// Definition is the serializable form of a graph, the unit the registry
// (C5) consumes to build a live graph. It round-trips through JSON: loading
// a file and re-serializing it yields an equivalent document up to key
// ordering and the transient HasError field (spec §8 invariant 5).
type Definition struct {
	Nodes []NodeDef `json:"nodes"`
	Edges []EdgeDef `json:"edges"`
}

// Position is an editor layout hint; the engine never interprets it.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is an editor layout hint; the engine never interprets it.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NodeDef is a serializable node within a Definition.
type NodeDef struct {
	ID           string                     `json:"id"`
	Name         string                     `json:"name"`
	Description  string                     `json:"description,omitempty"`
	NodeType     string                     `json:"node_type"`
	InputPorts   []PortDef                  `json:"input_ports"`
	OutputPorts  []PortDef                  `json:"output_ports"`
	Position     *Position                  `json:"position,omitempty"`
	Size         *Size                      `json:"size,omitempty"`
	InlineValues map[string]json.RawMessage `json:"inline_values,omitempty"`

	// HasError is a run-only artefact. It is accepted (and ignored) on load
	// and never written back out by Marshal (spec §6).
	HasError bool `json:"-"`
}

// PortDef is a serializable port descriptor.
type PortDef struct {
	Name        string      `json:"name"`
	DataType    TypeLiteral `json:"data_type"`
	Description string      `json:"description,omitempty"`
	Required    bool        `json:"required"`
}

// ToPort converts a PortDef into a live port.Port, resolving its
// DataTypeLiteral. Returns a DefinitionError on malformed type literals.
func (pd PortDef) ToPort() (port.Port, error) {
	t, err := pd.DataType.ToType()
	if err != nil {
		return port.Port{}, &engerr.DefinitionError{Reason: fmt.Sprintf("port %q: %v", pd.Name, err)}
	}
	return port.New(pd.Name, t).WithDescription(pd.Description).WithRequired(pd.Required), nil
}

// EdgeDef is a serializable directed edge within a Definition.
type EdgeDef struct {
	FromNodeID string `json:"from_node_id"`
	FromPort   string `json:"from_port"`
	ToNodeID   string `json:"to_node_id"`
	ToPort     string `json:"to_port"`
}

// nodeDefWire mirrors NodeDef's JSON shape so Unmarshal can accept the
// optional has_error field without it ever surviving to the Go struct.
type nodeDefWire struct {
	ID           string                     `json:"id"`
	Name         string                     `json:"name"`
	Description  string                     `json:"description,omitempty"`
	NodeType     string                     `json:"node_type"`
	InputPorts   []PortDef                  `json:"input_ports"`
	OutputPorts  []PortDef                  `json:"output_ports"`
	Position     *Position                  `json:"position,omitempty"`
	Size         *Size                      `json:"size,omitempty"`
	InlineValues map[string]json.RawMessage `json:"inline_values,omitempty"`
	HasError     bool                       `json:"has_error,omitempty"`
}

// UnmarshalJSON accepts (and discards) has_error on load.
func (n *NodeDef) UnmarshalJSON(data []byte) error {
	var w nodeDefWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*n = NodeDef{
		ID:           w.ID,
		Name:         w.Name,
		Description:  w.Description,
		NodeType:     w.NodeType,
		InputPorts:   w.InputPorts,
		OutputPorts:  w.OutputPorts,
		Position:     w.Position,
		Size:         w.Size,
		InlineValues: w.InlineValues,
	}
	return nil
}

// MarshalJSON never writes has_error back out (spec §6: "load-ignored;
// run-only artefact, not persisted").
func (n NodeDef) MarshalJSON() ([]byte, error) {
	w := nodeDefWire{
		ID:           n.ID,
		Name:         n.Name,
		Description:  n.Description,
		NodeType:     n.NodeType,
		InputPorts:   n.InputPorts,
		OutputPorts:  n.OutputPorts,
		Position:     n.Position,
		Size:         n.Size,
		InlineValues: n.InlineValues,
	}
	return json.Marshal(w)
}

// Parse decodes a Definition from UTF-8 JSON bytes. Required top-level keys
// are "nodes" and "edges" (spec §6); a structurally malformed document is a
// DefinitionError.
func Parse(data []byte) (*Definition, error) {
	var raw struct {
		Nodes *[]NodeDef `json:"nodes"`
		Edges *[]EdgeDef `json:"edges"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &engerr.DefinitionError{Reason: fmt.Sprintf("malformed JSON: %v", err)}
	}
	if raw.Nodes == nil {
		return nil, &engerr.DefinitionError{Reason: `missing required key "nodes"`}
	}
	if raw.Edges == nil {
		return nil, &engerr.DefinitionError{Reason: `missing required key "edges"`}
	}
	return &Definition{Nodes: *raw.Nodes, Edges: *raw.Edges}, nil
}

// Marshal serializes a Definition back to JSON, with stable key ordering
// inside each node/port so round-trips are comparable byte-for-byte by a
// JSON-aware diff (spec §8 invariant 5).
func Marshal(d *Definition) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// InlineDefaults resolves and type-checks every entry in a NodeDef's
// InlineValues table against its declared input ports. A literal whose type
// doesn't match its port, or that names a port not in InputPorts, is a
// DefinitionError (spec §4.1: "a type mismatch at parse time is a
// definition-load error").
func (n NodeDef) InlineDefaults() (map[string]value.Value, error) {
	byName := make(map[string]PortDef, len(n.InputPorts))
	for _, p := range n.InputPorts {
		byName[p.Name] = p
	}

	out := make(map[string]value.Value, len(n.InlineValues))
	for name, raw := range n.InlineValues {
		pd, ok := byName[name]
		if !ok {
			return nil, &engerr.DefinitionError{Reason: fmt.Sprintf("node %s: inline default names unknown input port %q", n.ID, name)}
		}
		t, err := pd.DataType.ToType()
		if err != nil {
			return nil, &engerr.DefinitionError{Reason: fmt.Sprintf("node %s: port %q: %v", n.ID, name, err)}
		}
		v, err := value.ParseLiteral(t, raw)
		if err != nil {
			return nil, &engerr.DefinitionError{Reason: fmt.Sprintf("node %s: inline default for port %q: %v", n.ID, name, err)}
		}
		out[name] = v
	}
	return out, nil
}

// ResolveEdges implements spec §4.4's edge resolution: the explicit Edges
// list is used verbatim when non-empty; an empty Edges list triggers legacy
// auto-binding by matching output/input port names and types across
// distinct nodes. Auto-binding that would give a single input port more
// than one incoming edge makes the graph invalid.
func (d *Definition) ResolveEdges() ([]EdgeDef, error) {
	if len(d.Edges) > 0 {
		return d.Edges, nil
	}
	return autoBind(d.Nodes)
}

func autoBind(nodes []NodeDef) ([]EdgeDef, error) {
	// Deterministic iteration: sort node IDs, then port declaration order
	// within each node, so auto-binding is reproducible across runs.
	ordered := make([]NodeDef, len(nodes))
	copy(ordered, nodes)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	var edges []EdgeDef
	incoming := make(map[string]int) // "nodeID.portName" -> count

	for _, a := range ordered {
		for _, outPort := range a.OutputPorts {
			for _, b := range ordered {
				if a.ID == b.ID {
					continue
				}
				for _, inPort := range b.InputPorts {
					if inPort.Name != outPort.Name {
						continue
					}
					if !typeLiteralEqual(inPort.DataType, outPort.DataType) {
						continue
					}
					edges = append(edges, EdgeDef{
						FromNodeID: a.ID, FromPort: outPort.Name,
						ToNodeID: b.ID, ToPort: inPort.Name,
					})
					key := b.ID + "." + inPort.Name
					incoming[key]++
					if incoming[key] > 1 {
						return nil, &engerr.ValidationError{Reason: fmt.Sprintf("auto-binding: input %q on node %s would receive more than one edge", inPort.Name, b.ID)}
					}
				}
			}
		}
	}
	return edges, nil
}

func typeLiteralEqual(a, b TypeLiteral) bool {
	ta, err1 := a.ToType()
	tb, err2 := b.ToType()
	if err1 != nil || err2 != nil {
		return false
	}
	return ta.Equal(tb)
}
