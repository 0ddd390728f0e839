// Package node defines the node contract (spec C3): identity, port
// declarations, the Simple/EventProducer execution kinds, and the default
// input/output validators the scheduler relies on.
package node

import (
	"context"
	"fmt"

	"github.com/flowengine/flowengine/port"
	"github.com/flowengine/flowengine/value"
)

// Kind is a node's execution model.
type Kind string

const (
	// Simple nodes observe one Execute call per graph run in which they are
	// scheduled.
	Simple Kind = "Simple"
	// EventProducer nodes run a start/update-loop/cleanup lifecycle; each
	// OnUpdate that returns a value triggers one execution pass over their
	// downstream reachable subgraph.
	EventProducer Kind = "EventProducer"
)

// Values is the map of port name to value passed into and returned from node
// methods.
type Values map[string]value.Value

// Node is the fundamental unit of execution in the engine (spec C3). Every
// node exposes identity, a fixed port list, and a kind that selects which of
// Execute or OnStart/OnUpdate/OnCleanup the engine will call.
//
// Implementations must not change their port lists after construction: the
// engine relies on InputPorts/OutputPorts being stable for the instance's
// lifetime, and on concurrent reads of them being safe (the scheduler reads
// port metadata from the executor goroutine only, but the registry and any
// introspecting caller may read it concurrently with a run in progress).
type Node interface {
	ID() string
	Name() string
	Description() string
	NodeKind() Kind

	InputPorts() []port.Port
	OutputPorts() []port.Port

	// Execute runs a Simple node's logic. The engine never calls Execute on
	// an EventProducer node.
	Execute(ctx context.Context, inputs Values) (Values, error)

	// OnStart begins an EventProducer's lifecycle. No-op for Simple nodes.
	OnStart(ctx context.Context, inputs Values) error
	// OnUpdate produces zero or one tick per call. Returning (nil, false,
	// nil) ends the loop (moves to OnCleanup); returning (outputs, true,
	// nil) publishes one tick. No-op for Simple nodes.
	OnUpdate(ctx context.Context) (Values, bool, error)
	// OnCleanup runs exactly once on every run that reaches this node's
	// lifecycle, on every exit path. No-op for Simple nodes.
	OnCleanup(ctx context.Context) error
}

// ValidateInputs applies the node contract's default input validator (spec
// §4.3): every required input port must have an entry; any entry present
// (required or not) must satisfy its declared type. Extra entries in
// inputs that name no declared port are ignored.
func ValidateInputs(n Node, inputs Values) error {
	for _, p := range n.InputPorts() {
		v, ok := inputs[p.Name()]
		if !ok {
			if p.Required() {
				return fmt.Errorf("node %s: required input port %q is missing", n.ID(), p.Name())
			}
			continue
		}
		if !value.Satisfies(v, p.Type()) {
			return fmt.Errorf("node %s: input port %q expected type %s, got %s", n.ID(), p.Name(), p.Type(), value.TypeOf(v))
		}
	}
	return nil
}

// ValidateOutputs applies the node contract's default output validator (spec
// §4.3): every declared output port must appear in outputs with a value
// satisfying its type; any key in outputs that names no declared port is an
// error.
func ValidateOutputs(n Node, outputs Values) error {
	declared := make(map[string]port.Port, len(n.OutputPorts()))
	for _, p := range n.OutputPorts() {
		declared[p.Name()] = p
		v, ok := outputs[p.Name()]
		if !ok {
			return fmt.Errorf("node %s: declared output port %q missing from result", n.ID(), p.Name())
		}
		if !value.Satisfies(v, p.Type()) {
			return fmt.Errorf("node %s: output port %q expected type %s, got %s", n.ID(), p.Name(), p.Type(), value.TypeOf(v))
		}
	}
	for name := range outputs {
		if _, ok := declared[name]; !ok {
			return fmt.Errorf("node %s: output %q does not name a declared output port", n.ID(), name)
		}
	}
	return nil
}

// UniquePortNames reports an error if any port name repeats within ports —
// used to enforce "name is unique within the input set of a node and within
// the output set of a node" (spec §3) and "no output port is declared more
// than once" (the acyclicity-adjacent structural invariant).
func UniquePortNames(nodeID, direction string, ports []port.Port) error {
	seen := make(map[string]bool, len(ports))
	for _, p := range ports {
		if seen[p.Name()] {
			return fmt.Errorf("node %s: duplicate %s port name %q", nodeID, direction, p.Name())
		}
		seen[p.Name()] = true
	}
	return nil
}

// Base provides the identity/port bookkeeping common to every node
// implementation, the way the teacher's BaseNode does for Kind/ID. Embed it
// and implement only the execution methods relevant to your Kind.
type Base struct {
	id          string
	name        string
	description string
	kind        Kind
	inputs      []port.Port
	outputs     []port.Port
}

// NewBase constructs a Base. Panics are never raised here; malformed port
// lists are caught by validate.Graph before a run starts.
func NewBase(id, name, description string, kind Kind, inputs, outputs []port.Port) Base {
	return Base{id: id, name: name, description: description, kind: kind, inputs: inputs, outputs: outputs}
}

func (b Base) ID() string               { return b.id }
func (b Base) Name() string              { return b.name }
func (b Base) Description() string       { return b.description }
func (b Base) NodeKind() Kind            { return b.kind }
func (b Base) InputPorts() []port.Port   { return b.inputs }
func (b Base) OutputPorts() []port.Port  { return b.outputs }

// NoopLifecycle implements the EventProducer lifecycle methods as no-ops so
// Simple node implementations can embed it and satisfy the Node interface
// without writing boilerplate (spec §4.3: "defaulted to no-op/None for
// Simple nodes").
type NoopLifecycle struct{}

func (NoopLifecycle) OnStart(ctx context.Context, inputs Values) error { return nil }
func (NoopLifecycle) OnUpdate(ctx context.Context) (Values, bool, error) {
	return nil, false, nil
}
func (NoopLifecycle) OnCleanup(ctx context.Context) error { return nil }

// NoExecute implements Execute for EventProducer node implementations that
// must never have it called. The scheduler guarantees it never calls
// Execute on an EventProducer node; this exists purely so such nodes can
// satisfy the Node interface.
type NoExecute struct{}

func (NoExecute) Execute(ctx context.Context, inputs Values) (Values, error) {
	return nil, fmt.Errorf("node: Execute called on an EventProducer node")
}
