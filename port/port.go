// Package port implements the named, typed port descriptor (spec C2) shared
// by node declarations and persisted graph definitions.
package port

import "github.com/flowengine/flowengine/value"

// Port is a named, typed input or output channel on a node.
type Port struct {
	name        string
	dataType    value.Type
	description string
	required    bool
}

// New builds a Port with the given name and type. Required defaults to
// false; use Builder methods to set it for input ports. Per spec §4.2,
// required is ignored for output ports.
func New(name string, dataType value.Type) Port {
	return Port{name: name, dataType: dataType}
}

// Name returns the port's name.
func (p Port) Name() string { return p.name }

// Type returns the port's declared data type.
func (p Port) Type() value.Type { return p.dataType }

// Description returns the port's optional description.
func (p Port) Description() string { return p.description }

// Required reports whether the port is required. Meaningful for input ports
// only; callers must not rely on this for output ports.
func (p Port) Required() bool { return p.required }

// WithDescription returns a copy of p with the description set.
func (p Port) WithDescription(desc string) Port {
	p.description = desc
	return p
}

// WithRequired returns a copy of p with the required flag set. Output-port
// required is ignored by the engine (spec §4.2) but the setter does not
// reject it, since a port's direction is contextual (it lives in either a
// node's input list or output list, not in the Port value itself).
func (p Port) WithRequired(required bool) Port {
	p.required = required
	return p
}
