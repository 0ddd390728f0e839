// Package registry implements the node registry (spec C5): a process-wide
// type-id to factory map used to materialize live graphs from persisted
// Definitions.
package registry

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/flowengine/flowengine/engerr"
	"github.com/flowengine/flowengine/graphdef"
	"github.com/flowengine/flowengine/node"
	"github.com/flowengine/flowengine/value"
)

// Factory builds a live node instance for a registered type. id and
// displayName come from the node definition being instantiated.
type Factory func(id, displayName string) (node.Node, error)

// TypeDef describes a registered node type.
type TypeDef struct {
	TypeID      string
	DisplayName string
	Category    string
	Description string
	Factory     Factory
}

// Registry holds all known node types, keyed by type id. Registration is
// idempotent on type id; a second Register call for the same id is an
// error (spec §4.5).
type Registry struct {
	mu     sync.RWMutex
	types  map[string]TypeDef
	order  []string
	logger *slog.Logger
}

// New creates an empty registry. Pass nil for logger to use slog.Default().
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{types: make(map[string]TypeDef), logger: logger}
}

// Register adds a node type definition. Duplicate registration of the same
// TypeID is an error (spec §4.5: "Registration is idempotent on type_id;
// duplicate registration is an error").
func (r *Registry) Register(def TypeDef) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[def.TypeID]; exists {
		return fmt.Errorf("registry: type %q already registered", def.TypeID)
	}
	r.types[def.TypeID] = def
	r.order = append(r.order, def.TypeID)
	r.logger.Debug("registered node type", "type_id", def.TypeID, "category", def.Category)
	return nil
}

// Get returns a node type definition by type id.
func (r *Registry) Get(typeID string) (TypeDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.types[typeID]
	return def, ok
}

// All returns all registered node types in registration order.
func (r *Registry) All() []TypeDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]TypeDef, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.types[id])
	}
	return out
}

// Len returns the number of registered node types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

// Built is the result of materializing a Definition: live node instances
// keyed by id, and the inline defaults attached to each (spec §4.5:
// "materialise inline defaults and attach them to the node for the
// scheduler's input-collection step").
type Built struct {
	Nodes    map[string]node.Node
	Defaults map[string]map[string]value.Value // nodeID -> port name -> literal
}

// Build instantiates a live node for each NodeDef in def, looking up
// type_id in the registry and invoking its factory with (id, display name).
// An unknown type_id aborts loading with a DefinitionError (spec §4.5).
func (r *Registry) Build(def *graphdef.Definition) (*Built, error) {
	built := &Built{
		Nodes:    make(map[string]node.Node, len(def.Nodes)),
		Defaults: make(map[string]map[string]value.Value, len(def.Nodes)),
	}

	for _, nd := range def.Nodes {
		typeDef, ok := r.Get(nd.NodeType)
		if !ok {
			return nil, &engerr.DefinitionError{NodeID: nd.ID, Reason: fmt.Sprintf("unknown node_type %q", nd.NodeType)}
		}

		n, err := typeDef.Factory(nd.ID, nd.Name)
		if err != nil {
			return nil, &engerr.DefinitionError{NodeID: nd.ID, Reason: fmt.Sprintf("factory for %q failed: %v", nd.NodeType, err)}
		}
		built.Nodes[nd.ID] = n

		vals, err := nd.InlineDefaults()
		if err != nil {
			return nil, err
		}
		if len(vals) > 0 {
			built.Defaults[nd.ID] = vals
		}
	}

	return built, nil
}
