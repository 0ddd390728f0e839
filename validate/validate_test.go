package validate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowengine/flowengine/engerr"
	"github.com/flowengine/flowengine/graph"
	"github.com/flowengine/flowengine/node"
	"github.com/flowengine/flowengine/port"
	"github.com/flowengine/flowengine/value"
)

// passthroughNode copies "in" to "out" (Simple); stands in for any node
// shape these tests need, since what runs never matters, only the graph
// shape.
type passthroughNode struct {
	node.Base
	node.NoopLifecycle
}

func newPassthroughNode(id string, inType, outType value.Type, required bool) *passthroughNode {
	return &passthroughNode{Base: node.NewBase(id, id, "", node.Simple,
		[]port.Port{port.New("in", inType).WithRequired(required)},
		[]port.Port{port.New("out", outType)},
	)}
}

func (n *passthroughNode) Execute(ctx context.Context, in node.Values) (node.Values, error) {
	return node.Values{"out": in["in"]}, nil
}

// TestGraphRejectsCycle covers spec §8 scenario C: a two-node cycle
// (a -> b -> a) must be rejected with a ValidationError reporting the cycle,
// not hang or panic the topological sort.
func TestGraphRejectsCycle(t *testing.T) {
	g := graph.New()
	a := newPassthroughNode("a", value.Simple(value.String), value.Simple(value.String), false)
	b := newPassthroughNode("b", value.Simple(value.String), value.Simple(value.String), false)
	require.NoError(t, g.AddNode(a))
	require.NoError(t, g.AddNode(b))
	g.AddEdge(graph.Edge{FromNode: "a", FromPort: "out", ToNode: "b", ToPort: "in"})
	g.AddEdge(graph.Edge{FromNode: "b", FromPort: "out", ToNode: "a", ToPort: "in"})

	err := Graph(g, nil)
	require.Error(t, err)
	var valErr *engerr.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "cycle detected", valErr.Reason)

	_, topoErr := TopologicalOrder(g)
	require.Error(t, topoErr)
	require.True(t, errors.As(topoErr, &valErr))
	assert.Equal(t, "cycle detected", valErr.Reason)
}

// TestGraphRejectsTypeMismatchedEdge covers spec §8's type-mismatch case: an
// edge from a String output into an Integer input is rejected before any
// node runs.
func TestGraphRejectsTypeMismatchedEdge(t *testing.T) {
	g := graph.New()
	src := newPassthroughNode("src", value.Simple(value.String), value.Simple(value.String), false)
	sink := newPassthroughNode("sink", value.Simple(value.Integer), value.Simple(value.Integer), true)
	require.NoError(t, g.AddNode(src))
	require.NoError(t, g.AddNode(sink))
	g.AddEdge(graph.Edge{FromNode: "src", FromPort: "out", ToNode: "sink", ToPort: "in"})

	err := Graph(g, nil)
	require.Error(t, err)
	var valErr *engerr.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Contains(t, valErr.Reason, "type mismatch")
}

// TestGraphRejectsUnboundRequiredInput covers spec §8's missing-input case:
// a required input with neither an incoming edge nor a matching inline
// default is rejected.
func TestGraphRejectsUnboundRequiredInput(t *testing.T) {
	g := graph.New()
	sink := newPassthroughNode("sink", value.Simple(value.String), value.Simple(value.String), true)
	require.NoError(t, g.AddNode(sink))

	err := Graph(g, nil)
	require.Error(t, err)
	var valErr *engerr.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "required input has no incoming edge and no inline default", valErr.Reason)
	assert.Equal(t, "sink", valErr.NodeID)
	assert.Equal(t, "in", valErr.Port)
}

// TestGraphAcceptsInlineDefaultForRequiredInput confirms a matching-type
// inline default satisfies a required input with no incoming edge, so the
// missing-input check above is exercised for the right reason.
func TestGraphAcceptsInlineDefaultForRequiredInput(t *testing.T) {
	g := graph.New()
	sink := newPassthroughNode("sink", value.Simple(value.String), value.Simple(value.String), true)
	require.NoError(t, g.AddNode(sink))

	defaults := map[string]map[string]value.Value{
		"sink": {"in": value.NewString("default")},
	}

	require.NoError(t, Graph(g, defaults))
}
