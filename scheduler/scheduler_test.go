package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowengine/flowengine/graph"
	"github.com/flowengine/flowengine/node"
	"github.com/flowengine/flowengine/port"
	"github.com/flowengine/flowengine/signal"
	"github.com/flowengine/flowengine/value"
)

// upperNode uppercases its input string (Simple).
type upperNode struct {
	node.Base
	node.NoopLifecycle
}

func newUpperNode(id string) *upperNode {
	return &upperNode{Base: node.NewBase(id, id, "", node.Simple,
		[]port.Port{port.New("in", value.Simple(value.String)).WithRequired(true)},
		[]port.Port{port.New("out", value.Simple(value.String))},
	)}
}

func (n *upperNode) Execute(ctx context.Context, in node.Values) (node.Values, error) {
	s := in["in"].Str
	out := make([]byte, len(s))
	for i := range s {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return node.Values{"out": value.NewString(string(out))}, nil
}

// sourceNode emits a fixed string with no inputs (Simple).
type sourceNode struct {
	node.Base
	node.NoopLifecycle
	text string
}

func newSourceNode(id, text string) *sourceNode {
	return &sourceNode{
		Base: node.NewBase(id, id, "", node.Simple, nil,
			[]port.Port{port.New("out", value.Simple(value.String))}),
		text: text,
	}
}

func (n *sourceNode) Execute(ctx context.Context, in node.Values) (node.Values, error) {
	return node.Values{"out": value.NewString(n.text)}, nil
}

func TestSimpleOnlyPipeline(t *testing.T) {
	g := graph.New()
	src := newSourceNode("src", "hello")
	up := newUpperNode("up")
	require.NoError(t, g.AddNode(src))
	require.NoError(t, g.AddNode(up))
	g.AddEdge(graph.Edge{FromNode: "src", FromPort: "out", ToNode: "up", ToPort: "in"})

	sched := New(g, nil, nil, Config{})
	err := sched.Run(context.Background())
	require.NoError(t, err)
}

// countingProducer emits n ticks of an incrementing integer, then stops.
type countingProducer struct {
	node.Base
	node.NoExecute
	limit   int
	emitted int
}

func newCountingProducer(id string, limit int) *countingProducer {
	return &countingProducer{
		Base: node.NewBase(id, id, "", node.EventProducer, nil,
			[]port.Port{port.New("tick", value.Simple(value.Integer))}),
		limit: limit,
	}
}

func (n *countingProducer) OnStart(ctx context.Context, in node.Values) error { return nil }
func (n *countingProducer) OnUpdate(ctx context.Context) (node.Values, bool, error) {
	if n.emitted >= n.limit {
		return nil, false, nil
	}
	n.emitted++
	return node.Values{"tick": value.NewInteger(int64(n.emitted))}, true, nil
}
func (n *countingProducer) OnCleanup(ctx context.Context) error { return nil }

func TestHybridProducerDrivesDownstreamEachTick(t *testing.T) {
	g := graph.New()
	producer := newCountingProducer("ticker", 3)
	doubler := newDoublerNode("doubler")
	require.NoError(t, g.AddNode(producer))
	require.NoError(t, g.AddNode(doubler))
	g.AddEdge(graph.Edge{FromNode: "ticker", FromPort: "tick", ToNode: "doubler", ToPort: "in"})

	sched := New(g, nil, nil, Config{})
	err := sched.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 4, 6}, doubler.seen)
}

func TestStopSignalHaltsLoop(t *testing.T) {
	g := graph.New()
	producer := newCountingProducer("ticker", 1000)
	require.NoError(t, g.AddNode(producer))

	stop := signal.New()
	stop.Set()

	sched := New(g, nil, stop, Config{})
	err := sched.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, producer.emitted)
}

// doublerNode doubles an integer input and records every value it sees.
type doublerNode struct {
	node.Base
	node.NoopLifecycle
	seen []int64
}

func newDoublerNode(id string) *doublerNode {
	return &doublerNode{Base: node.NewBase(id, id, "", node.Simple,
		[]port.Port{port.New("in", value.Simple(value.Integer)).WithRequired(true)},
		[]port.Port{port.New("out", value.Simple(value.Integer))},
	)}
}

func (n *doublerNode) Execute(ctx context.Context, in node.Values) (node.Values, error) {
	v := in["in"].Int * 2
	n.seen = append(n.seen, v)
	return node.Values{"out": value.NewInteger(v)}, nil
}

// outerProducer emits limit ticks; each tick drives a full nested
// EventProducer lifecycle downstream (scenario F: outer -> inner -> log).
type outerProducer struct {
	node.Base
	node.NoExecute
	limit   int
	emitted int
}

func newOuterProducer(id string, limit int) *outerProducer {
	return &outerProducer{
		Base: node.NewBase(id, id, "", node.EventProducer, nil,
			[]port.Port{port.New("tick", value.Simple(value.Integer))}),
		limit: limit,
	}
}

func (n *outerProducer) OnStart(ctx context.Context, in node.Values) error { return nil }
func (n *outerProducer) OnUpdate(ctx context.Context) (node.Values, bool, error) {
	if n.emitted >= n.limit {
		return nil, false, nil
	}
	n.emitted++
	return node.Values{"tick": value.NewInteger(int64(n.emitted))}, true, nil
}
func (n *outerProducer) OnCleanup(ctx context.Context) error { return nil }

// innerProducer is driven fresh (on_start through on_cleanup) on every
// outer tick. Its on_update loop ticks once per invocation count, so the
// Nth time it is started it emits N ticks before stopping.
type innerProducer struct {
	node.Base
	node.NoExecute
	invocations int
	emitted     int
	starts      int
	cleanups    int
}

func newInnerProducer(id string) *innerProducer {
	return &innerProducer{
		Base: node.NewBase(id, id, "", node.EventProducer,
			[]port.Port{port.New("trigger", value.Simple(value.Integer)).WithRequired(true)},
			[]port.Port{port.New("tick", value.Simple(value.Integer))},
		),
	}
}

func (n *innerProducer) OnStart(ctx context.Context, in node.Values) error {
	n.starts++
	n.invocations++
	n.emitted = 0
	return nil
}
func (n *innerProducer) OnUpdate(ctx context.Context) (node.Values, bool, error) {
	if n.emitted >= n.invocations {
		return nil, false, nil
	}
	n.emitted++
	return node.Values{"tick": value.NewInteger(int64(n.emitted))}, true, nil
}
func (n *innerProducer) OnCleanup(ctx context.Context) error {
	n.cleanups++
	return nil
}

// logNode counts how many times it executes (Simple, no outputs).
type logNode struct {
	node.Base
	node.NoopLifecycle
	calls int
}

func newLogNode(id string) *logNode {
	return &logNode{Base: node.NewBase(id, id, "", node.Simple,
		[]port.Port{port.New("in", value.Simple(value.Integer)).WithRequired(true)},
		nil,
	)}
}

func (n *logNode) Execute(ctx context.Context, in node.Values) (node.Values, error) {
	n.calls++
	return node.Values{}, nil
}

// TestNestedProducerDrivesFullInnerLifecyclePerOuterTick covers spec §8
// scenario F: outer -> inner -> log, a nested EventProducer pair. On outer
// tick 1, inner runs on_start, one on_update (one tick), then on_cleanup,
// driving log.Execute once; on outer tick 2, inner restarts and runs two
// on_update ticks before cleanup, driving log.Execute twice more.
func TestNestedProducerDrivesFullInnerLifecyclePerOuterTick(t *testing.T) {
	g := graph.New()
	outer := newOuterProducer("outer", 2)
	inner := newInnerProducer("inner")
	log := newLogNode("log")
	require.NoError(t, g.AddNode(outer))
	require.NoError(t, g.AddNode(inner))
	require.NoError(t, g.AddNode(log))
	g.AddEdge(graph.Edge{FromNode: "outer", FromPort: "tick", ToNode: "inner", ToPort: "trigger"})
	g.AddEdge(graph.Edge{FromNode: "inner", FromPort: "tick", ToNode: "log", ToPort: "in"})

	sched := New(g, nil, nil, Config{})
	err := sched.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, inner.starts)
	assert.Equal(t, 2, inner.cleanups)
	assert.Equal(t, 3, log.calls) // 1 (outer tick 1) + 2 (outer tick 2)
}
