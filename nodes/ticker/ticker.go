// Package ticker provides a minimal EventProducer registered as a sample
// node type by the flowengine binary. The scheduler's own scenario tests
// use their own in-test producers, not this package.
package ticker

import (
	"context"
	"time"

	"github.com/flowengine/flowengine/node"
	"github.com/flowengine/flowengine/port"
	"github.com/flowengine/flowengine/value"
)

// TypeID is the registry type id for Node.
const TypeID = "ticker.interval"

// Config configures a Node.
type Config struct {
	// Interval is the pause between on_update calls while idle. Zero means
	// no pause (tick as fast as the engine drives on_update).
	Interval time.Duration
	// Limit bounds the number of ticks emitted; zero means unbounded (the
	// node relies entirely on the stop signal to end).
	Limit int
	// Sleep overrides time.Sleep for deterministic tests. Defaults to
	// time.Sleep.
	Sleep func(time.Duration)
}

// Node emits an incrementing Integer tick on "count" every on_update call,
// pausing Interval between calls, until Limit is reached (if nonzero).
type Node struct {
	node.Base
	node.NoExecute
	cfg     Config
	emitted int
}

// New builds a ticker Node. Satisfies a registry.Factory once cfg is
// closed over (see Factory).
func New(id, name string, cfg Config) *Node {
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	return &Node{
		Base: node.NewBase(id, name, "emits an incrementing integer on a fixed interval", node.EventProducer,
			nil,
			[]port.Port{port.New("count", value.Simple(value.Integer))},
		),
		cfg: cfg,
	}
}

// Factory closes over cfg to produce a registry.Factory.
func Factory(cfg Config) func(id, name string) (node.Node, error) {
	return func(id, name string) (node.Node, error) {
		return New(id, name, cfg), nil
	}
}

func (n *Node) OnStart(ctx context.Context, in node.Values) error {
	n.emitted = 0
	return nil
}

func (n *Node) OnUpdate(ctx context.Context) (node.Values, bool, error) {
	if n.cfg.Limit > 0 && n.emitted >= n.cfg.Limit {
		return nil, false, nil
	}
	if n.cfg.Interval > 0 {
		n.cfg.Sleep(n.cfg.Interval)
	}
	n.emitted++
	return node.Values{"count": value.NewInteger(int64(n.emitted))}, true, nil
}

func (n *Node) OnCleanup(ctx context.Context) error {
	return nil
}
