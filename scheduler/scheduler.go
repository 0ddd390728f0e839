// Package scheduler implements the hybrid execution engine (spec C7):
// topological ordering, reachability analysis, the Simple-only strategy,
// and the nested-recursive EventProducer lifecycle.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flowengine/flowengine/engerr"
	"github.com/flowengine/flowengine/graph"
	"github.com/flowengine/flowengine/node"
	"github.com/flowengine/flowengine/pool"
	"github.com/flowengine/flowengine/signal"
	"github.com/flowengine/flowengine/validate"
	"github.com/flowengine/flowengine/value"
)

// Config configures a Scheduler the way the teacher's *Config structs
// configure its long-lived services: optional fields default on New.
type Config struct {
	Logger *slog.Logger
	// Handler observes run/node lifecycle events (telemetry.TracingHandler
	// and telemetry.MetricsHandler both implement EventHandler). Nil
	// disables event emission entirely.
	Handler EventHandler
	// RunID identifies this run in emitted events. Defaults to a
	// generated UUID.
	RunID string
}

// Scheduler drives one execution of a validated graph to completion or
// until its stop signal is set.
type Scheduler struct {
	graph    *graph.Graph
	defaults map[string]map[string]value.Value
	stop     *signal.Stop
	logger   *slog.Logger
	handler  EventHandler
	runID    string
	clock    func() time.Time

	cleanupErrs []error
}

// New builds a Scheduler for g. defaults is the per-node inline-default map
// returned by registry.Assemble. stop may be nil, in which case a fresh,
// never-set signal is used (equivalent to a run with no external
// cancellation).
func New(g *graph.Graph, defaults map[string]map[string]value.Value, stop *signal.Stop, cfg Config) *Scheduler {
	if stop == nil {
		stop = signal.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	return &Scheduler{
		graph: g, defaults: defaults, stop: stop,
		logger: cfg.Logger, handler: cfg.Handler, runID: cfg.RunID,
		clock: func() time.Time { return time.Now().UTC() },
	}
}

// CleanupErrors returns every OnCleanup error observed during the most
// recent Run, in the order they occurred. They never mask the error Run
// returned (spec §4.7: "Errors during cleanup are reported but do not
// prevent sibling producers from cleaning up").
func (s *Scheduler) CleanupErrors() []error {
	return s.cleanupErrs
}

// Run validates the graph and executes it to completion: the Simple-only
// strategy if the graph has no EventProducer nodes, the hybrid strategy
// otherwise (spec §4.7).
func (s *Scheduler) Run(ctx context.Context) error {
	s.cleanupErrs = nil
	start := s.clock()
	s.emit(Event{Kind: EventRunStarted, Time: start})

	err := s.run(ctx)

	s.emit(Event{Kind: EventRunFinished, Elapsed: s.clock().Sub(start), Err: err})
	return err
}

func (s *Scheduler) run(ctx context.Context) error {
	if err := validate.Graph(s.graph, s.defaults); err != nil {
		return err
	}

	order, err := validate.TopologicalOrder(s.graph)
	if err != nil {
		return err
	}

	if len(producers(s.graph)) == 0 {
		p := pool.New()
		return s.runSimpleSequence(ctx, order, p)
	}

	return s.runHybrid(ctx, order)
}

// runSimpleSequence runs every node in ids, in order, against p: collect
// inputs, call Execute, validate outputs, publish. The first failing node
// aborts with its error (spec §4.7 strategy (a)).
func (s *Scheduler) runSimpleSequence(ctx context.Context, ids []string, p *pool.Pool) error {
	for _, id := range ids {
		n, ok := s.graph.NodeByID(id)
		if !ok || n.NodeKind() != node.Simple {
			continue
		}
		if err := s.runSimpleNode(ctx, n, p); err != nil {
			return err
		}
	}
	return nil
}

// runSimpleNode runs a single Simple node's Execute pass against p.
func (s *Scheduler) runSimpleNode(ctx context.Context, n node.Node, p *pool.Pool) error {
	inputs, err := pool.CollectInputs(s.graph, p, n, s.defaults[n.ID()])
	if err != nil {
		return err
	}

	start := s.clock()
	s.emit(Event{Kind: EventNodeStarted, NodeID: n.ID(), NodeKind: n.NodeKind(), Time: start})
	s.logger.Debug("executing node", "node_id", n.ID(), "node_type", n.Name())

	outputs, err := n.Execute(ctx, inputs)
	if err != nil {
		wrapped := &engerr.RuntimeError{NodeID: n.ID(), Reason: "execute failed", Cause: err}
		s.emit(Event{Kind: EventNodeFailed, NodeID: n.ID(), NodeKind: n.NodeKind(), Elapsed: s.clock().Sub(start), Err: wrapped})
		return wrapped
	}
	if err := node.ValidateOutputs(n, outputs); err != nil {
		wrapped := &engerr.RuntimeError{NodeID: n.ID(), Reason: err.Error(), Cause: err}
		s.emit(Event{Kind: EventNodeFailed, NodeID: n.ID(), NodeKind: n.NodeKind(), Elapsed: s.clock().Sub(start), Err: wrapped})
		return wrapped
	}

	s.emit(Event{Kind: EventNodeFinished, NodeID: n.ID(), NodeKind: n.NodeKind(), Elapsed: s.clock().Sub(start)})
	p.SetAll(n.ID(), outputs)
	return nil
}

// runHybrid implements strategy (b): run the base layer, then drive every
// root EventProducer's lifecycle in topological order. A failure in one
// root's subtree aborts that subtree but not its siblings (spec §4.7):
// every root still gets driven, and their errors are joined afterward.
func (s *Scheduler) runHybrid(ctx context.Context, order []string) error {
	base := baseLayer(order, s.graph)
	basePool := pool.New()
	if err := s.runSimpleSequence(ctx, base, basePool); err != nil {
		return err
	}

	var rootErrs []error
	for _, producerID := range roots(order, s.graph) {
		n, _ := s.graph.NodeByID(producerID)
		if err := s.driveProducer(ctx, order, n, basePool); err != nil {
			rootErrs = append(rootErrs, err)
		}
	}
	return errors.Join(rootErrs...)
}
