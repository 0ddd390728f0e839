package scheduler

import (
	"context"
	"errors"

	"github.com/flowengine/flowengine/engerr"
	"github.com/flowengine/flowengine/graph"
	"github.com/flowengine/flowengine/node"
	"github.com/flowengine/flowengine/pool"
)

// driveProducer runs one EventProducer's full lifecycle (spec §4.7,
// "EventProducer lifecycle (nested-recursive)"): on_start against
// parentPool, a loop of on_update → tick execution until the stop signal
// is observed or the node signals it is done, then on_cleanup on every
// exit path from the loop.
func (s *Scheduler) driveProducer(ctx context.Context, order []string, producer node.Node, parentPool *pool.Pool) error {
	startInputs, err := pool.CollectInputs(s.graph, parentPool, producer, s.defaults[producer.ID()])
	if err != nil {
		return err
	}
	if err := producer.OnStart(ctx, startInputs); err != nil {
		return &engerr.RuntimeError{NodeID: producer.ID(), Reason: "on_start failed", Cause: err}
	}

	runErr := s.runProducerLoop(ctx, order, producer, parentPool)

	if err := producer.OnCleanup(ctx); err != nil {
		wrapped := &engerr.CleanupError{NodeID: producer.ID(), Reason: "on_cleanup failed", Cause: err}
		s.cleanupErrs = append(s.cleanupErrs, wrapped)
		s.logger.Error("on_cleanup failed", "node_id", producer.ID(), "error", err)
		s.emit(Event{Kind: EventCleanupFailed, NodeID: producer.ID(), NodeKind: node.EventProducer, Err: wrapped})
	}

	return runErr
}

// runProducerLoop implements spec §4.7 step 2: poll the stop signal, call
// on_update, and on a tick execute this producer's reachable Simple nodes
// followed by any nested producer's full lifecycle, recursively.
func (s *Scheduler) runProducerLoop(ctx context.Context, order []string, producer node.Node, parentPool *pool.Pool) error {
	ds := downstream(s.graph, producer.ID())
	subRoots := immediateSubRoots(order, s.graph, producer.ID())
	ownedByNested := nestedOwnership(s.graph, subRoots)

	var thisLevel []string
	for _, id := range order {
		if !ds[id] || ownedByNested[id] {
			continue
		}
		if n, ok := s.graph.NodeByID(id); ok && n.NodeKind() == node.Simple {
			thisLevel = append(thisLevel, id)
		}
	}

	for {
		if s.stop.IsSet() {
			return nil
		}

		outputs, ok, err := producer.OnUpdate(ctx)
		if err != nil {
			return &engerr.RuntimeError{NodeID: producer.ID(), Reason: "on_update failed", Cause: err}
		}
		if !ok {
			return nil
		}
		if err := node.ValidateOutputs(producer, outputs); err != nil {
			return &engerr.RuntimeError{NodeID: producer.ID(), Reason: err.Error(), Cause: err}
		}

		s.emit(Event{Kind: EventProducerTick, NodeID: producer.ID(), NodeKind: node.EventProducer})

		tickPool := parentPool.Child()
		tickPool.SetAll(producer.ID(), outputs)

		for _, id := range thisLevel {
			n, _ := s.graph.NodeByID(id)
			if err := s.runSimpleNode(ctx, n, tickPool); err != nil {
				return err
			}
		}

		var subErrs []error
		for _, subRootID := range subRoots {
			subNode, _ := s.graph.NodeByID(subRootID)
			if err := s.driveProducer(ctx, order, subNode, tickPool); err != nil {
				subErrs = append(subErrs, err)
			}
		}
		if len(subErrs) > 0 {
			// A nested producer's subtree failed: abort this producer's own
			// loop (its on_cleanup still runs via the caller), but every
			// sibling subRoot was still driven this tick before returning.
			return errors.Join(subErrs...)
		}
	}
}

// nestedOwnership returns the set of node ids (each subRoot plus its own
// downstream closure) that belong to a nested producer's own lifecycle
// rather than to the current level's single-pass execution.
func nestedOwnership(g *graph.Graph, subRoots []string) map[string]bool {
	owned := make(map[string]bool)
	for _, sp := range subRoots {
		owned[sp] = true
		for id := range downstream(g, sp) {
			owned[id] = true
		}
	}
	return owned
}
