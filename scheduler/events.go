package scheduler

import (
	"time"

	"github.com/flowengine/flowengine/node"
)

// EventKind identifies the moment a scheduler Event describes, the way the
// teacher's runtime.EventKind drives its own EventHandler translation.
type EventKind string

const (
	EventRunStarted    EventKind = "run_started"
	EventRunFinished   EventKind = "run_finished"
	EventNodeStarted   EventKind = "node_started"
	EventNodeFinished  EventKind = "node_finished"
	EventNodeFailed    EventKind = "node_failed"
	EventProducerTick  EventKind = "producer_tick"
	EventCleanupFailed EventKind = "cleanup_failed"
)

// Event is a scheduler lifecycle notification, observable by an
// EventHandler (e.g. the telemetry package's tracing/metrics adapters).
type Event struct {
	Kind     EventKind
	RunID    string
	NodeID   string
	NodeKind node.Kind
	Time     time.Time
	Elapsed  time.Duration
	Err      error
}

// EventHandler receives scheduler events. Handle must not block the
// executor for long and must not call back into the Scheduler.
type EventHandler interface {
	Handle(Event)
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(Event)

func (f EventHandlerFunc) Handle(e Event) { f(e) }

// emit notifies the configured handler, if any. No-op when s.handler is
// nil or when s.clock is unset (emit is only ever called with a non-zero
// clock in practice, guarded here purely for test fixtures that construct
// a Scheduler directly without New).
func (s *Scheduler) emit(e Event) {
	if s.handler == nil || s.clock == nil {
		return
	}
	if e.Time.IsZero() {
		e.Time = s.clock()
	}
	e.RunID = s.runID
	s.handler.Handle(e)
}
