// Package telemetry translates scheduler lifecycle events into OpenTelemetry
// spans and metrics, adapted from the teacher's otel package to the
// engine's run/node/tick event set.
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowengine/flowengine/scheduler"
)

// TracingHandler translates scheduler events into spans: one root span per
// run, one child span per node execution.
type TracingHandler struct {
	tracer trace.Tracer

	mu        sync.RWMutex
	runSpans  map[string]trace.Span
	runCtxs   map[string]context.Context
	nodeSpans map[string]trace.Span // runID:nodeID -> span
}

// NewTracingHandler creates a TracingHandler backed by tracer.
func NewTracingHandler(tracer trace.Tracer) *TracingHandler {
	return &TracingHandler{
		tracer:    tracer,
		runSpans:  make(map[string]trace.Span),
		runCtxs:   make(map[string]context.Context),
		nodeSpans: make(map[string]trace.Span),
	}
}

// Handle implements scheduler.EventHandler.
func (h *TracingHandler) Handle(e scheduler.Event) {
	switch e.Kind {
	case scheduler.EventRunStarted:
		h.handleRunStarted(e)
	case scheduler.EventNodeStarted:
		h.handleNodeStarted(e)
	case scheduler.EventNodeFinished:
		h.handleNodeFinished(e)
	case scheduler.EventNodeFailed:
		h.handleNodeFailed(e)
	case scheduler.EventRunFinished:
		h.handleRunFinished(e)
	}
}

func (h *TracingHandler) handleRunStarted(e scheduler.Event) {
	ctx, span := h.tracer.Start(context.Background(), "run:"+e.RunID,
		trace.WithAttributes(attribute.String("flowengine.run_id", e.RunID)),
		trace.WithTimestamp(e.Time),
	)
	h.mu.Lock()
	h.runSpans[e.RunID] = span
	h.runCtxs[e.RunID] = ctx
	h.mu.Unlock()
}

func (h *TracingHandler) handleNodeStarted(e scheduler.Event) {
	h.mu.RLock()
	parentCtx, ok := h.runCtxs[e.RunID]
	h.mu.RUnlock()
	if !ok {
		parentCtx = context.Background()
	}

	_, span := h.tracer.Start(parentCtx, "node:"+e.NodeID,
		trace.WithAttributes(
			attribute.String("flowengine.run_id", e.RunID),
			attribute.String("flowengine.node_id", e.NodeID),
			attribute.String("flowengine.node_kind", string(e.NodeKind)),
		),
		trace.WithTimestamp(e.Time),
	)

	key := e.RunID + ":" + e.NodeID
	h.mu.Lock()
	h.nodeSpans[key] = span
	h.mu.Unlock()
}

func (h *TracingHandler) handleNodeFinished(e scheduler.Event) {
	span, ok := h.popNodeSpan(e)
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("flowengine.duration", e.Elapsed.String()))
	span.SetStatus(codes.Ok, "")
	span.End()
}

func (h *TracingHandler) handleNodeFailed(e scheduler.Event) {
	span, ok := h.popNodeSpan(e)
	if !ok {
		return
	}
	msg := "unknown error"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	span.SetStatus(codes.Error, msg)
	span.RecordError(e.Err)
	span.End()
}

func (h *TracingHandler) popNodeSpan(e scheduler.Event) (trace.Span, bool) {
	key := e.RunID + ":" + e.NodeID
	h.mu.Lock()
	defer h.mu.Unlock()
	span, ok := h.nodeSpans[key]
	if ok {
		delete(h.nodeSpans, key)
	}
	return span, ok
}

func (h *TracingHandler) handleRunFinished(e scheduler.Event) {
	h.mu.Lock()
	span, ok := h.runSpans[e.RunID]
	if ok {
		delete(h.runSpans, e.RunID)
		delete(h.runCtxs, e.RunID)
	}
	h.mu.Unlock()
	if !ok {
		return
	}

	span.SetAttributes(attribute.String("flowengine.duration", e.Elapsed.String()))
	if e.Err != nil {
		span.SetStatus(codes.Error, e.Err.Error())
		span.RecordError(e.Err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
