package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/flowengine/flowengine/scheduler"
)

// MetricsHandler translates scheduler events into counters and histograms.
type MetricsHandler struct {
	nodeExecutions metric.Int64Counter
	nodeFailures   metric.Int64Counter
	nodeDuration   metric.Float64Histogram
	producerTicks  metric.Int64Counter
	runDuration    metric.Float64Histogram
}

// NewMetricsHandler creates instruments on meter and returns a
// MetricsHandler bound to them.
func NewMetricsHandler(meter metric.Meter) (*MetricsHandler, error) {
	nodeExec, err := meter.Int64Counter("flowengine.node.executions",
		metric.WithDescription("Number of node executions"))
	if err != nil {
		return nil, err
	}
	nodeFail, err := meter.Int64Counter("flowengine.node.failures",
		metric.WithDescription("Number of node failures"))
	if err != nil {
		return nil, err
	}
	nodeDur, err := meter.Float64Histogram("flowengine.node.duration",
		metric.WithDescription("Duration of a node execution"), metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	ticks, err := meter.Int64Counter("flowengine.producer.ticks",
		metric.WithDescription("Number of EventProducer ticks"))
	if err != nil {
		return nil, err
	}
	runDur, err := meter.Float64Histogram("flowengine.run.duration",
		metric.WithDescription("Duration of a graph run"), metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &MetricsHandler{
		nodeExecutions: nodeExec,
		nodeFailures:   nodeFail,
		nodeDuration:   nodeDur,
		producerTicks:  ticks,
		runDuration:    runDur,
	}, nil
}

// Handle implements scheduler.EventHandler.
func (h *MetricsHandler) Handle(e scheduler.Event) {
	switch e.Kind {
	case scheduler.EventNodeFinished:
		h.handleNodeFinished(e)
	case scheduler.EventNodeFailed:
		h.handleNodeFailed(e)
	case scheduler.EventProducerTick:
		h.handleTick(e)
	case scheduler.EventRunFinished:
		h.handleRunFinished(e)
	}
}

func (h *MetricsHandler) handleNodeFinished(e scheduler.Event) {
	ctx := context.Background()
	attrs := metric.WithAttributes(
		attribute.String("node_kind", string(e.NodeKind)),
		attribute.String("node_id", e.NodeID),
	)
	h.nodeExecutions.Add(ctx, 1, attrs)
	h.nodeDuration.Record(ctx, e.Elapsed.Seconds(), attrs)
}

func (h *MetricsHandler) handleNodeFailed(e scheduler.Event) {
	ctx := context.Background()
	attrs := metric.WithAttributes(
		attribute.String("node_kind", string(e.NodeKind)),
		attribute.String("node_id", e.NodeID),
	)
	h.nodeFailures.Add(ctx, 1, attrs)
}

func (h *MetricsHandler) handleTick(e scheduler.Event) {
	h.producerTicks.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("node_id", e.NodeID)))
}

func (h *MetricsHandler) handleRunFinished(e scheduler.Event) {
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("run_id", e.RunID))
	h.runDuration.Record(ctx, e.Elapsed.Seconds(), attrs)
}
