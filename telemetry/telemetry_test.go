package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/flowengine/flowengine/scheduler"
)

func TestTracingHandlerClosesSpansOnRunLifecycle(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(t.Context())
	h := NewTracingHandler(tp.Tracer("test"))

	h.Handle(scheduler.Event{Kind: scheduler.EventRunStarted, RunID: "r1", Time: time.Now()})
	h.Handle(scheduler.Event{Kind: scheduler.EventNodeStarted, RunID: "r1", NodeID: "n1", Time: time.Now()})
	h.Handle(scheduler.Event{Kind: scheduler.EventNodeFinished, RunID: "r1", NodeID: "n1", Elapsed: time.Millisecond})
	h.Handle(scheduler.Event{Kind: scheduler.EventRunFinished, RunID: "r1", Elapsed: time.Millisecond})

	assert.Empty(t, h.nodeSpans)
	assert.Empty(t, h.runSpans)
}

func TestMetricsHandlerRecordsWithoutError(t *testing.T) {
	mp := sdkmetric.NewMeterProvider()
	h, err := NewMetricsHandler(mp.Meter("test"))
	require.NoError(t, err)

	h.Handle(scheduler.Event{Kind: scheduler.EventNodeFinished, RunID: "r1", NodeID: "n1", Elapsed: time.Millisecond})
	h.Handle(scheduler.Event{Kind: scheduler.EventProducerTick, RunID: "r1", NodeID: "n2"})
	h.Handle(scheduler.Event{Kind: scheduler.EventRunFinished, RunID: "r1", Elapsed: time.Millisecond})
}
