package telemetry

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/flowengine/flowengine/scheduler"
)

const tracerName = "github.com/flowengine/flowengine/scheduler"

// Provider bundles the tracer and meter providers backing a run's
// TracingHandler/MetricsHandler, plus their combined shutdown.
type Provider struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracing        *TracingHandler
	Metrics        *MetricsHandler
}

// ResolveEndpoint picks the OTLP/HTTP collector endpoint for NewProvider:
// an explicit --otlp-endpoint flag value wins, falling back to
// OTEL_EXPORTER_OTLP_ENDPOINT, then to the collector's standard HTTP
// receiver address. Returns "" only when flagValue and the env var are
// both unset and fallback is false, signalling telemetry stays disabled.
func ResolveEndpoint(flagValue string, fallback bool) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); env != "" {
		return env
	}
	if fallback {
		return "localhost:4318"
	}
	return ""
}

// NewProvider builds a Provider that ships spans to the given OTLP/HTTP
// collector endpoint and aggregates metrics in-process without a remote
// exporter. ctx bounds exporter construction, not the provider's lifetime.
func NewProvider(ctx context.Context, endpoint string) (*Provider, error) {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: building OTLP exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(time.Second)),
	)
	mp := sdkmetric.NewMeterProvider()

	tracer := tp.Tracer(tracerName)
	meter := mp.Meter(tracerName)

	metrics, err := NewMetricsHandler(meter)
	if err != nil {
		return nil, fmt.Errorf("telemetry: building metrics handler: %w", err)
	}

	return &Provider{
		TracerProvider: tp,
		MeterProvider:  mp,
		Tracing:        NewTracingHandler(tracer),
		Metrics:        metrics,
	}, nil
}

// Handler returns a single scheduler.EventHandler that fans each event out
// to both the tracing and metrics handlers, for wiring into
// scheduler.Config.Handler.
func (p *Provider) Handler() scheduler.EventHandler {
	return scheduler.EventHandlerFunc(func(e scheduler.Event) {
		p.Tracing.Handle(e)
		p.Metrics.Handle(e)
	})
}

// Shutdown flushes and releases the underlying providers. Call once per
// process, after the last run using this Provider has finished.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	if err := p.TracerProvider.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := p.MeterProvider.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("telemetry: shutdown errors: %v", errs)
}
