package telemetry

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/reload/internal/core/ports"
)

// InstrumentationName names the tracer used for runs and tasks.
const InstrumentationName = "go.trai.ch/reload"

// NewProvider creates a tracer provider that samples every span and hands
// finished spans to the given processors.
func NewProvider(processors ...sdktrace.SpanProcessor) *sdktrace.TracerProvider {
	opts := []sdktrace.TracerProviderOption{sdktrace.WithSampler(sdktrace.AlwaysSample())}
	for _, p := range processors {
		opts = append(opts, sdktrace.WithSpanProcessor(p))
	}
	return sdktrace.NewTracerProvider(opts...)
}

// NewLoggingTracer creates a tracer whose finished spans are logged at debug level.
func NewLoggingTracer(logger ports.Logger) *OTelTracer {
	return NewOTelTracer(NewProvider(NewLogBridge(logger)), InstrumentationName)
}
