// Package tracing wraps OpenTelemetry for script and command spans.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName names the tracer used by the harness.
const InstrumentationName = "github.com/wippyai/wasm-spectest"

// Tracer wraps an OpenTelemetry tracer
type Tracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
}

// NewTracer creates a tracer backed by its own SDK provider. Span
// processors (exporters, recorders) are passed as provider options.
func NewTracer(opts ...sdktrace.TracerProviderOption) *Tracer {
	tp := sdktrace.NewTracerProvider(opts...)
	return &Tracer{tracer: tp.Tracer(InstrumentationName), provider: tp}
}

// Global returns a tracer from the globally installed provider. It is a
// no-op unless the program installed one with otel.SetTracerProvider.
func Global() *Tracer {
	return &Tracer{tracer: otel.Tracer(InstrumentationName)}
}

// StartSpan starts a new span
func (t *Tracer) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// StartScriptSpan starts the span covering one script file.
func (t *Tracer) StartScriptSpan(ctx context.Context, source string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "spectest.script",
		trace.WithAttributes(attribute.String("script.source", source)))
}

// StartCommandSpan starts the span covering one script command.
func (t *Tracer) StartCommandSpan(ctx context.Context, loc, commandType string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "spectest.command",
		trace.WithAttributes(
			attribute.String("command.loc", loc),
			attribute.String("command.type", commandType),
		))
}

// End records the outcome on span and ends it.
func End(span trace.Span, outcome string, err error) {
	span.SetAttributes(attribute.String("outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Shutdown flushes and stops the tracer's own provider. Global tracers
// have nothing to shut down.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}
