// Package trace is a thin span helper over OpenTelemetry. The pipeline
// opens spans around its phases through the Tracer interface; the noop
// implementation keeps tracing optional.
package trace

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// SpanName identifies one traced pipeline phase.
type SpanName string

const (
	// SpanDispatchTx covers one whole transaction dispatch.
	SpanDispatchTx SpanName = "protocol.dispatch_tx"
	// SpanChargeFee covers a wrapper's fee step, nested unshielding
	// included.
	SpanChargeFee SpanName = "protocol.charge_fee"
	// SpanExecuteTx covers transaction code execution.
	SpanExecuteTx SpanName = "protocol.execute_tx"
	// SpanExecuteVps covers the parallel validity-predicate fold.
	SpanExecuteVps SpanName = "protocol.execute_vps"
)

// Tracer opens spans around pipeline phases.
type Tracer interface {
	// StartSpan opens a span; the caller must End it.
	StartSpan(ctx context.Context, name SpanName, attrs ...attribute.KeyValue) (context.Context, oteltrace.Span)
}

type tracer struct {
	inner oteltrace.Tracer
}

var _ Tracer = (*tracer)(nil)

// NewTracer builds a Tracer on the globally configured OpenTelemetry
// provider.
func NewTracer(instrumentation string) Tracer {
	return &tracer{inner: otel.Tracer(instrumentation)}
}

func (t *tracer) StartSpan(ctx context.Context, name SpanName, attrs ...attribute.KeyValue) (context.Context, oteltrace.Span) {
	return t.inner.Start(ctx, string(name), oteltrace.WithAttributes(attrs...))
}

// NoopTracer produces spans that record nothing.
type NoopTracer struct {
	inner oteltrace.Tracer
}

var _ Tracer = (*NoopTracer)(nil)

// NewNoopTracer builds the recording-free tracer.
func NewNoopTracer() *NoopTracer {
	return &NoopTracer{inner: oteltrace.NewNoopTracerProvider().Tracer("")}
}

// StartSpan implements Tracer.
func (t *NoopTracer) StartSpan(ctx context.Context, name SpanName, _ ...attribute.KeyValue) (context.Context, oteltrace.Span) {
	return t.inner.Start(ctx, string(name))
}
