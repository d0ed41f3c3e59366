package backends

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OtelTracer is a TracerProvider backed by an OpenTelemetry trace.Tracer,
// mirroring AleutianLocal's dag/executor.go span-per-node pattern: one span
// wraps the whole execution, one wraps each module task.
type OtelTracer struct {
	Tracer trace.Tracer
}

// NewOtelTracer constructs an OtelTracer from an OpenTelemetry tracer.
func NewOtelTracer(tracer trace.Tracer) *OtelTracer {
	return &OtelTracer{Tracer: tracer}
}

func (t *OtelTracer) Span(ctx context.Context, name string, attributes map[string]string, body func(ctx context.Context) error) error {
	if t == nil || t.Tracer == nil {
		return body(ctx)
	}

	attrs := make([]attribute.KeyValue, 0, len(attributes))
	for k, v := range attributes {
		attrs = append(attrs, attribute.String(k, v))
	}

	spanCtx, span := t.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	defer span.End()

	err := body(spanCtx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
