package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
var (
	AttrUserID     = attribute.Key("stagedocs.user.id")
	AttrProjectID  = attribute.Key("stagedocs.project.id")
	AttrLevel      = attribute.Key("stagedocs.level")
	AttrRows       = attribute.Key("stagedocs.rows")
	AttrChecklists = attribute.Key("stagedocs.checklists")
	AttrFiles      = attribute.Key("stagedocs.files")
	AttrKeys       = attribute.Key("stagedocs.keys")
	AttrCacheHit   = attribute.Key("stagedocs.cache.hit")
)

// StartSpan starts an internal span.
func StartSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartServerSpan starts a span for an inbound HTTP request.
func StartServerSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

// End records err on span (if any) and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
