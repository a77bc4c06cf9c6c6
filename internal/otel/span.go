// Package otel provides OpenTelemetry span helpers for the storefront API.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys shared by storefront spans.
const (
	AttrStoreName      = attribute.Key("store.name")
	AttrProviderSource = attribute.Key("provider.source")
	AttrProviderType   = attribute.Key("provider.type")
	AttrProviderQuery  = attribute.Key("provider.query")
	AttrCollection     = attribute.Key("catalog.collection")
	AttrSortKey        = attribute.Key("catalog.sort_key")
	AttrRefined        = attribute.Key("search.refined")
	AttrResultCount    = attribute.Key("result.count")
)

// StartSpan starts a new span if the tracer is non-nil, otherwise returns the
// span already in ctx (a no-op span when there is none).
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError records err on span and marks the span failed. Nil spans and nil
// errors are ignored. The status description stays generic so provider URLs and
// tokens never end up in it; the error event carries the details.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}
