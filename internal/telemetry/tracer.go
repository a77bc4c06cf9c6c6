package telemetry

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// newTracerProvider exports sampled spans over OTLP HTTP, or returns a no-op
// provider when tracing is off. The SDK provider is installed globally together
// with the W3C trace context and baggage propagators.
func newTracerProvider(ctx context.Context, settings exportSettings, tc *TracingConfig) (trace.TracerProvider, error) {
	if tc == nil || !tc.Enabled {
		slog.Info("Tracing disabled, using no-op tracer provider")
		return noop.NewTracerProvider(), nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(settings.endpoint)}
	if settings.insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	sampling := tc.GetSampling()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(settings.resource),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampling))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if settings.insecure {
		slog.Warn("Tracing sends spans over unencrypted HTTP", "endpoint", settings.endpoint)
	}
	slog.Info("Tracing initialized", "endpoint", settings.endpoint, "sampling_ratio", sampling)

	return tp, nil
}
