package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Telemetry owns the tracer and meter providers of one storefront API process.
type Telemetry struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	metricsHandler http.Handler
	resource       *resource.Resource
}

// storeIdentity names the storefront on exported telemetry
type storeIdentity struct {
	name         string
	providerType string
}

// Option configures New
type Option func(*telemetryConfig)

type telemetryConfig struct {
	config *Config
	store  storeIdentity
}

// WithTelemetryConfig sets the telemetry configuration
func WithTelemetryConfig(cfg *Config) Option {
	return func(tc *telemetryConfig) {
		tc.config = cfg
	}
}

// WithStore tags every exported span and metric with the store name and the
// catalog provider type it serves from.
func WithStore(name, providerType string) Option {
	return func(tc *telemetryConfig) {
		tc.store = storeIdentity{name: name, providerType: providerType}
	}
}

// New builds the providers described by the configuration. Without a config, or
// with telemetry disabled, both providers are no-ops and nothing is exported.
// The caller must call Shutdown to flush pending data.
func New(ctx context.Context, opts ...Option) (*Telemetry, error) {
	cfg := &telemetryConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.config == nil || !cfg.config.Enabled {
		slog.Debug("Telemetry disabled")
		return &Telemetry{
			tracerProvider: tracenoop.NewTracerProvider(),
			meterProvider:  metricnoop.NewMeterProvider(),
		}, nil
	}

	if err := cfg.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry configuration: %w", err)
	}

	settings, err := newExportSettings(ctx, cfg.config, cfg.store)
	if err != nil {
		return nil, err
	}

	slog.Info("Initializing telemetry",
		"service_name", cfg.config.GetServiceName(),
		"service_version", cfg.config.GetServiceVersion(),
		"store", cfg.store.name)

	tracerProvider, err := newTracerProvider(ctx, settings, cfg.config.Tracing)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer provider: %w", err)
	}

	// A registry per instance; the global one would reject a second collector.
	registry := prometheus.NewRegistry()
	meterProvider, err := newMeterProvider(ctx, settings, cfg.config.Metrics, registry)
	if err != nil {
		if tp, ok := tracerProvider.(*sdktrace.TracerProvider); ok {
			_ = tp.Shutdown(ctx)
		}
		return nil, fmt.Errorf("failed to create meter provider: %w", err)
	}

	t := &Telemetry{
		tracerProvider: tracerProvider,
		meterProvider:  meterProvider,
		resource:       settings.resource,
	}
	if m := cfg.config.Metrics; m != nil && m.Enabled && m.GetExporter() == ExporterPrometheus {
		t.metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}
	return t, nil
}

// TracerProvider returns the configured tracer provider
func (t *Telemetry) TracerProvider() trace.TracerProvider {
	return t.tracerProvider
}

// MeterProvider returns the configured meter provider
func (t *Telemetry) MeterProvider() metric.MeterProvider {
	return t.meterProvider
}

// MetricsHandler returns the Prometheus scrape handler, or nil unless the
// prometheus exporter is enabled.
func (t *Telemetry) MetricsHandler() http.Handler {
	return t.metricsHandler
}

// Resource returns the resource attached to exported data, nil when disabled.
func (t *Telemetry) Resource() *resource.Resource {
	return t.resource
}

// Shutdown flushes and stops the SDK providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if tp, ok := t.tracerProvider.(*sdktrace.TracerProvider); ok {
		if err := tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown tracer provider: %w", err))
		}
	}
	if mp, ok := t.meterProvider.(*sdkmetric.MeterProvider); ok {
		if err := mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown meter provider: %w", err))
		}
	}
	return errors.Join(errs...)
}
