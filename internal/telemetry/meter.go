package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultMetricsInterval is how often OTLP metrics are pushed
const DefaultMetricsInterval = 60 * time.Second

// newMeterProvider returns an SDK meter provider whose reader is either an OTLP push
// exporter or a Prometheus collector registered with reg, or a no-op provider when
// metrics are off.
func newMeterProvider(
	ctx context.Context, settings exportSettings, mc *MetricsConfig, reg prometheus.Registerer,
) (metric.MeterProvider, error) {
	if mc == nil || !mc.Enabled {
		slog.Info("Metrics disabled, using no-op meter provider")
		return noop.NewMeterProvider(), nil
	}

	var (
		reader sdkmetric.Reader
		err    error
	)
	switch mc.GetExporter() {
	case ExporterPrometheus:
		reader, err = otelprom.New(otelprom.WithRegisterer(reg))
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
	default:
		reader, err = newOTLPMetricReader(ctx, settings)
		if err != nil {
			return nil, err
		}
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(settings.resource),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp)

	slog.Info("Metrics initialized", "exporter", mc.GetExporter(), "endpoint", settings.endpoint)
	return mp, nil
}

func newOTLPMetricReader(ctx context.Context, settings exportSettings) (sdkmetric.Reader, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(settings.endpoint)}
	if settings.insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(DefaultMetricsInterval)), nil
}
