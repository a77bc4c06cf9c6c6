package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	storefrontotel "github.com/stacklok/storefront-catalog/internal/otel"
)

// exportSettings is what the tracer and meter providers share: the resource that
// identifies this storefront and where the OTLP exporters send data.
type exportSettings struct {
	resource *resource.Resource
	endpoint string
	insecure bool
}

// newExportSettings builds the shared settings from cfg and the storefront identity.
// Empty store fields are left off the resource.
func newExportSettings(ctx context.Context, cfg *Config, store storeIdentity) (exportSettings, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.GetServiceName()),
		semconv.ServiceVersion(cfg.GetServiceVersion()),
	}
	if store.name != "" {
		attrs = append(attrs, storefrontotel.AttrStoreName.String(store.name))
	}
	if store.providerType != "" {
		attrs = append(attrs, storefrontotel.AttrProviderType.String(store.providerType))
	}

	// resource.New rather than resource.Merge(resource.Default(), ...) avoids
	// schema URL conflicts between semconv versions.
	res, err := resource.New(ctx,
		resource.WithAttributes(attrs...),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return exportSettings{}, fmt.Errorf("failed to create resource: %w", err)
	}

	return exportSettings{
		resource: res,
		endpoint: cfg.GetEndpoint(),
		insecure: cfg.Insecure,
	}, nil
}
