package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// SearchMetricsMeterName is the name used for the search metrics meter
	SearchMetricsMeterName = "github.com/stacklok/storefront-catalog/search"
)

// SearchMetrics holds the instruments recorded by the storefront search pipeline
type SearchMetrics struct {
	searchDuration metric.Float64Histogram
	searchResults  metric.Int64Histogram
	providerErrors metric.Int64Counter
}

// NewSearchMetrics creates a new SearchMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSearchMetrics(provider metric.MeterProvider) (*SearchMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SearchMetricsMeterName)

	searchDuration, err := meter.Float64Histogram(
		"storefront_search_duration_seconds",
		metric.WithDescription("Duration of storefront searches in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	searchResults, err := meter.Int64Histogram(
		"storefront_search_results",
		metric.WithDescription("Number of products returned by a search"),
		metric.WithUnit("{product}"),
		metric.WithExplicitBucketBoundaries(0, 1, 5, 10, 25, 50, 100, 250),
	)
	if err != nil {
		return nil, err
	}

	providerErrors, err := meter.Int64Counter(
		"storefront_provider_errors_total",
		metric.WithDescription("Number of failed catalog provider calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &SearchMetrics{
		searchDuration: searchDuration,
		searchResults:  searchResults,
		providerErrors: providerErrors,
	}, nil
}

// RecordSearch records one completed search
func (m *SearchMetrics) RecordSearch(ctx context.Context, collection string, duration time.Duration, results int, success bool) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.Bool("collection_scoped", collection != ""),
		attribute.Bool("success", success),
	)
	m.searchDuration.Record(ctx, duration.Seconds(), attrs)
	if success {
		m.searchResults.Record(ctx, int64(results), attrs)
	}
}

// RecordProviderError counts a failed provider operation ("search" or "collections")
func (m *SearchMetrics) RecordProviderError(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.providerErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}
