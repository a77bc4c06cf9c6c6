package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/storefront-catalog/internal/api"
	"github.com/stacklok/storefront-catalog/internal/app/storage"
	"github.com/stacklok/storefront-catalog/internal/config"
	"github.com/stacklok/storefront-catalog/internal/service"
	"github.com/stacklok/storefront-catalog/internal/service/storefront"
	"github.com/stacklok/storefront-catalog/internal/telemetry"
)

const (
	defaultHTTPAddress    = ":8080"
	defaultRequestTimeout = 10 * time.Second
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 15 * time.Second
	defaultIdleTimeout    = 60 * time.Second

	// searchTracerName names the tracer of the search service spans
	searchTracerName = "github.com/stacklok/storefront-catalog/storefront"
)

// StorefrontAppOptions is a function that configures the storefront app builder
type StorefrontAppOptions func(*storefrontAppConfig) error

// storefrontAppConfig collects what NewStorefrontApp needs. Component overrides
// exist mostly for tests; production wiring derives them from config.
type storefrontAppConfig struct {
	config *config.Config

	storageFactory storage.Factory

	// HTTP server options
	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration

	// Telemetry components
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	metricsHandler http.Handler
}

func baseConfig(opts ...StorefrontAppOptions) (*storefrontAppConfig, error) {
	cfg := &storefrontAppConfig{
		address:        defaultHTTPAddress,
		requestTimeout: defaultRequestTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
		idleTimeout:    defaultIdleTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// NewStorefrontApp creates the application from the given options
func NewStorefrontApp(
	ctx context.Context,
	opts ...StorefrontAppOptions,
) (*StorefrontApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}
	if cfg.config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if cfg.storageFactory == nil {
		cfg.storageFactory, err = storage.NewStorageFactory(cfg.config)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage factory: %w", err)
		}
	}

	// Ensure cleanup happens on error
	cleanupNeeded := true
	defer func() {
		if cleanupNeeded {
			cfg.storageFactory.Cleanup()
		}
	}()

	components, err := buildServiceComponents(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build service components: %w", err)
	}

	httpServer, err := buildHTTPServer(ctx, cfg, components.StorefrontService)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	appCtx, cancel := context.WithCancel(ctx)
	cleanupNeeded = false

	factory := cfg.storageFactory
	return &StorefrontApp{
		config:     cfg.config,
		components: components,
		httpServer: httpServer,
		ctx:        appCtx,
		cancelFunc: func() {
			factory.Cleanup()
			cancel()
		},
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) StorefrontAppOptions {
	return func(cfg *storefrontAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address
func WithAddress(addr string) StorefrontAppOptions {
	return func(cfg *storefrontAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, err := net.SplitHostPort(addr)
		if err != nil || port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		if host == "localhost" {
			host = "127.0.0.1"
		}
		if host == "" {
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(net.JoinHostPort(host, port)); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares replaces the default HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) StorefrontAppOptions {
	return func(cfg *storefrontAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithRequestTimeout sets the per-request timeout of the default middlewares
func WithRequestTimeout(d time.Duration) StorefrontAppOptions {
	return func(cfg *storefrontAppConfig) error {
		if d <= 0 {
			return fmt.Errorf("request timeout must be positive")
		}
		cfg.requestTimeout = d
		return nil
	}
}

// WithStorageFactory allows injecting a custom storage factory (for testing)
func WithStorageFactory(f storage.Factory) StorefrontAppOptions {
	return func(cfg *storefrontAppConfig) error {
		cfg.storageFactory = f
		return nil
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider for HTTP and search metrics
func WithMeterProvider(mp metric.MeterProvider) StorefrontAppOptions {
	return func(cfg *storefrontAppConfig) error {
		cfg.meterProvider = mp
		return nil
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider for HTTP and search spans
func WithTracerProvider(tp trace.TracerProvider) StorefrontAppOptions {
	return func(cfg *storefrontAppConfig) error {
		cfg.tracerProvider = tp
		return nil
	}
}

// WithMetricsHandler serves the given handler at /metrics
func WithMetricsHandler(h http.Handler) StorefrontAppOptions {
	return func(cfg *storefrontAppConfig) error {
		cfg.metricsHandler = h
		return nil
	}
}

// buildServiceComponents builds the catalog provider and the storefront service
func buildServiceComponents(
	ctx context.Context,
	b *storefrontAppConfig,
) (*AppComponents, error) {
	slog.Info("Initializing service components", "store", b.config.GetStoreName())

	provider, err := b.storageFactory.CreateProvider(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog provider: %w", err)
	}

	svcOpts := []storefront.Option{storefront.WithFilterConfig(b.config.Filtering)}

	if b.tracerProvider != nil {
		svcOpts = append(svcOpts, storefront.WithTracer(b.tracerProvider.Tracer(searchTracerName)))
	}

	if b.meterProvider != nil {
		searchMetrics, err := telemetry.NewSearchMetrics(b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create search metrics: %w", err)
		}
		if searchMetrics != nil {
			svcOpts = append(svcOpts, storefront.WithMetrics(searchMetrics))
			slog.Info("Search metrics enabled")
		}
	}

	svc, err := storefront.New(provider, svcOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storefront service: %w", err)
	}

	slog.Info("Service components initialized successfully", "source", provider.GetSource())
	return &AppComponents{
		Provider:          provider,
		StorefrontService: svc,
	}, nil
}

// buildHTTPServer builds the HTTP server with router and middleware
//
//nolint:unparam // we prefer having a similar interface
func buildHTTPServer(
	_ context.Context,
	b *storefrontAppConfig,
	svc service.StorefrontService,
) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	// Telemetry middlewares go first so rejected and timed out requests are observed too
	var telemetryMiddlewares []func(http.Handler) http.Handler
	if b.meterProvider != nil {
		metricsMiddleware, err := telemetry.MetricsMiddleware(b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics middleware: %w", err)
		}
		if metricsMiddleware != nil {
			telemetryMiddlewares = append(telemetryMiddlewares, metricsMiddleware)
			slog.Info("HTTP metrics middleware enabled")
		}
	}
	if b.tracerProvider != nil {
		telemetryMiddlewares = append(telemetryMiddlewares, telemetry.TracingMiddleware(b.tracerProvider))
		slog.Info("HTTP tracing middleware enabled")
	}
	b.middlewares = append(telemetryMiddlewares, b.middlewares...)

	router := api.NewServer(svc,
		api.WithMiddlewares(b.middlewares...),
		api.WithMetricsHandler(b.metricsHandler),
	)

	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server, nil
}
