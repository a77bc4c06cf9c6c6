package app

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	storefrontapp "github.com/stacklok/storefront-catalog/internal/app"
	"github.com/stacklok/storefront-catalog/internal/config"
	"github.com/stacklok/storefront-catalog/internal/telemetry"
)

const (
	defaultGracefulTimeout   = 30 * time.Second // Kubernetes-friendly shutdown time
	telemetryShutdownTimeout = 5 * time.Second
)

func newServeCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the storefront API server",
		Long: `Start the storefront API server.

The server requires a configuration file (--config or STOREFRONT_CONFIG) that specifies:
- the catalog provider (upstream API or local catalog file)
- the response cache (none, memory or redis)
- visibility and option matching rules
- telemetry settings

See the examples/ directory for sample configurations.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), v.GetString("address"), v.GetString("config"))
		},
	}

	cmd.Flags().String("address", ":8080", "Address to listen on")
	cmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")
	for _, name := range []string{"address", "config"} {
		if err := v.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			slog.Error("Failed to bind flag", "flag", name, "error", err)
		}
	}

	return cmd
}

func runServe(ctx context.Context, address, configPath string) error {
	if configPath == "" {
		return fmt.Errorf("a configuration file is required (--config)")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(config.WithConfigPath(configPath))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.Info("Loaded configuration",
		"path", configPath,
		"store", cfg.GetStoreName(),
		"provider", cfg.Provider.Type,
		"cache", cfg.Cache.GetBackend())

	tel, err := telemetry.New(ctx,
		telemetry.WithTelemetryConfig(cfg.Telemetry),
		telemetry.WithStore(cfg.GetStoreName(), cfg.Provider.Type),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shutdown telemetry", "error", err)
		}
	}()

	app, err := storefrontapp.NewStorefrontApp(ctx,
		storefrontapp.WithConfig(cfg),
		storefrontapp.WithAddress(address),
		storefrontapp.WithMeterProvider(tel.MeterProvider()),
		storefrontapp.WithTracerProvider(tel.TracerProvider()),
		storefrontapp.WithMetricsHandler(tel.MetricsHandler()),
	)
	if err != nil {
		return fmt.Errorf("failed to create storefront app: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			_ = app.Stop(defaultGracefulTimeout)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	return app.Stop(defaultGracefulTimeout)
}
