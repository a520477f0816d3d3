package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stylemcp/internal/app"
	"stylemcp/internal/domain"
	"stylemcp/internal/infra/config"
	"stylemcp/internal/infra/gateway"
	"stylemcp/internal/infra/telemetry"
	"stylemcp/internal/infra/upstream"
)

var version = "0.1.0"

type rootOptions struct {
	configPath string
	logger     *zap.Logger
}

func main() {
	opts := rootOptions{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "stylemcp",
		Short: "MCP server for fashion recommendation tools",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := zap.NewProductionConfig()
			// stdout carries the MCP protocol; logs must stay off it.
			cfg.OutputPaths = []string{"stderr"}
			cfg.ErrorOutputPaths = []string{"stderr"}
			log, err := cfg.Build()
			if err != nil {
				return err
			}
			opts.logger = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = opts.logger.Sync()
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to YAML config file (STYLEMCP_* env vars apply either way)")

	root.AddCommand(serveCommand(&opts))
	root.AddCommand(configCommand(&opts))

	if err := root.Execute(); err != nil {
		opts.logger.Fatal("command failed", zap.Error(err))
	}
}

func serveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP protocol over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return serve(ctx, cfg, opts)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, opts *rootOptions) error {
	logger := opts.logger

	registry := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(registry)

	client, err := upstream.New(upstream.Options{
		Config: upstream.Config{
			BaseURL:    cfg.Upstream.BaseURL,
			AppID:      cfg.Upstream.AppID,
			APIVersion: cfg.Upstream.APIVersion,
			Region:     cfg.Upstream.Region,
			Locale:     cfg.Upstream.Locale,
			RetryCount: cfg.Upstream.RetryCount,
			RetryDelay: cfg.Upstream.RetryDelay(),
			Timeout:    cfg.Upstream.Timeout(),
		},
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return err
	}

	service := app.NewService(app.ServiceOptions{
		Upstream:         client,
		Store:            domain.NewResourceStore(cfg.Store.MaxEntries),
		Logger:           logger,
		Metrics:          metrics,
		CacheEnabled:     cfg.Cache.Enabled,
		CacheTTL:         cfg.Cache.TTL(),
		DefaultSessionID: cfg.Upstream.SessionID,
	})

	gw, err := gateway.New(gateway.Options{
		Service:  service,
		Logger:   logger,
		Version:  version,
		Features: cfg.Features,
	})
	if err != nil {
		return err
	}

	if cfg.Cache.Enabled {
		service.StartSweepers(ctx, cfg.Cache.SweepInterval())
	}

	go func() {
		err := telemetry.StartHTTPServer(ctx, telemetry.HTTPServerOptions{
			Addr:          cfg.Observability.ListenAddress,
			EnableMetrics: cfg.Observability.Metrics,
			EnableHealthz: cfg.Observability.Healthz,
			Registry:      registry,
		}, logger)
		if err != nil {
			logger.Warn("observability server stopped", zap.Error(err))
		}
	}()

	if opts.configPath != "" {
		watcher := config.NewWatcher(opts.configPath, logger, func(next config.Config) {
			gw.ApplyFeatures(next.Features)
		})
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Warn("config watcher stopped", zap.Error(err))
			}
		}()
	}

	return gw.Run(ctx)
}

func configCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			data, err := cfg.Dump()
			if err != nil {
				return err
			}
			fmt.Fprint(os.Stdout, string(data))
			return nil
		},
	})
	return cmd
}
