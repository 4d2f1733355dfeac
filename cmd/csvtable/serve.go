package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvtable/internal/config"
	"github.com/JonMunkholm/csvtable/internal/core"
	"github.com/JonMunkholm/csvtable/internal/history"
	"github.com/JonMunkholm/csvtable/internal/logging"
	"github.com/JonMunkholm/csvtable/internal/source"
	"github.com/JonMunkholm/csvtable/internal/web"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Data Endpoint backend",
		Long: "Run the HTTP backend. GET /api/data fetches the configured S3 object,\n" +
			"decodes it and returns the rows as JSON on every call.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, err := config.Load(config.WithFile(opts.configPath))
	if err != nil {
		return err
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"source", cfg.Storage.Location(),
		"fetch_max_concurrent", cfg.Data.MaxConcurrent,
		"history_enabled", cfg.Database.Enabled(),
		"rate_limit_enabled", cfg.Rate.Enabled,
		"api_key_required", cfg.Security.RequireAPIKey,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	limiter := core.NewFetchLimiter(cfg.Data.MaxConcurrent, cfg.Data.MaxWaitTime)
	serviceOpts := []core.Option{core.WithLimiter(limiter)}

	var hist history.Lister = history.Disabled{}
	if cfg.Database.Enabled() {
		pool, err := openPool(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()

		store := history.NewStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("prepare history schema: %w", err)
		}
		serviceOpts = append(serviceOpts, core.WithRecorder(store))
		hist = store
	}

	service := core.NewService(source.New(cfg.Storage), serviceOpts...)
	srv := web.NewServer(service, hist, cfg)

	return serveUntilSignal(ctx, srv, cfg.Server.Addr(), cfg.Server.ShutdownTimeout, func(ctx context.Context) error {
		if st := limiter.Status(); st.Active > 0 {
			slog.Info("waiting for fetches to complete", "active", st.Active)
		}
		if err := limiter.Drain(ctx); err != nil {
			slog.Warn("fetches did not complete in time", "error", err)
		}
		return nil
	})
}

// openPool connects to the history database and verifies the connection.
func openPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to history database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to history database")
	}
	return pool, nil
}
