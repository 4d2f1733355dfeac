package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvtable/internal/apiclient"
	"github.com/JonMunkholm/csvtable/internal/config"
	"github.com/JonMunkholm/csvtable/internal/logging"
	"github.com/JonMunkholm/csvtable/internal/tui"
	"github.com/JonMunkholm/csvtable/internal/ui"
)

func newUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Serve the browser table view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadClient(config.WithFile(opts.configPath))
			if err != nil {
				return err
			}
			logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
			slog.Info("configuration loaded", "api", cfg.API.BaseURL, "addr", cfg.UI.Addr())

			srv := ui.NewServer(newAPIClient(cfg), cfg)
			return serveUntilSignal(cmd.Context(), srv, cfg.UI.Addr(), cfg.API.Timeout, nil)
		},
	}
}

func newTUICmd(opts *rootOptions) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the table in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadClient(config.WithFile(opts.configPath))
			if err != nil {
				return err
			}

			// The terminal is owned by the view; logs go to a file or nowhere.
			var w io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				w = f
			}
			logging.SetupWriter(w, cfg.Logging.Level, cfg.Logging.Format)

			return tui.Run(cmd.Context(), newAPIClient(cfg))
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "append logs to this file")
	return cmd
}

func newAPIClient(cfg *config.ClientConfig) *apiclient.Client {
	return apiclient.New(cfg.API.BaseURL,
		apiclient.WithAPIKey(cfg.API.Key),
		apiclient.WithTimeout(cfg.API.Timeout),
	)
}
