// Command csvtable serves a CSV object from S3 as JSON and displays it as a
// searchable, sortable, paginated table in a browser or terminal.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		slog.Error("csvtable failed", "error", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "csvtable",
		Short:         "Serve and browse a CSV file stored in S3",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			loadEnvFile(opts.envFile)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "TOML config file (environment variables take precedence)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")

	root.AddCommand(
		newServeCmd(opts),
		newUICmd(opts),
		newTUICmd(opts),
	)
	return root
}

// loadEnvFile loads path if it exists. Overload overwrites existing env vars.
func loadEnvFile(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Overload(path); err != nil {
		slog.Debug("no env file loaded, using environment variables", "path", path)
		return
	}
	slog.Debug("loaded env file (overwriting existing env vars)", "path", path)
}

// server is what serveUntilSignal runs.
type server interface {
	Serve(ln net.Listener) error
	Shutdown(ctx context.Context) error
}

// serveUntilSignal serves on addr until SIGINT, SIGTERM or ctx ends, then
// shuts down within shutdownTimeout. afterShutdown runs once the listener
// is closed, still bounded by the same timeout.
func serveUntilSignal(ctx context.Context, srv server, addr string, shutdownTimeout time.Duration, afterShutdown func(context.Context) error) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server starting", "addr", ln.Addr().String())
		return srv.Serve(ln)
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		if afterShutdown != nil {
			err = errors.Join(err, afterShutdown(shutdownCtx))
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}
