package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/artpar/shelf/internal/authority"
	"github.com/artpar/shelf/internal/authority/sqlite"
	"github.com/artpar/shelf/internal/logging"
)

const shutdownTimeout = 10 * time.Second

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Addr    string
	DBPath  string
	Catalog string
}

// NewServeCommand creates the serve command.
func NewServeCommand(root *rootOptions) *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo catalog authority",
		Long:  "Serve the dashboard, cart and recommendation endpoints backed by a local SQLite database.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "SQLite database path (default from config)")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "Catalog YAML file (default built-in)")

	return cmd
}

func runServe(cmd *cobra.Command, root *rootOptions, opts *ServeOptions) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if opts.Addr != "" {
		cfg.Serve.Addr = opts.Addr
	}
	if opts.DBPath != "" {
		cfg.Serve.DBPath = opts.DBPath
	}
	if opts.Catalog != "" {
		cfg.Serve.CatalogPath = opts.Catalog
	}

	logger := logging.NewWithWriter("authority", cfg.LogLevel, cmd.OutOrStdout())

	handler, cleanup, err := newAuthority(cfg.Serve.CatalogPath, cfg.DBPath(), logger)
	if err != nil {
		return err
	}
	defer cleanup()

	ln, err := net.Listen("tcp", cfg.Serve.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Serve.Addr, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serveAuthority(ctx, ln, handler, logger)
}

// newAuthority opens the store and builds the routed handler.
func newAuthority(catalogPath, dbPath string, logger *slog.Logger) (http.Handler, func(), error) {
	catalog, err := authority.LoadCatalog(catalogPath)
	if err != nil {
		return nil, nil, err
	}

	var store *sqlite.Store
	if dbPath == "" || dbPath == ":memory:" {
		store, err = sqlite.NewInMemory()
	} else {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, nil, fmt.Errorf("create data directory: %w", err)
		}
		store, err = sqlite.New(dbPath)
	}
	if err != nil {
		return nil, nil, err
	}

	server, err := authority.NewServer(catalog, store, authority.WithLogger(logger))
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close store", slog.String("error", err.Error()))
		}
	}
	return server.Handler(), cleanup, nil
}

// serveAuthority serves h on ln until ctx is done, then shuts down gracefully.
func serveAuthority(ctx context.Context, ln net.Listener, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("authority listening", slog.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down authority")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
