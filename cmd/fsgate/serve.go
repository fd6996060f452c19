package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sagarc03/fsgate"
	"github.com/sagarc03/fsgate/config"
	"github.com/sagarc03/fsgate/database"
	"github.com/sagarc03/fsgate/filesystem"
	fsgatehttp "github.com/sagarc03/fsgate/http"
	"github.com/sagarc03/fsgate/keybackend"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the fsgate HTTP server.

The data directory is created if missing. An API key is required, either
inline (--api-key, FSGATE_AUTH_API_KEY, API_KEY) or from a file with one
key per line (--api-key-file).`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 5708, "HTTP server port (env: FSGATE_SERVER_PORT)")
	serveCmd.Flags().String("api-key", "", "API key clients must send (env: FSGATE_AUTH_API_KEY or API_KEY)")
	serveCmd.Flags().String("api-key-file", "", "file with accepted API keys, one per line")
	serveCmd.Flags().Bool("access-log", false, "log every request")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	keys, err := keybackend.NewStore(cfg.Auth.Keys())
	if err != nil {
		return fmt.Errorf("load api keys: %w", err)
	}

	if err := os.MkdirAll(cfg.Storage.Path, 0o750); err != nil {
		return fmt.Errorf("create storage directory: %w", err)
	}

	root, err := os.OpenRoot(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open storage root: %w", err)
	}
	defer func() { _ = root.Close() }()

	var journal fsgate.Journal
	if cfg.Journal.Enabled {
		db, err := openJournal(ctx, cfg.Journal)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		journal = db.Journal()
		slog.Info("journal enabled", "type", cfg.Journal.Type, "table", cfg.Journal.Table)
	}

	service, err := fsgate.NewService(filesystem.NewFileStorage(root), journal, fsgate.ServiceConfig{
		DataDir:  cfg.Storage.Path,
		MaxDepth: cfg.Server.MaxListDepth,
	})
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	handler := fsgatehttp.NewHandler(&fsgatehttp.HandlerConfig{
		Verifier:      keys,
		CORS:          cfg.CORS,
		MaxUploadSize: cfg.Server.MaxUploadSize,
		AccessLog:     cfg.Server.AccessLog,
	}, service)

	readTimeout, writeTimeout, idleTimeout := cfg.Server.Timeouts()
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "addr", server.Addr, "data_dir", cfg.Storage.Path)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// openJournal connects to the journal database and brings its schema up
// to date.
func openJournal(ctx context.Context, cfg config.JournalConfig) (database.Database, error) {
	db, err := database.Connect(ctx, cfg.Database())
	if err != nil {
		return nil, fmt.Errorf("connect journal: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}

	if err := db.Validate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("validate journal schema: %w", err)
	}

	return db, nil
}
