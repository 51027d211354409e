package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MRamiBalles/GiftQuest/server/internal/events"
	"github.com/MRamiBalles/GiftQuest/server/internal/infra/storage"
	"github.com/MRamiBalles/GiftQuest/server/internal/network"
	"github.com/MRamiBalles/GiftQuest/server/internal/platform/config"
	"github.com/MRamiBalles/GiftQuest/server/internal/platform/logger"
	"github.com/MRamiBalles/GiftQuest/server/internal/platform/metrics"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := root.load()
			if err != nil {
				return err
			}
			defer log.Sync()
			return serve(cmd.Context(), cfg, log)
		},
	}
}

func serve(parent context.Context, cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.Get()

	var persister events.EventPersister = storage.NewJournalWriter(nil, nil, m)
	var source network.JournalSource
	if !cfg.Storage.Disabled {
		log.Info("initializing SQLite journal", "path", cfg.Storage.Path)
		db, err := storage.InitSQLite(cfg.Storage.Path)
		if err != nil {
			return fmt.Errorf("init storage: %w", err)
		}
		defer closeDB(db, log)

		eventRepo := storage.NewSQLiteEventRepository(db)
		sessionRepo := storage.NewSQLiteSessionRepository(db)
		persister = storage.NewJournalWriter(eventRepo, sessionRepo, m)
		source = storage.NewRecapper(eventRepo, sessionRepo)
	} else {
		log.Warn("journal storage disabled, journals stay in memory")
	}

	hub := network.NewHub(cfg.Server, persister, m, log)
	go hub.Run(ctx)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: network.NewServer(cfg.Server, hub, source, m, log).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP API & WS server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func closeDB(db *sql.DB, log *logger.Logger) {
	if err := db.Close(); err != nil {
		log.Error("failed to close database", "error", err)
	}
}
