package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"todo/internal/config"
	"todo/internal/server"
	"todo/internal/storage/sqlite"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr, staticDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the todo API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if addr != "" {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("static") {
				cfg.StaticDir = staticDir
			}

			logger := a.logger
			logger.Info("todo server", slog.String("version", version), slog.String("env", cfg.Environment))

			store, err := sqlite.Open(cfg.DBPath, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			srv := server.New(store, logger, serverOptions(cfg))

			httpServer := &http.Server{
				Addr:              cfg.Addr,
				Handler:           srv.Engine(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("starting server", slog.String("addr", httpServer.Addr), slog.String("api_prefix", cfg.APIPrefix))
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return err
				}
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("failed to shutdown server", slog.String("error", err.Error()))
			}
			logger.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	cmd.Flags().StringVar(&staticDir, "static", "", "directory with built frontend; empty disables it")
	return cmd
}

func serverOptions(cfg config.Config) server.Options {
	return server.Options{
		StaticDir:       cfg.StaticDir,
		APIPrefix:       cfg.APIPrefix,
		DefaultPageSize: cfg.DefaultPageSize,
		MaxPageSize:     cfg.MaxPageSize,
		Debug:           !cfg.IsProduction(),
	}
}
