package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve generation over HTTP",
		Long: `Loads the dictionary once and serves a JSON API:
  GET /api/generate      generate text (order, iterations, seed, source, start, save)
  GET /api/words/{name}  show a dictionary entry
  GET /api/stats         dictionary and model statistics
  GET /metrics           Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			d, err := a.loadDictionary(ctx)
			if err != nil {
				return err
			}
			store, closeStore, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			api := NewAPI(d, store, a.cfg, a.logger, reg)

			srv := &http.Server{
				Addr:        a.cfg.Server.Addr,
				Handler:     api.Routes(),
				ReadTimeout: time.Duration(a.cfg.Server.ReadTimeoutSec) * time.Second,
			}

			serverErrors := make(chan error, 1)
			go func() {
				a.logger.Info("Starting API server", "address", srv.Addr, "words", d.Len())
				serverErrors <- srv.ListenAndServe()
			}()

			select {
			case err = <-serverErrors:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("api server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			a.logger.Info("Stopping API server...")
			timeout := time.Duration(a.cfg.Server.ShutdownTimeoutSec) * time.Second
			shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			if err = srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("API server shutdown failed", "error", err)
				if err = srv.Close(); err != nil {
					a.logger.Error("Failed to close API server", "error", err)
				}
			}
			a.logger.Info("API server stopped.")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}
