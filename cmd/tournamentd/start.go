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

	"github.com/cometbft/cometbft/abci/server"
	"github.com/spf13/cobra"

	"onchaintournament/internal/app"
	"onchaintournament/internal/config"
	"onchaintournament/internal/metrics"
)

func newStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the ABCI application server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := cfg.NewLogger(os.Stdout)
			if err != nil {
				return err
			}

			a, err := app.New(cfg.Home, logger, cfg.KeepRecent)
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}
			defer func() { _ = a.Close() }()

			srv, err := server.NewServer(cfg.ABCIAddr, cfg.Transport, a)
			if err != nil {
				return fmt.Errorf("create abci server: %w", err)
			}
			if err := srv.Start(); err != nil {
				return fmt.Errorf("abci server start: %w", err)
			}
			defer func() { _ = srv.Stop() }()
			logger.Info("abci server listening", "addr", cfg.ABCIAddr, "transport", cfg.Transport)

			var metricsSrv *http.Server
			if cfg.MetricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", metrics.Handler())
				metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
				go func() {
					if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error("metrics server stopped", "err", err)
					}
				}()
				logger.Info("metrics listening", "addr", cfg.MetricsAddr)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()
			logger.Info("shutting down")

			if metricsSrv != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = metricsSrv.Shutdown(shutdownCtx)
			}
			return nil
		},
	}
	config.AddFlags(cmd.Flags())
	return cmd
}
