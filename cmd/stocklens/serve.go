package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"StockLens/internal/metrics"
	"StockLens/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve reports over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a := newApp(cfg)
		if cfg.Metrics.Addr != "" {
			ms := metrics.Serve(cfg.Metrics.Addr)
			logger.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics listening")
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = ms.Shutdown(shutdownCtx)
			}()
		}

		logger.Info().Str("addr", cfg.Server.Addr).Msg("report server listening")
		return server.New(a.builder, logger).ListenAndServe(ctx, cfg.Server.Addr)
	},
}
