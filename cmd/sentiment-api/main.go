// Command sentiment-api serves canned text-analysis results at GET /analyze/{symbol}.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"StockLens/internal/config"
	"StockLens/internal/logging"
	"StockLens/internal/sentimentapi"
)

var (
	configPath string
	addr       string
	sqlitePath string
)

var rootCmd = &cobra.Command{
	Use:          "sentiment-api",
	Short:        "Serve the text-analysis API backed by memory or SQLite",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.PathFromEnv(), "configuration file path")
	rootCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	rootCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "SQLite database path; empty keeps analyses in memory")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if addr != "" {
		cfg.SentimentAPI.Addr = addr
	}
	if sqlitePath != "" {
		cfg.SentimentAPI.SQLitePath = sqlitePath
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store sentimentapi.Store
	if cfg.SentimentAPI.SQLitePath != "" {
		ss, err := sentimentapi.NewSQLiteStore(cfg.SentimentAPI.SQLitePath)
		if err != nil {
			return fmt.Errorf("open sqlite store: %w", err)
		}
		seedCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = ss.Seed(seedCtx, sentimentapi.DefaultAnalyses())
		cancel()
		if err != nil {
			ss.Close()
			return fmt.Errorf("seed sqlite store: %w", err)
		}
		store = ss
		logger.Info().Str("path", cfg.SentimentAPI.SQLitePath).Msg("using sqlite store")
	} else {
		store = sentimentapi.NewMemoryStore(sentimentapi.DefaultAnalyses())
		logger.Info().Msg("using in-memory store")
	}
	defer store.Close()

	logger.Info().Str("addr", cfg.SentimentAPI.Addr).Msg("sentiment api listening")
	return sentimentapi.NewServer(store, logger, time.Now).ListenAndServe(ctx, cfg.SentimentAPI.Addr)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
