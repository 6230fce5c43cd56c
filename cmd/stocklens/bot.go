package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"StockLens/internal/notifier"
	"StockLens/internal/scheduler"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Answer Telegram report commands and push scheduled reports",
	Args:  cobra.NoArgs,
	RunE:  runBot,
}

func runBot(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateTelegram(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := newApp(cfg)
	tn := notifier.NewTelegramNotifier(notifier.Options{
		BotToken: cfg.Telegram.BotToken,
		ChatID:   cfg.Telegram.ChatID,
		Proxy:    cfg.Proxy,
		Logger:   logger,
	})

	sched := scheduler.NewScheduler(ctx, a.builder, tn, a.history, cfg.Schedule.WatchSymbol, logger)
	if err := sched.RegisterAll(cfg.Schedule.WatchCron, cfg.Schedule.SweepCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, notifier.ReportCommands(a.builder, cfg.Schedule.WatchSymbol))
	logger.Info().Msg("telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		logger.Info().Str("symbol", cfg.Schedule.WatchSymbol).Msg("RUN_ON_START enabled, pushing report now")
		go sched.RunWatchNow()
	}

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received, stopping")
	return nil
}
