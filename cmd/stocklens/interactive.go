package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"StockLens/internal/presenter"
)

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"ui"},
	Short:   "Prompt for symbols and render reports in the terminal",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a := newApp(cfg)
		return presenter.Run(ctx, a.builder, presenter.SurveyPrompter{}, os.Stdout)
	},
}
