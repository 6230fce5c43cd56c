package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"StockLens/internal/presenter"
)

var reportCmd = &cobra.Command{
	Use:   "report [symbol]",
	Short: "Build one report and print it",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReport,
}

var (
	reportWindow int
	reportJSON   bool
)

func init() {
	reportCmd.Flags().IntVarP(&reportWindow, "window", "w", 0, "lookback window in calendar days (default from config)")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print the report as JSON")
}

func runReport(cmd *cobra.Command, args []string) error {
	symbol := presenter.DefaultSymbol
	if len(args) == 1 {
		symbol = args[0]
	}

	a := newApp(cfg)
	rep, err := a.builder.BuildWindow(cmd.Context(), symbol, reportWindow)
	if err != nil {
		if !reportJSON {
			fmt.Fprintln(os.Stdout, presenter.RenderError(symbol, err))
		}
		return err
	}

	if reportJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	fmt.Fprintln(os.Stdout, presenter.RenderReport(rep))
	return nil
}
