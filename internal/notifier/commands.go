package notifier

import (
	"context"
	"strings"

	"StockLens/internal/report"
)

const helpText = "可用命令:\n• /report 代碼 (例: /report 2330.TW)\n• /help"

// ReportCommands answers /report SYMBOL with a freshly built report. A bare /report uses
// defaultSymbol.
func ReportCommands(builder report.Builder, defaultSymbol string) CommandHandler {
	return func(ctx context.Context, command string) string {
		fields := strings.Fields(command)
		if len(fields) == 0 {
			return ""
		}
		// commands in groups arrive as /report@BotName
		name, _, _ := strings.Cut(fields[0], "@")
		switch name {
		case "/report", "查看報告":
			symbol := defaultSymbol
			if len(fields) > 1 {
				symbol = fields[1]
			}
			rep, err := builder.Build(ctx, symbol)
			if err != nil {
				return FormatError(strings.ToUpper(symbol), err)
			}
			return FormatReport(rep)
		default:
			return helpText
		}
	}
}
