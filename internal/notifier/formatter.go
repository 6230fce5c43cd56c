package notifier

import (
	"fmt"
	"html"
	"strings"

	"StockLens/internal/model"
	"StockLens/internal/presenter"
)

// FormatReport formats a unified report into a Telegram HTML message.
func FormatReport(r *model.UnifiedReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s %s 分析報告</b> | %s\n\n",
		esc(r.Symbol), esc(presenter.StockName(r.Symbol)), r.LatestDate.Format("2006-01-02")))

	b.WriteString(fmt.Sprintf("最新收盤價: %s\n", presenter.FormatPrice(r.Symbol, r.LatestPrice)))
	if !r.Range.High.IsZero() {
		b.WriteString(fmt.Sprintf("區間高/低: %s / %s (位置 %s%%)\n",
			r.Range.High.StringFixed(2), r.Range.Low.StringFixed(2), r.Range.Position.Shift(2).StringFixed(0)))
	}
	if r.Trend.Short.Valid && r.Trend.Long.Valid {
		b.WriteString(fmt.Sprintf("MA%d: %s | MA%d: %s\n",
			r.Averages.ShortWindow, r.Trend.Short.Decimal.StringFixed(2), r.Averages.LongWindow, r.Trend.Long.Decimal.StringFixed(2)))
	}
	b.WriteString(fmt.Sprintf("\n📈 <b>量化分析:</b> %s\n", esc(r.Trend.Kind.Label())))
	b.WriteString(fmt.Sprintf("   %s\n", esc(r.Trend.Rationale)))

	b.WriteString(fmt.Sprintf("\n🤖 <b>AI 文本分析:</b> %s\n", esc(r.Sentiment.Emotion)))
	b.WriteString(fmt.Sprintf("   %s\n", esc(r.Sentiment.Conclusion)))
	if r.Degraded() {
		b.WriteString("   ⚠️ AI 文本分析暫不可用\n")
	}

	if len(r.Sentiment.PositivePoints) > 0 {
		b.WriteString("\n✅ <b>正面/利多消息:</b>\n")
		for _, p := range r.Sentiment.PositivePoints {
			b.WriteString("  • " + esc(p) + "\n")
		}
	}
	if len(r.Sentiment.NegativePoints) > 0 {
		b.WriteString("\n🔴 <b>負面/需注意消息:</b>\n")
		for _, p := range r.Sentiment.NegativePoints {
			b.WriteString("  • " + esc(p) + "\n")
		}
	}
	return b.String()
}

// FormatError formats a failed report request.
func FormatError(symbol string, err error) string {
	kind := model.KindOf(err)
	if kind == "" {
		kind = "ERROR"
	}
	msg := fmt.Sprintf("❌ <b>%s 報告生成失敗</b>\n原因: %s", esc(symbol), esc(string(kind)))
	if model.Retryable(err) {
		msg += "\n稍後可再試一次。"
	}
	return msg
}

func esc(s string) string { return html.EscapeString(s) }
