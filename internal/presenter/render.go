package presenter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"StockLens/internal/model"
)

// recentRows is how many moving-average rows the report page lists.
const recentRows = 5

var cst = time.FixedZone("CST", 8*3600)

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		MarginBottom(1)

	captionStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280"))

	metricStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3B82F6")).
		Padding(0, 2)

	sectionStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#3B82F6")).
		MarginTop(1)

	positiveStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)

	negativeStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444")).
		Bold(true)

	warnStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F59E0B")).
		Bold(true)

	errorBoxStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#EF4444")).
		Padding(1, 2)
)

// Render draws the current page.
func Render(s State) string {
	switch {
	case s.Page == PageInput:
		return captionStyle.Render(fmt.Sprintf("請輸入股票代碼 (例: 2330.TW, 00878.TW)，目前: %s", s.Symbol))
	case s.Err != nil:
		return RenderError(s.Symbol, s.Err)
	case s.Report != nil:
		return RenderReport(s.Report)
	default:
		return captionStyle.Render(fmt.Sprintf("正在生成 %s 的分析報告...", s.Symbol))
	}
}

// RenderReport draws the full report page.
func RenderReport(r *model.UnifiedReport) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("📊 %s %s 最終分析報告", r.Symbol, StockName(r.Symbol))))
	b.WriteString("\n")
	b.WriteString(captionStyle.Render("發布時間：" + r.FetchedAt.In(cst).Format("2006-01-02 15:04:05") + " CST"))
	b.WriteString("\n")

	metrics := lipgloss.JoinHorizontal(lipgloss.Top,
		metricStyle.Render("最新收盤價\n"+FormatPrice(r.Symbol, r.LatestPrice)),
		metricStyle.Render("最新交易日\n"+r.LatestDate.Format("2006-01-02")),
		metricStyle.Render("⚡️ 綜合結論\n"+r.Sentiment.Emotion),
	)
	b.WriteString(metrics)
	b.WriteString("\n")

	if r.Degraded() {
		b.WriteString(warnStyle.Render("⚠ AI 文本分析暫不可用，以下僅含量化分析結果。"))
		b.WriteString("\n")
	}

	b.WriteString(sectionStyle.Render("趨勢判斷與分析"))
	b.WriteString("\n")
	b.WriteString(table.New().
		Border(lipgloss.NormalBorder()).
		Headers("分析類別", "趨勢", "簡要說明").
		Row("量化分析", r.Trend.Kind.Label(), r.Trend.Rationale).
		Row("AI 文本分析", r.Sentiment.Emotion, r.Sentiment.Conclusion).
		Row("綜合結論", r.Sentiment.Emotion, r.Sentiment.Conclusion).
		String())
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("📰 即時新聞摘要 (AI 情感分析)"))
	b.WriteString("\n")
	b.WriteString(positiveStyle.Render("✅ 正面/利多消息："))
	b.WriteString("\n")
	writeBullets(&b, r.Sentiment.PositivePoints)
	b.WriteString(negativeStyle.Render("🔴 負面/需注意消息："))
	b.WriteString("\n")
	writeBullets(&b, r.Sentiment.NegativePoints)

	if rows := recentAverages(r.Averages, recentRows); len(rows) > 0 {
		b.WriteString(sectionStyle.Render("近期均線"))
		b.WriteString("\n")
		b.WriteString(table.New().
			Border(lipgloss.NormalBorder()).
			Headers("日期", fmt.Sprintf("MA%d", r.Averages.ShortWindow), fmt.Sprintf("MA%d", r.Averages.LongWindow)).
			Rows(rows...).
			String())
		b.WriteString("\n")
	}
	return b.String()
}

// RenderError draws the failure page with the retry affordance.
func RenderError(symbol string, err error) string {
	msg := "❌ 無法生成 " + symbol + " 的分析報告：" + reason(err)
	if model.Retryable(err) {
		msg += "\n可選擇重試，或回上一頁重新輸入。"
	} else {
		msg += "\n請回上一頁重新輸入代碼。"
	}
	return errorBoxStyle.Render(msg)
}

func reason(err error) string {
	switch model.KindOf(err) {
	case model.KindInvalidSymbol:
		return "代碼格式錯誤。"
	case model.KindDataUnavailable:
		return "無法獲取股價數據。"
	case model.KindSourceUnreachable:
		return "數據抓取失敗，請檢查代碼或網路。"
	case model.KindProviderUnreachable:
		return "AI 文本分析服務錯誤。"
	default:
		return err.Error()
	}
}

func writeBullets(b *strings.Builder, items []string) {
	if len(items) == 0 {
		b.WriteString("  (無)\n")
		return
	}
	for _, item := range items {
		b.WriteString("  - ")
		b.WriteString(item)
		b.WriteString("\n")
	}
}

// recentAverages returns up to n most recent rows where both averages are defined, oldest first.
func recentAverages(m model.MovingAverageSeries, n int) [][]string {
	var rows [][]string
	for i := m.Len() - 1; i >= 0 && len(rows) < n; i-- {
		if !m.Short[i].Valid || !m.Long[i].Valid {
			break
		}
		rows = append(rows, []string{
			m.Dates[i].Format("2006-01-02"),
			m.Short[i].Decimal.StringFixed(2),
			m.Long[i].Decimal.StringFixed(2),
		})
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows
}

// StockName is the display name derived from a Taiwan listing symbol.
func StockName(symbol string) string {
	for _, suffix := range []string{".TWO", ".TW"} {
		if strings.HasSuffix(symbol, suffix) {
			return strings.TrimSuffix(symbol, suffix)
		}
	}
	return symbol
}

// FormatPrice renders a close with currency prefix, two decimals and thousands separators.
func FormatPrice(symbol string, d decimal.Decimal) string {
	prefix := "$ "
	if strings.HasSuffix(symbol, ".TW") || strings.HasSuffix(symbol, ".TWO") {
		prefix = "NT$ "
	}
	return prefix + groupThousands(d)
}

// groupThousands formats d with two decimals and comma-grouped integer digits.
func groupThousands(d decimal.Decimal) string {
	r := d.Round(2)
	sign := ""
	if r.IsNegative() {
		sign = "-"
	}
	r = r.Abs()
	_, frac, _ := strings.Cut(r.StringFixed(2), ".")
	return sign + humanize.Comma(r.IntPart()) + "." + frac
}
