package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/logging"
	"StockLens/internal/model"
	"StockLens/internal/sentiment"
)

type sentMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type fakeTelegram struct {
	mu          sync.Mutex
	sent        []sentMessage
	failures    atomic.Int64
	updates     []string
	contentType string
}

func (f *fakeTelegram) write(w http.ResponseWriter, status int, body string) {
	if f.contentType != "" {
		w.Header().Set("Content-Type", f.contentType)
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (f *fakeTelegram) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /bottok:en/sendMessage", func(w http.ResponseWriter, r *http.Request) {
		if f.failures.Load() > 0 {
			f.failures.Add(-1)
			f.write(w, http.StatusTooManyRequests, `{"ok":false,"description":"Too Many Requests"}`)
			return
		}
		var msg sentMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		f.mu.Lock()
		f.sent = append(f.sent, msg)
		f.mu.Unlock()
		f.write(w, http.StatusOK, `{"ok":true}`)
	})
	mux.HandleFunc("GET /bottok:en/getUpdates", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		body := `{"ok":true,"result":[]}`
		if r.URL.Query().Get("offset") == "0" && len(f.updates) > 0 {
			body = `{"ok":true,"result":[` + strings.Join(f.updates, ",") + `]}`
		}
		f.mu.Unlock()
		f.write(w, http.StatusOK, body)
	})
	return mux
}

func (f *fakeTelegram) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func newNotifier(t *testing.T, fake *fakeTelegram) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier(Options{BotToken: "tok:en", ChatID: "42", APIURL: srv.URL, Logger: logging.Nop()})
	n.retryDelay = time.Millisecond
	n.pollBackoff = time.Millisecond
	return n
}

func TestSend(t *testing.T) {
	fake := &fakeTelegram{}
	n := newNotifier(t, fake)

	require.NoError(t, n.Send(context.Background(), "<b>hi</b>"))
	msgs := fake.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, sentMessage{ChatID: "42", Text: "<b>hi</b>", ParseMode: "HTML"}, msgs[0])
}

func TestSend_DecodesAnyContentType(t *testing.T) {
	for _, ct := range []string{"application/json", "text/plain", "application/octet-stream"} {
		t.Run(ct, func(t *testing.T) {
			fake := &fakeTelegram{contentType: ct}
			n := newNotifier(t, fake)
			require.NoError(t, n.Send(context.Background(), "hi"))

			fake.failures.Store(1)
			err := n.Send(context.Background(), "hi")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "Too Many Requests")
		})
	}
}

func TestGetUpdates_DecodesAnyContentType(t *testing.T) {
	fake := &fakeTelegram{
		contentType: "text/plain",
		updates:     []string{`{"update_id":3,"message":{"text":"/report","chat":{"id":42}}}`},
	}
	updates, err := newNotifier(t, fake).getUpdates(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, 3, updates[0].UpdateID)
	assert.Equal(t, "/report", updates[0].Message.Text)
}

func TestSend_APIError(t *testing.T) {
	fake := &fakeTelegram{}
	fake.failures.Store(1)
	err := newNotifier(t, fake).Send(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Too Many Requests")
}

func TestSendWithRetry(t *testing.T) {
	fake := &fakeTelegram{}
	fake.failures.Store(2)
	n := newNotifier(t, fake)

	require.NoError(t, n.SendWithRetry(context.Background(), "x", 3))
	assert.Len(t, fake.messages(), 1)

	fake.failures.Store(10)
	err := n.SendWithRetry(context.Background(), "x", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 attempts exhausted")
}

func TestStartPolling_AnswersConfiguredChatOnly(t *testing.T) {
	fake := &fakeTelegram{updates: []string{
		`{"update_id":6,"message":{"text":"/report 0050.TW","chat":{"id":1001}}}`,
		`{"update_id":7,"message":{"text":" /report 2330.TW ","chat":{"id":42}}}`,
		`{"update_id":8,"message":{"text":"","chat":{"id":42}}}`,
		`{"update_id":9}`,
	}}
	n := newNotifier(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	var got []string
	handler := func(_ context.Context, command string) string {
		got = append(got, command)
		return "reply to " + command
	}
	done := make(chan struct{})
	go func() {
		n.StartPolling(ctx, handler)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(fake.messages()) == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, []string{"/report 2330.TW"}, got)
	msg := fake.messages()[0]
	assert.Equal(t, "42", msg.ChatID)
	assert.Equal(t, "reply to /report 2330.TW", msg.Text)
}

func sampleReport() *model.UnifiedReport {
	return &model.UnifiedReport{
		Symbol:      "2330.TW",
		LatestPrice: decimal.RequireFromString("1085"),
		LatestDate:  time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC),
		Range: model.PriceRange{
			High:     decimal.RequireFromString("1100"),
			Low:      decimal.RequireFromString("900"),
			Position: decimal.RequireFromString("0.925"),
		},
		Trend: model.TrendSignal{
			Kind:      model.TrendBullish,
			Rationale: "短期 (5日) vs 長期 (20日) 均線趨勢。",
			Short:     decimal.NewNullDecimal(decimal.RequireFromString("1080.2")),
			Long:      decimal.NewNullDecimal(decimal.RequireFromString("1050")),
		},
		Averages: model.MovingAverageSeries{ShortWindow: 5, LongWindow: 20},
		Sentiment: model.SentimentReport{
			Emotion:        "強烈看漲",
			Conclusion:     "AI <需求> 爆發",
			PositivePoints: []string{"多家券商調高目標價。"},
			NegativePoints: []string{"短期股價漲多。"},
		},
	}
}

func TestFormatReport(t *testing.T) {
	msg := FormatReport(sampleReport())
	assert.Contains(t, msg, "<b>2330.TW 2330 分析報告</b> | 2025-06-13")
	assert.Contains(t, msg, "NT$ 1,085.00")
	assert.Contains(t, msg, "位置 93%")
	assert.Contains(t, msg, "MA5: 1080.20 | MA20: 1050.00")
	assert.Contains(t, msg, "量化分析:</b> 看漲")
	assert.Contains(t, msg, "AI &lt;需求&gt; 爆發")
	assert.Contains(t, msg, "• 多家券商調高目標價。")
	assert.NotContains(t, msg, "暫不可用")

	degraded := sampleReport()
	degraded.Sentiment = sentiment.Unavailable("2330.TW", time.Now())
	assert.Contains(t, FormatReport(degraded), "暫不可用")
}

func TestFormatError(t *testing.T) {
	msg := FormatError("9999.XX", model.DataUnavailable("9999.XX", assert.AnError))
	assert.Contains(t, msg, "DATA_UNAVAILABLE")
	assert.NotContains(t, msg, "再試")

	msg = FormatError("2330.TW", model.SourceUnreachable("2330.TW", assert.AnError))
	assert.Contains(t, msg, "再試")
}

type stubBuilder struct{ symbols []string }

func (b *stubBuilder) Build(_ context.Context, symbol string) (*model.UnifiedReport, error) {
	b.symbols = append(b.symbols, symbol)
	if symbol == "9999.XX" {
		return nil, model.DataUnavailable(symbol, assert.AnError)
	}
	return sampleReport(), nil
}

func (b *stubBuilder) BuildWindow(ctx context.Context, symbol string, _ int) (*model.UnifiedReport, error) {
	return b.Build(ctx, symbol)
}

func TestReportCommands(t *testing.T) {
	b := &stubBuilder{}
	handle := ReportCommands(b, "0050.TW")
	ctx := context.Background()

	assert.Contains(t, handle(ctx, "/report 2330.TW"), "分析報告")
	assert.Contains(t, handle(ctx, "/report@StockLensBot"), "分析報告")
	assert.Contains(t, handle(ctx, "/report 9999.XX"), "報告生成失敗")
	assert.Equal(t, helpText, handle(ctx, "/help"))
	assert.Equal(t, "", handle(ctx, "   "))
	assert.Equal(t, []string{"2330.TW", "0050.TW", "9999.XX"}, b.symbols)
}
