// Package sentiment is the client side of the text-analysis boundary. Providers answer
// "what is the qualitative outlook for a symbol" and never render or log.
package sentiment

import (
	"context"
	"fmt"
	"time"

	"StockLens/internal/metrics"
	"StockLens/internal/model"
)

// NeutralEmotion is the emotion category used for fallback blocks.
const NeutralEmotion = "中性"

// TimestampLayout is the wire format of the provider's timestamp field.
const TimestampLayout = "2006-01-02 15:04:05"

// Provider looks up the qualitative outlook for one symbol. A symbol the provider knows
// nothing about yields a neutral report, not an error; only transport failures and malformed
// answers are errors (ProviderUnreachable).
type Provider interface {
	Lookup(ctx context.Context, symbol string) (model.SentimentReport, error)
	Name() string
}

// Analysis is one stored text-analysis entry.
type Analysis struct {
	Emotion      string   `json:"emotion"`
	Conclusion   string   `json:"conclusion"`
	PositiveNews []string `json:"positive_news"`
	NegativeNews []string `json:"negative_news"`
}

// Store is a keyed source of analyses. ok is false when the symbol has no entry.
type Store interface {
	Get(ctx context.Context, symbol string) (a Analysis, ok bool, err error)
}

// Response is the JSON body served at GET /analyze/{symbol}. Ticker carries the same value
// as Symbol for clients of the older /api/analyze path.
type Response struct {
	Symbol       string   `json:"symbol"`
	Ticker       string   `json:"ticker,omitempty"`
	Timestamp    string   `json:"timestamp"`
	Emotion      string   `json:"emotion"`
	Conclusion   string   `json:"conclusion"`
	PositiveNews []string `json:"positive_news"`
	NegativeNews []string `json:"negative_news"`
}

// NewResponse renders a (possibly neutral) analysis for the wire.
func NewResponse(symbol string, a Analysis, at time.Time) Response {
	return Response{
		Symbol:       symbol,
		Ticker:       symbol,
		Timestamp:    at.Format(TimestampLayout),
		Emotion:      a.Emotion,
		Conclusion:   a.Conclusion,
		PositiveNews: nonNil(a.PositiveNews),
		NegativeNews: nonNil(a.NegativeNews),
	}
}

// NeutralAnalysis is the fallback entry for a symbol without text data.
func NeutralAnalysis(symbol string) Analysis {
	return Analysis{
		Emotion:      NeutralEmotion,
		Conclusion:   fmt.Sprintf("AI 分析庫暫無 %s 的文本數據，僅提供量化分析。", symbol),
		PositiveNews: []string{},
		NegativeNews: []string{},
	}
}

// Neutral returns the well-formed fallback report for a symbol the provider has no entry for.
func Neutral(symbol string, now time.Time) model.SentimentReport {
	return fromAnalysis(symbol, NeutralAnalysis(symbol), now)
}

// Unavailable returns the placeholder used when the provider could not be reached.
func Unavailable(symbol string, now time.Time) model.SentimentReport {
	r := Neutral(symbol, now)
	r.Conclusion = "AI 文本分析服務暫時無法連線，僅提供量化分析。"
	r.Unavailable = true
	return r
}

func fromAnalysis(symbol string, a Analysis, at time.Time) model.SentimentReport {
	return model.SentimentReport{
		Symbol:         symbol,
		Emotion:        a.Emotion,
		Conclusion:     a.Conclusion,
		PositivePoints: nonNil(a.PositiveNews),
		NegativePoints: nonNil(a.NegativeNews),
		FetchedAt:      at,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func observe(provider string, err error) {
	metrics.SentimentLookups.WithLabelValues(provider, metrics.Outcome(err)).Inc()
}
