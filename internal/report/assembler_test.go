package report

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/collector"
	"StockLens/internal/logging"
	"StockLens/internal/model"
	"StockLens/internal/sentiment"
	"StockLens/internal/sentimentapi"
)

// Friday
var now = time.Date(2025, 6, 13, 14, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

// risingBars is flat at 480 for 180 trading days, then rises 500 -> 600 over the last 20.
func risingBars() []collector.RawBar {
	flat := collector.TradingDayBars(now, 200, 480, 480)[:180]
	return append(flat, collector.TradingDayBars(now, 20, 500, 600)...)
}

type stubProvider struct {
	report model.SentimentReport
	err    error
	delay  time.Duration
	block  bool
	calls  int
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Lookup(ctx context.Context, symbol string) (model.SentimentReport, error) {
	p.calls++
	if p.block {
		<-ctx.Done()
		return model.SentimentReport{}, model.ProviderUnreachable(symbol, ctx.Err())
	}
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.err != nil {
		return model.SentimentReport{}, p.err
	}
	r := p.report
	r.Symbol = symbol
	return r, nil
}

func newAssembler(fetcher collector.Fetcher, provider sentiment.Provider) *Assembler {
	history := collector.NewHistory(fetcher, collector.WithClock(clock))
	return NewAssembler(history, provider, WithClock(clock), WithLogger(logging.Nop()))
}

func TestBuild_EndToEndBullish(t *testing.T) {
	fetcher := collector.NewSyntheticFetcher()
	fetcher.SetBars("2330.TW", risingBars())
	provider := sentiment.NewStaticProvider(sentimentapi.NewMemoryStore(sentimentapi.DefaultAnalyses()), clock)

	r, err := newAssembler(fetcher, provider).Build(context.Background(), "2330.TW")
	require.NoError(t, err)

	assert.Equal(t, "2330.TW", r.Symbol)
	assert.Equal(t, 365, r.WindowDays)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, now, r.FetchedAt)
	assert.Equal(t, model.TrendBullish, r.Trend.Kind)
	assert.True(t, r.LatestPrice.Equal(decimal.NewFromInt(600)), "latest price %s", r.LatestPrice)
	assert.Equal(t, "2025-06-13", r.LatestDate.Format("2006-01-02"))
	assert.Equal(t, r.LatestDate, r.Trend.AsOf)

	assert.Equal(t, "強烈看漲", r.Sentiment.Emotion)
	assert.Len(t, r.Sentiment.PositivePoints, 2)
	assert.False(t, r.Degraded())

	assert.Equal(t, 200, r.Averages.Len())
	assert.True(t, r.Range.High.Equal(decimal.NewFromInt(600)))
	assert.True(t, r.Range.Low.Equal(decimal.NewFromInt(480)))
	assert.True(t, r.Range.Position.Equal(decimal.NewFromInt(1)))
}

func TestBuild_UnknownSymbolFailsWithDataUnavailable(t *testing.T) {
	fetcher := collector.NewSyntheticFetcher()
	provider := sentiment.NewStaticProvider(sentimentapi.NewMemoryStore(sentimentapi.DefaultAnalyses()), clock)

	r, err := newAssembler(fetcher, provider).Build(context.Background(), "9999.XX")
	require.Error(t, err)
	assert.Nil(t, r)
	assert.ErrorIs(t, err, model.ErrDataUnavailable)
	assert.Equal(t, model.StagePrice, model.StageOf(err))
	assert.False(t, model.Retryable(err))
}

func TestBuild_PriceUnreachableFailsWholeReport(t *testing.T) {
	fetcher := collector.NewSyntheticFetcher()
	fetcher.FailWith(model.SourceUnreachable("2330.TW", assert.AnError))
	provider := &stubProvider{report: model.SentimentReport{Emotion: "看漲"}}

	r, err := newAssembler(fetcher, provider).Build(context.Background(), "2330.TW")
	assert.Nil(t, r)
	assert.ErrorIs(t, err, model.ErrSourceUnreachable)
	assert.True(t, model.Retryable(err))
}

func TestBuild_SentimentFailureDegrades(t *testing.T) {
	fetcher := collector.NewSyntheticFetcher()
	fetcher.SetBars("2330.TW", risingBars())
	provider := &stubProvider{err: model.ProviderUnreachable("2330.TW", assert.AnError)}

	r, err := newAssembler(fetcher, provider).Build(context.Background(), "2330.TW")
	require.NoError(t, err)
	assert.True(t, r.Degraded())
	assert.Equal(t, sentiment.Unavailable("2330.TW", now), r.Sentiment)
	assert.Equal(t, model.TrendBullish, r.Trend.Kind)
	assert.True(t, r.LatestPrice.Equal(decimal.NewFromInt(600)))
}

func TestBuild_UnknownToProviderIsNeutralNotDegraded(t *testing.T) {
	fetcher := collector.NewSyntheticFetcher()
	fetcher.SetBars("AAPL", risingBars())
	provider := sentiment.NewStaticProvider(sentimentapi.NewMemoryStore(sentimentapi.DefaultAnalyses()), clock)

	r, err := newAssembler(fetcher, provider).Build(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Equal(t, sentiment.Neutral("AAPL", now), r.Sentiment)
	assert.False(t, r.Degraded())
}

func TestBuild_InvalidSymbolSkipsNetwork(t *testing.T) {
	fetcher := collector.NewSyntheticFetcher()
	provider := &stubProvider{}

	_, err := newAssembler(fetcher, provider).Build(context.Background(), "")
	assert.ErrorIs(t, err, model.ErrInvalidSymbol)
	assert.Equal(t, model.StageInput, model.StageOf(err))
	assert.Zero(t, fetcher.Calls())
	assert.Zero(t, provider.calls)
}

func TestBuild_HalvesRunConcurrently(t *testing.T) {
	fetcher := collector.NewSyntheticFetcher()
	fetcher.SetBars("2330.TW", risingBars())
	fetcher.SetDelay(150 * time.Millisecond)
	provider := &stubProvider{report: model.SentimentReport{Emotion: "看漲"}, delay: 150 * time.Millisecond}

	started := time.Now()
	_, err := newAssembler(fetcher, provider).Build(context.Background(), "2330.TW")
	require.NoError(t, err)
	assert.Less(t, time.Since(started), 280*time.Millisecond)
}

func TestBuild_PriceFailureStopsSentimentWait(t *testing.T) {
	fetcher := collector.NewSyntheticFetcher()
	provider := &stubProvider{block: true}

	done := make(chan error, 1)
	go func() {
		_, err := newAssembler(fetcher, provider).Build(context.Background(), "9999.XX")
		done <- err
	}()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, model.ErrDataUnavailable)
	case <-time.After(2 * time.Second):
		t.Fatal("build did not return after price failure")
	}
}

func TestBuildWindow(t *testing.T) {
	fetcher := collector.NewSyntheticFetcher()
	fetcher.SetBars("2330.TW", risingBars())
	a := newAssembler(fetcher, &stubProvider{report: model.SentimentReport{Emotion: "看漲"}})

	// 2025-05-30 (Fri) through 2025-06-13: 11 trading days
	r, err := a.BuildWindow(context.Background(), "2330.TW", 14)
	require.NoError(t, err)
	assert.Equal(t, 14, r.WindowDays)
	assert.Equal(t, 11, r.Averages.Len())
	assert.Equal(t, model.TrendUndetermined, r.Trend.Kind)
	assert.Equal(t, "N/A", r.Trend.Kind.Label())

	r, err = a.BuildWindow(context.Background(), "2330.TW", 0)
	require.NoError(t, err)
	assert.Equal(t, 365, r.WindowDays)
}

func TestBuild_OverHTTPProvider(t *testing.T) {
	api := httptest.NewServer(sentimentapi.NewServer(
		sentimentapi.NewMemoryStore(sentimentapi.DefaultAnalyses()), logging.Nop(), clock).Handler())
	defer api.Close()

	fetcher := collector.NewSyntheticFetcher()
	fetcher.SetBars("00878.TW", risingBars())
	provider := sentiment.NewHTTPProvider(sentiment.HTTPOptions{BaseURL: api.URL, Timeout: 5 * time.Second})

	r, err := newAssembler(fetcher, provider).Build(context.Background(), "00878.tw")
	require.NoError(t, err)
	assert.Equal(t, "中性偏看漲", r.Sentiment.Emotion)
	assert.Equal(t, []string{"需關注配息波動。"}, r.Sentiment.NegativePoints)
}
