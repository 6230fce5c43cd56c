// Package report assembles the unified single-symbol report from the price and sentiment
// halves and owns the partial-failure policy between them.
package report

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"StockLens/internal/calculator"
	"StockLens/internal/collector"
	"StockLens/internal/metrics"
	"StockLens/internal/model"
	"StockLens/internal/sentiment"
	"StockLens/internal/trend"
)

// PriceHistory is the price half of the pipeline.
type PriceHistory interface {
	Fetch(ctx context.Context, symbol string, windowDays int) (model.PriceSeries, error)
}

// Builder produces reports; presenters and transports depend on this rather than on *Assembler.
type Builder interface {
	Build(ctx context.Context, symbol string) (*model.UnifiedReport, error)
	BuildWindow(ctx context.Context, symbol string, windowDays int) (*model.UnifiedReport, error)
}

// Assembler runs the price and sentiment lookups concurrently and merges them.
//
// Policy: any price failure fails the whole report. A sentiment failure degrades the report:
// the quantitative half is kept and the sentiment block is replaced by a neutral placeholder
// with Unavailable set.
type Assembler struct {
	history    PriceHistory
	provider   sentiment.Provider
	windowDays int
	logger     zerolog.Logger
	now        func() time.Time
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithWindowDays sets the default lookback window.
func WithWindowDays(days int) Option {
	return func(a *Assembler) {
		if days > 0 {
			a.windowDays = days
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(a *Assembler) { a.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// NewAssembler creates an Assembler over the two halves.
func NewAssembler(history PriceHistory, provider sentiment.Provider, opts ...Option) *Assembler {
	a := &Assembler{
		history:    history,
		provider:   provider,
		windowDays: collector.DefaultWindowDays,
		logger:     zerolog.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Build assembles the report for symbol over the default window.
func (a *Assembler) Build(ctx context.Context, symbol string) (*model.UnifiedReport, error) {
	return a.BuildWindow(ctx, symbol, a.windowDays)
}

// BuildWindow assembles the report for symbol over the last windowDays calendar days.
// A non-positive windowDays uses the default window.
func (a *Assembler) BuildWindow(ctx context.Context, symbol string, windowDays int) (*model.UnifiedReport, error) {
	started := time.Now()
	report, err := a.build(ctx, symbol, windowDays)

	outcome := metrics.Outcome(err)
	if err == nil && report.Degraded() {
		outcome = "degraded"
	}
	metrics.Reports.WithLabelValues(outcome).Inc()

	if err != nil {
		a.logger.Warn().
			Err(err).
			Str("symbol", symbol).
			Str("kind", string(model.KindOf(err))).
			Str("stage", string(model.StageOf(err))).
			Dur("duration", time.Since(started)).
			Msg("report failed")
		return nil, err
	}
	a.logger.Info().
		Str("id", report.ID).
		Str("symbol", report.Symbol).
		Str("trend", string(report.Trend.Kind)).
		Str("latest", report.LatestPrice.String()).
		Bool("degraded", report.Degraded()).
		Dur("duration", time.Since(started)).
		Msg("report built")
	return report, nil
}

func (a *Assembler) build(ctx context.Context, symbol string, windowDays int) (*model.UnifiedReport, error) {
	symbol, err := model.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if windowDays <= 0 {
		windowDays = a.windowDays
	}

	var (
		series  model.PriceSeries
		sent    model.SentimentReport
		sentErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	// A price failure cancels gctx so the sentiment lookup stops early; its result is unused.
	g.Go(func() error {
		var err error
		series, err = a.history.Fetch(gctx, symbol, windowDays)
		return err
	})
	g.Go(func() error {
		sent, sentErr = a.provider.Lookup(gctx, symbol)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	latest, ok := series.Latest()
	if !ok {
		return nil, model.DataUnavailable(symbol, errors.New("empty price series"))
	}
	averages, signal := trend.Analyze(series)

	now := a.now()
	if sentErr != nil {
		a.logger.Warn().
			Err(sentErr).
			Str("symbol", symbol).
			Str("provider", a.provider.Name()).
			Msg("sentiment unavailable, degrading report")
		sent = sentiment.Unavailable(symbol, now)
	}

	return &model.UnifiedReport{
		ID:          uuid.NewString(),
		Symbol:      symbol,
		WindowDays:  windowDays,
		FetchedAt:   now,
		LatestPrice: latest.Close,
		LatestDate:  latest.Date,
		Range:       priceRange(series, latest),
		Trend:       signal,
		Averages:    averages,
		Sentiment:   sent,
	}, nil
}

func priceRange(series model.PriceSeries, latest model.PricePoint) model.PriceRange {
	high, low, err := calculator.CalculateRange(series.Closes())
	if err != nil {
		return model.PriceRange{}
	}
	pos, err := calculator.CalculateRangePosition(latest.Close, high, low)
	if err != nil {
		return model.PriceRange{High: high, Low: low}
	}
	return model.PriceRange{High: high, Low: low, Position: pos}
}
