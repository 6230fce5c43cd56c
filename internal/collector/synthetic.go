package collector

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"StockLens/internal/model"
)

// SyntheticFetcher returns controllable fixed data for offline runs and testing.
// Symbols without registered bars are reported as DataUnavailable.
type SyntheticFetcher struct {
	mu    sync.RWMutex
	bars  map[string][]RawBar
	err   error
	delay time.Duration
	calls atomic.Int64
}

// NewSyntheticFetcher creates an empty synthetic source.
func NewSyntheticFetcher() *SyntheticFetcher {
	return &SyntheticFetcher{bars: make(map[string][]RawBar)}
}

func (m *SyntheticFetcher) Name() string { return "synthetic" }

// SetBars registers the rows returned for symbol.
func (m *SyntheticFetcher) SetBars(symbol string, bars []RawBar) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bars[symbol] = bars
}

// FailWith makes every fetch return err; nil restores normal behavior.
func (m *SyntheticFetcher) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetDelay makes every fetch block for d or until the context ends.
func (m *SyntheticFetcher) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Calls returns how many fetches reached the source.
func (m *SyntheticFetcher) Calls() int64 { return m.calls.Load() }

func (m *SyntheticFetcher) FetchDailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]RawBar, error) {
	m.calls.Add(1)
	m.mu.RLock()
	bars, ok := m.bars[symbol]
	failErr, delay := m.err, m.delay
	m.mu.RUnlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, model.SourceUnreachable(symbol, ctx.Err())
		case <-time.After(delay):
		}
	}
	if failErr != nil {
		return nil, failErr
	}
	if !ok {
		return nil, model.DataUnavailable(symbol, errors.New("synthetic: unknown symbol"))
	}

	out := make([]RawBar, 0, len(bars))
	from, to := calendarDate(start), calendarDate(end)
	for _, b := range bars {
		if b.Date.Before(from) || b.Date.After(to) {
			continue
		}
		out = append(out, b)
	}
	if len(out) == 0 {
		return nil, model.DataUnavailable(symbol, errors.New("synthetic: no rows in range"))
	}
	return out, nil
}

// TradingDayBars builds one bar per weekday ending at end (inclusive of end when it is a
// weekday), with closes interpolated linearly from first to last over n trading days.
func TradingDayBars(end time.Time, n int, first, last float64) []RawBar {
	if n <= 0 {
		return nil
	}
	dates := make([]time.Time, 0, n)
	for d := calendarDate(end); len(dates) < n; d = d.AddDate(0, 0, -1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		dates = append(dates, d)
	}
	bars := make([]RawBar, n)
	for i := range bars {
		date := dates[n-1-i]
		price := decimal.NewFromFloat(first)
		if n > 1 {
			step := decimal.NewFromFloat(last - first).Div(decimal.NewFromInt(int64(n - 1)))
			price = price.Add(step.Mul(decimal.NewFromInt(int64(i)))).Round(4)
		}
		bars[i] = RawBar{Date: date, Close: decimal.NullDecimal{Decimal: price, Valid: true}}
	}
	return bars
}
