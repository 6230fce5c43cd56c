package collector

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"StockLens/internal/cache"
	"StockLens/internal/metrics"
	"StockLens/internal/model"
)

const (
	DefaultWindowDays = 365
	DefaultTimeout    = 10 * time.Second
	// MaxCacheTTL bounds how long a fetched series may be served from cache.
	MaxCacheTTL = time.Hour
)

// Key identifies one cached fetch.
type Key struct {
	Symbol     string
	WindowDays int
}

func (k Key) String() string { return k.Symbol + "|" + strconv.Itoa(k.WindowDays) }

// History fetches and cleans a bounded window of daily closes. Results are memoized in
// the injected cache and concurrent misses for the same key share a single upstream call.
type History struct {
	fetcher Fetcher
	cache   cache.Cache[Key, model.PriceSeries]
	group   singleflight.Group
	timeout time.Duration
	now     func() time.Time
}

// HistoryOption configures a History.
type HistoryOption func(*History)

// WithCache injects the read cache. The default is cache.Disabled.
func WithCache(c cache.Cache[Key, model.PriceSeries]) HistoryOption {
	return func(h *History) { h.cache = c }
}

// WithTimeout bounds each upstream call. Hitting it is reported as SourceUnreachable.
func WithTimeout(d time.Duration) HistoryOption {
	return func(h *History) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithClock overrides the clock used to compute the fetch window.
func WithClock(now func() time.Time) HistoryOption {
	return func(h *History) { h.now = now }
}

// NewHistory creates a History over fetcher.
func NewHistory(fetcher Fetcher, opts ...HistoryOption) *History {
	h := &History{
		fetcher: fetcher,
		cache:   cache.Disabled[Key, model.PriceSeries]{},
		timeout: DefaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Source returns the upstream source name.
func (h *History) Source() string { return h.fetcher.Name() }

// Fetch returns the cleaned series for [now-windowDays, now]. The returned series is a
// private copy; a cache hit and a fresh fetch have the same shape.
func (h *History) Fetch(ctx context.Context, symbol string, windowDays int) (model.PriceSeries, error) {
	symbol, err := model.NormalizeSymbol(symbol)
	if err != nil {
		return model.PriceSeries{}, err
	}
	if windowDays <= 0 {
		return model.PriceSeries{}, model.InvalidSymbol(symbol, "window_days must be positive")
	}
	key := Key{Symbol: symbol, WindowDays: windowDays}

	if series, ok := h.cache.Get(key); ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return series.Clone(), nil
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	v, err, _ := h.group.Do(key.String(), func() (any, error) {
		// another caller may have populated the key while this one waited
		if series, ok := h.cache.Get(key); ok {
			return series, nil
		}
		series, err := h.load(ctx, key)
		if err != nil {
			return nil, err
		}
		h.cache.Set(key, series)
		return series, nil
	})
	if err != nil {
		return model.PriceSeries{}, err
	}
	return v.(model.PriceSeries).Clone(), nil
}

// Sweep drops expired cache entries.
func (h *History) Sweep() int { return h.cache.Sweep() }

func (h *History) load(ctx context.Context, key Key) (model.PriceSeries, error) {
	// The shared fetch must not die with whichever caller started it; the timeout bounds it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
	defer cancel()

	end := h.now()
	start := end.AddDate(0, 0, -key.WindowDays)

	started := time.Now()
	raw, err := h.fetcher.FetchDailyCloses(ctx, key.Symbol, start, end)
	if err != nil && model.KindOf(err) == "" {
		err = model.SourceUnreachable(key.Symbol, err)
	}
	if err == nil && ctx.Err() != nil {
		err = model.SourceUnreachable(key.Symbol, ctx.Err())
	}
	metrics.ObserveFetch(h.fetcher.Name(), started, err)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("fetch %s from %s: %w", key.Symbol, h.fetcher.Name(), err)
	}

	points := Normalize(raw)
	if len(points) == 0 {
		return model.PriceSeries{}, model.DataUnavailable(key.Symbol, errors.New("no valid closes in window"))
	}
	return model.PriceSeries{
		Symbol:     key.Symbol,
		WindowDays: key.WindowDays,
		Points:     points,
		FetchedAt:  end,
	}, nil
}
