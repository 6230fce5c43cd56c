package main

import (
	"time"

	"StockLens/internal/cache"
	"StockLens/internal/collector"
	"StockLens/internal/config"
	"StockLens/internal/model"
	"StockLens/internal/report"
	"StockLens/internal/sentiment"
	"StockLens/internal/sentimentapi"
)

type app struct {
	history  *collector.History
	provider sentiment.Provider
	builder  *report.Assembler
}

func newApp(cfg *config.Config) *app {
	history := collector.NewHistory(newFetcher(cfg),
		collector.WithCache(newCache(cfg)),
		collector.WithTimeout(cfg.DataSource.Timeout),
	)
	provider := newProvider(cfg)
	logger.Info().
		Str("source", history.Source()).
		Str("sentiment", provider.Name()).
		Int("window_days", cfg.DataSource.WindowDays).
		Msg("pipeline ready")

	return &app{
		history:  history,
		provider: provider,
		builder: report.NewAssembler(history, provider,
			report.WithWindowDays(cfg.DataSource.WindowDays),
			report.WithLogger(logger),
		),
	}
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	o := collector.SourceOptions{
		BaseURL:   cfg.DataSource.BaseURL,
		APIKey:    cfg.DataSource.APIKey,
		Proxy:     cfg.Proxy,
		Timeout:   cfg.DataSource.Timeout,
		Retries:   cfg.DataSource.Retries,
		RateLimit: cfg.DataSource.RateLimit,
	}
	switch cfg.DataSource.Provider {
	case "financego":
		return collector.NewFinanceGoFetcher(o)
	case "rest":
		return collector.NewRESTFetcher(o)
	case "synthetic":
		return demoFetcher()
	default:
		return collector.NewYahooFetcher(o)
	}
}

// demoFetcher serves a rising series for the seeded symbols so the whole pipeline
// can run offline.
func demoFetcher() *collector.SyntheticFetcher {
	f := collector.NewSyntheticFetcher()
	end := time.Now().UTC()
	f.SetBars("2330.TW", collector.TradingDayBars(end, 260, 500, 600))
	f.SetBars("0050.TW", collector.TradingDayBars(end, 260, 160, 150))
	f.SetBars("00878.TW", collector.TradingDayBars(end, 260, 21, 22.5))
	return f
}

func newCache(cfg *config.Config) cache.Cache[collector.Key, model.PriceSeries] {
	if !cfg.Cache.Enabled {
		return cache.Disabled[collector.Key, model.PriceSeries]{}
	}
	return cache.NewTTL[collector.Key, model.PriceSeries](min(cfg.Cache.TTL, collector.MaxCacheTTL), time.Now)
}

func newProvider(cfg *config.Config) sentiment.Provider {
	if cfg.Sentiment.Mode == "static" {
		return sentiment.NewStaticProvider(sentimentapi.NewMemoryStore(sentimentapi.DefaultAnalyses()), time.Now)
	}
	return sentiment.NewHTTPProvider(sentiment.HTTPOptions{
		BaseURL: cfg.Sentiment.BaseURL,
		Timeout: cfg.Sentiment.Timeout,
		Retries: cfg.Sentiment.Retries,
		Proxy:   cfg.Proxy,
	})
}
