package sentiment

import (
	"context"
	"fmt"
	"time"

	"StockLens/internal/model"
)

// StaticProvider answers lookups in-process from a Store.
type StaticProvider struct {
	store Store
	now   func() time.Time
}

// NewStaticProvider creates a provider over store. A nil now uses time.Now.
func NewStaticProvider(store Store, now func() time.Time) *StaticProvider {
	if now == nil {
		now = time.Now
	}
	return &StaticProvider{store: store, now: now}
}

func (p *StaticProvider) Name() string { return "static" }

func (p *StaticProvider) Lookup(ctx context.Context, symbol string) (model.SentimentReport, error) {
	symbol, err := model.NormalizeSymbol(symbol)
	if err != nil {
		return model.SentimentReport{}, err
	}
	a, ok, err := p.store.Get(ctx, symbol)
	if err != nil {
		err = model.ProviderUnreachable(symbol, fmt.Errorf("analysis store: %w", err))
		observe(p.Name(), err)
		return model.SentimentReport{}, err
	}
	observe(p.Name(), nil)
	if !ok {
		return Neutral(symbol, p.now()), nil
	}
	return fromAnalysis(symbol, a, p.now()), nil
}
