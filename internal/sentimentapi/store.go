// Package sentimentapi serves the text-analysis lookup that the sentiment HTTP provider
// consumes. Entries are canned analyses keyed by symbol.
package sentimentapi

import (
	"context"
	"sync"

	"StockLens/internal/sentiment"
)

// Store holds analyses by canonical symbol.
type Store interface {
	sentiment.Store
	Upsert(ctx context.Context, symbol string, a sentiment.Analysis) error
	Symbols(ctx context.Context) ([]string, error)
	Close() error
}

// DefaultAnalyses returns the seed table shipped with the service.
func DefaultAnalyses() map[string]sentiment.Analysis {
	return map[string]sentiment.Analysis{
		"2330.TW": {
			Emotion:      "強烈看漲",
			Conclusion:   "AI 需求爆發，法說會展望樂觀，長期技術領先優勢強勁。",
			PositiveNews: []string{"Q3 財報超預期，AI 需求是主要動能。", "多家券商調高目標價。"},
			NegativeNews: []string{"短期股價漲多，有技術性整理壓力。"},
		},
		"00878.TW": {
			Emotion:      "中性偏看漲",
			Conclusion:   "ETF 結構具備成長與防禦，基本面支撐趨勢向上。",
			PositiveNews: []string{"AI + 金融雙動能。", "規模穩定成長，填息率穩定。"},
			NegativeNews: []string{"需關注配息波動。"},
		},
		"0050.TW": {
			Emotion:      "中性偏看漲",
			Conclusion:   "核心資產優勢和台積電支撐，儘管短期有調節，長期仍具穩健成長動力。",
			PositiveNews: []string{"規模朝兆元級 ETF 前進。", "台積電權重高，受惠 AI 浪潮。"},
			NegativeNews: []string{"近期外資持續賣超。"},
		},
	}
}

// MemoryStore is the in-process Store used when no SQLite path is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]sentiment.Analysis
}

// NewMemoryStore creates a store holding a copy of seed.
func NewMemoryStore(seed map[string]sentiment.Analysis) *MemoryStore {
	s := &MemoryStore{entries: make(map[string]sentiment.Analysis, len(seed))}
	for k, v := range seed {
		s.entries[k] = v
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, symbol string) (sentiment.Analysis, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.entries[symbol]
	return a, ok, nil
}

func (s *MemoryStore) Upsert(_ context.Context, symbol string, a sentiment.Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[symbol] = a
	return nil
}

func (s *MemoryStore) Symbols(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.entries))
	for k := range s.entries {
		out = append(out, k)
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
