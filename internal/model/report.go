package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnifiedReport merges the quantitative and qualitative halves for one request.
// It is built only when the price history was fetched successfully.
type UnifiedReport struct {
	ID          string              `json:"id"`
	Symbol      string              `json:"symbol"`
	WindowDays  int                 `json:"window_days"`
	FetchedAt   time.Time           `json:"fetched_at"`
	LatestPrice decimal.Decimal     `json:"latest_price"`
	LatestDate  time.Time           `json:"latest_date"`
	Range       PriceRange          `json:"range"`
	Trend       TrendSignal         `json:"trend"`
	Averages    MovingAverageSeries `json:"averages"`
	Sentiment   SentimentReport     `json:"sentiment"`
}

// Degraded reports whether the sentiment half is a placeholder.
func (r *UnifiedReport) Degraded() bool { return r.Sentiment.Unavailable }
