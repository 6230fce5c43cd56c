package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is one daily close. Date is the trading calendar date at midnight UTC.
type PricePoint struct {
	Date  time.Time       `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// PriceSeries holds the cleaned daily closes for one symbol, strictly ascending by date.
type PriceSeries struct {
	Symbol     string       `json:"symbol"`
	WindowDays int          `json:"window_days"`
	Points     []PricePoint `json:"points"`
	FetchedAt  time.Time    `json:"fetched_at"`
}

// Len returns the number of points.
func (s PriceSeries) Len() int { return len(s.Points) }

// Latest returns the most recent point, or false for an empty series.
func (s PriceSeries) Latest() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Closes returns the close values in series order.
func (s PriceSeries) Closes() []decimal.Decimal {
	closes := make([]decimal.Decimal, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// Clone returns a copy that shares no backing array with s.
func (s PriceSeries) Clone() PriceSeries {
	out := s
	if s.Points != nil {
		out.Points = make([]PricePoint, len(s.Points))
		copy(out.Points, s.Points)
	}
	return out
}

// MovingAverageSeries holds the short and long trailing averages aligned by index with the
// source series. Entries before a window fills are invalid, never zero.
type MovingAverageSeries struct {
	ShortWindow int                   `json:"short_window"`
	LongWindow  int                   `json:"long_window"`
	Dates       []time.Time           `json:"dates,omitempty"`
	Short       []decimal.NullDecimal `json:"short,omitempty"`
	Long        []decimal.NullDecimal `json:"long,omitempty"`
}

// IsEmpty reports whether no averages were computed (empty source series).
func (m MovingAverageSeries) IsEmpty() bool { return len(m.Dates) == 0 }

// Len returns the number of aligned entries.
func (m MovingAverageSeries) Len() int { return len(m.Dates) }

// PriceRange is the high and low close over a series and where the latest close sits in it.
type PriceRange struct {
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Position decimal.Decimal `json:"position"` // 0.0 ~ 1.0
}
