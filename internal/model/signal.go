package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrendKind is the categorical outcome of the moving-average comparison.
type TrendKind string

const (
	TrendBullish                TrendKind = "BULLISH"
	TrendBearishOrConsolidating TrendKind = "BEARISH_OR_CONSOLIDATING"
	TrendUndetermined           TrendKind = "UNDETERMINED"
)

// Label returns the display label used in rendered reports.
func (k TrendKind) Label() string {
	switch k {
	case TrendBullish:
		return "看漲"
	case TrendBearishOrConsolidating:
		return "看跌/盤整"
	default:
		return "N/A"
	}
}

// TrendSignal is the trend verdict plus the averages it was derived from.
// When Kind is TrendUndetermined, AsOf is zero (omitted from JSON) and Short and Long are
// invalid (JSON null).
type TrendSignal struct {
	Kind      TrendKind           `json:"kind"`
	Rationale string              `json:"rationale"`
	AsOf      time.Time           `json:"as_of,omitzero"`
	Short     decimal.NullDecimal `json:"short_ma"`
	Long      decimal.NullDecimal `json:"long_ma"`
}
