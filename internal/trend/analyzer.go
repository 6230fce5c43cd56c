// Package trend derives the moving-average trend signal from a cleaned price series.
package trend

import (
	"fmt"
	"time"

	"StockLens/internal/calculator"
	"StockLens/internal/model"

	"github.com/shopspring/decimal"
)

const (
	ShortWindow = 5
	LongWindow  = 20
)

const rationaleUndetermined = "數據不足，無法計算。"

var rationaleDefined = fmt.Sprintf("短期 (%d日) vs 長期 (%d日) 均線趨勢。", ShortWindow, LongWindow)

// Analyze computes the short/long trailing averages over series and the trend signal at
// the most recent date where both are defined. An empty series yields an empty
// MovingAverageSeries and an undetermined signal.
func Analyze(series model.PriceSeries) (model.MovingAverageSeries, model.TrendSignal) {
	undetermined := model.TrendSignal{Kind: model.TrendUndetermined, Rationale: rationaleUndetermined}
	averages := model.MovingAverageSeries{ShortWindow: ShortWindow, LongWindow: LongWindow}
	if series.Len() == 0 {
		return averages, undetermined
	}

	closes := series.Closes()
	// Windows are positive constants, so TrailingSMA cannot fail here.
	short, _ := calculator.TrailingSMA(closes, ShortWindow)
	long, _ := calculator.TrailingSMA(closes, LongWindow)

	averages.Dates = make([]time.Time, series.Len())
	for i, p := range series.Points {
		averages.Dates[i] = p.Date
	}
	averages.Short = short
	averages.Long = long

	for i := len(closes) - 1; i >= 0; i-- {
		if !short[i].Valid || !long[i].Valid {
			continue
		}
		return averages, model.TrendSignal{
			Kind:      classify(short[i].Decimal, long[i].Decimal),
			Rationale: rationaleDefined,
			AsOf:      averages.Dates[i],
			Short:     short[i],
			Long:      long[i],
		}
	}
	return averages, undetermined
}

// classify maps the latest averages to a trend. A tie is bearish/consolidating.
func classify(short, long decimal.Decimal) model.TrendKind {
	if short.GreaterThan(long) {
		return model.TrendBullish
	}
	return model.TrendBearishOrConsolidating
}
