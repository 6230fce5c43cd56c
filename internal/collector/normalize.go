package collector

import (
	"sort"

	"StockLens/internal/model"
)

// Normalize cleans raw rows into series points: rows without a positive close are dropped,
// rows are sorted ascending by date and only the last row for each date is kept.
func Normalize(raw []RawBar) []model.PricePoint {
	rows := make([]RawBar, 0, len(raw))
	for _, r := range raw {
		if !r.Close.Valid || r.Close.Decimal.Sign() <= 0 || r.Date.IsZero() {
			continue
		}
		r.Date = calendarDate(r.Date)
		rows = append(rows, r)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	points := make([]model.PricePoint, 0, len(rows))
	for _, r := range rows {
		if n := len(points); n > 0 && points[n-1].Date.Equal(r.Date) {
			points[n-1].Close = r.Close.Decimal
			continue
		}
		points = append(points, model.PricePoint{Date: r.Date, Close: r.Close.Decimal})
	}
	return points
}
