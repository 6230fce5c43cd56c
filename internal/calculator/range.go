package calculator

import (
	"errors"

	"github.com/shopspring/decimal"
)

// CalculateRange returns the highest and lowest value in the series.
func CalculateRange(values []decimal.Decimal) (high, low decimal.Decimal, err error) {
	if len(values) == 0 {
		return decimal.Zero, decimal.Zero, errors.New("no values provided")
	}
	high, low = values[0], values[0]
	for _, v := range values[1:] {
		if v.GreaterThan(high) {
			high = v
		}
		if v.LessThan(low) {
			low = v
		}
	}
	return high, low, nil
}

// CalculateRangePosition returns where current sits within [low, high], clamped to 0..1.
// A flat range reports the midpoint.
func CalculateRangePosition(current, high, low decimal.Decimal) (decimal.Decimal, error) {
	if high.LessThan(low) {
		return decimal.Zero, errors.New("high must be >= low")
	}
	if high.Equal(low) {
		return decimal.NewFromFloat(0.5), nil
	}
	pos := current.Sub(low).Div(high.Sub(low))
	if pos.Sign() < 0 {
		return decimal.Zero, nil
	}
	if pos.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1), nil
	}
	return pos, nil
}
