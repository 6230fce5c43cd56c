package calculator

import (
	"errors"

	"github.com/shopspring/decimal"
)

// CalculateSMA computes the simple moving average of the last period values.
func CalculateSMA(values []decimal.Decimal, period int) (decimal.Decimal, error) {
	if period <= 0 {
		return decimal.Zero, errors.New("period must be positive")
	}
	if len(values) < period {
		return decimal.Zero, errors.New("not enough data for SMA calculation")
	}
	sum := decimal.Zero
	for i := len(values) - period; i < len(values); i++ {
		sum = sum.Add(values[i])
	}
	return sum.Div(decimal.NewFromInt(int64(period))), nil
}

// TrailingSMA returns one entry per input value: CalculateSMA over the period values ending
// at that index. The first period-1 entries are invalid. A series shorter than period
// yields all-invalid entries of the same length.
func TrailingSMA(values []decimal.Decimal, period int) ([]decimal.NullDecimal, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	out := make([]decimal.NullDecimal, len(values))
	for i := period - 1; i < len(values); i++ {
		avg, err := CalculateSMA(values[:i+1], period)
		if err != nil {
			return nil, err
		}
		out[i] = decimal.NewNullDecimal(avg)
	}
	return out, nil
}
