package utils

import (
	"github.com/shopspring/decimal"
)

// RoundToDecimalPrecision rounds a price to the given number of decimal places
// (half away from zero).
func RoundToDecimalPrecision(value float64, places int32) float64 {
	return decimal.NewFromFloat(value).Round(places).InexactFloat64()
}

// FloorToStep rounds a quantity down to a multiple of step. A non-positive
// step returns the quantity unchanged.
func FloorToStep(quantity float64, step float64) float64 {
	if step <= 0 {
		return quantity
	}

	q := decimal.NewFromFloat(quantity)
	s := decimal.NewFromFloat(step)

	return q.Div(s).Floor().Mul(s).InexactFloat64()
}
