package utils

import "github.com/shopspring/decimal"

// Dec converts a JSON number from a request body into a decimal amount.
func Dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// DecPtr converts an optional JSON number, preserving nil (absent field).
func DecPtr(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}
