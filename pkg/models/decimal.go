package models

import "github.com/shopspring/decimal"

func init() {
	// Snapshots store amounts and quantities as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// SumDecimals adds up a list of decimals. The empty sum is zero.
func SumDecimals(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
