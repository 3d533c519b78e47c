package domain

import "github.com/shopspring/decimal"

// Precision is the number of decimal places every money value is rounded to.
const Precision int32 = 2

var hundred = decimal.NewFromInt(100)

// Line is one priced goods line before rounding.
type Line struct {
	Quantity decimal.Decimal
	Rate     decimal.Decimal
	// GSTRate is a percentage, e.g. 12 for 12%.
	GSTRate decimal.Decimal
}

type LineTotals struct {
	Amount    decimal.Decimal
	GSTAmount decimal.Decimal
}

type Adjustments struct {
	Discount         decimal.Decimal
	AdditionalCharge decimal.Decimal
}

type Totals struct {
	Lines            []LineTotals
	Subtotal         decimal.Decimal
	GSTTotal         decimal.Decimal
	Discount         decimal.Decimal
	AdditionalCharge decimal.Decimal
	GrandTotal       decimal.Decimal
}

// Calculator derives voucher totals. Implementations are pure.
type Calculator interface {
	GoodsTotals(lines []Line, gstEnabled bool, adj Adjustments) Totals
	FinancialTotals(amount decimal.Decimal) Totals
	Round(value decimal.Decimal) decimal.Decimal
}

// Percent returns value*rate/100 without rounding.
func Percent(value, rate decimal.Decimal) decimal.Decimal {
	return value.Mul(rate).Div(hundred)
}
