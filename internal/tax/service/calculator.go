package service

import (
	"github.com/shopspring/decimal"
	taxdomain "github.com/smallbiznis/ledgerly/internal/tax/domain"
)

// calculator rounds each line to Precision and sums the rounded values, so
// stored line amounts always add up to the stored totals.
type calculator struct{}

func NewCalculator() taxdomain.Calculator {
	return calculator{}
}

func (calculator) Round(value decimal.Decimal) decimal.Decimal {
	return value.Round(taxdomain.Precision)
}

func (c calculator) GoodsTotals(lines []taxdomain.Line, gstEnabled bool, adj taxdomain.Adjustments) taxdomain.Totals {
	totals := taxdomain.Totals{
		Lines:            make([]taxdomain.LineTotals, 0, len(lines)),
		Subtotal:         decimal.Zero,
		GSTTotal:         decimal.Zero,
		Discount:         c.Round(adj.Discount),
		AdditionalCharge: c.Round(adj.AdditionalCharge),
	}

	for _, line := range lines {
		amount := c.Round(line.Quantity.Mul(line.Rate))
		gst := decimal.Zero
		if gstEnabled {
			gst = c.Round(taxdomain.Percent(amount, line.GSTRate))
		}
		totals.Lines = append(totals.Lines, taxdomain.LineTotals{Amount: amount, GSTAmount: gst})
		totals.Subtotal = totals.Subtotal.Add(amount)
		totals.GSTTotal = totals.GSTTotal.Add(gst)
	}

	totals.GrandTotal = totals.Subtotal.
		Add(totals.GSTTotal).
		Add(totals.AdditionalCharge).
		Sub(totals.Discount)
	return totals
}

// FinancialTotals covers payment and receipt vouchers where the grand total
// is the entered amount.
func (c calculator) FinancialTotals(amount decimal.Decimal) taxdomain.Totals {
	amount = c.Round(amount)
	return taxdomain.Totals{
		Subtotal:         amount,
		GSTTotal:         decimal.Zero,
		Discount:         decimal.Zero,
		AdditionalCharge: decimal.Zero,
		GrandTotal:       amount,
	}
}
