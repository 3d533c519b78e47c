package validator

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/ledgerly/internal/clock"
	"github.com/smallbiznis/ledgerly/internal/voucher/domain"
)

// BalanceTolerance is the largest absolute posting sum still treated as balanced.
var BalanceTolerance = decimal.RequireFromString("0.01")

var hundred = decimal.NewFromInt(100)

// Storage bounds: money columns are numeric(18,2), quantity and rate numeric(18,4).
var (
	MaxAmount   = decimal.New(1, 16)
	MaxQuantity = decimal.New(1, 14)
)

const (
	QuantityScale = 4
	RateScale     = 4
	GSTRateScale  = 2
)

type validator struct {
	clock clock.Clock
}

func New(c clock.Clock) domain.Validator {
	return &validator{clock: c}
}

// Validate reports every violated rule. It never touches the network.
func (val *validator) Validate(v domain.Voucher, mode domain.ValidationMode) domain.ValidationErrors {
	var errs domain.ValidationErrors

	if _, ok := domain.ParseVoucherType(string(v.VoucherType)); !ok {
		errs.Add("voucher_type", domain.CodeInvalidVoucherType, "voucher_type must be payment, receipt, sales or purchase")
		return errs
	}

	val.checkDate(v.Date, &errs)

	if mode == domain.ModeFinal && v.VoucherNumber == "" {
		errs.Add("voucher_number", domain.CodeRequired, "voucher_number is required")
	}
	if v.PartyNameID == 0 {
		errs.Add("party_name", domain.CodeRequired, "party must be a known ledger")
	}

	switch v.Shape() {
	case domain.ShapeFinancial:
		checkFinancial(v, &errs)
	case domain.ShapeGoods:
		checkGoods(v, &errs)
	}

	checkBalance(v, &errs)
	return errs
}

func (val *validator) checkDate(date time.Time, errs *domain.ValidationErrors) {
	if date.IsZero() {
		errs.Add("date", domain.CodeRequired, "date is required")
		return
	}
	now := val.clock.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	if day.After(today) {
		errs.Add("date", domain.CodeFutureDate, "date cannot be after today")
	}
}

func checkFinancial(v domain.Voucher, errs *domain.ValidationErrors) {
	counter, ok := v.Entry(domain.LegCounter)
	if !ok || counter.LedgerID == 0 {
		errs.Add("single_entry.customer", domain.CodeRequired, "counter ledger must be a known ledger")
	}
	if !v.GrandTotal.IsPositive() {
		errs.Add("single_entry.amount", domain.CodeInvalidAmount, "amount must be greater than zero")
	} else if tooLarge(v.GrandTotal) {
		errs.Add("single_entry.amount", domain.CodeInvalidAmount, "amount is too large")
	}
	if len(v.Items) > 0 {
		errs.Add("items", domain.CodeInvalidFormat, fmt.Sprintf("%s vouchers carry no items", v.VoucherType))
	}
}

func checkGoods(v domain.Voucher, errs *domain.ValidationErrors) {
	if len(v.Items) == 0 {
		errs.Add("items", domain.CodeNoItems, "at least one item is required")
	}
	for i, item := range v.Items {
		field := fmt.Sprintf("items[%d]", i)
		if item.ItemID == 0 {
			errs.Add(field+".item_name", domain.CodeRequired, "item must be a known product")
		}
		switch {
		case !item.Quantity.IsPositive():
			errs.Add(field+".quantity", domain.CodeInvalidQuantity, "quantity must be greater than zero")
		case !fitsScale(item.Quantity, QuantityScale):
			errs.Add(field+".quantity", domain.CodeInvalidQuantity, fmt.Sprintf("quantity allows at most %d decimal places", QuantityScale))
		case item.Quantity.GreaterThanOrEqual(MaxQuantity):
			errs.Add(field+".quantity", domain.CodeInvalidQuantity, "quantity is too large")
		}
		switch {
		case item.Rate.IsNegative():
			errs.Add(field+".rate", domain.CodeInvalidRate, "rate cannot be negative")
		case !fitsScale(item.Rate, RateScale):
			errs.Add(field+".rate", domain.CodeInvalidRate, fmt.Sprintf("rate allows at most %d decimal places", RateScale))
		case item.Rate.GreaterThanOrEqual(MaxQuantity):
			errs.Add(field+".rate", domain.CodeInvalidRate, "rate is too large")
		}
		switch {
		case item.GSTRate.IsNegative() || item.GSTRate.GreaterThan(hundred):
			errs.Add(field+".gst_rate", domain.CodeInvalidGSTRate, "gst_rate must be between 0 and 100")
		case !fitsScale(item.GSTRate, GSTRateScale):
			errs.Add(field+".gst_rate", domain.CodeInvalidGSTRate, fmt.Sprintf("gst_rate allows at most %d decimal places", GSTRateScale))
		}
		if tooLarge(item.Amount) {
			errs.Add(field+".amount", domain.CodeInvalidAmount, "line amount is too large")
		}
		if !v.GSTEnabled && !item.GSTAmount.IsZero() {
			errs.Add(field+".gst_amount", domain.CodeGSTNotEnabled, "gst is not enabled for this company")
		}
	}
	if !v.GSTEnabled && !v.TotalTax.IsZero() {
		errs.Add("total_tax", domain.CodeGSTNotEnabled, "gst is not enabled for this company")
	}

	counter, ok := v.Entry(domain.LegCounter)
	if !ok || counter.LedgerID == 0 {
		errs.Add("control_ledger", domain.CodeRequired, "control ledger must be a known ledger")
	}
	if v.Discount.IsNegative() {
		errs.Add("discount", domain.CodeInvalidAmount, "discount cannot be negative")
	} else if tooLarge(v.Discount) {
		errs.Add("discount", domain.CodeInvalidAmount, "discount is too large")
	}
	if v.AdditionalCharge.IsNegative() {
		errs.Add("additional_charge", domain.CodeInvalidAmount, "additional_charge cannot be negative")
	} else if tooLarge(v.AdditionalCharge) {
		errs.Add("additional_charge", domain.CodeInvalidAmount, "additional_charge is too large")
	}
	switch {
	case v.GrandTotal.IsNegative():
		errs.Add("grand_total", domain.CodeNegativeTotal, "grand_total cannot be negative")
	case tooLarge(v.Total), tooLarge(v.TotalTax), tooLarge(v.GrandTotal):
		errs.Add("grand_total", domain.CodeInvalidAmount, "voucher totals are too large")
	}
	if v.Goods != nil {
		if _, ok := domain.ParsePaymentStatus(string(v.Goods.PaymentStatus)); !ok {
			errs.Add("payment_status", domain.CodePaymentStatus, "payment_status must be unpaid, partial or paid")
		}
	}
}

func checkBalance(v domain.Voucher, errs *domain.ValidationErrors) {
	if len(v.AccountingEntries) < 2 {
		errs.Add("accounting_entries", domain.CodeUnbalanced, "a voucher needs a party and a counter posting")
		return
	}
	if v.Balance().Abs().GreaterThan(BalanceTolerance) {
		errs.Add("accounting_entries", domain.CodeUnbalanced, fmt.Sprintf("postings sum to %s", v.Balance().StringFixed(2)))
	}
}

func tooLarge(d decimal.Decimal) bool {
	return d.Abs().GreaterThanOrEqual(MaxAmount)
}

func fitsScale(d decimal.Decimal, places int32) bool {
	return d.Truncate(places).Equal(d)
}
