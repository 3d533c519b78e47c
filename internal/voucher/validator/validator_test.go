package validator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/ledgerly/internal/clock"
	"github.com/smallbiznis/ledgerly/internal/voucher/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 4, 10, 15, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func paymentVoucher() domain.Voucher {
	return domain.Voucher{
		VoucherType:   domain.VoucherTypePayment,
		VoucherNumber: "PAY-000001",
		Date:          time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
		PartyName:     "Supplier A",
		PartyNameID:   11,
		AccountingEntries: []domain.AccountingEntry{
			{LedgerID: 11, LedgerName: "Supplier A", Amount: dec("500"), Role: domain.LegParty},
			{LedgerID: 12, LedgerName: "Cash-in-Hand", Amount: dec("-500"), OrderIndex: 1, Role: domain.LegCounter},
		},
		Total:      dec("500"),
		GrandTotal: dec("500"),
	}
}

func salesVoucher() domain.Voucher {
	return domain.Voucher{
		VoucherType:   domain.VoucherTypeSales,
		VoucherNumber: "SAL-000001",
		Date:          time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		PartyName:     "Customer B",
		PartyNameID:   21,
		GSTEnabled:    true,
		Goods:         &domain.GoodsHeader{PaymentStatus: domain.PaymentStatusUnpaid},
		Items: []domain.InventoryLine{
			{ItemID: 31, ItemName: "Paracetamol", Quantity: dec("10"), Rate: dec("5"), Amount: dec("50"), GSTRate: dec("12"), GSTAmount: dec("6")},
		},
		AccountingEntries: []domain.AccountingEntry{
			{LedgerID: 21, Amount: dec("-56"), Role: domain.LegParty},
			{LedgerID: 41, Amount: dec("56"), OrderIndex: 1, Role: domain.LegCounter},
		},
		Total:      dec("50"),
		TotalTax:   dec("6"),
		GrandTotal: dec("56"),
	}
}

func newValidator() domain.Validator {
	return New(clock.NewFakeClock(now))
}

func fields(errs domain.ValidationErrors) []string {
	out := make([]string, 0, len(errs))
	for _, fe := range errs {
		out = append(out, fe.Field)
	}
	return out
}

func TestValidateAcceptsWellFormedVouchers(t *testing.T) {
	v := newValidator()
	assert.Empty(t, v.Validate(paymentVoucher(), domain.ModeFinal))
	assert.Empty(t, v.Validate(salesVoucher(), domain.ModeFinal))
}

func TestValidateReportsEveryViolation(t *testing.T) {
	voucher := paymentVoucher()
	voucher.VoucherNumber = ""
	voucher.Date = time.Time{}
	voucher.PartyNameID = 0
	voucher.AccountingEntries[1].LedgerID = 0
	voucher.GrandTotal = decimal.Zero

	errs := newValidator().Validate(voucher, domain.ModeFinal)

	assert.ElementsMatch(t,
		[]string{"date", "voucher_number", "party_name", "single_entry.customer", "single_entry.amount"},
		fields(errs),
	)
}

func TestValidateNumberPendingSkipsNumber(t *testing.T) {
	voucher := paymentVoucher()
	voucher.VoucherNumber = ""

	assert.Empty(t, newValidator().Validate(voucher, domain.ModeNumberPending))
}

func TestValidateRejectsFutureDate(t *testing.T) {
	voucher := paymentVoucher()
	voucher.Date = now.AddDate(0, 0, 1)

	errs := newValidator().Validate(voucher, domain.ModeFinal)

	require.Len(t, errs, 1)
	assert.Equal(t, domain.CodeFutureDate, errs[0].Code)
}

func TestValidateAllowsLaterToday(t *testing.T) {
	voucher := paymentVoucher()
	voucher.Date = time.Date(2025, 4, 10, 23, 59, 0, 0, time.UTC)

	assert.Empty(t, newValidator().Validate(voucher, domain.ModeFinal))
}

func TestValidateGoodsLineRules(t *testing.T) {
	voucher := salesVoucher()
	voucher.Items[0].Quantity = decimal.Zero
	voucher.Items = append(voucher.Items, domain.InventoryLine{ItemID: 32, Quantity: dec("1"), Rate: dec("-1")})

	errs := newValidator().Validate(voucher, domain.ModeFinal)

	assert.ElementsMatch(t, []string{"items[0].quantity", "items[1].rate"}, fields(errs))
	assert.True(t, errs.Has(domain.CodeInvalidQuantity))
}

func TestValidateGoodsWithoutItems(t *testing.T) {
	voucher := salesVoucher()
	voucher.Items = nil

	errs := newValidator().Validate(voucher, domain.ModeFinal)

	assert.True(t, errs.Has(domain.CodeNoItems))
}

func TestValidateUnbalancedEntries(t *testing.T) {
	voucher := paymentVoucher()
	voucher.AccountingEntries[1].Amount = dec("-499.98")

	errs := newValidator().Validate(voucher, domain.ModeFinal)

	require.Len(t, errs, 1)
	assert.Equal(t, domain.CodeUnbalanced, errs[0].Code)
}

func TestValidateToleratesRoundingDrift(t *testing.T) {
	voucher := paymentVoucher()
	voucher.AccountingEntries[1].Amount = dec("-499.99")

	assert.Empty(t, newValidator().Validate(voucher, domain.ModeFinal))
}

func TestValidateGSTGating(t *testing.T) {
	voucher := salesVoucher()
	voucher.GSTEnabled = false

	errs := newValidator().Validate(voucher, domain.ModeFinal)

	assert.True(t, errs.Has(domain.CodeGSTNotEnabled))
}

func TestValidateUnknownType(t *testing.T) {
	voucher := paymentVoucher()
	voucher.VoucherType = "journal"

	errs := newValidator().Validate(voucher, domain.ModeFinal)

	require.Len(t, errs, 1)
	assert.Equal(t, domain.CodeInvalidVoucherType, errs[0].Code)
}

func TestValidateItemScaleAndMagnitude(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*domain.Voucher)
		field string
		code  string
	}{
		{"quantity below storage scale", func(v *domain.Voucher) { v.Items[0].Quantity = dec("0.00001") }, "items[0].quantity", domain.CodeInvalidQuantity},
		{"quantity too large", func(v *domain.Voucher) { v.Items[0].Quantity = dec("100000000000000") }, "items[0].quantity", domain.CodeInvalidQuantity},
		{"rate below storage scale", func(v *domain.Voucher) { v.Items[0].Rate = dec("5.00001") }, "items[0].rate", domain.CodeInvalidRate},
		{"gst rate with three places", func(v *domain.Voucher) { v.Items[0].GSTRate = dec("12.125") }, "items[0].gst_rate", domain.CodeInvalidGSTRate},
		{"line amount too large", func(v *domain.Voucher) { v.Items[0].Amount = dec("10000000000000000") }, "items[0].amount", domain.CodeInvalidAmount},
		{"grand total too large", func(v *domain.Voucher) { v.GrandTotal = dec("10000000000000000") }, "grand_total", domain.CodeInvalidAmount},
		{"discount too large", func(v *domain.Voucher) { v.Discount = dec("10000000000000000") }, "discount", domain.CodeInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			voucher := salesVoucher()
			tc.edit(&voucher)

			errs := newValidator().Validate(voucher, domain.ModeFinal)

			assert.Contains(t, fields(errs), tc.field)
			assert.True(t, errs.Has(tc.code))
		})
	}
}

func TestValidateAcceptsStorageScale(t *testing.T) {
	voucher := salesVoucher()
	voucher.Items[0].Quantity = dec("2.5000")
	voucher.Items[0].Rate = dec("20.0000")

	assert.Empty(t, newValidator().Validate(voucher, domain.ModeFinal))
}

func TestValidateFinancialAmountTooLarge(t *testing.T) {
	voucher := paymentVoucher()
	voucher.GrandTotal = dec("10000000000000000")
	voucher.AccountingEntries[0].Amount = dec("10000000000000000")
	voucher.AccountingEntries[1].Amount = dec("-10000000000000000")

	errs := newValidator().Validate(voucher, domain.ModeFinal)

	require.Len(t, errs, 1)
	assert.Equal(t, "single_entry.amount", errs[0].Field)
	assert.Equal(t, domain.CodeInvalidAmount, errs[0].Code)
}
