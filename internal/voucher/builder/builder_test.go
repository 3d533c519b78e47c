package builder

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/ledgerly/internal/clock"
	companydomain "github.com/smallbiznis/ledgerly/internal/company/domain"
	"github.com/smallbiznis/ledgerly/internal/directory"
	numberingdomain "github.com/smallbiznis/ledgerly/internal/numbering/domain"
	taxservice "github.com/smallbiznis/ledgerly/internal/tax/service"
	"github.com/smallbiznis/ledgerly/internal/voucher/domain"
	"github.com/smallbiznis/ledgerly/internal/voucher/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const companyID snowflake.ID = 1

type fakeDirectory struct {
	ledgers     []directory.LedgerRef
	products    []directory.ProductRef
	ledgerErr   error
	ledgerCalls int
}

func (f *fakeDirectory) Ledgers(_ context.Context, id snowflake.ID, _ directory.LedgerFilter) ([]directory.LedgerRef, error) {
	f.ledgerCalls++
	if f.ledgerErr != nil {
		return nil, &directory.FetchError{Kind: directory.KindLedgers, CompanyID: id, Err: f.ledgerErr}
	}
	return f.ledgers, nil
}

func (f *fakeDirectory) Products(context.Context, snowflake.ID) ([]directory.ProductRef, error) {
	return f.products, nil
}

type fakeNumbering struct {
	next  int64
	calls int
}

func (f *fakeNumbering) Next(_ context.Context, _ snowflake.ID, voucherType string, _ time.Time) (numberingdomain.Number, error) {
	f.calls++
	f.next++
	return numberingdomain.Number{Value: fmt.Sprintf("%s-%06d", voucherType, f.next), Sequence: f.next, VoucherTypeID: 900}, nil
}

func (f *fakeNumbering) Peek(_ context.Context, _ snowflake.ID, voucherType string, _ time.Time) (numberingdomain.Number, error) {
	return numberingdomain.Number{Value: fmt.Sprintf("%s-%06d", voucherType, f.next+1), Sequence: f.next + 1, VoucherTypeID: 900}, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newBuilder(t *testing.T) (domain.Builder, *fakeDirectory, *fakeNumbering) {
	t.Helper()
	dir := &fakeDirectory{
		ledgers: []directory.LedgerRef{
			{ID: 11, Name: "Supplier A", Type: "Creditors"},
			{ID: 12, Name: "Cash-in-Hand", Type: "Cash-in-Hand"},
			{ID: 13, Name: "Customer B", Type: "Debtors"},
			{ID: 14, Name: "Sales Account", Type: "Sales Accounts"},
			{ID: 15, Name: "Purchase Account", Type: "Purchase Accounts"},
		},
		products: []directory.ProductRef{
			{ID: 21, Name: "Paracetamol", HSNCode: "3004", GSTRate: decimal.NewNullDecimal(dec("12"))},
			{ID: 22, Name: "Bandage"},
		},
	}
	num := &fakeNumbering{}
	b := New(Params{
		Log:        zap.NewNop(),
		Directory:  dir,
		Calculator: taxservice.NewCalculator(),
		Numbering:  num,
		Validator:  validator.New(clock.NewFakeClock(time.Date(2025, 4, 30, 12, 0, 0, 0, time.UTC))),
	})
	return b, dir, num
}

func gstSettings(enabled bool) companydomain.Settings {
	return companydomain.Settings{
		CompanyID:      companyID,
		EnableGST:      enabled,
		TaxRules:       companydomain.TaxRules{DefaultGSTRate: dec("18")},
		SalesLedger:    "Sales Account",
		PurchaseLedger: "Purchase Account",
		PlaceOfSupply:  "27",
	}
}

func TestBuildPaymentPostsPartyAndCounter(t *testing.T) {
	b, _, num := newBuilder(t)

	v, err := b.Build(context.Background(), domain.BuildRequest{
		CompanyID: companyID,
		Settings:  gstSettings(false),
		Draft: domain.Draft{
			VoucherType: "Payment",
			Date:        "2025-04-01",
			PartyName:   "Supplier A",
			SingleEntry: &domain.SingleEntryDraft{Customer: "Cash-in-Hand", Amount: "500.00"},
		},
		IssueNumber: true,
	})
	require.NoError(t, err)

	require.Len(t, v.AccountingEntries, 2)
	assert.Equal(t, "Supplier A", v.AccountingEntries[0].LedgerName)
	assert.Equal(t, snowflake.ID(11), v.AccountingEntries[0].LedgerID)
	assert.True(t, v.AccountingEntries[0].Amount.Equal(dec("500")))
	assert.Equal(t, "Cash-in-Hand", v.AccountingEntries[1].LedgerName)
	assert.True(t, v.AccountingEntries[1].Amount.Equal(dec("-500")))
	assert.True(t, v.GrandTotal.Equal(dec("500")))
	assert.True(t, v.Balance().IsZero())
	assert.Equal(t, "payment-000001", v.VoucherNumber)
	assert.Equal(t, snowflake.ID(900), v.VoucherTypeID)
	assert.True(t, v.AutoNumbered)
	assert.Equal(t, domain.StateValidated, v.State)
	assert.Nil(t, v.Goods)
	assert.Empty(t, v.Items)
	assert.Equal(t, 1, num.calls)
}

func TestBuildReceiptMirrorsPayment(t *testing.T) {
	b, _, _ := newBuilder(t)

	v, err := b.Build(context.Background(), domain.BuildRequest{
		CompanyID: companyID,
		Settings:  gstSettings(false),
		Draft: domain.Draft{
			VoucherType: "receipt",
			Date:        "2025-04-01",
			PartyNameID: "13",
			SingleEntry: &domain.SingleEntryDraft{CustomerID: "12", Amount: "120"},
		},
		IssueNumber: true,
	})
	require.NoError(t, err)

	assert.True(t, v.AccountingEntries[0].Amount.Equal(dec("-120")))
	assert.True(t, v.AccountingEntries[1].Amount.Equal(dec("120")))
	assert.Equal(t, "Customer B", v.PartyName)
}

func TestBuildSalesWithGST(t *testing.T) {
	b, _, _ := newBuilder(t)

	v, err := b.Build(context.Background(), domain.BuildRequest{
		CompanyID: companyID,
		Settings:  gstSettings(true),
		Draft: domain.Draft{
			VoucherType: "Sales",
			Date:        "2025-04-02",
			PartyName:   "customer b",
			Items: []domain.ItemDraft{
				{ItemName: "Paracetamol", Quantity: "10", Rate: "5.00", GSTRate: "12"},
			},
		},
		IssueNumber: true,
	})
	require.NoError(t, err)

	require.Len(t, v.Items, 1)
	assert.True(t, v.Items[0].Amount.Equal(dec("50")))
	assert.True(t, v.Items[0].GSTAmount.Equal(dec("6")))
	assert.Equal(t, "3004", v.Items[0].HSNCode)
	assert.True(t, v.GrandTotal.Equal(dec("56")))
	assert.True(t, v.TotalTax.Equal(dec("6")))

	require.Len(t, v.AccountingEntries, 2)
	assert.Equal(t, "Customer B", v.AccountingEntries[0].LedgerName)
	assert.True(t, v.AccountingEntries[0].Amount.Equal(dec("-56")))
	assert.Equal(t, "Sales Account", v.AccountingEntries[1].LedgerName)
	assert.True(t, v.AccountingEntries[1].Amount.Equal(dec("56")))

	require.NotNil(t, v.Goods)
	assert.Equal(t, domain.PaymentStatusUnpaid, v.Goods.PaymentStatus)
	assert.Equal(t, "27", v.Goods.PlaceOfSupply)
	assert.True(t, v.GSTEnabled)
}

func TestBuildGoodsFallsBackToProductThenCompanyRate(t *testing.T) {
	b, _, _ := newBuilder(t)

	v, err := b.Build(context.Background(), domain.BuildRequest{
		CompanyID: companyID,
		Settings:  gstSettings(true),
		Draft: domain.Draft{
			VoucherType: "purchase",
			Date:        "2025-04-02",
			PartyName:   "Supplier A",
			Items: []domain.ItemDraft{
				{ItemName: "Paracetamol", Quantity: "1", Rate: "100"},
				{ItemName: "Bandage", Quantity: "1", Rate: "100"},
			},
		},
		IssueNumber: true,
	})
	require.NoError(t, err)

	assert.True(t, v.Items[0].GSTRate.Equal(dec("12")))
	assert.True(t, v.Items[1].GSTRate.Equal(dec("18")))
	assert.Equal(t, "Purchase Account", v.AccountingEntries[1].LedgerName)
	assert.True(t, v.AccountingEntries[0].Amount.Equal(dec("230")))
	assert.True(t, v.AccountingEntries[1].Amount.Equal(dec("-230")))
}

func TestBuildWithoutGSTZeroesTax(t *testing.T) {
	b, _, _ := newBuilder(t)

	v, err := b.Build(context.Background(), domain.BuildRequest{
		CompanyID: companyID,
		Settings:  gstSettings(false),
		Draft: domain.Draft{
			VoucherType: "sales",
			Date:        "2025-04-02",
			PartyName:   "Customer B",
			Items: []domain.ItemDraft{
				{ItemName: "Paracetamol", Quantity: "10", Rate: "5", GSTRate: "12", HSNCode: "3004"},
			},
		},
		IssueNumber: true,
	})
	require.NoError(t, err)

	assert.False(t, v.GSTEnabled)
	assert.True(t, v.TotalTax.IsZero())
	assert.True(t, v.Items[0].GSTAmount.IsZero())
	assert.True(t, v.Items[0].GSTRate.IsZero())
	assert.Empty(t, v.Items[0].HSNCode)
	assert.True(t, v.GrandTotal.Equal(dec("50")))
}

func TestBuildZeroQuantitySkipsNumbering(t *testing.T) {
	b, _, num := newBuilder(t)

	_, err := b.Build(context.Background(), domain.BuildRequest{
		CompanyID: companyID,
		Settings:  gstSettings(true),
		Draft: domain.Draft{
			VoucherType: "sales",
			Date:        "2025-04-02",
			PartyName:   "Customer B",
			Items:       []domain.ItemDraft{{ItemName: "Paracetamol", Quantity: "0", Rate: "5"}},
		},
		IssueNumber: true,
	})

	verrs, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.True(t, verrs.Has(domain.CodeInvalidQuantity))
	assert.Equal(t, "items[0].quantity", verrs[0].Field)
	assert.Zero(t, num.calls)
}

func TestBuildUnresolvedNamesNeverFabricateIDs(t *testing.T) {
	b, _, num := newBuilder(t)

	v, err := b.Build(context.Background(), domain.BuildRequest{
		CompanyID: companyID,
		Settings:  gstSettings(false),
		Draft: domain.Draft{
			VoucherType: "payment",
			Date:        "2025-04-01",
			PartyName:   "Nobody",
			SingleEntry: &domain.SingleEntryDraft{CustomerID: "999", Amount: "10"},
		},
		IssueNumber: true,
	})

	verrs, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Len(t, verrs.Resolutions(), 2)
	assert.Zero(t, v.PartyNameID)
	assert.Zero(t, v.AccountingEntries[1].LedgerID)
	assert.Zero(t, num.calls)
}

func TestBuildDirectoryFailureAborts(t *testing.T) {
	b, dir, num := newBuilder(t)
	dir.ledgerErr = errors.New("connection refused")

	_, err := b.Build(context.Background(), domain.BuildRequest{
		CompanyID:   companyID,
		Settings:    gstSettings(false),
		Draft:       domain.Draft{VoucherType: "payment", Date: "2025-04-01", PartyName: "Supplier A"},
		IssueNumber: true,
	})

	var fetchErr *directory.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, directory.KindLedgers, fetchErr.Kind)
	assert.Zero(t, num.calls)
}

func TestBuildUpdateKeepsNumberAndRejectsTypeChange(t *testing.T) {
	b, _, num := newBuilder(t)
	existing := &domain.Voucher{
		ID:            77,
		VoucherType:   domain.VoucherTypePayment,
		VoucherNumber: "PAY-000101",
		VoucherTypeID: 900,
		Revision:      2,
	}
	draft := domain.Draft{
		VoucherType: "payment",
		Date:        "2025-04-01",
		PartyName:   "Supplier A",
		SingleEntry: &domain.SingleEntryDraft{Customer: "Cash-in-Hand", Amount: "250"},
	}

	v, err := b.Build(context.Background(), domain.BuildRequest{CompanyID: companyID, Settings: gstSettings(false), Draft: draft, Existing: existing})
	require.NoError(t, err)
	assert.Equal(t, "PAY-000101", v.VoucherNumber)
	assert.Equal(t, snowflake.ID(77), v.ID)
	assert.Equal(t, 2, v.Revision)
	assert.Zero(t, num.calls)

	draft.VoucherType = "receipt"
	_, err = b.Build(context.Background(), domain.BuildRequest{CompanyID: companyID, Settings: gstSettings(false), Draft: draft, Existing: existing})
	verrs, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.True(t, verrs.Has(domain.CodeImmutableType))
}

func TestReissueDrawsNextNumber(t *testing.T) {
	b, _, num := newBuilder(t)
	v := &domain.Voucher{CompanyID: companyID, VoucherType: domain.VoucherTypePayment, VoucherNumber: "payment-000001"}
	num.next = 1

	require.NoError(t, b.Reissue(context.Background(), v))

	assert.Equal(t, "payment-000002", v.VoucherNumber)
	assert.True(t, v.AutoNumbered)
}

func TestBuildRejectsOutOfRangeNumbersBeforeNumbering(t *testing.T) {
	cases := []struct {
		name     string
		quantity domain.Number
		rate     domain.Number
		field    string
		code     string
	}{
		{"total overflows storage", "1000000000000", "1000000", "items[0].amount", domain.CodeInvalidAmount},
		{"quantity finer than storage", "0.00001", "5", "items[0].quantity", domain.CodeInvalidQuantity},
		{"exponent quantity", "1e2000000", "1", "items[0].quantity", domain.CodeInvalidFormat},
		{"overlong rate", "1", "123456789012345678901234567890.123", "items[0].rate", domain.CodeInvalidFormat},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, _, num := newBuilder(t)

			_, err := b.Build(context.Background(), domain.BuildRequest{
				CompanyID: companyID,
				Settings:  gstSettings(false),
				Draft: domain.Draft{
					VoucherType: "sales",
					Date:        "2025-04-02",
					PartyName:   "Customer B",
					Items:       []domain.ItemDraft{{ItemName: "Bandage", Quantity: tc.quantity, Rate: tc.rate}},
				},
				IssueNumber: true,
			})

			verrs, ok := domain.AsValidation(err)
			require.True(t, ok, "expected validation errors, got %v", err)
			assert.True(t, verrs.Has(tc.code))
			found := false
			for _, fe := range verrs {
				found = found || fe.Field == tc.field
			}
			assert.True(t, found, "missing field %s in %v", tc.field, verrs)
			assert.Zero(t, num.calls)
		})
	}
}
