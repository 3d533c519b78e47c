package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type VoucherType string

const (
	VoucherTypePayment  VoucherType = "payment"
	VoucherTypeReceipt  VoucherType = "receipt"
	VoucherTypeSales    VoucherType = "sales"
	VoucherTypePurchase VoucherType = "purchase"
)

var voucherTypes = []VoucherType{
	VoucherTypePayment,
	VoucherTypeReceipt,
	VoucherTypeSales,
	VoucherTypePurchase,
}

// VoucherTypes lists every supported type in display order.
func VoucherTypes() []VoucherType {
	out := make([]VoucherType, len(voucherTypes))
	copy(out, voucherTypes)
	return out
}

// ParseVoucherType accepts any casing ("Payment", "PAYMENT", " payment ").
func ParseVoucherType(value string) (VoucherType, bool) {
	normalized := VoucherType(strings.ToLower(strings.TrimSpace(value)))
	for _, t := range voucherTypes {
		if t == normalized {
			return t, true
		}
	}
	return "", false
}

func (t VoucherType) IsFinancial() bool {
	return t == VoucherTypePayment || t == VoucherTypeReceipt
}

func (t VoucherType) IsGoods() bool {
	return t == VoucherTypeSales || t == VoucherTypePurchase
}

func (t VoucherType) String() string { return string(t) }

// Shape tags the two structural voucher variants.
type Shape int

const (
	ShapeFinancial Shape = iota + 1
	ShapeGoods
)

func (s Shape) String() string {
	switch s {
	case ShapeFinancial:
		return "financial"
	case ShapeGoods:
		return "goods"
	default:
		return "unknown"
	}
}

type State string

const (
	StateDraft     State = "draft"
	StateValidated State = "validated"
	StatePersisted State = "persisted"
	StateUpdated   State = "updated"
	StateDeleted   State = "deleted"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// ParsePaymentStatus maps an empty value to unpaid.
func ParsePaymentStatus(value string) (PaymentStatus, bool) {
	switch PaymentStatus(strings.ToLower(strings.TrimSpace(value))) {
	case "", PaymentStatusUnpaid:
		return PaymentStatusUnpaid, true
	case PaymentStatusPartial:
		return PaymentStatusPartial, true
	case PaymentStatusPaid:
		return PaymentStatusPaid, true
	default:
		return "", false
	}
}

// StoreVariant selects the physical tables a voucher lives in.
type StoreVariant int

const (
	VariantPlain StoreVariant = iota
	VariantGST
)

func VariantFor(enableGST bool) StoreVariant {
	if enableGST {
		return VariantGST
	}
	return VariantPlain
}

func (v StoreVariant) String() string {
	if v == VariantGST {
		return "gst"
	}
	return "plain"
}

// Voucher is the transactional aggregate: header, postings and goods lines.
type Voucher struct {
	ID            snowflake.ID `json:"id"`
	CompanyID     snowflake.ID `json:"company_id"`
	VoucherType   VoucherType  `json:"voucher_type"`
	VoucherTypeID snowflake.ID `json:"voucher_type_id"`
	VoucherNumber string       `json:"voucher_number"`
	Date          time.Time    `json:"date"`
	PartyName     string       `json:"party_name"`
	PartyNameID   snowflake.ID `json:"party_name_id"`
	Narration     string       `json:"narration,omitempty"`

	// GSTEnabled is only ever true on goods vouchers.
	GSTEnabled bool         `json:"gst_enabled"`
	Goods      *GoodsHeader `json:"goods,omitempty"`

	AccountingEntries []AccountingEntry `json:"accounting_entries"`
	Items             []InventoryLine   `json:"items"`

	Total            decimal.Decimal `json:"total"`
	TotalTax         decimal.Decimal `json:"total_tax"`
	Discount         decimal.Decimal `json:"discount"`
	AdditionalCharge decimal.Decimal `json:"additional_charge"`
	GrandTotal       decimal.Decimal `json:"grand_total"`

	State     State          `json:"state"`
	Revision  int            `json:"revision"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	// AutoNumbered is set when the number came from the series rather than the caller.
	AutoNumbered bool `json:"-"`
}

func (v Voucher) Shape() Shape {
	if v.VoucherType.IsGoods() {
		return ShapeGoods
	}
	return ShapeFinancial
}

// Entry returns the posting that plays role, if present.
func (v Voucher) Entry(role LegRole) (AccountingEntry, bool) {
	for _, entry := range v.AccountingEntries {
		if entry.Role == role {
			return entry, true
		}
	}
	return AccountingEntry{}, false
}

// Balance is the signed sum of all postings.
func (v Voucher) Balance() decimal.Decimal {
	sum := decimal.Zero
	for _, entry := range v.AccountingEntries {
		sum = sum.Add(entry.Amount)
	}
	return sum
}

type GoodsHeader struct {
	ReferenceNumber string        `json:"reference_number,omitempty"`
	ReferenceDate   *time.Time    `json:"reference_date,omitempty"`
	PlaceOfSupply   string        `json:"place_of_supply,omitempty"`
	ModeOfTransport string        `json:"mode_of_transport,omitempty"`
	VehicleNumber   string        `json:"vehicle_number,omitempty"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	DueDate         *time.Time    `json:"due_date,omitempty"`
}

// AccountingEntry is one signed posting. Money entering a ledger is positive.
type AccountingEntry struct {
	ID         snowflake.ID    `json:"id"`
	VoucherID  snowflake.ID    `json:"voucher_id"`
	LedgerID   snowflake.ID    `json:"ledger_id"`
	LedgerName string          `json:"ledger_name"`
	Amount     decimal.Decimal `json:"amount"`
	OrderIndex int             `json:"order_index"`
	Role       LegRole         `json:"role"`
}

type InventoryLine struct {
	ID         snowflake.ID    `json:"id"`
	VoucherID  snowflake.ID    `json:"voucher_id"`
	ItemID     snowflake.ID    `json:"item_id"`
	ItemName   string          `json:"item_name"`
	Quantity   decimal.Decimal `json:"quantity"`
	Rate       decimal.Decimal `json:"rate"`
	Amount     decimal.Decimal `json:"amount"`
	GSTRate    decimal.Decimal `json:"gst_rate"`
	GSTAmount  decimal.Decimal `json:"gst_amount"`
	HSNCode    string          `json:"hsn_code,omitempty"`
	OrderIndex int             `json:"order_index"`
}
