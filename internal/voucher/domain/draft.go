package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Draft is the raw voucher as entered in a form. Ids and numbers arrive as
// strings or JSON numbers and are only interpreted by the builder.
type Draft struct {
	VoucherType   string `json:"voucher_type"`
	VoucherNumber string `json:"voucher_number"`
	Date          string `json:"date"`
	PartyName     string `json:"party_name"`
	PartyNameID   string `json:"party_name_id"`
	Narration     string `json:"narration"`

	SingleEntry *SingleEntryDraft `json:"single_entry,omitempty"`

	Items            []ItemDraft `json:"items,omitempty"`
	ControlLedger    string      `json:"control_ledger,omitempty"`
	ControlLedgerID  string      `json:"control_ledger_id,omitempty"`
	Discount         Number      `json:"discount,omitempty"`
	AdditionalCharge Number      `json:"additional_charge,omitempty"`

	ReferenceNumber string `json:"reference_number,omitempty"`
	ReferenceDate   string `json:"reference_date,omitempty"`
	PlaceOfSupply   string `json:"place_of_supply,omitempty"`
	ModeOfTransport string `json:"mode_of_transport,omitempty"`
	VehicleNumber   string `json:"vehicle_number,omitempty"`
	PaymentStatus   string `json:"payment_status,omitempty"`
	DueDate         string `json:"due_date,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`
}

// SingleEntryDraft is the counter leg of a payment or receipt.
type SingleEntryDraft struct {
	Customer   string `json:"customer"`
	CustomerID string `json:"customer_id"`
	Amount     Number `json:"amount"`
}

type ItemDraft struct {
	ItemName string `json:"item_name"`
	ItemID   string `json:"item_id"`
	Quantity Number `json:"quantity"`
	Rate     Number `json:"rate"`
	GSTRate  Number `json:"gst_rate"`
	HSNCode  string `json:"hsn_code"`
}

// Number holds a numeric form value. It decodes from JSON numbers, numeric
// strings, empty strings and null.
type Number string

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Number(strings.TrimSpace(s))
		return nil
	}
	*n = Number(data)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if n.IsBlank() {
		return []byte("null"), nil
	}
	return json.Marshal(string(n))
}

func (n Number) IsBlank() bool {
	return strings.TrimSpace(string(n)) == ""
}

// MaxNumberLength bounds the characters of a form number, sign and point included.
const MaxNumberLength = 32

var (
	ErrNumberExponent = errors.New("exponent notation is not accepted")
	ErrNumberTooLong  = errors.New("number has too many digits")
)

// Decimal parses the value. Blank values are zero. Exponent forms are
// rejected so a short input can never expand into a huge coefficient.
func (n Number) Decimal() (decimal.Decimal, error) {
	if n.IsBlank() {
		return decimal.Zero, nil
	}
	raw := strings.TrimSpace(string(n))
	if len(raw) > MaxNumberLength {
		return decimal.Zero, ErrNumberTooLong
	}
	if strings.ContainsAny(raw, "eE") {
		return decimal.Zero, ErrNumberExponent
	}
	return decimal.NewFromString(raw)
}

// NumberOf renders a decimal back into a draft value.
func NumberOf(d decimal.Decimal) Number {
	return Number(d.String())
}
