package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
)

const (
	CodeRequired           = "required"
	CodeInvalidFormat      = "invalid_format"
	CodeInvalidVoucherType = "invalid_voucher_type"
	CodeImmutableType      = "immutable_voucher_type"
	CodeFutureDate         = "future_date"
	CodeInvalidAmount      = "invalid_amount"
	CodeInvalidQuantity    = "invalid_quantity"
	CodeInvalidRate        = "invalid_rate"
	CodeInvalidGSTRate     = "invalid_gst_rate"
	CodeGSTNotEnabled      = "gst_not_enabled"
	CodeNoItems            = "no_items"
	CodeUnbalanced         = "unbalanced_entries"
	CodeNegativeTotal      = "negative_grand_total"
	CodePaymentStatus      = "invalid_payment_status"
	CodeDuplicateNumber    = "duplicate_voucher_number"
	CodeUnresolvedLedger   = "unresolved_ledger"
	CodeUnresolvedItem     = "unresolved_item"
)

// FieldError is one violated rule, addressed by the draft field path.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// IsResolution reports whether the violation came from a directory lookup.
func (e FieldError) IsResolution() bool {
	return strings.HasPrefix(e.Code, "unresolved_")
}

// ValidationErrors carries every violated rule of one voucher.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation_error"
	}
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Code)
	}
	return "validation_error: " + strings.Join(parts, ", ")
}

func (v *ValidationErrors) Add(field, code, message string) {
	*v = append(*v, FieldError{Field: field, Code: code, Message: message})
}

// Merge appends violations for fields not already reported.
func (v *ValidationErrors) Merge(other ValidationErrors) {
	seen := make(map[string]bool, len(*v))
	for _, fe := range *v {
		seen[fe.Field] = true
	}
	for _, fe := range other {
		if seen[fe.Field] {
			continue
		}
		*v = append(*v, fe)
	}
}

func (v ValidationErrors) Has(code string) bool {
	for _, fe := range v {
		if fe.Code == code {
			return true
		}
	}
	return false
}

// Resolutions returns the subset produced by failed lookups.
func (v ValidationErrors) Resolutions() ValidationErrors {
	var out ValidationErrors
	for _, fe := range v {
		if fe.IsResolution() {
			out = append(out, fe)
		}
	}
	return out
}

// AsValidation unwraps err into ValidationErrors.
func AsValidation(err error) (ValidationErrors, bool) {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}

// ResolutionError is a reference that the directory could not satisfy.
type ResolutionError struct {
	Field string
	Kind  string
	Name  string
	ID    snowflake.ID
}

func (e ResolutionError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

func (e ResolutionError) FieldError() FieldError {
	code := CodeUnresolvedLedger
	if e.Kind == "item" {
		code = CodeUnresolvedItem
	}
	return FieldError{Field: e.Field, Code: code, Message: e.Error()}
}

// NumberingConflictError means an issued number collided on persist.
type NumberingConflictError struct {
	VoucherType   VoucherType
	VoucherNumber string
	Retryable     bool
}

func (e *NumberingConflictError) Error() string {
	return fmt.Sprintf("voucher number %s already used for %s", e.VoucherNumber, e.VoucherType)
}

// PersistenceError wraps a store failure. Nothing was written.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("voucher %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

var (
	ErrInvalidCompany    = errors.New("invalid_company")
	ErrInvalidID         = errors.New("invalid_voucher_id")
	ErrVoucherNotFound   = errors.New("voucher_not_found")
	ErrDuplicateNumber   = errors.New("duplicate_voucher_number")
	ErrRevisionConflict  = errors.New("voucher_revision_conflict")
	ErrInvalidListFilter = errors.New("invalid_list_filter")
)
