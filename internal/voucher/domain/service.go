package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	companydomain "github.com/smallbiznis/ledgerly/internal/company/domain"
	"github.com/smallbiznis/ledgerly/pkg/db/pagination"
	"gorm.io/gorm"
)

// ValidationMode controls whether a missing voucher number is a violation.
type ValidationMode int

const (
	// ModeFinal requires every field, including the voucher number.
	ModeFinal ValidationMode = iota
	// ModeNumberPending skips the number check; it runs before numbering.
	ModeNumberPending
)

// Validator is a pure check over a constructed voucher.
type Validator interface {
	Validate(v Voucher, mode ValidationMode) ValidationErrors
}

type BuildRequest struct {
	CompanyID snowflake.ID
	Settings  companydomain.Settings
	Draft     Draft
	// Existing is the stored voucher when building an update.
	Existing *Voucher
	// IssueNumber asks the builder to draw from the series when the draft
	// carries no number. Preview leaves it false.
	IssueNumber bool
}

type Builder interface {
	// Build returns the constructed voucher even when err is ValidationErrors,
	// so callers can still show computed totals.
	Build(ctx context.Context, req BuildRequest) (Voucher, error)
	// Reissue replaces an auto-issued number with the next one in the series.
	Reissue(ctx context.Context, v *Voucher) error
}

type ListFilter struct {
	VoucherType VoucherType
	From        *time.Time
	To          *time.Time
	PartyID     snowflake.ID
	Cursor      *pagination.Cursor
	Limit       int
}

type Repository interface {
	// Insert writes header, entries and items. Callers run it inside a transaction.
	Insert(ctx context.Context, db *gorm.DB, variant StoreVariant, v *Voucher) error
	FindByID(ctx context.Context, db *gorm.DB, variant StoreVariant, companyID, id snowflake.ID) (*Voucher, error)
	// Replace rewrites the header when its stored revision equals expectedRevision
	// and swaps entries and items wholesale.
	Replace(ctx context.Context, db *gorm.DB, variant StoreVariant, v *Voucher, expectedRevision int) error
	Delete(ctx context.Context, db *gorm.DB, variant StoreVariant, companyID, id snowflake.ID) (bool, error)
	NumberTaken(ctx context.Context, db *gorm.DB, variant StoreVariant, companyID snowflake.ID, voucherType VoucherType, number string, excludeID snowflake.ID) (bool, error)
	List(ctx context.Context, db *gorm.DB, variant StoreVariant, companyID snowflake.ID, filter ListFilter) ([]*Voucher, error)
}

type ListRequest struct {
	VoucherType string `form:"voucher_type"`
	From        string `form:"from"`
	To          string `form:"to"`
	PartyID     string `form:"party_id"`
	pagination.Pagination
}

type ListResponse struct {
	Vouchers []*Voucher          `json:"vouchers"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

type PreviewResult struct {
	Voucher Voucher          `json:"voucher"`
	Errors  ValidationErrors `json:"errors"`
	// NextNumber is what create would issue now; empty when the draft has a number.
	NextNumber string `json:"next_number,omitempty"`
	Valid      bool   `json:"valid"`
}

type NextNumberResponse struct {
	VoucherType   VoucherType  `json:"voucher_type"`
	VoucherNumber string       `json:"voucher_number"`
	VoucherTypeID snowflake.ID `json:"voucher_type_id"`
}

type Service interface {
	Create(ctx context.Context, companyID snowflake.ID, draft Draft) (Voucher, error)
	View(ctx context.Context, companyID, id snowflake.ID) (Voucher, error)
	Update(ctx context.Context, companyID, id snowflake.ID, draft Draft) (Voucher, error)
	Delete(ctx context.Context, companyID, id snowflake.ID) error
	List(ctx context.Context, companyID snowflake.ID, req ListRequest) (ListResponse, error)
	Preview(ctx context.Context, companyID snowflake.ID, draft Draft) (PreviewResult, error)
	NextNumber(ctx context.Context, companyID snowflake.ID, voucherType string) (NextNumberResponse, error)
}
