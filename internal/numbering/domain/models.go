package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Series is the per-company counter registry row for one voucher type. Its id
// is the voucher_type_id stamped on every voucher of the series.
type Series struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	CompanyID   snowflake.ID `gorm:"not null;uniqueIndex:ux_voucher_series_company_type,priority:1" json:"company_id"`
	VoucherType string       `gorm:"not null;uniqueIndex:ux_voucher_series_company_type,priority:2" json:"voucher_type"`
	NextNumber  int64        `gorm:"not null" json:"next_number"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
}

func (Series) TableName() string { return "voucher_series" }

// Number is an issued voucher number.
type Number struct {
	Value         string       `json:"voucher_number"`
	Sequence      int64        `json:"sequence"`
	VoucherTypeID snowflake.ID `json:"voucher_type_id"`
}

type SeriesRepository interface {
	// Ensure returns the series row, inserting candidate when none exists.
	Ensure(ctx context.Context, db *gorm.DB, candidate Series) (Series, error)
}

// Counter hands out sequence values. Next must be atomic across processes.
type Counter interface {
	Next(ctx context.Context, series Series) (int64, error)
	Peek(ctx context.Context, series Series) (int64, error)
}

type Service interface {
	// Next issues the next number of the (company, voucher type) series.
	Next(ctx context.Context, companyID snowflake.ID, voucherType string, at time.Time) (Number, error)
	// Peek renders the number Next would issue without consuming it.
	Peek(ctx context.Context, companyID snowflake.ID, voucherType string, at time.Time) (Number, error)
}

var (
	ErrInvalidCompany     = errors.New("invalid_company")
	ErrInvalidVoucherType = errors.New("invalid_voucher_type")
	ErrSeriesUnavailable  = errors.New("numbering_series_unavailable")
)
