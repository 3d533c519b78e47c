package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type CreateCompanyRequest struct {
	Name           string           `json:"name"`
	EnableGST      bool             `json:"enable_gst"`
	DefaultGSTRate *decimal.Decimal `json:"default_gst_rate"`
	SalesLedger    string           `json:"sales_ledger"`
	PurchaseLedger string           `json:"purchase_ledger"`
	StateCode      string           `json:"state_code"`
}

type UpdateCompanyRequest struct {
	Name           *string          `json:"name"`
	EnableGST      *bool            `json:"enable_gst"`
	DefaultGSTRate *decimal.Decimal `json:"default_gst_rate"`
	SalesLedger    *string          `json:"sales_ledger"`
	PurchaseLedger *string          `json:"purchase_ledger"`
	StateCode      *string          `json:"state_code"`
}

type Service interface {
	Create(ctx context.Context, req CreateCompanyRequest) (Company, error)
	Get(ctx context.Context, id string) (Company, error)
	Update(ctx context.Context, id string, req UpdateCompanyRequest) (Company, error)
	// Settings returns the settings snapshot for one company.
	Settings(ctx context.Context, companyID snowflake.ID) (Settings, error)
}

var (
	ErrInvalidID      = errors.New("invalid_company_id")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidGSTRate = errors.New("invalid_gst_rate")
	ErrNotFound       = errors.New("company_not_found")
)
