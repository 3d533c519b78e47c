package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, companyID snowflake.ID, req CreateRequest) (Product, error)
	Get(ctx context.Context, companyID snowflake.ID, id string) (Product, error)
	List(ctx context.Context, companyID snowflake.ID, req ListRequest) ([]Product, error)
}

type ListRequest struct {
	ActiveOnly bool
}

type CreateRequest struct {
	Code     string           `json:"code"`
	Name     string           `json:"item_name"`
	HSNCode  string           `json:"hsn_code"`
	GSTRate  *decimal.Decimal `json:"gst_rate"`
	Unit     string           `json:"unit"`
	Active   *bool            `json:"active"`
	Metadata map[string]any   `json:"metadata"`
}

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidName    = errors.New("invalid_item_name")
	ErrInvalidGSTRate = errors.New("invalid_gst_rate")
	ErrInvalidID      = errors.New("invalid_product_id")
	ErrDuplicateCode  = errors.New("duplicate_product_code")
	ErrNotFound       = errors.New("product_not_found")
)
