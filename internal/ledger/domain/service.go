package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateRequest struct {
	Name     string         `json:"ledger_name"`
	Code     string         `json:"code"`
	Type     string         `json:"type"`
	Metadata map[string]any `json:"metadata"`
}

type Service interface {
	Create(ctx context.Context, companyID snowflake.ID, req CreateRequest) (Ledger, error)
	Get(ctx context.Context, companyID snowflake.ID, id string) (Ledger, error)
	List(ctx context.Context, companyID snowflake.ID, ledgerType string) ([]Ledger, error)
}

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidName    = errors.New("invalid_ledger_name")
	ErrInvalidType    = errors.New("invalid_ledger_type")
	ErrInvalidID      = errors.New("invalid_ledger_id")
	ErrDuplicateCode  = errors.New("duplicate_ledger_code")
	ErrNotFound       = errors.New("ledger_not_found")
)
