package directory

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	ledgerdomain "github.com/smallbiznis/ledgerly/internal/ledger/domain"
	productdomain "github.com/smallbiznis/ledgerly/internal/product/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// LedgerRef is a snapshot of one ledger master record.
type LedgerRef struct {
	ID   snowflake.ID
	Name string
	Code string
	Type string
}

// ProductRef is a snapshot of one product master record.
type ProductRef struct {
	ID      snowflake.ID
	Name    string
	Code    string
	HSNCode string
	GSTRate decimal.NullDecimal
}

type LedgerFilter struct {
	Type string
}

// Directory is the read-only view of a company's masters.
type Directory interface {
	Ledgers(ctx context.Context, companyID snowflake.ID, filter LedgerFilter) ([]LedgerRef, error)
	Products(ctx context.Context, companyID snowflake.ID) ([]ProductRef, error)
}

const (
	KindLedgers  = "ledgers"
	KindProducts = "products"
)

// FetchError reports that a master list could not be loaded.
type FetchError struct {
	Kind      string
	CompanyID snowflake.ID
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("directory: fetch %s for company %s: %v", e.Kind, e.CompanyID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

type Params struct {
	fx.In

	Log      *zap.Logger
	Ledgers  ledgerdomain.Service
	Products productdomain.Service
}

type adapter struct {
	log      *zap.Logger
	ledgers  ledgerdomain.Service
	products productdomain.Service
}

func New(p Params) Directory {
	return &adapter{
		log:      p.Log.Named("directory"),
		ledgers:  p.Ledgers,
		products: p.Products,
	}
}

func (a *adapter) Ledgers(ctx context.Context, companyID snowflake.ID, filter LedgerFilter) ([]LedgerRef, error) {
	items, err := a.ledgers.List(ctx, companyID, filter.Type)
	if err != nil {
		a.log.Warn("ledger fetch failed", zap.String("company_id", companyID.String()), zap.Error(err))
		return nil, &FetchError{Kind: KindLedgers, CompanyID: companyID, Err: err}
	}

	refs := make([]LedgerRef, 0, len(items))
	for _, item := range items {
		refs = append(refs, LedgerRef{
			ID:   item.ID,
			Name: item.Name,
			Code: item.Code,
			Type: string(item.Type),
		})
	}
	return refs, nil
}

func (a *adapter) Products(ctx context.Context, companyID snowflake.ID) ([]ProductRef, error) {
	items, err := a.products.List(ctx, companyID, productdomain.ListRequest{})
	if err != nil {
		a.log.Warn("product fetch failed", zap.String("company_id", companyID.String()), zap.Error(err))
		return nil, &FetchError{Kind: KindProducts, CompanyID: companyID, Err: err}
	}

	refs := make([]ProductRef, 0, len(items))
	for _, item := range items {
		refs = append(refs, ProductRef{
			ID:      item.ID,
			Name:    item.Name,
			Code:    item.Code,
			HSNCode: item.HSNCode,
			GSTRate: item.GSTRate,
		})
	}
	return refs, nil
}

var Module = fx.Module("directory",
	fx.Provide(New),
)
