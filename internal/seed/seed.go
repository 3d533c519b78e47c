package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	companydomain "github.com/smallbiznis/ledgerly/internal/company/domain"
	"github.com/smallbiznis/ledgerly/internal/config"
	ledgerdomain "github.com/smallbiznis/ledgerly/internal/ledger/domain"
	numberingdomain "github.com/smallbiznis/ledgerly/internal/numbering/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultCompanyName = "Main"

type ledgerSeed struct {
	Name string
	Type ledgerdomain.LedgerType
}

var defaultLedgers = []ledgerSeed{
	{"Cash-in-Hand", ledgerdomain.LedgerTypeCashInHand},
	{"Bank Account", ledgerdomain.LedgerTypeBankAccounts},
	{companydomain.DefaultSalesLedger, ledgerdomain.LedgerTypeSalesAccounts},
	{companydomain.DefaultPurchaseLedger, ledgerdomain.LedgerTypePurchaseAccounts},
}

// EnsureMainCompany seeds the default company, its control ledgers and one
// numbering series per voucher type. Existing rows are left untouched.
func EnsureMainCompany(ctx context.Context, db *gorm.DB) (companydomain.Company, error) {
	if db == nil {
		return companydomain.Company{}, errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return companydomain.Company{}, err
	}

	var company companydomain.Company
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		company, err = ensureCompanyTx(ctx, tx, node)
		if err != nil {
			return err
		}
		if err := ensureLedgersTx(ctx, tx, node, company.ID); err != nil {
			return err
		}
		return ensureSeriesTx(ctx, tx, node, company.ID)
	})
	return company, err
}

func ensureCompanyTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (companydomain.Company, error) {
	var company companydomain.Company
	err := tx.WithContext(ctx).Where("name = ?", defaultCompanyName).Order("id asc").First(&company).Error
	if err == nil {
		return company, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return company, err
	}

	now := time.Now().UTC()
	company = companydomain.Company{
		ID:             node.Generate(),
		Name:           defaultCompanyName,
		DefaultGSTRate: decimal.Zero,
		SalesLedger:    companydomain.DefaultSalesLedger,
		PurchaseLedger: companydomain.DefaultPurchaseLedger,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := tx.WithContext(ctx).Create(&company).Error; err != nil {
		return company, err
	}
	return company, nil
}

func ensureLedgersTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, companyID snowflake.ID) error {
	now := time.Now().UTC()
	for _, l := range defaultLedgers {
		ledger := ledgerdomain.Ledger{
			ID:        node.Generate(),
			CompanyID: companyID,
			Name:      l.Name,
			Code:      slug.Make(l.Name),
			Type:      l.Type,
			CreatedAt: now,
			UpdatedAt: now,
		}
		err := tx.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "company_id"}, {Name: "code"}},
				DoNothing: true,
			}).
			Create(&ledger).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureSeriesTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, companyID snowflake.ID) error {
	now := time.Now().UTC()
	numbering := config.DefaultNumberingConfig()
	for _, voucherType := range []string{"payment", "receipt", "sales", "purchase"} {
		series := numberingdomain.Series{
			ID:          node.Generate(),
			CompanyID:   companyID,
			VoucherType: voucherType,
			NextNumber:  numbering.SeriesFor(voucherType).Start,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		err := tx.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "company_id"}, {Name: "voucher_type"}},
				DoNothing: true,
			}).
			Create(&series).Error
		if err != nil {
			return err
		}
	}
	return nil
}
