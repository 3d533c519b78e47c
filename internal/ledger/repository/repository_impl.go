package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/ledgerly/internal/ledger/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, ledger *domain.Ledger) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO ledgers (id, company_id, name, code, ledger_type, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ledger.ID,
		ledger.CompanyID,
		ledger.Name,
		ledger.Code,
		ledger.Type,
		ledger.Metadata,
		ledger.CreatedAt,
		ledger.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*domain.Ledger, error) {
	var ledger domain.Ledger
	err := db.WithContext(ctx).Raw(
		`SELECT id, company_id, name, code, ledger_type, metadata, created_at, updated_at
		 FROM ledgers WHERE company_id = ? AND id = ?`,
		companyID,
		id,
	).Scan(&ledger).Error
	if err != nil {
		return nil, err
	}
	if ledger.ID == 0 {
		return nil, nil
	}
	return &ledger, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListFilter) ([]domain.Ledger, error) {
	var ledgers []domain.Ledger
	stmt := db.WithContext(ctx).
		Model(&domain.Ledger{}).
		Where("company_id = ?", companyID)
	if filter.Type != "" {
		stmt = stmt.Where("ledger_type = ?", filter.Type)
	}
	if err := stmt.Order("name asc, id asc").Find(&ledgers).Error; err != nil {
		return nil, err
	}
	return ledgers, nil
}
