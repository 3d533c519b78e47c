package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	Type LedgerType
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, ledger *Ledger) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Ledger, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListFilter) ([]Ledger, error)
}
