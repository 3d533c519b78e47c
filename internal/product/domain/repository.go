package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Product, error)
	FindAll(ctx context.Context, db *gorm.DB, companyID snowflake.ID, activeOnly bool) ([]Product, error)
}
