package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Product is a stock item that goods voucher lines refer to.
type Product struct {
	ID        snowflake.ID        `gorm:"primaryKey" json:"id"`
	CompanyID snowflake.ID        `gorm:"not null;uniqueIndex:ux_products_company_code,priority:1" json:"company_id"`
	Code      string              `gorm:"not null;uniqueIndex:ux_products_company_code,priority:2" json:"code"`
	Name      string              `gorm:"not null" json:"item_name"`
	HSNCode   string              `gorm:"column:hsn_code" json:"hsn_code,omitempty"`
	GSTRate   decimal.NullDecimal `gorm:"type:numeric(5,2)" json:"gst_rate"`
	Unit      string              `json:"unit,omitempty"`
	Active    bool                `gorm:"not null" json:"active"`
	Metadata  datatypes.JSONMap   `json:"metadata,omitempty"`
	CreatedAt time.Time           `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time           `gorm:"not null" json:"updated_at"`
}

func (Product) TableName() string { return "products" }
