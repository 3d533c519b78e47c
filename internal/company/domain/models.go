package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Company owns vouchers and the settings that shape them.
type Company struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"not null" json:"name"`
	EnableGST      bool            `gorm:"not null;default:false" json:"enable_gst"`
	DefaultGSTRate decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"default_gst_rate"`
	SalesLedger    string          `gorm:"not null" json:"sales_ledger"`
	PurchaseLedger string          `gorm:"not null" json:"purchase_ledger"`
	StateCode      string          `gorm:"column:state_code" json:"state_code,omitempty"`
	CreatedAt      time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null" json:"updated_at"`
}

func (Company) TableName() string { return "companies" }

type TaxRules struct {
	DefaultGSTRate decimal.Decimal `json:"default_gst_rate"`
}

// Settings is the read-only view the voucher engine consumes.
type Settings struct {
	CompanyID      snowflake.ID `json:"company_id"`
	EnableGST      bool         `json:"enable_gst"`
	TaxRules       TaxRules     `json:"tax_rules"`
	SalesLedger    string       `json:"sales_ledger"`
	PurchaseLedger string       `json:"purchase_ledger"`
	PlaceOfSupply  string       `json:"place_of_supply,omitempty"`
}

func (c Company) Settings() Settings {
	return Settings{
		CompanyID:      c.ID,
		EnableGST:      c.EnableGST,
		TaxRules:       TaxRules{DefaultGSTRate: c.DefaultGSTRate},
		SalesLedger:    c.SalesLedger,
		PurchaseLedger: c.PurchaseLedger,
		PlaceOfSupply:  c.StateCode,
	}
}

const (
	DefaultSalesLedger    = "Sales Account"
	DefaultPurchaseLedger = "Purchase Account"
)
