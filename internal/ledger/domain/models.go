package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// LedgerType is the accounting group a ledger belongs to.
type LedgerType string

const (
	LedgerTypeDebtors          LedgerType = "Debtors"
	LedgerTypeCreditors        LedgerType = "Creditors"
	LedgerTypeBankAccounts     LedgerType = "Bank Accounts"
	LedgerTypeCashInHand       LedgerType = "Cash-in-Hand"
	LedgerTypeSalesAccounts    LedgerType = "Sales Accounts"
	LedgerTypePurchaseAccounts LedgerType = "Purchase Accounts"
	LedgerTypeDutiesAndTaxes   LedgerType = "Duties & Taxes"
	LedgerTypeIndirectExpenses LedgerType = "Indirect Expenses"
	LedgerTypeIndirectIncomes  LedgerType = "Indirect Incomes"
)

var ledgerTypes = []LedgerType{
	LedgerTypeDebtors,
	LedgerTypeCreditors,
	LedgerTypeBankAccounts,
	LedgerTypeCashInHand,
	LedgerTypeSalesAccounts,
	LedgerTypePurchaseAccounts,
	LedgerTypeDutiesAndTaxes,
	LedgerTypeIndirectExpenses,
	LedgerTypeIndirectIncomes,
}

// ParseLedgerType matches case-insensitively against the known groups.
func ParseLedgerType(raw string) (LedgerType, bool) {
	raw = strings.TrimSpace(raw)
	for _, t := range ledgerTypes {
		if strings.EqualFold(string(t), raw) {
			return t, true
		}
	}
	return "", false
}

type Ledger struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	CompanyID snowflake.ID      `gorm:"not null;uniqueIndex:ux_ledgers_company_code,priority:1" json:"company_id"`
	Name      string            `gorm:"not null" json:"ledger_name"`
	Code      string            `gorm:"not null;uniqueIndex:ux_ledgers_company_code,priority:2" json:"code"`
	Type      LedgerType        `gorm:"column:ledger_type;not null" json:"type"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null" json:"updated_at"`
}

func (Ledger) TableName() string { return "ledgers" }
