package repository

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/ledgerly/internal/voucher/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// VoucherRow is shared by vouchers and gst_vouchers.
type VoucherRow struct {
	ID               snowflake.ID `gorm:"primaryKey"`
	CompanyID        snowflake.ID `gorm:"not null"`
	VoucherType      string       `gorm:"not null"`
	VoucherTypeID    snowflake.ID `gorm:"not null"`
	VoucherNumber    string       `gorm:"not null"`
	VoucherDate      time.Time    `gorm:"not null"`
	PartyName        string       `gorm:"not null"`
	PartyNameID      snowflake.ID `gorm:"not null"`
	Narration        string
	ReferenceNumber  string
	ReferenceDate    *time.Time
	PlaceOfSupply    string
	ModeOfTransport  string
	VehicleNumber    string
	PaymentStatus    string
	DueDate          *time.Time
	Total            decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	TotalTax         decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Discount         decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	AdditionalCharge decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	GrandTotal       decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Revision         int             `gorm:"not null"`
	Metadata         datatypes.JSONMap
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

type EntryRow struct {
	ID         snowflake.ID    `gorm:"primaryKey"`
	VoucherID  snowflake.ID    `gorm:"not null"`
	CompanyID  snowflake.ID    `gorm:"not null"`
	LedgerID   snowflake.ID    `gorm:"not null"`
	LedgerName string          `gorm:"not null"`
	Amount     decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	OrderIndex int             `gorm:"not null"`
}

type ItemRow struct {
	ID         snowflake.ID    `gorm:"primaryKey"`
	VoucherID  snowflake.ID    `gorm:"not null"`
	CompanyID  snowflake.ID    `gorm:"not null"`
	ItemID     snowflake.ID    `gorm:"not null"`
	ItemName   string          `gorm:"not null"`
	Quantity   decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	Rate       decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	Amount     decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	OrderIndex int             `gorm:"not null"`
}

type GSTItemRow struct {
	ItemRow   `gorm:"embedded"`
	GSTRate   decimal.Decimal `gorm:"column:gst_rate;type:numeric(5,2);not null"`
	GSTAmount decimal.Decimal `gorm:"column:gst_amount;type:numeric(18,2);not null"`
	HSNCode   string          `gorm:"column:hsn_code"`
}

// tables names the physical collections of one store variant.
type tables struct {
	headers string
	entries string
	items   string
	gst     bool
}

var (
	plainTables = tables{headers: "vouchers", entries: "voucher_entries", items: "voucher_items"}
	gstTables   = tables{headers: "gst_vouchers", entries: "gst_voucher_entries", items: "gst_voucher_items", gst: true}
)

func tablesFor(variant domain.StoreVariant) tables {
	if variant == domain.VariantGST {
		return gstTables
	}
	return plainTables
}

// AutoMigrate creates both variants from the row models. Postgres deployments
// use the SQL migrations instead; this path serves sqlite, mysql and tests.
func AutoMigrate(db *gorm.DB) error {
	for _, t := range []tables{plainTables, gstTables} {
		if err := db.Table(t.headers).AutoMigrate(&VoucherRow{}); err != nil {
			return err
		}
		if err := db.Table(t.entries).AutoMigrate(&EntryRow{}); err != nil {
			return err
		}
		var item any = &ItemRow{}
		if t.gst {
			item = &GSTItemRow{}
		}
		if err := db.Table(t.items).AutoMigrate(item); err != nil {
			return err
		}

		indexes := []struct {
			table, name, ddl string
		}{
			{t.headers, "ux_" + t.headers + "_number", "CREATE UNIQUE INDEX %s ON %s (company_id, voucher_type, voucher_number)"},
			{t.headers, "ix_" + t.headers + "_date", "CREATE INDEX %s ON %s (company_id, voucher_date)"},
			{t.entries, "ix_" + t.entries + "_voucher", "CREATE INDEX %s ON %s (voucher_id, order_index)"},
			{t.items, "ix_" + t.items + "_voucher", "CREATE INDEX %s ON %s (voucher_id, order_index)"},
		}
		for _, idx := range indexes {
			if db.Migrator().HasIndex(idx.table, idx.name) {
				continue
			}
			if err := db.Exec(fmt.Sprintf(idx.ddl, idx.name, idx.table)).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func toVoucherRow(v *domain.Voucher) VoucherRow {
	row := VoucherRow{
		ID:               v.ID,
		CompanyID:        v.CompanyID,
		VoucherType:      string(v.VoucherType),
		VoucherTypeID:    v.VoucherTypeID,
		VoucherNumber:    v.VoucherNumber,
		VoucherDate:      v.Date,
		PartyName:        v.PartyName,
		PartyNameID:      v.PartyNameID,
		Narration:        v.Narration,
		Total:            v.Total,
		TotalTax:         v.TotalTax,
		Discount:         v.Discount,
		AdditionalCharge: v.AdditionalCharge,
		GrandTotal:       v.GrandTotal,
		Revision:         v.Revision,
		Metadata:         datatypes.JSONMap(v.Metadata),
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
	}
	if g := v.Goods; g != nil {
		row.ReferenceNumber = g.ReferenceNumber
		row.ReferenceDate = g.ReferenceDate
		row.PlaceOfSupply = g.PlaceOfSupply
		row.ModeOfTransport = g.ModeOfTransport
		row.VehicleNumber = g.VehicleNumber
		row.PaymentStatus = string(g.PaymentStatus)
		row.DueDate = g.DueDate
	}
	return row
}

func fromVoucherRow(row VoucherRow, variant domain.StoreVariant) *domain.Voucher {
	v := &domain.Voucher{
		ID:                row.ID,
		CompanyID:         row.CompanyID,
		VoucherType:       domain.VoucherType(row.VoucherType),
		VoucherTypeID:     row.VoucherTypeID,
		VoucherNumber:     row.VoucherNumber,
		Date:              row.VoucherDate.UTC(),
		PartyName:         row.PartyName,
		PartyNameID:       row.PartyNameID,
		Narration:         row.Narration,
		Total:             row.Total,
		TotalTax:          row.TotalTax,
		Discount:          row.Discount,
		AdditionalCharge:  row.AdditionalCharge,
		GrandTotal:        row.GrandTotal,
		Revision:          row.Revision,
		Metadata:          map[string]any(row.Metadata),
		CreatedAt:         row.CreatedAt.UTC(),
		UpdatedAt:         row.UpdatedAt.UTC(),
		State:             domain.StatePersisted,
		AccountingEntries: []domain.AccountingEntry{},
		Items:             []domain.InventoryLine{},
	}
	if row.Revision > 1 {
		v.State = domain.StateUpdated
	}
	if v.VoucherType.IsGoods() {
		v.GSTEnabled = variant == domain.VariantGST
		v.Goods = &domain.GoodsHeader{
			ReferenceNumber: row.ReferenceNumber,
			ReferenceDate:   utcPtr(row.ReferenceDate),
			PlaceOfSupply:   row.PlaceOfSupply,
			ModeOfTransport: row.ModeOfTransport,
			VehicleNumber:   row.VehicleNumber,
			PaymentStatus:   domain.PaymentStatus(row.PaymentStatus),
			DueDate:         utcPtr(row.DueDate),
		}
	}
	return v
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func toEntryRow(v *domain.Voucher, e domain.AccountingEntry) EntryRow {
	return EntryRow{
		ID:         e.ID,
		VoucherID:  v.ID,
		CompanyID:  v.CompanyID,
		LedgerID:   e.LedgerID,
		LedgerName: e.LedgerName,
		Amount:     e.Amount,
		OrderIndex: e.OrderIndex,
	}
}

func fromEntryRow(row EntryRow) domain.AccountingEntry {
	return domain.AccountingEntry{
		ID:         row.ID,
		VoucherID:  row.VoucherID,
		LedgerID:   row.LedgerID,
		LedgerName: row.LedgerName,
		Amount:     row.Amount,
		OrderIndex: row.OrderIndex,
		Role:       domain.RoleForIndex(row.OrderIndex),
	}
}

func toItemRow(v *domain.Voucher, item domain.InventoryLine) ItemRow {
	return ItemRow{
		ID:         item.ID,
		VoucherID:  v.ID,
		CompanyID:  v.CompanyID,
		ItemID:     item.ItemID,
		ItemName:   item.ItemName,
		Quantity:   item.Quantity,
		Rate:       item.Rate,
		Amount:     item.Amount,
		OrderIndex: item.OrderIndex,
	}
}

func fromItemRow(row ItemRow) domain.InventoryLine {
	return domain.InventoryLine{
		ID:         row.ID,
		VoucherID:  row.VoucherID,
		ItemID:     row.ItemID,
		ItemName:   row.ItemName,
		Quantity:   row.Quantity,
		Rate:       row.Rate,
		Amount:     row.Amount,
		GSTRate:    decimal.Zero,
		GSTAmount:  decimal.Zero,
		OrderIndex: row.OrderIndex,
	}
}
