package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/ledgerly/internal/voucher/domain"
	"github.com/smallbiznis/ledgerly/pkg/db"
	"github.com/smallbiznis/ledgerly/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, conn *gorm.DB, variant domain.StoreVariant, v *domain.Voucher) error {
	t := tablesFor(variant)
	header := toVoucherRow(v)
	if err := conn.WithContext(ctx).Table(t.headers).Create(&header).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ErrDuplicateNumber
		}
		return err
	}
	return r.insertLines(ctx, conn, t, v)
}

func (r *repo) insertLines(ctx context.Context, conn *gorm.DB, t tables, v *domain.Voucher) error {
	if len(v.AccountingEntries) > 0 {
		entries := make([]EntryRow, 0, len(v.AccountingEntries))
		for _, e := range v.AccountingEntries {
			entries = append(entries, toEntryRow(v, e))
		}
		if err := conn.WithContext(ctx).Table(t.entries).Create(&entries).Error; err != nil {
			return err
		}
	}

	if len(v.Items) == 0 {
		return nil
	}
	if !t.gst {
		items := make([]ItemRow, 0, len(v.Items))
		for _, item := range v.Items {
			items = append(items, toItemRow(v, item))
		}
		return conn.WithContext(ctx).Table(t.items).Create(&items).Error
	}

	items := make([]GSTItemRow, 0, len(v.Items))
	for _, item := range v.Items {
		items = append(items, GSTItemRow{
			ItemRow:   toItemRow(v, item),
			GSTRate:   item.GSTRate,
			GSTAmount: item.GSTAmount,
			HSNCode:   item.HSNCode,
		})
	}
	return conn.WithContext(ctx).Table(t.items).Create(&items).Error
}

func (r *repo) FindByID(ctx context.Context, conn *gorm.DB, variant domain.StoreVariant, companyID, id snowflake.ID) (*domain.Voucher, error) {
	t := tablesFor(variant)

	var header VoucherRow
	err := conn.WithContext(ctx).
		Table(t.headers).
		Where("company_id = ? AND id = ?", companyID, id).
		Take(&header).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	v := fromVoucherRow(header, variant)

	var entries []EntryRow
	if err := conn.WithContext(ctx).
		Table(t.entries).
		Where("voucher_id = ?", id).
		Order("order_index asc").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	for _, row := range entries {
		v.AccountingEntries = append(v.AccountingEntries, fromEntryRow(row))
	}

	if !t.gst {
		var items []ItemRow
		if err := conn.WithContext(ctx).
			Table(t.items).
			Where("voucher_id = ?", id).
			Order("order_index asc").
			Find(&items).Error; err != nil {
			return nil, err
		}
		for _, row := range items {
			v.Items = append(v.Items, fromItemRow(row))
		}
		return v, nil
	}

	var items []GSTItemRow
	if err := conn.WithContext(ctx).
		Table(t.items).
		Where("voucher_id = ?", id).
		Order("order_index asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	for _, row := range items {
		line := fromItemRow(row.ItemRow)
		line.GSTRate = row.GSTRate
		line.GSTAmount = row.GSTAmount
		line.HSNCode = row.HSNCode
		v.Items = append(v.Items, line)
	}
	return v, nil
}

func (r *repo) Replace(ctx context.Context, conn *gorm.DB, variant domain.StoreVariant, v *domain.Voucher, expectedRevision int) error {
	t := tablesFor(variant)
	row := toVoucherRow(v)

	res := conn.WithContext(ctx).Exec(
		fmt.Sprintf(`UPDATE %s SET
			voucher_number = ?, voucher_date = ?, party_name = ?, party_name_id = ?, narration = ?,
			reference_number = ?, reference_date = ?, place_of_supply = ?, mode_of_transport = ?,
			vehicle_number = ?, payment_status = ?, due_date = ?,
			total = ?, total_tax = ?, discount = ?, additional_charge = ?, grand_total = ?,
			revision = ?, metadata = ?, updated_at = ?
		 WHERE company_id = ? AND id = ? AND revision = ?`, t.headers),
		row.VoucherNumber, row.VoucherDate, row.PartyName, row.PartyNameID, row.Narration,
		row.ReferenceNumber, row.ReferenceDate, row.PlaceOfSupply, row.ModeOfTransport,
		row.VehicleNumber, row.PaymentStatus, row.DueDate,
		row.Total, row.TotalTax, row.Discount, row.AdditionalCharge, row.GrandTotal,
		row.Revision, row.Metadata, row.UpdatedAt,
		row.CompanyID, row.ID, expectedRevision,
	)
	if res.Error != nil {
		if db.IsDuplicateKeyErr(res.Error) {
			return domain.ErrDuplicateNumber
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := conn.WithContext(ctx).
			Table(t.headers).
			Where("company_id = ? AND id = ?", v.CompanyID, v.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrVoucherNotFound
		}
		return domain.ErrRevisionConflict
	}

	if err := r.deleteLines(ctx, conn, t, v.ID); err != nil {
		return err
	}
	return r.insertLines(ctx, conn, t, v)
}

func (r *repo) Delete(ctx context.Context, conn *gorm.DB, variant domain.StoreVariant, companyID, id snowflake.ID) (bool, error) {
	t := tablesFor(variant)
	res := conn.WithContext(ctx).Exec(
		fmt.Sprintf(`DELETE FROM %s WHERE company_id = ? AND id = ?`, t.headers),
		companyID, id,
	)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, r.deleteLines(ctx, conn, t, id)
}

func (r *repo) deleteLines(ctx context.Context, conn *gorm.DB, t tables, voucherID snowflake.ID) error {
	for _, table := range []string{t.entries, t.items} {
		if err := conn.WithContext(ctx).Exec(
			fmt.Sprintf(`DELETE FROM %s WHERE voucher_id = ?`, table),
			voucherID,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) NumberTaken(ctx context.Context, conn *gorm.DB, variant domain.StoreVariant, companyID snowflake.ID, voucherType domain.VoucherType, number string, excludeID snowflake.ID) (bool, error) {
	var count int64
	err := conn.WithContext(ctx).
		Table(tablesFor(variant).headers).
		Where("company_id = ? AND voucher_type = ? AND voucher_number = ? AND id <> ?", companyID, string(voucherType), number, excludeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) List(ctx context.Context, conn *gorm.DB, variant domain.StoreVariant, companyID snowflake.ID, filter domain.ListFilter) ([]*domain.Voucher, error) {
	opts := []option.QueryOption{
		option.WithWhere("company_id = ?", companyID),
	}
	if filter.VoucherType != "" {
		opts = append(opts, option.WithWhere("voucher_type = ?", string(filter.VoucherType)))
	}
	if filter.From != nil {
		opts = append(opts, option.WithWhere("voucher_date >= ?", *filter.From))
	}
	if filter.To != nil {
		opts = append(opts, option.WithWhere("voucher_date <= ?", *filter.To))
	}
	if filter.PartyID != 0 {
		opts = append(opts, option.WithWhere("party_name_id = ?", filter.PartyID))
	}
	if filter.Cursor != nil && filter.Cursor.ID != "" {
		cursorID, err := strconv.ParseInt(filter.Cursor.ID, 10, 64)
		if err != nil {
			return nil, domain.ErrInvalidListFilter
		}
		opts = append(opts, option.WithWhere("id < ?", cursorID))
	}
	opts = append(opts, option.WithSortBy("id", true), option.WithLimit(filter.Limit))

	stmt := conn.WithContext(ctx).Table(tablesFor(variant).headers)
	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}

	var rows []VoucherRow
	if err := stmt.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Voucher, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromVoucherRow(row, variant))
	}
	return out, nil
}
