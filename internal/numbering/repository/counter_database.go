package repository

import (
	"context"

	"github.com/smallbiznis/ledgerly/internal/clock"
	"github.com/smallbiznis/ledgerly/internal/numbering/domain"
	"gorm.io/gorm"
)

// DatabaseCounter increments voucher_series.next_number in place. The UPDATE
// takes the row lock, so the read that follows inside the same transaction
// observes only this issuer's increment.
type DatabaseCounter struct {
	db    *gorm.DB
	clock clock.Clock
}

func NewDatabaseCounter(db *gorm.DB, clk clock.Clock) *DatabaseCounter {
	return &DatabaseCounter{db: db, clock: clk}
}

func (c *DatabaseCounter) Next(ctx context.Context, series domain.Series) (int64, error) {
	var issued int64
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			`UPDATE voucher_series SET next_number = next_number + 1, updated_at = ? WHERE id = ?`,
			c.clock.Now().UTC(),
			series.ID,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrSeriesUnavailable
		}

		var next int64
		if err := tx.Raw(`SELECT next_number FROM voucher_series WHERE id = ?`, series.ID).Row().Scan(&next); err != nil {
			return err
		}
		issued = next - 1
		return nil
	})
	if err != nil {
		return 0, err
	}
	return issued, nil
}

func (c *DatabaseCounter) Peek(ctx context.Context, series domain.Series) (int64, error) {
	var next int64
	err := c.db.WithContext(ctx).
		Raw(`SELECT next_number FROM voucher_series WHERE id = ?`, series.ID).
		Row().
		Scan(&next)
	if err != nil {
		return 0, err
	}
	return next, nil
}
