package repository

import (
	"context"

	"github.com/smallbiznis/ledgerly/internal/numbering/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type seriesRepo struct{}

func ProvideSeries() domain.SeriesRepository {
	return &seriesRepo{}
}

func (r *seriesRepo) Ensure(ctx context.Context, db *gorm.DB, candidate domain.Series) (domain.Series, error) {
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}, {Name: "voucher_type"}},
			DoNothing: true,
		}).
		Create(&candidate).Error
	if err != nil {
		return domain.Series{}, err
	}

	var series domain.Series
	err = db.WithContext(ctx).
		Where("company_id = ? AND voucher_type = ?", candidate.CompanyID, candidate.VoucherType).
		Take(&series).Error
	if err != nil {
		return domain.Series{}, err
	}
	return series, nil
}
