package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/ledgerly/internal/clock"
	"github.com/smallbiznis/ledgerly/internal/config"
	"github.com/smallbiznis/ledgerly/internal/numbering/domain"
	"github.com/smallbiznis/ledgerly/internal/numbering/format"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Series  domain.SeriesRepository
	Counter domain.Counter
	Config  *config.NumberingConfigHolder
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	series  domain.SeriesRepository
	counter domain.Counter
	config  *config.NumberingConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("numbering.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		series:  p.Series,
		counter: p.Counter,
		config:  p.Config,
	}
}

func (s *Service) Next(ctx context.Context, companyID snowflake.ID, voucherType string, at time.Time) (domain.Number, error) {
	series, seriesCfg, err := s.resolveSeries(ctx, companyID, voucherType)
	if err != nil {
		return domain.Number{}, err
	}

	seq, err := s.counter.Next(ctx, series)
	if err != nil {
		s.log.Error("sequence issue failed",
			zap.String("company_id", companyID.String()),
			zap.String("voucher_type", series.VoucherType),
			zap.Error(err),
		)
		return domain.Number{}, err
	}

	value, err := format.FormatVoucherNumber(seriesCfg.Template, at, seq)
	if err != nil {
		return domain.Number{}, err
	}

	s.log.Debug("voucher number issued",
		zap.String("company_id", companyID.String()),
		zap.String("voucher_type", series.VoucherType),
		zap.String("voucher_number", value),
		zap.Int64("sequence", seq),
	)
	return domain.Number{Value: value, Sequence: seq, VoucherTypeID: series.ID}, nil
}

func (s *Service) Peek(ctx context.Context, companyID snowflake.ID, voucherType string, at time.Time) (domain.Number, error) {
	series, seriesCfg, err := s.resolveSeries(ctx, companyID, voucherType)
	if err != nil {
		return domain.Number{}, err
	}

	seq, err := s.counter.Peek(ctx, series)
	if err != nil {
		return domain.Number{}, err
	}
	value, err := format.FormatVoucherNumber(seriesCfg.Template, at, seq)
	if err != nil {
		return domain.Number{}, err
	}
	return domain.Number{Value: value, Sequence: seq, VoucherTypeID: series.ID}, nil
}

func (s *Service) resolveSeries(ctx context.Context, companyID snowflake.ID, voucherType string) (domain.Series, config.SeriesConfig, error) {
	if companyID == 0 {
		return domain.Series{}, config.SeriesConfig{}, domain.ErrInvalidCompany
	}
	voucherType = strings.ToLower(strings.TrimSpace(voucherType))
	if voucherType == "" {
		return domain.Series{}, config.SeriesConfig{}, domain.ErrInvalidVoucherType
	}

	seriesCfg := s.config.Get().SeriesFor(voucherType)
	now := s.clock.Now().UTC()
	series, err := s.series.Ensure(ctx, s.db, domain.Series{
		ID:          s.genID.Generate(),
		CompanyID:   companyID,
		VoucherType: voucherType,
		NextNumber:  seriesCfg.Start,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return domain.Series{}, config.SeriesConfig{}, err
	}
	return series, seriesCfg, nil
}
