package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/ledgerly/internal/ledger/domain"
	"github.com/smallbiznis/ledgerly/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ledger.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, companyID snowflake.ID, req domain.CreateRequest) (domain.Ledger, error) {
	if companyID == 0 {
		return domain.Ledger{}, domain.ErrInvalidCompany
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Ledger{}, domain.ErrInvalidName
	}
	ledgerType, ok := domain.ParseLedgerType(req.Type)
	if !ok {
		return domain.Ledger{}, domain.ErrInvalidType
	}
	code := slug.Make(strings.TrimSpace(req.Code))
	if code == "" {
		code = slug.Make(name)
	}

	metadata := datatypes.JSONMap{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	now := time.Now().UTC()
	ledger := domain.Ledger{
		ID:        s.genID.Generate(),
		CompanyID: companyID,
		Name:      name,
		Code:      code,
		Type:      ledgerType,
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, &ledger); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Ledger{}, domain.ErrDuplicateCode
		}
		return domain.Ledger{}, err
	}

	s.log.Info("ledger created",
		zap.String("company_id", companyID.String()),
		zap.String("ledger_id", ledger.ID.String()),
		zap.String("ledger_type", string(ledger.Type)),
	)
	return ledger, nil
}

func (s *Service) Get(ctx context.Context, companyID snowflake.ID, id string) (domain.Ledger, error) {
	ledgerID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || ledgerID == 0 {
		return domain.Ledger{}, domain.ErrInvalidID
	}
	ledger, err := s.repo.FindByID(ctx, s.db, companyID, ledgerID)
	if err != nil {
		return domain.Ledger{}, err
	}
	if ledger == nil {
		return domain.Ledger{}, domain.ErrNotFound
	}
	return *ledger, nil
}

func (s *Service) List(ctx context.Context, companyID snowflake.ID, ledgerType string) ([]domain.Ledger, error) {
	if companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}
	filter := domain.ListFilter{}
	if strings.TrimSpace(ledgerType) != "" {
		parsed, ok := domain.ParseLedgerType(ledgerType)
		if !ok {
			return nil, domain.ErrInvalidType
		}
		filter.Type = parsed
	}
	return s.repo.List(ctx, s.db, companyID, filter)
}
