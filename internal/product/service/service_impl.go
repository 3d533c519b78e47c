package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/ledgerly/internal/product/domain"
	"github.com/smallbiznis/ledgerly/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var maxGSTRate = decimal.NewFromInt(100)

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
		log:   p.Log.Named("product.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, companyID snowflake.ID, req domain.CreateRequest) (domain.Product, error) {
	if companyID == 0 {
		return domain.Product{}, domain.ErrInvalidCompany
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Product{}, domain.ErrInvalidName
	}

	var gstRate decimal.NullDecimal
	if req.GSTRate != nil {
		if req.GSTRate.IsNegative() || req.GSTRate.GreaterThan(maxGSTRate) {
			return domain.Product{}, domain.ErrInvalidGSTRate
		}
		gstRate = decimal.NewNullDecimal(*req.GSTRate)
	}

	code := slug.Make(strings.TrimSpace(req.Code))
	if code == "" {
		code = slug.Make(name)
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:        s.genID.Generate(),
		CompanyID: companyID,
		Code:      code,
		Name:      name,
		HSNCode:   strings.TrimSpace(req.HSNCode),
		GSTRate:   gstRate,
		Unit:      strings.TrimSpace(req.Unit),
		Active:    active,
		Metadata:  datatypes.JSONMap(req.Metadata),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if product.Metadata == nil {
		product.Metadata = datatypes.JSONMap{}
	}

	if err := s.repo.Create(ctx, s.db, &product); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Product{}, domain.ErrDuplicateCode
		}
		return domain.Product{}, err
	}
	return product, nil
}

func (s *Service) Get(ctx context.Context, companyID snowflake.ID, id string) (domain.Product, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || productID == 0 {
		return domain.Product{}, domain.ErrInvalidID
	}
	product, err := s.repo.FindByID(ctx, s.db, companyID, productID)
	if err != nil {
		return domain.Product{}, err
	}
	if product == nil {
		return domain.Product{}, domain.ErrNotFound
	}
	return *product, nil
}

func (s *Service) List(ctx context.Context, companyID snowflake.ID, req domain.ListRequest) ([]domain.Product, error) {
	if companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}
	return s.repo.FindAll(ctx, s.db, companyID, req.ActiveOnly)
}
