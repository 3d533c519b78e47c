package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/ledgerly/internal/company/domain"
	"github.com/smallbiznis/ledgerly/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var maxGSTRate = decimal.NewFromInt(100)

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  repository.Repository[domain.Company]
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	repo  repository.Repository[domain.Company]
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("company.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCompanyRequest) (domain.Company, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Company{}, domain.ErrInvalidName
	}

	rate := decimal.Zero
	if req.DefaultGSTRate != nil {
		rate = *req.DefaultGSTRate
	}
	if rate.IsNegative() || rate.GreaterThan(maxGSTRate) {
		return domain.Company{}, domain.ErrInvalidGSTRate
	}

	now := time.Now().UTC()
	company := domain.Company{
		ID:             s.genID.Generate(),
		Name:           name,
		EnableGST:      req.EnableGST,
		DefaultGSTRate: rate,
		SalesLedger:    orDefault(req.SalesLedger, domain.DefaultSalesLedger),
		PurchaseLedger: orDefault(req.PurchaseLedger, domain.DefaultPurchaseLedger),
		StateCode:      strings.TrimSpace(req.StateCode),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, &company); err != nil {
		return domain.Company{}, err
	}

	s.log.Info("company created", zap.String("company_id", company.ID.String()), zap.Bool("enable_gst", company.EnableGST))
	return company, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Company, error) {
	companyID, err := parseID(id)
	if err != nil {
		return domain.Company{}, err
	}
	return s.find(ctx, companyID)
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateCompanyRequest) (domain.Company, error) {
	companyID, err := parseID(id)
	if err != nil {
		return domain.Company{}, err
	}
	company, err := s.find(ctx, companyID)
	if err != nil {
		return domain.Company{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Company{}, domain.ErrInvalidName
		}
		company.Name = name
	}
	if req.EnableGST != nil {
		company.EnableGST = *req.EnableGST
	}
	if req.DefaultGSTRate != nil {
		if req.DefaultGSTRate.IsNegative() || req.DefaultGSTRate.GreaterThan(maxGSTRate) {
			return domain.Company{}, domain.ErrInvalidGSTRate
		}
		company.DefaultGSTRate = *req.DefaultGSTRate
	}
	if req.SalesLedger != nil {
		company.SalesLedger = orDefault(*req.SalesLedger, domain.DefaultSalesLedger)
	}
	if req.PurchaseLedger != nil {
		company.PurchaseLedger = orDefault(*req.PurchaseLedger, domain.DefaultPurchaseLedger)
	}
	if req.StateCode != nil {
		company.StateCode = strings.TrimSpace(*req.StateCode)
	}
	company.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, int64(company.ID), map[string]any{
		"name":             company.Name,
		"enable_gst":       company.EnableGST,
		"default_gst_rate": company.DefaultGSTRate,
		"sales_ledger":     company.SalesLedger,
		"purchase_ledger":  company.PurchaseLedger,
		"state_code":       company.StateCode,
		"updated_at":       company.UpdatedAt,
	}); err != nil {
		return domain.Company{}, err
	}
	return company, nil
}

func (s *Service) Settings(ctx context.Context, companyID snowflake.ID) (domain.Settings, error) {
	if companyID == 0 {
		return domain.Settings{}, domain.ErrInvalidID
	}
	company, err := s.find(ctx, companyID)
	if err != nil {
		return domain.Settings{}, err
	}
	return company.Settings(), nil
}

func (s *Service) find(ctx context.Context, id snowflake.ID) (domain.Company, error) {
	company, err := s.repo.FindOne(ctx, &domain.Company{ID: id})
	if err != nil {
		return domain.Company{}, err
	}
	if company == nil {
		return domain.Company{}, domain.ErrNotFound
	}
	return *company, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func orDefault(value, def string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return def
}
