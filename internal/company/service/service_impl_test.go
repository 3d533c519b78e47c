package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/ledgerly/internal/company/domain"
	"github.com/smallbiznis/ledgerly/internal/company/repository"
	"github.com/smallbiznis/ledgerly/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Company{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{Log: zap.NewNop(), GenID: node, Repo: repository.Provide(conn)})
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc := newTestService(t)
	rate := decimal.NewFromInt(18)

	company, err := svc.Create(context.Background(), domain.CreateCompanyRequest{
		Name:           "  Acme Traders ",
		EnableGST:      true,
		DefaultGSTRate: &rate,
		StateCode:      "KA",
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Traders", company.Name)
	assert.Equal(t, domain.DefaultSalesLedger, company.SalesLedger)
	assert.Equal(t, domain.DefaultPurchaseLedger, company.PurchaseLedger)

	settings, err := svc.Settings(context.Background(), company.ID)
	require.NoError(t, err)
	assert.True(t, settings.EnableGST)
	assert.Equal(t, "18.00", settings.TaxRules.DefaultGSTRate.StringFixed(2))
	assert.Equal(t, "KA", settings.PlaceOfSupply)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateCompanyRequest{Name: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	rate := decimal.NewFromInt(120)
	_, err = svc.Create(context.Background(), domain.CreateCompanyRequest{Name: "X", DefaultGSTRate: &rate})
	assert.ErrorIs(t, err, domain.ErrInvalidGSTRate)
}

func TestUpdateTogglesGST(t *testing.T) {
	svc := newTestService(t)
	company, err := svc.Create(context.Background(), domain.CreateCompanyRequest{Name: "Main"})
	require.NoError(t, err)

	enable := true
	_, err = svc.Update(context.Background(), company.ID.String(), domain.UpdateCompanyRequest{EnableGST: &enable})
	require.NoError(t, err)

	settings, err := svc.Settings(context.Background(), company.ID)
	require.NoError(t, err)
	assert.True(t, settings.EnableGST)
}

func TestSettingsUnknownCompany(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Settings(context.Background(), snowflake.ID(99))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
