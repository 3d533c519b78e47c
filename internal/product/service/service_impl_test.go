package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/ledgerly/internal/product/domain"
	"github.com/smallbiznis/ledgerly/internal/product/repository"
	"github.com/smallbiznis/ledgerly/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Product{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{DB: conn, Log: zap.NewNop(), GenID: node, Repo: repository.Provide()})
}

func TestCreateProductWithTaxDefaults(t *testing.T) {
	svc := newTestService(t)
	rate := decimal.NewFromInt(12)

	product, err := svc.Create(context.Background(), 7, domain.CreateRequest{
		Name:    "Paracetamol 500mg",
		HSNCode: "3004",
		GSTRate: &rate,
	})
	require.NoError(t, err)
	assert.Equal(t, "paracetamol-500mg", product.Code)
	assert.True(t, product.Active)

	got, err := svc.Get(context.Background(), 7, product.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "3004", got.HSNCode)
	require.True(t, got.GSTRate.Valid)
	assert.Equal(t, "12.00", got.GSTRate.Decimal.StringFixed(2))
}

func TestCreateProductWithoutRate(t *testing.T) {
	svc := newTestService(t)

	product, err := svc.Create(context.Background(), 7, domain.CreateRequest{Name: "Bandage"})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), 7, product.ID.String())
	require.NoError(t, err)
	assert.False(t, got.GSTRate.Valid)
}

func TestCreateProductValidation(t *testing.T) {
	svc := newTestService(t)
	negative := decimal.NewFromInt(-1)

	_, err := svc.Create(context.Background(), 7, domain.CreateRequest{Name: "X", GSTRate: &negative})
	assert.ErrorIs(t, err, domain.ErrInvalidGSTRate)

	_, err = svc.Create(context.Background(), 7, domain.CreateRequest{Name: "Syrup"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), 7, domain.CreateRequest{Name: "SYRUP"})
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)
}

func TestListActiveOnly(t *testing.T) {
	svc := newTestService(t)
	inactive := false

	_, err := svc.Create(context.Background(), 7, domain.CreateRequest{Name: "A"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), 7, domain.CreateRequest{Name: "B", Active: &inactive})
	require.NoError(t, err)

	all, err := svc.List(context.Background(), 7, domain.ListRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := svc.List(context.Background(), 7, domain.ListRequest{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active, 1)
}
