package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/smallbiznis/ledgerly/internal/ledger/domain"
	productdomain "github.com/smallbiznis/ledgerly/internal/product/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type ledgerServiceMock struct{ mock.Mock }

func (m *ledgerServiceMock) Create(ctx context.Context, companyID snowflake.ID, req ledgerdomain.CreateRequest) (ledgerdomain.Ledger, error) {
	args := m.Called(ctx, companyID, req)
	return args.Get(0).(ledgerdomain.Ledger), args.Error(1)
}

func (m *ledgerServiceMock) Get(ctx context.Context, companyID snowflake.ID, id string) (ledgerdomain.Ledger, error) {
	args := m.Called(ctx, companyID, id)
	return args.Get(0).(ledgerdomain.Ledger), args.Error(1)
}

func (m *ledgerServiceMock) List(ctx context.Context, companyID snowflake.ID, ledgerType string) ([]ledgerdomain.Ledger, error) {
	args := m.Called(ctx, companyID, ledgerType)
	items, _ := args.Get(0).([]ledgerdomain.Ledger)
	return items, args.Error(1)
}

type productServiceMock struct{ mock.Mock }

func (m *productServiceMock) Create(ctx context.Context, companyID snowflake.ID, req productdomain.CreateRequest) (productdomain.Product, error) {
	args := m.Called(ctx, companyID, req)
	return args.Get(0).(productdomain.Product), args.Error(1)
}

func (m *productServiceMock) Get(ctx context.Context, companyID snowflake.ID, id string) (productdomain.Product, error) {
	args := m.Called(ctx, companyID, id)
	return args.Get(0).(productdomain.Product), args.Error(1)
}

func (m *productServiceMock) List(ctx context.Context, companyID snowflake.ID, req productdomain.ListRequest) ([]productdomain.Product, error) {
	args := m.Called(ctx, companyID, req)
	items, _ := args.Get(0).([]productdomain.Product)
	return items, args.Error(1)
}

func TestLedgersMapsSnapshots(t *testing.T) {
	ledgers := &ledgerServiceMock{}
	ledgers.On("List", mock.Anything, snowflake.ID(1), "").Return([]ledgerdomain.Ledger{
		{ID: 11, Name: "Cash-in-Hand", Code: "cash-in-hand", Type: ledgerdomain.LedgerTypeCashInHand},
	}, nil)

	dir := New(Params{Log: zap.NewNop(), Ledgers: ledgers, Products: &productServiceMock{}})
	refs, err := dir.Ledgers(context.Background(), 1, LedgerFilter{})
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, LedgerRef{ID: 11, Name: "Cash-in-Hand", Code: "cash-in-hand", Type: "Cash-in-Hand"}, refs[0])
	ledgers.AssertExpectations(t)
}

func TestFetchFailureIsTyped(t *testing.T) {
	boom := errors.New("connection reset")
	ledgers := &ledgerServiceMock{}
	ledgers.On("List", mock.Anything, snowflake.ID(1), "").Return(nil, boom)
	products := &productServiceMock{}
	products.On("List", mock.Anything, snowflake.ID(1), productdomain.ListRequest{}).Return(nil, boom)

	dir := New(Params{Log: zap.NewNop(), Ledgers: ledgers, Products: products})

	_, err := dir.Ledgers(context.Background(), 1, LedgerFilter{})
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, KindLedgers, fetchErr.Kind)
	assert.ErrorIs(t, err, boom)

	_, err = dir.Products(context.Background(), 1)
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, KindProducts, fetchErr.Kind)
}

func TestIndexResolve(t *testing.T) {
	idx := NewLedgerIndex([]LedgerRef{
		{ID: 1, Name: "Cash-in-Hand"},
		{ID: 2, Name: "Supplier A"},
		{ID: 3, Name: "Rent & Co"},
		{ID: 4, Name: "Rent and Co"},
	})

	ref, ok := idx.Resolve(0, "cash in hand")
	require.True(t, ok)
	assert.Equal(t, snowflake.ID(1), ref.ID)

	ref, ok = idx.Resolve(0, "SUPPLIER A")
	require.True(t, ok)
	assert.Equal(t, snowflake.ID(2), ref.ID)

	ref, ok = idx.Resolve(2, "ignored")
	require.True(t, ok)
	assert.Equal(t, "Supplier A", ref.Name)

	_, ok = idx.Resolve(99, "Supplier A")
	assert.False(t, ok, "unknown id must not fall back to the name")

	_, ok = idx.Resolve(0, "Supplier B")
	assert.False(t, ok)

	_, ok = idx.Resolve(0, "")
	assert.False(t, ok)

	ref, ok = idx.Resolve(0, "rent & co")
	require.True(t, ok, "exact names still resolve when slugs collide")
	assert.Equal(t, snowflake.ID(3), ref.ID)
}
