package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/ledgerly/internal/clock"
	"github.com/smallbiznis/ledgerly/internal/config"
	"github.com/smallbiznis/ledgerly/internal/numbering/domain"
	"github.com/smallbiznis/ledgerly/internal/numbering/repository"
	"github.com/smallbiznis/ledgerly/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var issuedAt = time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, cfg config.NumberingConfig) domain.Service {
	t.Helper()
	svc, _ := newClockedService(t, cfg, clock.NewFakeClock(issuedAt))
	return svc
}

func newClockedService(t *testing.T, cfg config.NumberingConfig, clk clock.Clock) (domain.Service, *gorm.DB) {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Series{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:      conn,
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   clk,
		Series:  repository.ProvideSeries(),
		Counter: repository.NewDatabaseCounter(conn, clk),
		Config:  config.NewStaticNumberingConfigHolder(cfg),
	}), conn
}

func startingAt(voucherType string, start int64) config.NumberingConfig {
	cfg := config.DefaultNumberingConfig()
	series := cfg.Series[voucherType]
	series.Start = start
	cfg.Series[voucherType] = series
	return cfg
}

func TestNextIssuesSequentialNumbers(t *testing.T) {
	svc := newTestService(t, startingAt("payment", 101))
	ctx := context.Background()

	first, err := svc.Next(ctx, 1, "payment", issuedAt)
	require.NoError(t, err)
	second, err := svc.Next(ctx, 1, "Payment", issuedAt)
	require.NoError(t, err)

	assert.Equal(t, "PAY-000101", first.Value)
	assert.Equal(t, "PAY-000102", second.Value)
	assert.NotZero(t, first.VoucherTypeID)
	assert.Equal(t, first.VoucherTypeID, second.VoucherTypeID)
}

func TestNextKeepsSeriesIndependent(t *testing.T) {
	svc := newTestService(t, config.DefaultNumberingConfig())
	ctx := context.Background()

	pay, err := svc.Next(ctx, 1, "payment", issuedAt)
	require.NoError(t, err)
	rct, err := svc.Next(ctx, 1, "receipt", issuedAt)
	require.NoError(t, err)
	otherCompany, err := svc.Next(ctx, 2, "payment", issuedAt)
	require.NoError(t, err)

	assert.Equal(t, "PAY-000001", pay.Value)
	assert.Equal(t, "RCT-000001", rct.Value)
	assert.Equal(t, "PAY-000001", otherCompany.Value)
	assert.NotEqual(t, pay.VoucherTypeID, rct.VoucherTypeID)
	assert.NotEqual(t, pay.VoucherTypeID, otherCompany.VoucherTypeID)
}

func TestNextConcurrentIssuesAreUnique(t *testing.T) {
	svc := newTestService(t, startingAt("payment", 101))
	ctx := context.Background()

	const workers = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = map[string]bool{}
		errs    []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := svc.Next(ctx, 1, "payment", issuedAt)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			numbers[n.Value] = true
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Len(t, numbers, workers)
	assert.True(t, numbers["PAY-000101"])
	assert.True(t, numbers["PAY-000120"])
}

func TestPeekDoesNotConsume(t *testing.T) {
	svc := newTestService(t, config.DefaultNumberingConfig())
	ctx := context.Background()

	peeked, err := svc.Peek(ctx, 1, "sales", issuedAt)
	require.NoError(t, err)
	again, err := svc.Peek(ctx, 1, "sales", issuedAt)
	require.NoError(t, err)
	issued, err := svc.Next(ctx, 1, "sales", issuedAt)
	require.NoError(t, err)

	assert.Equal(t, "SAL-000001", peeked.Value)
	assert.Equal(t, peeked, again)
	assert.Equal(t, peeked.Value, issued.Value)
}

func TestNextRejectsInvalidInput(t *testing.T) {
	svc := newTestService(t, config.DefaultNumberingConfig())

	_, err := svc.Next(context.Background(), 0, "payment", issuedAt)
	assert.ErrorIs(t, err, domain.ErrInvalidCompany)

	_, err = svc.Next(context.Background(), 1, " ", issuedAt)
	assert.ErrorIs(t, err, domain.ErrInvalidVoucherType)
}

func TestSeriesTimestampsFollowClock(t *testing.T) {
	created := time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC)
	clk := clock.NewFakeClock(created)
	svc, conn := newClockedService(t, config.DefaultNumberingConfig(), clk)
	ctx := context.Background()

	_, err := svc.Next(ctx, 1, "receipt", issuedAt)
	require.NoError(t, err)

	clk.Advance(2 * time.Hour)
	_, err = svc.Next(ctx, 1, "receipt", issuedAt)
	require.NoError(t, err)

	var series domain.Series
	require.NoError(t, conn.Where("company_id = ? AND voucher_type = ?", 1, "receipt").Take(&series).Error)
	assert.True(t, series.CreatedAt.Equal(created), "created_at %s", series.CreatedAt)
	assert.True(t, series.UpdatedAt.Equal(created.Add(2*time.Hour)), "updated_at %s", series.UpdatedAt)
	assert.Equal(t, int64(3), series.NextNumber)
}
