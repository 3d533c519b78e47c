package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/ledgerly/internal/audit/domain"
	"github.com/smallbiznis/ledgerly/internal/audit/repository"
	"github.com/smallbiznis/ledgerly/internal/clock"
	obscontext "github.com/smallbiznis/ledgerly/internal/observability/context"
	"github.com/smallbiznis/ledgerly/pkg/db"
	"github.com/smallbiznis/ledgerly/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.AuditLog{}))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC))

	svc := NewService(Params{DB: conn, Log: zap.NewNop(), GenID: node, Clock: clk, Repo: repository.Provide()})
	return svc, conn, clk
}

func TestRecordMasksMetadataAndTagsRequest(t *testing.T) {
	svc, conn, _ := newTestService(t)
	ctx := obscontext.WithRequestID(context.Background(), "req-1")

	err := svc.Record(ctx, nil, domain.Entry{
		CompanyID:  7,
		Action:     "voucher.created",
		TargetType: domain.TargetTypeVoucher,
		TargetID:   "42",
		Revision:   1,
		Metadata:   map[string]any{"voucher_number": "PAY-000001", "card_number": "4111111111111111"},
	})
	require.NoError(t, err)

	var stored domain.AuditLog
	require.NoError(t, conn.First(&stored).Error)
	assert.Equal(t, snowflake.ID(7), stored.CompanyID)
	assert.Equal(t, "voucher.created", stored.Action)
	require.NotNil(t, stored.RequestID)
	assert.Equal(t, "req-1", *stored.RequestID)
	assert.Equal(t, "PAY-000001", stored.Metadata["voucher_number"])
	assert.Equal(t, "****1111", stored.Metadata["card_number"])
}

func TestRecordJoinsCallerTransaction(t *testing.T) {
	svc, conn, _ := newTestService(t)
	ctx := context.Background()

	_ = conn.Transaction(func(tx *gorm.DB) error {
		require.NoError(t, svc.Record(ctx, tx, domain.Entry{CompanyID: 7, Action: "voucher.deleted", TargetID: "1"}))
		return assert.AnError
	})

	var count int64
	require.NoError(t, conn.Model(&domain.AuditLog{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRecordRejectsMissingFields(t *testing.T) {
	svc, _, _ := newTestService(t)

	assert.ErrorIs(t, svc.Record(context.Background(), nil, domain.Entry{CompanyID: 7}), domain.ErrInvalidAction)
	assert.ErrorIs(t, svc.Record(context.Background(), nil, domain.Entry{Action: "x"}), domain.ErrInvalidCompany)
}

func TestListPagesNewestFirst(t *testing.T) {
	svc, _, clk := newTestService(t)
	ctx := context.Background()
	for _, action := range []string{"voucher.created", "voucher.updated", "voucher.deleted"} {
		require.NoError(t, svc.Record(ctx, nil, domain.Entry{CompanyID: 7, Action: action, TargetID: "42"}))
		clk.Advance(time.Minute)
	}
	require.NoError(t, svc.Record(ctx, nil, domain.Entry{CompanyID: 8, Action: "voucher.created", TargetID: "43"}))

	first, err := svc.List(ctx, 7, domain.ListAuditLogRequest{Pagination: pagination.Pagination{PageSize: 2}})
	require.NoError(t, err)
	require.Len(t, first.AuditLogs, 2)
	assert.Equal(t, "voucher.deleted", first.AuditLogs[0].Action)
	assert.True(t, first.HasMore)

	rest, err := svc.List(ctx, 7, domain.ListAuditLogRequest{Pagination: pagination.Pagination{PageSize: 2, PageToken: first.NextPageToken}})
	require.NoError(t, err)
	require.Len(t, rest.AuditLogs, 1)
	assert.Equal(t, "voucher.created", rest.AuditLogs[0].Action)
	assert.False(t, rest.HasMore)

	filtered, err := svc.List(ctx, 7, domain.ListAuditLogRequest{Action: "voucher.updated"})
	require.NoError(t, err)
	assert.Len(t, filtered.AuditLogs, 1)
}

func TestListRejectsBadInput(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.List(ctx, 0, domain.ListAuditLogRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidCompany)

	_, err = svc.List(ctx, 7, domain.ListAuditLogRequest{StartAt: "2025-05-01", EndAt: "2025-04-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)

	_, err = svc.List(ctx, 7, domain.ListAuditLogRequest{Pagination: pagination.Pagination{PageToken: "%%%"}})
	assert.ErrorIs(t, err, domain.ErrInvalidPageToken)
}
