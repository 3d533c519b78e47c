package seed_test

import (
	"context"
	"testing"

	ledgerdomain "github.com/smallbiznis/ledgerly/internal/ledger/domain"
	"github.com/smallbiznis/ledgerly/internal/migration"
	numberingdomain "github.com/smallbiznis/ledgerly/internal/numbering/domain"
	"github.com/smallbiznis/ledgerly/internal/seed"
	"github.com/smallbiznis/ledgerly/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureMainCompanyIsIdempotent(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(conn))
	ctx := context.Background()

	first, err := seed.EnsureMainCompany(ctx, conn)
	require.NoError(t, err)
	second, err := seed.EnsureMainCompany(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Main", first.Name)

	var ledgers int64
	require.NoError(t, conn.Model(&ledgerdomain.Ledger{}).Where("company_id = ?", first.ID).Count(&ledgers).Error)
	assert.EqualValues(t, 4, ledgers)

	var series []numberingdomain.Series
	require.NoError(t, conn.Where("company_id = ?", first.ID).Find(&series).Error)
	assert.Len(t, series, 4)
	for _, s := range series {
		assert.EqualValues(t, 1, s.NextNumber)
	}
}
