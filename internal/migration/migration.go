package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	auditdomain "github.com/smallbiznis/ledgerly/internal/audit/domain"
	companydomain "github.com/smallbiznis/ledgerly/internal/company/domain"
	ledgerdomain "github.com/smallbiznis/ledgerly/internal/ledger/domain"
	numberingdomain "github.com/smallbiznis/ledgerly/internal/numbering/domain"
	productdomain "github.com/smallbiznis/ledgerly/internal/product/domain"
	voucherrepo "github.com/smallbiznis/ledgerly/internal/voucher/repository"
	"gorm.io/gorm"
)

// Apply brings the schema up to date. Postgres runs the embedded SQL
// migrations; every other dialect is migrated from the gorm models.
func Apply(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	if conn.Dialector.Name() != "postgres" {
		return AutoMigrate(conn)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return RunMigrations(sqlDB)
}

func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Closing the migrator would close the shared *sql.DB.

	return nil
}

func AutoMigrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&companydomain.Company{},
		&ledgerdomain.Ledger{},
		&productdomain.Product{},
		&numberingdomain.Series{},
		&auditdomain.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate masters: %w", err)
	}
	if err := voucherrepo.AutoMigrate(conn); err != nil {
		return fmt.Errorf("auto migrate vouchers: %w", err)
	}
	return nil
}
