package main

import (
	"context"
	"time"

	"github.com/smallbiznis/ledgerly/internal/config"
	"github.com/smallbiznis/ledgerly/internal/migration"
	"github.com/smallbiznis/ledgerly/internal/observability"
	"github.com/smallbiznis/ledgerly/internal/seed"
	"github.com/smallbiznis/ledgerly/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var skipSeed bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations and seed the default company",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := fx.New(
			config.Module,
			observability.Module,
			db.Module,
			fx.NopLogger,
			fx.Invoke(func(conn *gorm.DB, log *zap.Logger) error {
				if err := migration.Apply(conn); err != nil {
					return err
				}
				log.Info("schema up to date")
				if skipSeed {
					return nil
				}
				company, err := seed.EnsureMainCompany(cmd.Context(), conn)
				if err != nil {
					return err
				}
				log.Info("default company ready", zap.String("company_id", company.ID.String()))
				return nil
			}),
		)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := app.Start(ctx); err != nil {
			return err
		}
		return app.Stop(ctx)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().BoolVar(&skipSeed, "skip-seed", false, "only apply the schema")
}
