package main

import (
	"github.com/smallbiznis/ledgerly/internal/audit"
	"github.com/smallbiznis/ledgerly/internal/clock"
	"github.com/smallbiznis/ledgerly/internal/company"
	"github.com/smallbiznis/ledgerly/internal/config"
	"github.com/smallbiznis/ledgerly/internal/directory"
	"github.com/smallbiznis/ledgerly/internal/events"
	"github.com/smallbiznis/ledgerly/internal/ledger"
	"github.com/smallbiznis/ledgerly/internal/migration"
	"github.com/smallbiznis/ledgerly/internal/numbering"
	"github.com/smallbiznis/ledgerly/internal/observability"
	"github.com/smallbiznis/ledgerly/internal/product"
	"github.com/smallbiznis/ledgerly/internal/server"
	"github.com/smallbiznis/ledgerly/internal/tax"
	"github.com/smallbiznis/ledgerly/internal/voucher"
	"github.com/smallbiznis/ledgerly/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Example: `  # Serve on the address from HTTP_ADDR
  ledgerly serve

  # Seed the default company on boot
  SEED_DEFAULTS=true ledgerly serve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := fx.New(
			// Core Infrastructure
			config.Module,
			observability.Module,
			fx.Provide(registerSnowflake),
			db.Module,
			clock.Module,
			migration.Module,

			// Masters
			company.Module,
			ledger.Module,
			product.Module,
			directory.Module,

			// Engine
			tax.Module,
			numbering.Module,
			events.Module,
			audit.Module,
			voucher.Module,

			server.Module,
		)
		if err := app.Err(); err != nil {
			return err
		}
		app.Run()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
