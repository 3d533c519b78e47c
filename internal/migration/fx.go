package migration

import (
	"context"

	"github.com/smallbiznis/ledgerly/internal/config"
	"github.com/smallbiznis/ledgerly/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if err := Apply(conn); err != nil {
			return err
		}
		if !cfg.SeedDefaults {
			return nil
		}
		company, err := seed.EnsureMainCompany(context.Background(), conn)
		if err != nil {
			return err
		}
		log.Info("default company ready", zap.String("company_id", company.ID.String()))
		return nil
	}),
)
