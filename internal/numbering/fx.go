package numbering

import (
	"context"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/ledgerly/internal/clock"
	"github.com/smallbiznis/ledgerly/internal/config"
	"github.com/smallbiznis/ledgerly/internal/numbering/domain"
	"github.com/smallbiznis/ledgerly/internal/numbering/repository"
	"github.com/smallbiznis/ledgerly/internal/numbering/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("numbering.service",
	fx.Provide(repository.ProvideSeries),
	fx.Provide(provideCounter),
	fx.Provide(service.New),
)

func provideCounter(lc fx.Lifecycle, cfg config.Config, db *gorm.DB, clk clock.Clock, log *zap.Logger) domain.Counter {
	if cfg.Numbering.Backend != config.NumberingBackendRedis {
		return repository.NewDatabaseCounter(db, clk)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	log.Info("numbering uses redis counters", zap.String("addr", cfg.Redis.Addr))
	return repository.NewRedisCounter(client)
}
