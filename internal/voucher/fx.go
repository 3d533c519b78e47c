package voucher

import (
	"github.com/smallbiznis/ledgerly/internal/voucher/builder"
	"github.com/smallbiznis/ledgerly/internal/voucher/repository"
	"github.com/smallbiznis/ledgerly/internal/voucher/service"
	"github.com/smallbiznis/ledgerly/internal/voucher/validator"
	"go.uber.org/fx"
)

var Module = fx.Module("voucher.service",
	fx.Provide(repository.Provide),
	fx.Provide(validator.New),
	fx.Provide(builder.New),
	fx.Provide(service.New),
)
