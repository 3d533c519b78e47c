package ledger

import (
	"github.com/smallbiznis/ledgerly/internal/ledger/repository"
	"github.com/smallbiznis/ledgerly/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
