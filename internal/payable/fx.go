package payable

import (
	"github.com/smallbiznis/payora/internal/payable/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("payable",
	fx.Provide(repository.New),
)
