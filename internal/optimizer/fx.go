package optimizer

import (
	"github.com/smallbiznis/payora/internal/optimizer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("optimizer",
	fx.Provide(service.NewService),
)
