package recommend

import (
	"github.com/smallbiznis/payora/internal/recommend/service"
	"go.uber.org/fx"
)

var Module = fx.Module("recommend",
	fx.Provide(service.NewService),
)
