package approval

import (
	"github.com/smallbiznis/payora/internal/approval/repository"
	"github.com/smallbiznis/payora/internal/approval/service"
	"go.uber.org/fx"
)

var Module = fx.Module("approval",
	fx.Provide(repository.New),
	fx.Provide(service.NewService),
)
