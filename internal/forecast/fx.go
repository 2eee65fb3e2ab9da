package forecast

import (
	"github.com/smallbiznis/payora/internal/forecast/domain"
	"github.com/smallbiznis/payora/internal/forecast/service"
	"go.uber.org/fx"
)

var Module = fx.Module("forecast",
	fx.Provide(func() domain.ReceiptsSignal { return domain.ZeroReceipts{} }),
	fx.Provide(service.NewService),
)
