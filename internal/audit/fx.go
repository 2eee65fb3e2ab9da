package audit

import (
	"github.com/smallbiznis/payora/internal/audit/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("audit",
	fx.Provide(repository.Provide),
)
