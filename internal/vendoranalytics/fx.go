package vendoranalytics

import (
	"github.com/smallbiznis/payora/internal/cache"
	"github.com/smallbiznis/payora/internal/vendoranalytics/domain"
	"github.com/smallbiznis/payora/internal/vendoranalytics/service"
	"go.uber.org/fx"
)

var Module = fx.Module("vendoranalytics",
	fx.Provide(func() domain.ScoreProvider { return domain.NeutralScoreProvider{} }),
	fx.Provide(func() cache.Cache[service.CacheKey, domain.VendorAnalytics] {
		return cache.NewTTLCache[service.CacheKey, domain.VendorAnalytics]()
	}),
	fx.Provide(service.NewService),
)
