package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	approvaldomain "github.com/smallbiznis/payora/internal/approval/domain"
	auditdomain "github.com/smallbiznis/payora/internal/audit/domain"
	"github.com/smallbiznis/payora/internal/clock"
	"github.com/smallbiznis/payora/internal/config"
	forecastdomain "github.com/smallbiznis/payora/internal/forecast/domain"
	obslogger "github.com/smallbiznis/payora/internal/observability/logger"
	"github.com/smallbiznis/payora/internal/observability/metrics"
	optimizerdomain "github.com/smallbiznis/payora/internal/optimizer/domain"
	payabledomain "github.com/smallbiznis/payora/internal/payable/domain"
	recommenddomain "github.com/smallbiznis/payora/internal/recommend/domain"
	vendoranalyticsdomain "github.com/smallbiznis/payora/internal/vendoranalytics/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Log       *zap.Logger
	Cfg       config.Config
	Clock     clock.Clock
	Repo      payabledomain.Repository
	Analytics vendoranalyticsdomain.Service
	Forecast  forecastdomain.Service
	Optimizer optimizerdomain.Service
	Approval  approvaldomain.Service
	Recommend recommenddomain.Service
	AuditRepo auditdomain.Repository
	DB        *gorm.DB
}

// Server exposes the decision engine over HTTP. Handlers live in the
// sibling files, one per resource.
type Server struct {
	log          *zap.Logger
	cfg          config.Config
	clock        clock.Clock
	repo         payabledomain.Repository
	analyticsSvc vendoranalyticsdomain.Service
	forecastSvc  forecastdomain.Service
	optimizerSvc optimizerdomain.Service
	approvalSvc  approvaldomain.Service
	recommendSvc recommenddomain.Service
	auditRepo    auditdomain.Repository
	db           *gorm.DB
	limiter      *rateLimiter
}

func NewServer(p Params) *Server {
	return &Server{
		log:          p.Log.Named("server"),
		cfg:          p.Cfg,
		clock:        p.Clock,
		repo:         p.Repo,
		analyticsSvc: p.Analytics,
		forecastSvc:  p.Forecast,
		optimizerSvc: p.Optimizer,
		approvalSvc:  p.Approval,
		recommendSvc: p.Recommend,
		auditRepo:    p.AuditRepo,
		db:           p.DB,
		limiter:      newRateLimiter(120, time.Minute),
	}
}

func NewEngine(log *zap.Logger, cfg config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Logger:    log.Named("http"),
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	engine.Use(metrics.GinMiddleware(metrics.HTTP(metrics.Config{
		ServiceName: "payora",
		Environment: cfg.Environment,
	})))
	return engine
}

func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", s.Healthz)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	api.Use(s.rateLimit())

	api.GET("/forecast", s.GetForecast)
	api.GET("/optimizations", s.ListOptimizations)
	api.GET("/recommendations", s.ListRecommendations)
	api.GET("/strategies", s.ListVendorStrategies)
	api.GET("/vendors/:id/analytics", s.GetVendorAnalytics)

	api.POST("/bills/:id/workflow", s.CreateWorkflow)
	api.GET("/workflows/:id", s.GetWorkflow)
	api.GET("/workflows/:id/audit", s.ListWorkflowAudit)
	api.POST("/workflows/:id/actions", s.ActOnWorkflow)
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": gin.H{
				"code":    "rate_limited",
				"message": "too many requests",
			}})
			return
		}
		c.Next()
	}
}

func RunHTTP(lc fx.Lifecycle, log *zap.Logger, cfg config.Config, engine *gin.Engine) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server, engine *gin.Engine) {
		s.RegisterRoutes(engine)
	}),
	fx.Invoke(RunHTTP),
)
