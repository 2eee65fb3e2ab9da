package db

import (
	"context"

	"github.com/smallbiznis/payora/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open connects to the configured database. An empty DSN falls back to an
// in-process sqlite file so the service can run without external
// infrastructure in development.
func Open(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if cfg.DatabaseDSN == "" {
		log.Named("db").Warn("PAYORA_DATABASE_DSN not set, using local sqlite database")
		dialector = sqlite.Open("payora.db")
	} else {
		dialector = postgres.Open(cfg.DatabaseDSN)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return conn, nil
}

var Module = fx.Module("db",
	fx.Provide(Open),
)
