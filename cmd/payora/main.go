package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/payora/internal/approval"
	"github.com/smallbiznis/payora/internal/audit"
	"github.com/smallbiznis/payora/internal/clock"
	"github.com/smallbiznis/payora/internal/config"
	"github.com/smallbiznis/payora/internal/db"
	"github.com/smallbiznis/payora/internal/events"
	"github.com/smallbiznis/payora/internal/forecast"
	"github.com/smallbiznis/payora/internal/logger"
	"github.com/smallbiznis/payora/internal/migration"
	"github.com/smallbiznis/payora/internal/optimizer"
	"github.com/smallbiznis/payora/internal/payable"
	"github.com/smallbiznis/payora/internal/recommend"
	"github.com/smallbiznis/payora/internal/recommend/snapshot"
	"github.com/smallbiznis/payora/internal/seed"
	"github.com/smallbiznis/payora/internal/server"
	"github.com/smallbiznis/payora/internal/vendoranalytics"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		clock.Module,
		fx.Provide(func() *snowflake.Node {
			node, err := snowflake.NewNode(1)
			if err != nil {
				panic(err)
			}
			return node
		}),
		db.Module,
		fx.Invoke(func(conn *gorm.DB, cfg config.Config, clk clock.Clock, node *snowflake.Node) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := migration.RunMigrations(sqlDB); err != nil {
				return err
			}
			if cfg.SeedDemoData && !cfg.IsProduction() {
				return seed.EnsureDemoPortfolio(conn, node, clk.Now())
			}
			return nil
		}),

		payable.Module,
		vendoranalytics.Module,
		forecast.Module,
		optimizer.Module,
		audit.Module,
		events.Module,
		approval.Module,
		recommend.Module,
		snapshot.Module,
		server.Module,
	)
	app.Run()
}
