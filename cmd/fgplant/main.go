package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/ayz7879/fg-plant/internal/audit"
	"github.com/ayz7879/fg-plant/internal/billing"
	"github.com/ayz7879/fg-plant/internal/clock"
	"github.com/ayz7879/fg-plant/internal/config"
	"github.com/ayz7879/fg-plant/internal/customer"
	"github.com/ayz7879/fg-plant/internal/entry"
	"github.com/ayz7879/fg-plant/internal/events"
	"github.com/ayz7879/fg-plant/internal/history"
	"github.com/ayz7879/fg-plant/internal/migration"
	"github.com/ayz7879/fg-plant/internal/observability"
	"github.com/ayz7879/fg-plant/internal/scheduler"
	"github.com/ayz7879/fg-plant/internal/seed"
	"github.com/ayz7879/fg-plant/internal/server"
	"github.com/ayz7879/fg-plant/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
			if cfg.IsProduction() {
				return nil
			}
			return seed.EnsureDemoCustomers(conn)
		}),

		events.Module,
		audit.Module,
		customer.Module,
		history.Module,
		entry.Module,
		billing.Module,
		scheduler.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
