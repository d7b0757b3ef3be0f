package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/campuskit/utilitrack/internal/alert"
	"github.com/campuskit/utilitrack/internal/alertrule"
	analyticsservice "github.com/campuskit/utilitrack/internal/analytics/service"
	"github.com/campuskit/utilitrack/internal/building"
	"github.com/campuskit/utilitrack/internal/clock"
	"github.com/campuskit/utilitrack/internal/config"
	"github.com/campuskit/utilitrack/internal/logger"
	"github.com/campuskit/utilitrack/internal/migration"
	"github.com/campuskit/utilitrack/internal/observability/metrics"
	"github.com/campuskit/utilitrack/internal/reading"
	"github.com/campuskit/utilitrack/internal/scheduler"
	"github.com/campuskit/utilitrack/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		metrics.Module,
		migration.Module,

		building.Module,
		reading.Module,
		alertrule.Module,
		alert.Module,
		analyticsservice.Module,
		scheduler.Module,
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
