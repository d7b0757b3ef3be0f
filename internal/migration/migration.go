// Package migration applies the schema on startup via gorm auto-migration.
package migration

import (
	alertdomain "github.com/campuskit/utilitrack/internal/alert/domain"
	alertruledomain "github.com/campuskit/utilitrack/internal/alertrule/domain"
	buildingdomain "github.com/campuskit/utilitrack/internal/building/domain"
	readingdomain "github.com/campuskit/utilitrack/internal/reading/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models lists every persisted model in dependency order.
func Models() []any {
	return []any{
		&buildingdomain.Building{},
		&readingdomain.UtilityReading{},
		&alertruledomain.AlertRule{},
		&alertdomain.Alert{},
	}
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	log.Info("schema migrated", zap.Int("models", len(Models())))
	return nil
}

var Module = fx.Module("migration",
	fx.Invoke(Migrate),
)
