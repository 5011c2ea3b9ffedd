package database

import (
	"fmt"

	"gorm.io/gorm"

	"immofox-http-service/internal/domain/models"
	Logger "immofox-http-service/pkg/logger"
)

// Models lists every persisted model in dependency order
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Property{},
		&models.Unit{},
		&models.Meldung{},
		&models.MeldungHistory{},
		&models.Notification{},
		&models.Message{},
		&models.Subscription{},
	}
}

// Migrate runs the schema migration for mode "auto" (add only) or "drop" (recreate)
func Migrate(db *gorm.DB, mode string) error {
	switch mode {
	case "", "auto":
		Logger.Info("running auto migration, only new tables and columns are added")
	case "drop":
		Logger.Warning("running in drop mode, all tables are dropped and recreated")
		if err := dropTables(db); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown migration mode %q", mode)
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func dropTables(db *gorm.DB) error {
	all := Models()
	// reverse order so dependants go first
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}
