package database

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"immofox-http-service/internal/domain/models"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:migrate_test?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestMigrateAndSeed(t *testing.T) {
	db := openMemory(t)

	if err := Migrate(db, "drop"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, m := range Models() {
		if !db.Migrator().HasTable(m) {
			t.Fatalf("table for %T missing", m)
		}
	}

	if err := SeedDemoData(db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// seeding twice is a no-op
	if err := SeedDemoData(db); err != nil {
		t.Fatalf("seed again: %v", err)
	}

	var users, units int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Unit{}).Count(&units)
	if users != 3 || units != 2 {
		t.Fatalf("users = %d units = %d", users, units)
	}

	if err := Migrate(db, "bogus"); err == nil {
		t.Fatal("unknown mode should fail")
	}
}
