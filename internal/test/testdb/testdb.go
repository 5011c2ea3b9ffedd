// Package testdb opens a migrated in-memory sqlite database for tests.
package testdb

import (
	"fmt"
	"sync/atomic"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"immofox-http-service/internal/domain/models"
	"immofox-http-service/internal/infrastructure/database"
)

var counter int64

// Password is the clear text password of all users created with CreateUser
const Password = "geheim123"

// New returns a fresh database, closed when the test ends
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:immofox_test_%d?mode=memory&cache=shared", atomic.AddInt64(&counter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db, "auto"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser inserts an active user with password Password
func CreateUser(t testing.TB, db *gorm.DB, role models.Role, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &models.User{
		Email:     email,
		Password:  string(hash),
		FirstName: "Test",
		LastName:  string(role),
		Role:      role,
		Active:    true,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// Fixture is a small landlord setup: one property, two units, the first rented
type Fixture struct {
	Vermieter  *models.User
	Mieter     *models.User
	Handwerker *models.User
	Property   *models.Property
	Rented     *models.Unit
	Vacant     *models.Unit
}

// NewFixture creates the Fixture records
func NewFixture(t testing.TB, db *gorm.DB) *Fixture {
	t.Helper()

	f := &Fixture{
		Vermieter:  CreateUser(t, db, models.RoleVermieter, "vermieter@example.de"),
		Handwerker: CreateUser(t, db, models.RoleHandwerker, "handwerker@example.de"),
	}
	f.Mieter = CreateUser(t, db, models.RoleMieter, "mieter@example.de")
	if err := db.Model(f.Mieter).Update("landlord_id", f.Vermieter.ID).Error; err != nil {
		t.Fatalf("landlord: %v", err)
	}
	f.Mieter.LandlordID = &f.Vermieter.ID

	f.Property = &models.Property{VermieterID: f.Vermieter.ID, Name: "Lindenhof", Street: "Lindenstraße 12", ZipCode: "10969", City: "Berlin"}
	if err := db.Create(f.Property).Error; err != nil {
		t.Fatalf("create property: %v", err)
	}
	f.Rented = &models.Unit{PropertyID: f.Property.ID, Designation: "EG links", RentCold: 700, Utilities: 150, MieterID: &f.Mieter.ID}
	f.Vacant = &models.Unit{PropertyID: f.Property.ID, Designation: "1. OG", RentCold: 900, Utilities: 200}
	if err := db.Create(f.Rented).Error; err != nil {
		t.Fatalf("create unit: %v", err)
	}
	if err := db.Create(f.Vacant).Error; err != nil {
		t.Fatalf("create unit: %v", err)
	}
	if err := db.Create(&models.Subscription{VermieterID: f.Vermieter.ID, Plan: models.PlanFree, Status: models.SubscriptionActive}).Error; err != nil {
		t.Fatalf("create subscription: %v", err)
	}
	return f
}
