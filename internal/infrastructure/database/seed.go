package database

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"immofox-http-service/internal/domain/models"
	Logger "immofox-http-service/pkg/logger"
)

// DemoPassword is the password of all seeded demo accounts
const DemoPassword = "immofox123"

// SeedDemoData creates a Vermieter, a Mieter and a Handwerker with one property
// and two units. It does nothing when users already exist.
func SeedDemoData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		vermieter := models.User{Email: "vermieter@immofox.de", Password: string(hash), FirstName: "Vera", LastName: "Vermieter", Role: models.RoleVermieter, Active: true}
		if err := tx.Create(&vermieter).Error; err != nil {
			return err
		}
		mieter := models.User{Email: "mieter@immofox.de", Password: string(hash), FirstName: "Max", LastName: "Mieter", Role: models.RoleMieter, Active: true, LandlordID: &vermieter.ID}
		if err := tx.Create(&mieter).Error; err != nil {
			return err
		}
		handwerker := models.User{Email: "handwerker@immofox.de", Password: string(hash), FirstName: "Hans", LastName: "Handwerker", Role: models.RoleHandwerker, Active: true, Trade: "Sanitär"}
		if err := tx.Create(&handwerker).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.Subscription{VermieterID: vermieter.ID, Plan: models.PlanFree, Status: models.SubscriptionActive}).Error; err != nil {
			return err
		}

		property := models.Property{VermieterID: vermieter.ID, Name: "Lindenhof", Street: "Lindenstraße 12", ZipCode: "10969", City: "Berlin"}
		if err := tx.Create(&property).Error; err != nil {
			return err
		}
		moveIn := time.Now().AddDate(-1, 0, 0)
		units := []models.Unit{
			{PropertyID: property.ID, Designation: "EG links", Floor: 0, Area: 62.5, Rooms: 2, RentCold: 780, Utilities: 190, MieterID: &mieter.ID, MoveInDate: &moveIn},
			{PropertyID: property.ID, Designation: "1. OG rechts", Floor: 1, Area: 78, Rooms: 3, RentCold: 950, Utilities: 230},
		}
		if err := tx.Create(&units).Error; err != nil {
			return err
		}

		Logger.Info("demo data created, password of all accounts: %s", DemoPassword)
		return nil
	})
}
