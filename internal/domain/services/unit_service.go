package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"immofox-http-service/internal/domain/models"
	"immofox-http-service/internal/error/errs"
)

// InterfaceUnitService manages the units (Wohneinheiten) of a Vermieter and their tenants
type InterfaceUnitService interface {
	ListUnits(vermieterID, propertyID uint) ([]UnitView, error)
	GetUnit(vermieterID, id uint) (*UnitView, error)
	CreateUnit(vermieterID, propertyID uint, in UnitInput) (*UnitView, error)
	UpdateUnit(vermieterID, id uint, in UnitInput) (*UnitView, error)
	DeleteUnit(vermieterID, id uint) error
	AssignTenant(vermieterID, unitID, mieterID uint, moveIn *time.Time) (*UnitView, error)
	RemoveTenant(vermieterID, unitID uint) (*UnitView, error)
	GetUnitForMieter(mieterID uint) (*MieterUnitView, error)
}

// UnitInput is the unit form
type UnitInput struct {
	Designation string
	Floor       int
	Area        float64
	Rooms       float64
	RentCold    float64
	Utilities   float64
}

func (in *UnitInput) normalize() error {
	in.Designation = strings.TrimSpace(in.Designation)
	if in.Designation == "" {
		return errs.ErrValidation
	}
	if in.Area < 0 || in.Rooms < 0 || in.RentCold < 0 || in.Utilities < 0 {
		return errs.ErrValidation
	}
	return nil
}

// UnitView is a unit with the summary of its tenant
type UnitView struct {
	models.Unit
	TotalRent float64             `json:"total_rent"`
	Tenant    *models.UserSummary `json:"tenant,omitempty"`
}

// MieterUnitView is what a Mieter sees of their own unit
type MieterUnitView struct {
	Unit      models.Unit        `json:"unit"`
	TotalRent float64            `json:"total_rent"`
	Property  models.Property    `json:"property"`
	Landlord  models.UserSummary `json:"landlord"`
}

// UnitService implements InterfaceUnitService
type UnitService struct {
	DB            *gorm.DB
	Store         InterfaceRedisService
	Subscriptions InterfaceSubscriptionService
	Notifications InterfaceNotificationService
	now           func() time.Time
}

// NewUnitService creates the unit service
func NewUnitService(db *gorm.DB, store InterfaceRedisService, subscriptions InterfaceSubscriptionService, notifications InterfaceNotificationService) *UnitService {
	return &UnitService{DB: db, Store: store, Subscriptions: subscriptions, Notifications: notifications, now: time.Now}
}

// 1 ListUnits lists the units of an own property
func (s *UnitService) ListUnits(vermieterID, propertyID uint) ([]UnitView, error) {
	if _, err := findOwnProperty(s.DB, vermieterID, propertyID); err != nil {
		return nil, err
	}
	var units []models.Unit
	if err := s.DB.Preload("Mieter").Where("property_id = ?", propertyID).Order("designation").Find(&units).Error; err != nil {
		return nil, errors.Wrap(err, "list units")
	}
	views := make([]UnitView, 0, len(units))
	for i := range units {
		views = append(views, newUnitView(&units[i]))
	}
	return views, nil
}

// 2 GetUnit returns an own unit with property and tenant
func (s *UnitService) GetUnit(vermieterID, id uint) (*UnitView, error) {
	u, err := findOwnUnit(s.DB.Preload("Property").Preload("Mieter"), vermieterID, id)
	if err != nil {
		return nil, err
	}
	v := newUnitView(u)
	return &v, nil
}

// 3 CreateUnit adds a unit to an own property within the plan's unit limit
func (s *UnitService) CreateUnit(vermieterID, propertyID uint, in UnitInput) (*UnitView, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if _, err := findOwnProperty(s.DB, vermieterID, propertyID); err != nil {
		return nil, err
	}

	u := &models.Unit{
		PropertyID:  propertyID,
		Designation: in.Designation,
		Floor:       in.Floor,
		Area:        in.Area,
		Rooms:       in.Rooms,
		RentCold:    in.RentCold,
		Utilities:   in.Utilities,
	}
	// count and insert in one transaction so parallel requests cannot both pass the limit
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if s.Subscriptions != nil {
			if err := s.Subscriptions.CheckUnitLimit(tx, vermieterID); err != nil {
				return err
			}
		}
		return errors.Wrap(tx.Create(u).Error, "create unit")
	})
	if err != nil {
		return nil, err
	}
	invalidateDashboards(s.Store, vermieterID)
	return s.GetUnit(vermieterID, u.ID)
}

// 4 UpdateUnit replaces the unit form fields; the tenant is changed with AssignTenant
func (s *UnitService) UpdateUnit(vermieterID, id uint, in UnitInput) (*UnitView, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	u, err := findOwnUnit(s.DB, vermieterID, id)
	if err != nil {
		return nil, err
	}
	err = s.DB.Model(u).Updates(map[string]interface{}{
		"designation": in.Designation,
		"floor":       in.Floor,
		"area":        in.Area,
		"rooms":       in.Rooms,
		"rent_cold":   in.RentCold,
		"utilities":   in.Utilities,
	}).Error
	if err != nil {
		return nil, errors.Wrap(err, "update unit")
	}
	invalidateDashboards(s.Store, vermieterID)
	return s.GetUnit(vermieterID, id)
}

// 5 DeleteUnit deletes a vacant unit and its Meldungen
func (s *UnitService) DeleteUnit(vermieterID, id uint) error {
	u, err := findOwnUnit(s.DB, vermieterID, id)
	if err != nil {
		return err
	}
	if u.Occupied() {
		return errs.ErrUnitOccupied
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := deleteMeldungenOfUnits(tx, []uint{u.ID}); err != nil {
			return err
		}
		return errors.Wrap(tx.Delete(u).Error, "delete unit")
	})
	if err != nil {
		return err
	}
	invalidateDashboards(s.Store, vermieterID)
	return nil
}

// 6 AssignTenant moves a Mieter of this Vermieter into a vacant unit
func (s *UnitService) AssignTenant(vermieterID, unitID, mieterID uint, moveIn *time.Time) (*UnitView, error) {
	var unit *models.Unit
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		unit, err = assignTenantTx(tx, vermieterID, unitID, mieterID, moveIn, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	invalidateDashboards(s.Store, vermieterID, mieterID)
	notifyAll(s.Notifications, []uint{mieterID}, models.NotificationTenantAssigned,
		"Wohnung zugeordnet",
		fmt.Sprintf("Ihnen wurde die Wohneinheit %s zugeordnet.", unit.Designation),
		&unit.ID)
	return s.GetUnit(vermieterID, unitID)
}

// 7 RemoveTenant ends the tenancy of the unit's current Mieter
func (s *UnitService) RemoveTenant(vermieterID, unitID uint) (*UnitView, error) {
	u, err := findOwnUnit(s.DB, vermieterID, unitID)
	if err != nil {
		return nil, err
	}
	if !u.Occupied() {
		return nil, errs.ErrUnitVacant
	}
	mieterID := *u.MieterID
	if err := vacateUnit(s.DB, u.ID); err != nil {
		return nil, err
	}
	invalidateDashboards(s.Store, vermieterID, mieterID)
	return s.GetUnit(vermieterID, unitID)
}

// 8 GetUnitForMieter returns the unit the Mieter lives in with the landlord contact
func (s *UnitService) GetUnitForMieter(mieterID uint) (*MieterUnitView, error) {
	var u models.Unit
	err := s.DB.Preload("Property.Vermieter").Where("mieter_id = ?", mieterID).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNoUnitAssigned
		}
		return nil, errors.Wrap(err, "get own unit")
	}
	view := &MieterUnitView{Unit: u, TotalRent: u.TotalRent()}
	if u.Property != nil {
		view.Property = *u.Property
		if u.Property.Vermieter != nil {
			view.Landlord = u.Property.Vermieter.Summary()
		}
		view.Unit.Property = nil
	}
	return view, nil
}

// assignTenantTx checks both sides of the one-tenant-per-unit rule and stores the assignment
func assignTenantTx(tx *gorm.DB, vermieterID, unitID, mieterID uint, moveIn *time.Time, now time.Time) (*models.Unit, error) {
	unit, err := findOwnUnit(tx, vermieterID, unitID)
	if err != nil {
		return nil, err
	}
	if unit.Occupied() {
		if *unit.MieterID == mieterID {
			return nil, errs.ErrTenantAlreadyAssigned
		}
		return nil, errs.ErrUnitOccupied
	}
	if _, err := findOwnTenant(tx, vermieterID, mieterID); err != nil {
		return nil, err
	}

	var other int64
	if err := tx.Model(&models.Unit{}).Where("mieter_id = ?", mieterID).Count(&other).Error; err != nil {
		return nil, errors.Wrap(err, "check tenant units")
	}
	if other > 0 {
		return nil, errs.ErrTenantAlreadyAssigned
	}

	if moveIn == nil {
		moveIn = &now
	}
	res := tx.Model(&models.Unit{}).
		Where("id = ? AND mieter_id IS NULL", unit.ID).
		Updates(map[string]interface{}{"mieter_id": mieterID, "move_in_date": *moveIn})
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "assign tenant")
	}
	if res.RowsAffected == 0 {
		return nil, errs.ErrUnitOccupied
	}
	unit.MieterID = &mieterID
	unit.MoveInDate = moveIn
	return unit, nil
}

func vacateUnit(db *gorm.DB, unitID uint) error {
	err := db.Model(&models.Unit{}).Where("id = ?", unitID).
		Updates(map[string]interface{}{"mieter_id": nil, "move_in_date": nil}).Error
	return errors.Wrap(err, "remove tenant")
}

// findOwnUnit loads a unit whose property belongs to vermieterID
func findOwnUnit(db *gorm.DB, vermieterID, id uint) (*models.Unit, error) {
	var u models.Unit
	err := db.Joins("JOIN properties ON properties.id = units.property_id").
		Where("units.id = ? AND properties.vermieter_id = ?", id, vermieterID).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUnitNotFound
		}
		return nil, errors.Wrap(err, "get unit")
	}
	return &u, nil
}

func newUnitView(u *models.Unit) UnitView {
	v := UnitView{Unit: *u, TotalRent: u.TotalRent()}
	if u.Mieter != nil {
		summary := u.Mieter.Summary()
		v.Tenant = &summary
	}
	return v
}
