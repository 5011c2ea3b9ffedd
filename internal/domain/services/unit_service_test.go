package services

import (
	"testing"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"immofox-http-service/internal/domain/models"
	"immofox-http-service/internal/error/errs"
	"immofox-http-service/internal/test/testdb"
)

func (e *env) units(freeLimit int) *UnitService {
	subs := NewSubscriptionService(e.db, &fakeGateway{}, freeLimit)
	return NewUnitService(e.db, e.store, subs, e.notifications)
}

func TestCreateUnitRespectsPlanLimit(t *testing.T) {
	e := newEnv(t)
	s := e.units(3)
	vid := e.f.Vermieter.ID

	v, err := s.CreateUnit(vid, e.f.Property.ID, UnitInput{Designation: " DG ", RentCold: 500, Utilities: 100})
	if err != nil {
		t.Fatalf("CreateUnit: %v", err)
	}
	if v.Designation != "DG" || v.TotalRent != 600 {
		t.Fatalf("unit = %+v", v)
	}

	// fixture units plus the new one reach the limit of 3
	if _, err := s.CreateUnit(vid, e.f.Property.ID, UnitInput{Designation: "Keller"}); !errors.Is(err, errs.ErrUnitLimitReached) {
		t.Fatalf("over limit: err = %v", err)
	}
	if _, err := s.CreateUnit(vid, e.f.Property.ID, UnitInput{Designation: ""}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("empty designation: err = %v", err)
	}
	other := testdb.CreateUser(t, e.db, models.RoleVermieter, "andere@example.de")
	if _, err := s.CreateUnit(other.ID, e.f.Property.ID, UnitInput{Designation: "x"}); !errors.Is(err, errs.ErrPropertyNotFound) {
		t.Fatalf("foreign property: err = %v", err)
	}
}

// txSubscriptions records whether the limit check ran inside a transaction
type txSubscriptions struct {
	InterfaceSubscriptionService
	inTx bool
}

func (s *txSubscriptions) CheckUnitLimit(tx *gorm.DB, vermieterID uint) error {
	_, s.inTx = tx.Statement.ConnPool.(gorm.TxCommitter)
	return s.InterfaceSubscriptionService.CheckUnitLimit(tx, vermieterID)
}

func TestCreateUnitChecksLimitInTransaction(t *testing.T) {
	e := newEnv(t)
	subs := &txSubscriptions{InterfaceSubscriptionService: NewSubscriptionService(e.db, &fakeGateway{}, 3)}
	s := NewUnitService(e.db, e.store, subs, e.notifications)

	if _, err := s.CreateUnit(e.f.Vermieter.ID, e.f.Property.ID, UnitInput{Designation: "DG"}); err != nil {
		t.Fatalf("CreateUnit: %v", err)
	}
	if !subs.inTx {
		t.Fatal("limit checked outside the create transaction")
	}
}

func TestCheckUnitLimitSeesUncommittedUnits(t *testing.T) {
	e := newEnv(t)
	subs := NewSubscriptionService(e.db, &fakeGateway{}, 3)
	vid := e.f.Vermieter.ID
	rollback := errors.New("rollback")

	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := subs.CheckUnitLimit(tx, vid); err != nil {
			t.Fatalf("before insert: %v", err)
		}
		if err := tx.Create(&models.Unit{PropertyID: e.f.Property.ID, Designation: "Dach"}).Error; err != nil {
			t.Fatal(err)
		}
		if err := subs.CheckUnitLimit(tx, vid); !errors.Is(err, errs.ErrUnitLimitReached) {
			t.Errorf("after insert: err = %v", err)
		}
		return rollback
	})
	if !errors.Is(err, rollback) {
		t.Fatalf("Transaction: %v", err)
	}
	if err := subs.CheckUnitLimit(e.db, vid); err != nil {
		t.Fatalf("after rollback: %v", err)
	}
}

func TestAssignTenant(t *testing.T) {
	e := newEnv(t)
	s := e.units(5)
	vid := e.f.Vermieter.ID

	// the fixture Mieter already lives in the rented unit
	if _, err := s.AssignTenant(vid, e.f.Vacant.ID, e.f.Mieter.ID, nil); !errors.Is(err, errs.ErrTenantAlreadyAssigned) {
		t.Fatalf("second unit for mieter: err = %v", err)
	}

	newcomer := testdb.CreateUser(t, e.db, models.RoleMieter, "neu@example.de")
	if err := e.db.Model(newcomer).Update("landlord_id", vid).Error; err != nil {
		t.Fatal(err)
	}
	if _, err := s.AssignTenant(vid, e.f.Rented.ID, newcomer.ID, nil); !errors.Is(err, errs.ErrUnitOccupied) {
		t.Fatalf("occupied unit: err = %v", err)
	}

	v, err := s.AssignTenant(vid, e.f.Vacant.ID, newcomer.ID, nil)
	if err != nil {
		t.Fatalf("AssignTenant: %v", err)
	}
	if v.Tenant == nil || v.Tenant.ID != newcomer.ID || v.MoveInDate == nil {
		t.Fatalf("unit after assign = %+v", v)
	}
	if got := e.unreadNotifications(t, newcomer.ID); got != 1 {
		t.Fatalf("tenant notifications = %d", got)
	}

	// a Mieter of another Vermieter cannot be assigned
	stranger := testdb.CreateUser(t, e.db, models.RoleMieter, "fremd@example.de")
	if _, err := s.RemoveTenant(vid, e.f.Vacant.ID); err != nil {
		t.Fatalf("RemoveTenant: %v", err)
	}
	if _, err := s.AssignTenant(vid, e.f.Vacant.ID, stranger.ID, nil); !errors.Is(err, errs.ErrTenantNotFound) {
		t.Fatalf("stranger: err = %v", err)
	}
}

func TestRemoveTenantAndDeleteUnit(t *testing.T) {
	e := newEnv(t)
	s := e.units(5)
	vid := e.f.Vermieter.ID

	if err := s.DeleteUnit(vid, e.f.Rented.ID); !errors.Is(err, errs.ErrUnitOccupied) {
		t.Fatalf("delete occupied: err = %v", err)
	}
	if _, err := s.RemoveTenant(vid, e.f.Vacant.ID); !errors.Is(err, errs.ErrUnitVacant) {
		t.Fatalf("remove from vacant: err = %v", err)
	}

	v, err := s.RemoveTenant(vid, e.f.Rented.ID)
	if err != nil {
		t.Fatalf("RemoveTenant: %v", err)
	}
	if v.MieterID != nil || v.Tenant != nil {
		t.Fatalf("unit still rented: %+v", v)
	}
	if _, err := s.GetUnitForMieter(e.f.Mieter.ID); !errors.Is(err, errs.ErrNoUnitAssigned) {
		t.Fatalf("mieter unit after move-out: err = %v", err)
	}

	if err := s.DeleteUnit(vid, e.f.Rented.ID); err != nil {
		t.Fatalf("DeleteUnit: %v", err)
	}
	if _, err := s.GetUnit(vid, e.f.Rented.ID); !errors.Is(err, errs.ErrUnitNotFound) {
		t.Fatalf("deleted unit: err = %v", err)
	}
}

func TestGetUnitForMieter(t *testing.T) {
	e := newEnv(t)
	v, err := e.units(5).GetUnitForMieter(e.f.Mieter.ID)
	if err != nil {
		t.Fatalf("GetUnitForMieter: %v", err)
	}
	if v.Unit.ID != e.f.Rented.ID || v.TotalRent != 850 {
		t.Fatalf("view = %+v", v)
	}
	if v.Landlord.ID != e.f.Vermieter.ID || v.Property.Name != "Lindenhof" {
		t.Fatalf("landlord %+v property %+v", v.Landlord, v.Property)
	}
}
