package services

import (
	"testing"

	"github.com/pkg/errors"

	"immofox-http-service/internal/domain/models"
	"immofox-http-service/internal/error/errs"
)

func (e *env) tenants() *TenantService {
	return NewTenantService(e.db, e.store, e.notifications)
}

func TestCreateTenantWithUnit(t *testing.T) {
	e := newEnv(t)
	s := e.tenants()
	vid := e.f.Vermieter.ID

	v, err := s.CreateTenant(vid, TenantInput{
		Email:     " Lena.Neu@Example.de ",
		Password:  "willkommen1",
		FirstName: "Lena",
		LastName:  "Neu",
		UnitID:    &e.f.Vacant.ID,
	})
	if err != nil {
		t.Fatalf("CreateTenant: %v", err)
	}
	if v.Email != "lena.neu@example.de" || v.Role != models.RoleMieter || *v.LandlordID != vid {
		t.Fatalf("tenant = %+v", v.User)
	}
	if v.Unit == nil || v.Unit.ID != e.f.Vacant.ID {
		t.Fatalf("unit = %+v", v.Unit)
	}

	if _, err := s.CreateTenant(vid, TenantInput{Email: "lena.neu@example.de", Password: "willkommen1", FirstName: "L", LastName: "N"}); !errors.Is(err, errs.ErrUserAlreadyExist) {
		t.Fatalf("duplicate email: err = %v", err)
	}
	if _, err := s.CreateTenant(vid, TenantInput{Email: "kurz@example.de", Password: "kurz", FirstName: "K", LastName: "Z"}); !errors.Is(err, errs.ErrWeakPassword) {
		t.Fatalf("weak password: err = %v", err)
	}
}

func TestCreateTenantRollsBackOnOccupiedUnit(t *testing.T) {
	e := newEnv(t)
	s := e.tenants()

	_, err := s.CreateTenant(e.f.Vermieter.ID, TenantInput{
		Email:     "zuspaet@example.de",
		Password:  "willkommen1",
		FirstName: "Zu",
		LastName:  "Spät",
		UnitID:    &e.f.Rented.ID,
	})
	if !errors.Is(err, errs.ErrUnitOccupied) {
		t.Fatalf("err = %v", err)
	}
	var count int64
	e.db.Model(&models.User{}).Where("email = ?", "zuspaet@example.de").Count(&count)
	if count != 0 {
		t.Fatal("tenant account was created despite the failed assignment")
	}
}

func TestListAndUpdateTenants(t *testing.T) {
	e := newEnv(t)
	s := e.tenants()
	vid := e.f.Vermieter.ID

	list, total, err := s.ListTenants(vid, "", models.PaginationQuery{})
	if err != nil {
		t.Fatalf("ListTenants: %v", err)
	}
	if total != 1 || list[0].ID != e.f.Mieter.ID || list[0].Unit == nil {
		t.Fatalf("list = %+v", list)
	}
	if _, total, _ := s.ListTenants(vid, "nobody", models.PaginationQuery{}); total != 0 {
		t.Fatalf("search total = %d", total)
	}

	phone := " 030 123 "
	v, err := s.UpdateTenant(vid, e.f.Mieter.ID, TenantUpdateInput{Phone: &phone})
	if err != nil {
		t.Fatalf("UpdateTenant: %v", err)
	}
	if v.Phone != "030 123" {
		t.Fatalf("Phone = %q", v.Phone)
	}
	empty := ""
	if _, err := s.UpdateTenant(vid, e.f.Mieter.ID, TenantUpdateInput{FirstName: &empty}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("empty name: err = %v", err)
	}
	taken := e.f.Vermieter.Email
	if _, err := s.UpdateTenant(vid, e.f.Mieter.ID, TenantUpdateInput{Email: &taken}); !errors.Is(err, errs.ErrUserAlreadyExist) {
		t.Fatalf("taken email: err = %v", err)
	}
}

func TestDeleteTenantIsSoft(t *testing.T) {
	e := newEnv(t)
	s := e.tenants()
	vid := e.f.Vermieter.ID

	if err := s.DeleteTenant(vid, e.f.Mieter.ID); err != nil {
		t.Fatalf("DeleteTenant: %v", err)
	}

	var user models.User
	if err := e.db.First(&user, e.f.Mieter.ID).Error; err != nil {
		t.Fatalf("user row gone: %v", err)
	}
	if user.Active || user.LandlordID != nil {
		t.Fatalf("user = %+v", user)
	}
	var unit models.Unit
	e.db.First(&unit, e.f.Rented.ID)
	if unit.MieterID != nil {
		t.Fatal("unit still rented")
	}
	if _, err := s.GetTenant(vid, e.f.Mieter.ID); !errors.Is(err, errs.ErrTenantNotFound) {
		t.Fatalf("get after delete: err = %v", err)
	}
}
