package services

import (
	"testing"

	"github.com/pkg/errors"

	"immofox-http-service/internal/domain/models"
	"immofox-http-service/internal/error/errs"
	"immofox-http-service/internal/test/testdb"
)

func TestPropertyCRUD(t *testing.T) {
	e := newEnv(t)
	s := NewPropertyService(e.db, e.store)
	vid := e.f.Vermieter.ID

	p, err := s.CreateProperty(vid, PropertyInput{Name: " Am Park ", Street: "Parkweg 3", ZipCode: "04109", City: "Leipzig"})
	if err != nil {
		t.Fatalf("CreateProperty: %v", err)
	}
	if p.Name != "Am Park" || p.VermieterID != vid {
		t.Fatalf("property = %+v", p)
	}
	if _, err := s.CreateProperty(vid, PropertyInput{Name: "ohne Adresse"}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("missing address: err = %v", err)
	}

	list, total, err := s.ListProperties(vid, "leipzig", models.PaginationQuery{})
	if err != nil {
		t.Fatalf("ListProperties: %v", err)
	}
	if total != 1 || list[0].ID != p.ID {
		t.Fatalf("search result = %+v", list)
	}

	p, err = s.UpdateProperty(vid, p.ID, PropertyInput{Name: "Am Park", Street: "Parkweg 5", ZipCode: "04109", City: "Leipzig"})
	if err != nil {
		t.Fatalf("UpdateProperty: %v", err)
	}
	if p.Street != "Parkweg 5" {
		t.Fatalf("Street = %q", p.Street)
	}

	other := testdb.CreateUser(t, e.db, models.RoleVermieter, "andere@example.de")
	if _, err := s.GetProperty(other.ID, p.ID); !errors.Is(err, errs.ErrPropertyNotFound) {
		t.Fatalf("foreign get: err = %v", err)
	}
	if err := s.DeleteProperty(other.ID, p.ID); !errors.Is(err, errs.ErrPropertyNotFound) {
		t.Fatalf("foreign delete: err = %v", err)
	}
	if err := s.DeleteProperty(vid, p.ID); err != nil {
		t.Fatalf("DeleteProperty: %v", err)
	}
}

func TestDeletePropertyWithTenantsIsRefused(t *testing.T) {
	e := newEnv(t)
	s := NewPropertyService(e.db, e.store)
	vid := e.f.Vermieter.ID

	if err := s.DeleteProperty(vid, e.f.Property.ID); !errors.Is(err, errs.ErrPropertyHasTenants) {
		t.Fatalf("err = %v", err)
	}

	createMeldung(t, e)
	if err := e.db.Model(&models.Unit{}).Where("id = ?", e.f.Rented.ID).Update("mieter_id", nil).Error; err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteProperty(vid, e.f.Property.ID); err != nil {
		t.Fatalf("DeleteProperty: %v", err)
	}
	var units, meldungen int64
	e.db.Model(&models.Unit{}).Where("property_id = ?", e.f.Property.ID).Count(&units)
	e.db.Model(&models.Meldung{}).Count(&meldungen)
	if units != 0 || meldungen != 0 {
		t.Fatalf("left over: %d units, %d meldungen", units, meldungen)
	}
}
