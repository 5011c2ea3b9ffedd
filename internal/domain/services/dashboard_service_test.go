package services

import (
	"testing"

	"immofox-http-service/internal/domain/models"
)

func TestVermieterDashboard(t *testing.T) {
	e := newEnv(t)
	createMeldung(t, e)

	d, err := NewDashboardService(e.db, e.store).GetDashboard(e.f.Vermieter.ID, models.RoleVermieter)
	if err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}
	if d.PropertyCount != 1 || d.UnitCount != 2 || d.OccupiedUnits != 1 {
		t.Fatalf("counts = %+v", d)
	}
	if d.VacancyRate != 50 {
		t.Fatalf("VacancyRate = %v", d.VacancyRate)
	}
	if d.MonthlyRent != 850 {
		t.Fatalf("MonthlyRent = %v", d.MonthlyRent)
	}
	if d.TenantCount != 1 {
		t.Fatalf("TenantCount = %d", d.TenantCount)
	}
	if d.MeldungenByStatus[models.StatusOffen] != 1 || d.OpenMeldungen != 1 {
		t.Fatalf("Meldungen = %v open %d", d.MeldungenByStatus, d.OpenMeldungen)
	}
	if d.MeldungenByStatus[models.StatusStorniert] != 0 {
		t.Fatal("every status should be present")
	}
	if d.UnreadNotifications != 1 {
		t.Fatalf("UnreadNotifications = %d", d.UnreadNotifications)
	}
}

func TestDashboardIsCachedUntilInvalidated(t *testing.T) {
	e := newEnv(t)
	s := NewDashboardService(e.db, e.store)

	first, err := s.GetDashboard(e.f.Vermieter.ID, models.RoleVermieter)
	if err != nil {
		t.Fatal(err)
	}

	// a write around the services is not seen while the entry lives
	if err := e.db.Model(&models.Unit{}).Where("id = ?", e.f.Rented.ID).Update("rent_cold", 800).Error; err != nil {
		t.Fatal(err)
	}
	cached, err := s.GetDashboard(e.f.Vermieter.ID, models.RoleVermieter)
	if err != nil {
		t.Fatal(err)
	}
	if cached.MonthlyRent != first.MonthlyRent {
		t.Fatalf("cache miss: %v != %v", cached.MonthlyRent, first.MonthlyRent)
	}

	createMeldung(t, e)
	fresh, err := s.GetDashboard(e.f.Vermieter.ID, models.RoleVermieter)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.MonthlyRent != 950 || fresh.OpenMeldungen != 1 {
		t.Fatalf("after invalidation = %+v", fresh)
	}
}

func TestMieterAndHandwerkerDashboards(t *testing.T) {
	e := newEnv(t)
	s := NewDashboardService(e.db, e.store)
	v := createMeldung(t, e)
	if _, err := e.meldungen().AssignHandwerker(e.vermieter(), v.ID, e.f.Handwerker.ID, ""); err != nil {
		t.Fatal(err)
	}

	m, err := s.GetDashboard(e.f.Mieter.ID, models.RoleMieter)
	if err != nil {
		t.Fatal(err)
	}
	if m.MeldungenByStatus[models.StatusInBearbeitung] != 1 || m.OpenMeldungen != 1 {
		t.Fatalf("Mieter = %+v", m)
	}
	if m.UnitCount != 0 || m.MonthlyRent != 0 {
		t.Fatal("Mieter dashboard carries Vermieter figures")
	}

	h, err := s.GetDashboard(e.f.Handwerker.ID, models.RoleHandwerker)
	if err != nil {
		t.Fatal(err)
	}
	if h.OpenJobs != 1 {
		t.Fatalf("OpenJobs = %d", h.OpenJobs)
	}
	if h.UnreadNotifications != 1 {
		t.Fatalf("Handwerker notifications = %d", h.UnreadNotifications)
	}

	if _, err := s.GetDashboard(e.f.Handwerker.ID, "ADMIN"); err == nil {
		t.Fatal("unknown role accepted")
	}
}
