package services

import (
	"testing"

	"github.com/pkg/errors"

	"immofox-http-service/internal/domain/models"
	"immofox-http-service/internal/error/errs"
	"immofox-http-service/internal/test/testdb"
)

func createMeldung(t *testing.T, e *env) *MeldungView {
	t.Helper()
	v, err := e.meldungen().CreateMeldung(e.f.Mieter.ID, MeldungInput{
		Title:       "Heizung kalt",
		Description: "Der Heizkörper im Bad bleibt kalt.",
		Category:    "Heizung",
		Priority:    "hoch",
	})
	if err != nil {
		t.Fatalf("CreateMeldung: %v", err)
	}
	return v
}

func TestCreateMeldung(t *testing.T) {
	e := newEnv(t)
	v := createMeldung(t, e)

	if v.Status != models.StatusOffen {
		t.Fatalf("Status = %s", v.Status)
	}
	if v.Priority != models.PriorityHoch {
		t.Fatalf("Priority = %s", v.Priority)
	}
	if v.UnitID != e.f.Rented.ID {
		t.Fatalf("UnitID = %d, want rented unit %d", v.UnitID, e.f.Rented.ID)
	}
	if len(v.History) != 1 || v.History[0].ToStatus != models.StatusOffen {
		t.Fatalf("History = %+v", v.History)
	}
	if v.Property == nil || v.Property.ID != e.f.Property.ID {
		t.Fatalf("Property = %+v", v.Property)
	}
	// Mieter may cancel an OFFEN Meldung and nothing else
	if len(v.AllowedActions) != 1 || v.AllowedActions[0] != models.StatusStorniert {
		t.Fatalf("AllowedActions = %v", v.AllowedActions)
	}
	if got := e.unreadNotifications(t, e.f.Vermieter.ID); got != 1 {
		t.Fatalf("Vermieter notifications = %d", got)
	}
	if e.publisher.count(e.f.Vermieter.ID, EventNotification) != 1 {
		t.Fatal("notification was not pushed to the Vermieter")
	}
}

func TestCreateMeldungValidation(t *testing.T) {
	e := newEnv(t)
	s := e.meldungen()

	cases := []struct {
		name     string
		mieterID uint
		in       MeldungInput
		want     error
	}{
		{"empty title", e.f.Mieter.ID, MeldungInput{Title: " ", Description: "x"}, errs.ErrValidation},
		{"unknown priority", e.f.Mieter.ID, MeldungInput{Title: "x", Description: "x", Priority: "SOFORT"}, errs.ErrValidation},
		{"without unit", testdb.CreateUser(t, e.db, models.RoleMieter, "ohne@example.de").ID, MeldungInput{Title: "x", Description: "x"}, errs.ErrNoUnitAssigned},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.CreateMeldung(tc.mieterID, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestMeldungLifecycle(t *testing.T) {
	e := newEnv(t)
	s := e.meldungen()
	m := createMeldung(t, e)

	// OFFEN cannot move to IN_BEARBEITUNG without a Handwerker
	if _, err := s.ChangeStatus(e.vermieter(), m.ID, models.StatusInBearbeitung, ""); !errors.Is(err, errs.ErrInvalidTransition) {
		t.Fatalf("status without handwerker: err = %v", err)
	}

	v, err := s.AssignHandwerker(e.vermieter(), m.ID, e.f.Handwerker.ID, "")
	if err != nil {
		t.Fatalf("AssignHandwerker: %v", err)
	}
	if v.Status != models.StatusInBearbeitung || v.Handwerker == nil || v.Handwerker.ID != e.f.Handwerker.ID {
		t.Fatalf("after assign: status %s handwerker %+v", v.Status, v.Handwerker)
	}

	// Mieter may no longer cancel
	if _, err := s.ChangeStatus(e.mieter(), m.ID, models.StatusStorniert, ""); !errors.Is(err, errs.ErrInvalidTransition) {
		t.Fatalf("mieter cancel in progress: err = %v", err)
	}

	v, err = s.ChangeStatus(e.handwerker(), m.ID, models.StatusHandwerkerErledigt, "Ventil getauscht")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if v.CompletedAt == nil {
		t.Fatal("CompletedAt not set")
	}

	// rework clears the completion
	v, err = s.ChangeStatus(e.vermieter(), m.ID, models.StatusInBearbeitung, "tropft noch")
	if err != nil {
		t.Fatalf("rework: %v", err)
	}
	if v.CompletedAt != nil {
		t.Fatal("CompletedAt not cleared on rework")
	}

	if _, err := s.ChangeStatus(e.handwerker(), m.ID, models.StatusHandwerkerErledigt, ""); err != nil {
		t.Fatalf("complete again: %v", err)
	}
	v, err = s.ChangeStatus(e.vermieter(), m.ID, models.StatusAbgeschlossen, "")
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if v.ClosedAt == nil || len(v.AllowedActions) != 0 || v.CanAssign {
		t.Fatalf("closed view: closedAt %v actions %v canAssign %v", v.ClosedAt, v.AllowedActions, v.CanAssign)
	}

	want := []models.MeldungStatus{
		models.StatusOffen,
		models.StatusInBearbeitung,
		models.StatusHandwerkerErledigt,
		models.StatusInBearbeitung,
		models.StatusHandwerkerErledigt,
		models.StatusAbgeschlossen,
	}
	if len(v.History) != len(want) {
		t.Fatalf("history length = %d, want %d", len(v.History), len(want))
	}
	for i, h := range v.History {
		if h.ToStatus != want[i] {
			t.Fatalf("history[%d] = %s, want %s", i, h.ToStatus, want[i])
		}
	}

	// terminal
	if _, err := s.ChangeStatus(e.vermieter(), m.ID, models.StatusInBearbeitung, ""); !errors.Is(err, errs.ErrMeldungTerminal) {
		t.Fatalf("change after close: err = %v", err)
	}
	if _, err := s.AssignHandwerker(e.vermieter(), m.ID, e.f.Handwerker.ID, ""); !errors.Is(err, errs.ErrMeldungTerminal) {
		t.Fatalf("assign after close: err = %v", err)
	}
}

func TestMieterCancelsOpenMeldung(t *testing.T) {
	e := newEnv(t)
	m := createMeldung(t, e)

	v, err := e.meldungen().ChangeStatus(e.mieter(), m.ID, models.StatusStorniert, "hat sich erledigt")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if v.Status != models.StatusStorniert || v.ClosedAt == nil {
		t.Fatalf("status %s closedAt %v", v.Status, v.ClosedAt)
	}
}

func TestAssignHandwerkerChecks(t *testing.T) {
	e := newEnv(t)
	s := e.meldungen()
	m := createMeldung(t, e)

	if _, err := s.AssignHandwerker(e.mieter(), m.ID, e.f.Handwerker.ID, ""); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("mieter assign: err = %v", err)
	}
	if _, err := s.AssignHandwerker(e.vermieter(), m.ID, e.f.Mieter.ID, ""); !errors.Is(err, errs.ErrHandwerkerNotFound) {
		t.Fatalf("assign a mieter: err = %v", err)
	}

	other := testdb.CreateUser(t, e.db, models.RoleVermieter, "andere@example.de")
	if _, err := s.AssignHandwerker(Actor{ID: other.ID, Role: models.RoleVermieter}, m.ID, e.f.Handwerker.ID, ""); !errors.Is(err, errs.ErrMeldungNotFound) {
		t.Fatalf("foreign vermieter: err = %v", err)
	}

	// reassignment keeps IN_BEARBEITUNG and informs the new Handwerker
	if _, err := s.AssignHandwerker(e.vermieter(), m.ID, e.f.Handwerker.ID, ""); err != nil {
		t.Fatalf("assign: %v", err)
	}
	second := testdb.CreateUser(t, e.db, models.RoleHandwerker, "zweiter@example.de")
	v, err := s.AssignHandwerker(e.vermieter(), m.ID, second.ID, "")
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if v.Status != models.StatusInBearbeitung || v.Handwerker.ID != second.ID {
		t.Fatalf("reassign: status %s handwerker %d", v.Status, v.Handwerker.ID)
	}
	if got := e.unreadNotifications(t, second.ID); got != 1 {
		t.Fatalf("second handwerker notifications = %d", got)
	}
	// the first Handwerker lost access
	if _, err := s.GetMeldung(e.handwerker(), m.ID); !errors.Is(err, errs.ErrMeldungNotFound) {
		t.Fatalf("old handwerker get: err = %v", err)
	}
}

func TestListMeldungenByRole(t *testing.T) {
	e := newEnv(t)
	s := e.meldungen()
	first := createMeldung(t, e)
	createMeldung(t, e)
	if _, err := s.AssignHandwerker(e.vermieter(), first.ID, e.f.Handwerker.ID, ""); err != nil {
		t.Fatalf("assign: %v", err)
	}

	cases := []struct {
		name   string
		actor  Actor
		filter MeldungFilter
		want   int64
	}{
		{"vermieter all", e.vermieter(), MeldungFilter{}, 2},
		{"vermieter offen", e.vermieter(), MeldungFilter{Status: models.StatusOffen}, 1},
		{"vermieter property", e.vermieter(), MeldungFilter{PropertyID: e.f.Property.ID + 100}, 0},
		{"mieter", e.mieter(), MeldungFilter{}, 2},
		{"handwerker", e.handwerker(), MeldungFilter{}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			list, total, err := s.ListMeldungen(tc.actor, tc.filter)
			if err != nil {
				t.Fatalf("ListMeldungen: %v", err)
			}
			if total != tc.want || int64(len(list)) != tc.want {
				t.Fatalf("total %d len %d, want %d", total, len(list), tc.want)
			}
		})
	}
}
