package models

import (
	"reflect"
	"testing"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to MeldungStatus
		role     Role
		want     bool
	}{
		{StatusOffen, StatusInBearbeitung, RoleVermieter, true},
		{StatusOffen, StatusInBearbeitung, RoleMieter, false},
		{StatusOffen, StatusStorniert, RoleMieter, true},
		{StatusOffen, StatusStorniert, RoleHandwerker, false},
		{StatusOffen, StatusHandwerkerErledigt, RoleHandwerker, false},
		{StatusOffen, StatusAbgeschlossen, RoleVermieter, false},
		{StatusInBearbeitung, StatusHandwerkerErledigt, RoleHandwerker, true},
		{StatusInBearbeitung, StatusHandwerkerErledigt, RoleVermieter, false},
		{StatusInBearbeitung, StatusStorniert, RoleVermieter, true},
		{StatusInBearbeitung, StatusStorniert, RoleMieter, false},
		{StatusHandwerkerErledigt, StatusAbgeschlossen, RoleVermieter, true},
		{StatusHandwerkerErledigt, StatusInBearbeitung, RoleVermieter, true},
		{StatusHandwerkerErledigt, StatusAbgeschlossen, RoleHandwerker, false},
		{StatusAbgeschlossen, StatusInBearbeitung, RoleVermieter, false},
		{StatusStorniert, StatusOffen, RoleVermieter, false},
		{StatusOffen, StatusOffen, RoleVermieter, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to, tc.role); got != tc.want {
			t.Errorf("CanTransition(%s, %s, %s) = %v, want %v", tc.from, tc.to, tc.role, got, tc.want)
		}
	}
}

func TestTerminalStatesHaveNoActions(t *testing.T) {
	for _, st := range []MeldungStatus{StatusAbgeschlossen, StatusStorniert} {
		if !IsTerminal(st) {
			t.Errorf("%s should be terminal", st)
		}
		for _, role := range []Role{RoleVermieter, RoleMieter, RoleHandwerker} {
			if next := NextStatuses(st, role); len(next) != 0 {
				t.Errorf("NextStatuses(%s, %s) = %v", st, role, next)
			}
		}
	}
}

func TestNextStatuses(t *testing.T) {
	got := NextStatuses(StatusOffen, RoleVermieter)
	want := []MeldungStatus{StatusInBearbeitung, StatusStorniert}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NextStatuses(OFFEN, VERMIETER) = %v, want %v", got, want)
	}
	got = NextStatuses(StatusHandwerkerErledigt, RoleVermieter)
	want = []MeldungStatus{StatusInBearbeitung, StatusAbgeschlossen}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NextStatuses(HANDWERKER_ERLEDIGT, VERMIETER) = %v, want %v", got, want)
	}
}

func TestParseMeldungStatus(t *testing.T) {
	if st, ok := ParseMeldungStatus(" in_bearbeitung "); !ok || st != StatusInBearbeitung {
		t.Fatalf("got %q %v", st, ok)
	}
	if _, ok := ParseMeldungStatus("ERLEDIGT"); ok {
		t.Fatal("unknown status accepted")
	}
}

func TestParseRole(t *testing.T) {
	if r, ok := ParseRole("mieter"); !ok || r != RoleMieter {
		t.Fatalf("got %q %v", r, ok)
	}
	if _, ok := ParseRole("admin"); ok {
		t.Fatal("admin is not an Immofox role")
	}
}
