package models

import "strings"

type transition struct {
	from MeldungStatus
	to   MeldungStatus
}

// allowedTransitions maps each edge of the lifecycle to the roles that may take it.
// Ownership (reporter, assigned Handwerker, owning Vermieter) is checked by the service.
var allowedTransitions = map[transition][]Role{
	{StatusOffen, StatusInBearbeitung}:              {RoleVermieter},
	{StatusOffen, StatusStorniert}:                  {RoleMieter, RoleVermieter},
	{StatusInBearbeitung, StatusHandwerkerErledigt}: {RoleHandwerker},
	{StatusInBearbeitung, StatusStorniert}:          {RoleVermieter},
	{StatusHandwerkerErledigt, StatusAbgeschlossen}: {RoleVermieter},
	{StatusHandwerkerErledigt, StatusInBearbeitung}: {RoleVermieter},
}

var statusOrder = []MeldungStatus{
	StatusOffen,
	StatusInBearbeitung,
	StatusHandwerkerErledigt,
	StatusAbgeschlossen,
	StatusStorniert,
}

// AllMeldungStatuses returns the statuses in lifecycle order
func AllMeldungStatuses() []MeldungStatus {
	out := make([]MeldungStatus, len(statusOrder))
	copy(out, statusOrder)
	return out
}

// ParseMeldungStatus accepts any casing
func ParseMeldungStatus(s string) (MeldungStatus, bool) {
	st := MeldungStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range statusOrder {
		if st == known {
			return st, true
		}
	}
	return "", false
}

// IsTerminal reports whether no transition leaves status
func IsTerminal(status MeldungStatus) bool {
	return status == StatusAbgeschlossen || status == StatusStorniert
}

// CanTransition reports whether role may move a Meldung from one status to another
func CanTransition(from, to MeldungStatus, role Role) bool {
	if IsTerminal(from) {
		return false
	}
	for _, r := range allowedTransitions[transition{from, to}] {
		if r == role {
			return true
		}
	}
	return false
}

// NextStatuses lists the statuses role may move to from the given status,
// in lifecycle order. It is empty for terminal states.
func NextStatuses(from MeldungStatus, role Role) []MeldungStatus {
	var out []MeldungStatus
	for _, to := range statusOrder {
		if CanTransition(from, to, role) {
			out = append(out, to)
		}
	}
	return out
}
