// Package errs holds the sentinel errors returned by the domain services and
// their mapping to application error codes.
package errs

import (
	"errors"

	"immofox-http-service/internal/error/code"
)

var (
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation failed")

	ErrUserNotFound          = errors.New("user not found")
	ErrUserAlreadyExist      = errors.New("user already exists")
	ErrUserPasswordIncorrect = errors.New("invalid email or password")
	ErrUserInactive          = errors.New("user is inactive")
	ErrWeakPassword          = errors.New("password too short")
	ErrRoleNotAllowed        = errors.New("role not allowed")
	ErrTokenInvalid          = errors.New("invalid token")

	ErrPropertyNotFound      = errors.New("property not found")
	ErrUnitNotFound          = errors.New("unit not found")
	ErrUnitOccupied          = errors.New("unit already has an active tenant")
	ErrTenantAlreadyAssigned = errors.New("tenant already assigned to a unit")
	ErrPropertyHasTenants    = errors.New("property has occupied units")
	ErrUnitVacant            = errors.New("unit has no tenant")
	ErrTenantNotFound        = errors.New("tenant not found")
	ErrNoUnitAssigned        = errors.New("no unit assigned")

	ErrMeldungNotFound    = errors.New("meldung not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrMeldungTerminal    = errors.New("meldung is in a terminal state")
	ErrHandwerkerNotFound = errors.New("handwerker not found")

	ErrChatPartnerNotAllowed = errors.New("chat partner not allowed")
	ErrNotificationNotFound  = errors.New("notification not found")
	ErrMessageInvalid        = errors.New("message content invalid")

	ErrUnitLimitReached      = errors.New("unit limit of plan reached")
	ErrPaymentNotImplemented = errors.New("payment not implemented")
	ErrSubscriptionNotFound  = errors.New("subscription not found")
	ErrSubscriptionState     = errors.New("subscription state does not allow this")
)

var errorCodes = []struct {
	err  error
	code int
}{
	{ErrForbidden, code.ErrForbidden},
	{ErrValidation, code.ErrValidation},
	{ErrUserNotFound, code.ErrUserNotFound},
	{ErrUserAlreadyExist, code.ErrUserAlreadyExist},
	{ErrUserPasswordIncorrect, code.ErrUserPasswordIncorrect},
	{ErrUserInactive, code.ErrUserInactive},
	{ErrWeakPassword, code.ErrWeakPassword},
	{ErrRoleNotAllowed, code.ErrRoleNotAllowed},
	{ErrTokenInvalid, code.ErrTokenInvalid},
	{ErrPropertyNotFound, code.ErrPropertyNotFound},
	{ErrUnitNotFound, code.ErrUnitNotFound},
	{ErrUnitOccupied, code.ErrUnitOccupied},
	{ErrTenantAlreadyAssigned, code.ErrTenantAlreadyAssigned},
	{ErrPropertyHasTenants, code.ErrPropertyHasTenants},
	{ErrUnitVacant, code.ErrUnitVacant},
	{ErrTenantNotFound, code.ErrTenantNotFound},
	{ErrNoUnitAssigned, code.ErrNoUnitAssigned},
	{ErrMeldungNotFound, code.ErrMeldungNotFound},
	{ErrInvalidTransition, code.ErrInvalidTransition},
	{ErrMeldungTerminal, code.ErrMeldungTerminal},
	{ErrHandwerkerNotFound, code.ErrHandwerkerNotFound},
	{ErrChatPartnerNotAllowed, code.ErrChatPartnerNotAllowed},
	{ErrNotificationNotFound, code.ErrNotificationNotFound},
	{ErrMessageInvalid, code.ErrMessageInvalid},
	{ErrUnitLimitReached, code.ErrUnitLimitReached},
	{ErrPaymentNotImplemented, code.ErrPaymentNotImplemented},
	{ErrSubscriptionNotFound, code.ErrSubscriptionNotFound},
	{ErrSubscriptionState, code.ErrSubscriptionState},
}

// Code returns the application error code for err, ErrDatabase when no
// sentinel matches.
func Code(err error) int {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return code.ErrDatabase
}
