package code

// HTTP status codes.
const (
	// StatusOK - 200.
	StatusOK = 200
	// StatusCreated - 201.
	StatusCreated = 201
	// StatusBadRequest - 400.
	StatusBadRequest = 400
	// StatusUnauthorized - 401.
	StatusUnauthorized = 401
	// StatusForbidden - 403.
	StatusForbidden = 403
	// StatusNotFound - 404.
	StatusNotFound = 404
	// StatusConflict - 409.
	StatusConflict = 409
	// StatusTooManyRequests - 429.
	StatusTooManyRequests = 429
	// StatusInternalServerError - 500.
	StatusInternalServerError = 500
	// StatusNotImplemented - 501.
	StatusNotImplemented = 501
)

// Common codes (100xxx).
const (
	// ErrSuccess - 200.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500.
	ErrUnknown
	// ErrBind - 400: request body could not be bound.
	ErrBind
	// ErrValidation - 400: request failed validation.
	ErrValidation
	// ErrTokenInvalid - 401.
	ErrTokenInvalid
	// ErrTooManyRequests - 429.
	ErrTooManyRequests
	// ErrForbidden - 403: role or ownership check failed.
	ErrForbidden
)

// User and auth codes (101xxx).
const (
	// ErrUserNotFound - 404.
	ErrUserNotFound int = iota + 101000
	// ErrUserAlreadyExist - 409.
	ErrUserAlreadyExist
	// ErrUserPasswordIncorrect - 401.
	ErrUserPasswordIncorrect
	// ErrUserInactive - 403.
	ErrUserInactive
	// ErrWeakPassword - 400.
	ErrWeakPassword
	// ErrRoleNotAllowed - 400: role may not be used for this operation.
	ErrRoleNotAllowed
)

// Property and unit codes (102xxx).
const (
	// ErrPropertyNotFound - 404.
	ErrPropertyNotFound int = iota + 102000
	// ErrUnitNotFound - 404.
	ErrUnitNotFound
	// ErrUnitOccupied - 409: unit already has an active tenant.
	ErrUnitOccupied
	// ErrTenantAlreadyAssigned - 409: tenant already lives in another unit.
	ErrTenantAlreadyAssigned
	// ErrPropertyHasTenants - 409.
	ErrPropertyHasTenants
	// ErrUnitVacant - 400.
	ErrUnitVacant
	// ErrTenantNotFound - 404.
	ErrTenantNotFound
	// ErrNoUnitAssigned - 400.
	ErrNoUnitAssigned
)

// Meldung codes (103xxx).
const (
	// ErrMeldungNotFound - 404.
	ErrMeldungNotFound int = iota + 103000
	// ErrInvalidTransition - 409.
	ErrInvalidTransition
	// ErrMeldungTerminal - 409.
	ErrMeldungTerminal
	// ErrHandwerkerNotFound - 404.
	ErrHandwerkerNotFound
)

// Chat and notification codes (104xxx).
const (
	// ErrChatPartnerNotAllowed - 403.
	ErrChatPartnerNotAllowed int = iota + 104000
	// ErrNotificationNotFound - 404.
	ErrNotificationNotFound
	// ErrMessageInvalid - 400.
	ErrMessageInvalid
)

// Database codes (105xxx).
const (
	// ErrDatabase - 500.
	ErrDatabase int = iota + 105000
	// ErrRecordNotFound - 404.
	ErrRecordNotFound
)

// Subscription codes (106xxx).
const (
	// ErrUnitLimitReached - 403.
	ErrUnitLimitReached int = iota + 106000
	// ErrPaymentNotImplemented - 501.
	ErrPaymentNotImplemented
	// ErrSubscriptionNotFound - 404.
	ErrSubscriptionNotFound
	// ErrSubscriptionState - 409.
	ErrSubscriptionState
)
