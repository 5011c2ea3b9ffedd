package code

// user facing messages (German)
var codeMessageMap = map[int]string{
	ErrSuccess:         "Erfolgreich",
	ErrUnknown:         "Unbekannter Fehler",
	ErrBind:            "Ungültige Anfrageparameter",
	ErrValidation:      "Eingabe ist ungültig",
	ErrTokenInvalid:    "Ungültiges oder abgelaufenes Token",
	ErrTooManyRequests: "Zu viele Anfragen, bitte später erneut versuchen",
	ErrForbidden:       "Keine Berechtigung für diese Aktion",

	ErrUserNotFound:          "Benutzer nicht gefunden",
	ErrUserAlreadyExist:      "Ein Benutzer mit dieser E-Mail existiert bereits",
	ErrUserPasswordIncorrect: "E-Mail oder Passwort ist falsch",
	ErrUserInactive:          "Benutzerkonto ist deaktiviert",
	ErrWeakPassword:          "Das Passwort muss mindestens 8 Zeichen lang sein",
	ErrRoleNotAllowed:        "Diese Rolle ist hier nicht erlaubt",

	ErrPropertyNotFound:      "Immobilie nicht gefunden",
	ErrUnitNotFound:          "Wohneinheit nicht gefunden",
	ErrUnitOccupied:          "Die Wohneinheit ist bereits vermietet",
	ErrTenantAlreadyAssigned: "Der Mieter ist bereits einer Wohneinheit zugeordnet",
	ErrPropertyHasTenants:    "Die Immobilie hat noch vermietete Wohneinheiten",
	ErrUnitVacant:            "Die Wohneinheit hat keinen Mieter",
	ErrTenantNotFound:        "Mieter nicht gefunden",
	ErrNoUnitAssigned:        "Ihnen ist keine Wohneinheit zugeordnet",

	ErrMeldungNotFound:    "Meldung nicht gefunden",
	ErrInvalidTransition:  "Statuswechsel ist nicht erlaubt",
	ErrMeldungTerminal:    "Die Meldung ist bereits abgeschlossen oder storniert",
	ErrHandwerkerNotFound: "Handwerker nicht gefunden",

	ErrChatPartnerNotAllowed: "Mit diesem Benutzer können Sie nicht chatten",
	ErrNotificationNotFound:  "Benachrichtigung nicht gefunden",
	ErrMessageInvalid:        "Die Nachricht ist leer oder zu lang",

	ErrDatabase:       "Datenbankfehler",
	ErrRecordNotFound: "Datensatz nicht gefunden",

	ErrUnitLimitReached:      "Das Limit an Wohneinheiten für Ihr Abo ist erreicht",
	ErrPaymentNotImplemented: "Die Zahlung ist derzeit nicht verfügbar",
	ErrSubscriptionNotFound:  "Kein Abo gefunden",
	ErrSubscriptionState:     "Das Abo kann in diesem Zustand nicht geändert werden",
}

var codeStatusMap = map[int]int{
	ErrSuccess:         StatusOK,
	ErrUnknown:         StatusInternalServerError,
	ErrBind:            StatusBadRequest,
	ErrValidation:      StatusBadRequest,
	ErrTokenInvalid:    StatusUnauthorized,
	ErrTooManyRequests: StatusTooManyRequests,
	ErrForbidden:       StatusForbidden,

	ErrUserNotFound:          StatusNotFound,
	ErrUserAlreadyExist:      StatusConflict,
	ErrUserPasswordIncorrect: StatusUnauthorized,
	ErrUserInactive:          StatusForbidden,
	ErrWeakPassword:          StatusBadRequest,
	ErrRoleNotAllowed:        StatusBadRequest,

	ErrPropertyNotFound:      StatusNotFound,
	ErrUnitNotFound:          StatusNotFound,
	ErrUnitOccupied:          StatusConflict,
	ErrTenantAlreadyAssigned: StatusConflict,
	ErrPropertyHasTenants:    StatusConflict,
	ErrUnitVacant:            StatusBadRequest,
	ErrTenantNotFound:        StatusNotFound,
	ErrNoUnitAssigned:        StatusBadRequest,

	ErrMeldungNotFound:    StatusNotFound,
	ErrInvalidTransition:  StatusConflict,
	ErrMeldungTerminal:    StatusConflict,
	ErrHandwerkerNotFound: StatusNotFound,

	ErrChatPartnerNotAllowed: StatusForbidden,
	ErrNotificationNotFound:  StatusNotFound,
	ErrMessageInvalid:        StatusBadRequest,

	ErrDatabase:       StatusInternalServerError,
	ErrRecordNotFound: StatusNotFound,

	ErrUnitLimitReached:      StatusForbidden,
	ErrPaymentNotImplemented: StatusNotImplemented,
	ErrSubscriptionNotFound:  StatusNotFound,
	ErrSubscriptionState:     StatusConflict,
}

// GetMessage returns the message of an error code
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "Unbekannter Fehler"
}

// GetStatus returns the HTTP status of an error code
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}
