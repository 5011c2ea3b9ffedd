package errs

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"

	"immofox-http-service/internal/error/code"
)

func TestCodeMatchesWrappedErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrUnitOccupied, code.ErrUnitOccupied},
		{errors.Wrap(ErrInvalidTransition, "OFFEN -> ABGESCHLOSSEN"), code.ErrInvalidTransition},
		{fmt.Errorf("send: %w", ErrChatPartnerNotAllowed), code.ErrChatPartnerNotAllowed},
		{errors.New("connection refused"), code.ErrDatabase},
	}
	for _, tc := range cases {
		if got := Code(tc.err); got != tc.want {
			t.Errorf("Code(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestEverySentinelHasAMessage(t *testing.T) {
	for _, ec := range errorCodes {
		if code.GetMessage(ec.code) == "Unbekannter Fehler" {
			t.Errorf("%v maps to code %d without message", ec.err, ec.code)
		}
	}
}
