package code

import "testing"

func TestEveryCodeHasMessageAndStatus(t *testing.T) {
	for c := range codeMessageMap {
		if _, ok := codeStatusMap[c]; !ok {
			t.Errorf("code %d has a message but no status", c)
		}
	}
	for c := range codeStatusMap {
		if _, ok := codeMessageMap[c]; !ok {
			t.Errorf("code %d has a status but no message", c)
		}
	}
}

func TestUnknownCode(t *testing.T) {
	if GetStatus(1) != StatusInternalServerError {
		t.Fatal("unknown codes map to 500")
	}
	if GetMessage(1) != "Unbekannter Fehler" {
		t.Fatal("unknown codes get the generic message")
	}
}

func TestPaymentIsNotImplemented(t *testing.T) {
	if GetStatus(ErrPaymentNotImplemented) != 501 {
		t.Fatalf("status = %d", GetStatus(ErrPaymentNotImplemented))
	}
}
