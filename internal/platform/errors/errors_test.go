package errors

import (
	stderrs "errors"
	"net/http"
	"testing"
)

func TestHTTPStatusCode_Taxonomy(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeDuplicateKey, http.StatusConflict},
		{ErrorCodeConflict, http.StatusConflict},
		{ErrorCodeIntegrity, http.StatusConflict},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeJSON, http.StatusBadRequest},
		{ErrorCodeInvalidArgument, http.StatusBadRequest},
		{ErrorCodeUnauthorized, http.StatusUnauthorized},
		{ErrorCodeForbidden, http.StatusForbidden},
		{ErrorCodeLocked, http.StatusLocked},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeDB, http.StatusInternalServerError},
		{ErrorCodePanic, http.StatusInternalServerError},
		{ErrorCodeUnknown, http.StatusInternalServerError},
		{ErrorCode(9999), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatusCode(c.code); got != c.want {
			t.Fatalf("code %d: want %d got %d", c.code, c.want, got)
		}
	}
}

func TestWrap_UnwrapAndRoot(t *testing.T) {
	base := stderrs.New("boom")
	wrapped := Wrap(base, ErrorCodeDB, "query failed")
	if Root(wrapped) != base {
		t.Fatalf("Root should reach the base error")
	}
	if !stderrs.Is(wrapped, base) {
		t.Fatalf("errors.Is should see the base through the wrap")
	}
	if CodeOf(wrapped) != ErrorCodeDB {
		t.Fatalf("CodeOf: want DB got %d", CodeOf(wrapped))
	}
}

func TestWireRoundTrip(t *testing.T) {
	err := WithField(Lockedf("account locked"), "username")
	w := WireFrom(err)
	if w.Code != ErrorCodeLocked || w.Field != "username" {
		t.Fatalf("unexpected wire: %+v", w)
	}
	back := FromWire(w)
	if CodeOf(back) != ErrorCodeLocked {
		t.Fatalf("FromWire lost the code")
	}
	e, ok := As(back)
	if !ok || e.Field() != "username" {
		t.Fatalf("FromWire lost the field")
	}
}

func TestFromWire_Empty(t *testing.T) {
	if err := FromWire(Wire{}); err != nil {
		t.Fatalf("empty wire should be nil, got %v", err)
	}
}

func TestWireFrom_ForeignError(t *testing.T) {
	w := WireFrom(stderrs.New("plain"))
	if w.Code != ErrorCodeUnknown || w.Message != "plain" {
		t.Fatalf("unexpected wire: %+v", w)
	}
}

func TestIsCode(t *testing.T) {
	if !IsCode(Conflictf("dup"), ErrorCodeConflict) {
		t.Fatal("IsCode should match")
	}
	if IsCode(stderrs.New("x"), ErrorCodeConflict) {
		t.Fatal("foreign errors default to Unknown")
	}
}

func TestWithOp(t *testing.T) {
	err := WithOp(NotFoundf("gone"), "games.fetch")
	e, ok := As(err)
	if !ok || e.Op() != "games.fetch" {
		t.Fatalf("op not attached: %+v", e)
	}
}

func TestHTTP_NilAndError(t *testing.T) {
	status, w := HTTP(nil)
	if status != http.StatusOK || w.Code != 0 {
		t.Fatalf("nil error should be 200/zero wire")
	}
	status, w = HTTP(Forbiddenf("not a participant"))
	if status != http.StatusForbidden || w.Message != "not a participant" {
		t.Fatalf("unexpected: %d %+v", status, w)
	}
}
