package router

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/internetofwater/nldi-go/internal/nldierrors"
)

func TestWriteError_NeverLeaksWrappedCause(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.1:5432: connect: connection refused")
	err := nldierrors.Wrap(nldierrors.DatabaseUnavailable, "could not reach the database", cause)

	a := &App{}
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/linked-data/comid/13297198", nil)
	a.writeError(w, r, err)

	body := w.Body.String()
	if strings.Contains(body, cause.Error()) {
		t.Fatalf("response body leaked wrapped cause: %s", body)
	}
	if !strings.Contains(body, "could not reach the database") {
		t.Fatalf("response body missing wire-safe message: %s", body)
	}
}

func TestWireMessage_FallsBackForUnwrappedErrors(t *testing.T) {
	if got := wireMessage(errors.New("boom")); got != "internal error" {
		t.Fatalf("got %q, want generic fallback", got)
	}
}
