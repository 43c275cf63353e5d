package nldierrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf_WrappedChain(t *testing.T) {
	base := errors.New("connection refused")
	wrapped := Wrap(DatabaseUnavailable, "acquire session", base)
	outer := fmt.Errorf("with_session: %w", wrapped)

	if KindOf(outer) != DatabaseUnavailable {
		t.Fatalf("KindOf = %v, want %v", KindOf(outer), DatabaseUnavailable)
	}
	if !Is(outer, DatabaseUnavailable) {
		t.Fatal("Is returned false for matching kind")
	}
	if !errors.Is(outer, base) {
		t.Fatal("errors.Is should see through the Kind wrapper to the cause")
	}
}

func TestKindOf_PlainErrorIsInternal(t *testing.T) {
	if KindOf(errors.New("oops")) != Internal {
		t.Fatal("plain errors should classify as Internal")
	}
}
