package fault

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCatchReturnsRaisedFailure(t *testing.T) {
	err := Catch(func() {
		Raise(UnsupportedStore, "const 5", "store into %s", "constant")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !Is(err, UnsupportedStore) {
		t.Fatalf("expected UnsupportedStore, got %v", err)
	}
	if !strings.Contains(err.Error(), "store into constant") || !strings.Contains(err.Error(), "const 5") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestCatchPassesThroughForeignPanics(t *testing.T) {
	defer func() {
		if r := recover(); r != "boom" {
			t.Fatalf("expected foreign panic to propagate, got %v", r)
		}
	}()
	_ = Catch(func() { panic("boom") })
	t.Fatal("unreachable")
}

func TestIsSeesWrappedErrors(t *testing.T) {
	err := fmt.Errorf("unit demo: %w", &Error{Kind: NotImplemented, Detail: "try/catch"})
	if !Is(err, NotImplemented) {
		t.Fatal("wrapped failure not recognised")
	}
	if Is(errors.New("plain"), NotImplemented) {
		t.Fatal("plain error misclassified")
	}
}
