package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{"NotFound wraps ErrNotFound", NotFound("prompt", "abc"), ErrNotFound, true},
		{"ValidationFailed wraps ErrValidation", ValidationFailed("name", "name is required"), ErrValidation, true},
		{"Conflict wraps ErrConflict", Conflict("folder", "Work"), ErrConflict, true},
		{"Boundary wraps ErrBoundary", Boundary("save", errors.New("disk full")), ErrBoundary, true},
		{"Host wraps ErrHost", Host("paste", errors.New("no pane")), ErrHost, true},
		{"NotFound is not ErrValidation", NotFound("prompt", "abc"), ErrValidation, false},
		{"Boundary keeps existing kind", Boundary("get", NotFound("prompt", "abc")), ErrNotFound, true},
		{"wrapped kind survives fmt.Errorf", fmt.Errorf("outer: %w", Conflict("folder", "x")), ErrConflict, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestCauseIsReachable(t *testing.T) {
	cause := errors.New("disk full")
	err := Boundary("save", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause in chain")
	}
	if err.Error() != "save: disk full" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestKindRoundTrip(t *testing.T) {
	for _, err := range []error{
		NotFound("prompt", "a"),
		ValidationFailed("name", "bad"),
		Conflict("folder", "b"),
		Host("paste", errors.New("x")),
	} {
		back := FromKind(Kind(err), err.Error())
		if Kind(back) != Kind(err) {
			t.Fatalf("kind %q did not survive the wire, got %q", Kind(err), Kind(back))
		}
		if back.Error() != err.Error() {
			t.Fatalf("message changed: %q vs %q", back.Error(), err.Error())
		}
	}
	if !errors.Is(FromKind("bogus", "m"), ErrBoundary) {
		t.Fatalf("unknown kinds should map to ErrBoundary")
	}
}

func TestBoundaryNil(t *testing.T) {
	if Boundary("x", nil) != nil || Host("x", nil) != nil {
		t.Fatalf("nil errors must stay nil")
	}
}
