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
		{"NotFound wraps ErrNotFound", NotFound("snippet", "cv37rs3p"), ErrNotFound, true},
		{"ValidationFailed wraps ErrValidation", ValidationFailed("slug", "Slug can't be blank"), ErrValidation, true},
		{"Invalid wraps ErrValidation", Invalid(nil), ErrValidation, true},
		{"Conflict wraps ErrConflict", Conflict("event", "osb2026"), ErrConflict, true},
		{"Forbidden wraps ErrForbidden", Forbidden("admins only"), ErrForbidden, true},
		{"NotFound is not a validation error", NotFound("session type", "37"), ErrValidation, false},
		{"wrapped NotFound still matches", fmt.Errorf("finding: %w", NotFound("session type", "37")), ErrNotFound, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{"NotFound names resource and id", NotFound("session type", "37"), "session type not found with id 37"},
		{"ValidationFailed keeps message", ValidationFailed("slug", "Slug can't be blank"), "Slug can't be blank"},
		{"Conflict names resource and id", Conflict("snippet", "cfp"), "snippet conflict with id cfp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestInvalid(t *testing.T) {
	err := Invalid([]FieldError{
		{Field: "slug", Message: "Slug can't be blank"},
		{Field: "public", Message: "Public is not a boolean"},
	})

	if !errors.Is(err, ErrValidation) {
		t.Fatalf("errors.Is(Invalid(...), ErrValidation) = false")
	}
	if err.Field != "slug" {
		t.Errorf("Field = %q, want %q", err.Field, "slug")
	}
	if got := err.Message; got != "Slug can't be blank; Public is not a boolean" {
		t.Errorf("Message = %q", got)
	}
	if got := err.For("public"); len(got) != 1 || got[0] != "Public is not a boolean" {
		t.Errorf("For(public) = %v", got)
	}
	if got := err.Messages(); len(got) != 2 {
		t.Errorf("Messages() = %v, want 2 entries", got)
	}
}

func TestAsValidation(t *testing.T) {
	wrapped := fmt.Errorf("saving snippet: %w", ValidationFailed("slug", "Slug has already been taken"))

	appErr, ok := AsValidation(wrapped)
	if !ok {
		t.Fatal("AsValidation() should find the wrapped validation error")
	}
	if appErr.Field != "slug" {
		t.Errorf("Field = %q, want slug", appErr.Field)
	}

	if _, ok := AsValidation(NotFound("snippet", "x")); ok {
		t.Error("AsValidation() should not match a NotFound error")
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("slug", "Slug has already been taken")

	if err.Field != "slug" {
		t.Errorf("Field = %q, want %q", err.Field, "slug")
	}
	if len(err.Details) != 1 || err.Details[0].Field != "slug" {
		t.Errorf("Details = %+v, want one slug entry", err.Details)
	}
	if err.Unwrap() != ErrValidation {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), ErrValidation)
	}
}
