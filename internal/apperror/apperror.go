// Package apperror defines the error taxonomy shared by stores, services and handlers.
//
// Each failure class has a sentinel (ErrNotFound, ErrValidation, ...) and a
// constructor returning *AppError, which wraps the sentinel so callers can
// branch with errors.Is while still getting a human-readable message.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
)

// FieldError is one validation problem attached to one attribute.
type FieldError struct {
	Field   string // attribute name, e.g. "slug"
	Message string // full sentence, e.g. "Slug can't be blank"
}

type AppError struct {
	Err     error        // actual error
	Message string       // Human-readable error message
	Field   string       // Optional: field causing the error
	Details []FieldError // Optional: every field error, for validation failures
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Messages returns the field messages, or the overall message when there are none.
func (e *AppError) Messages() []string {
	if len(e.Details) == 0 {
		return []string{e.Message}
	}
	out := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		out = append(out, d.Message)
	}
	return out
}

// For returns the messages attached to one field.
func (e *AppError) For(field string) []string {
	var out []string
	for _, d := range e.Details {
		if d.Field == field {
			out = append(out, d.Message)
		}
	}
	return out
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
		Details: []FieldError{{Field: field, Message: message}},
	}
}

// Invalid builds a validation error from several field errors.
// Field is set to the first offending attribute.
func Invalid(details []FieldError) *AppError {
	if len(details) == 0 {
		return &AppError{Err: ErrValidation, Message: "validation failed"}
	}
	msgs := make([]string, 0, len(details))
	for _, d := range details {
		msgs = append(msgs, d.Message)
	}
	return &AppError{
		Err:     ErrValidation,
		Message: strings.Join(msgs, "; "),
		Field:   details[0].Field,
		Details: details,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// AsValidation extracts the validation error from err's chain, if any.
func AsValidation(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) && errors.Is(appErr, ErrValidation) {
		return appErr, true
	}
	return nil, false
}
