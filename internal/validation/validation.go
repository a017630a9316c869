// Package validation checks entities before they are saved and turns rule
// failures into field-level apperror details with full-sentence messages
// ("Slug can't be blank").
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sakif/conftrack/internal/apperror"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Validator wraps a configured validator.Validate. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// CastReporter is implemented by entities that remember attribute values they
// could not convert during mass assignment.
type CastReporter interface {
	CastErrors() map[string]string
}

// New returns a Validator with the project's custom tags registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their json name so messages match form attribute names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || slugPattern.MatchString(s)
	})

	return &Validator{validate: v}
}

// Check validates entity and returns an *apperror.AppError wrapping
// apperror.ErrValidation when any rule fails, or nil.
func (v *Validator) Check(entity any) error {
	var details []apperror.FieldError

	if err := v.validate.Struct(entity); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validation: %w", err)
		}
		for _, fe := range verrs {
			details = append(details, apperror.FieldError{
				Field:   fe.Field(),
				Message: v.message(fe),
			})
		}
	}

	if cr, ok := entity.(CastReporter); ok {
		cast := cr.CastErrors()
		names := make([]string, 0, len(cast))
		for name := range cast {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			details = append(details, apperror.FieldError{
				Field:   name,
				Message: v.Humanize(name) + " " + cast[name],
			})
		}
	}

	if len(details) == 0 {
		return nil
	}
	return apperror.Invalid(details)
}

// Humanize turns an attribute name into the label used in messages:
// "event_id" becomes "Event id".
func (v *Validator) Humanize(attr string) string {
	words := strings.Fields(strings.ReplaceAll(attr, "_", " "))
	if len(words) == 0 {
		return ""
	}
	// Casers keep state, so each call gets its own.
	words[0] = cases.Title(language.English).String(words[0])
	return strings.Join(words, " ")
}

func (v *Validator) message(fe validator.FieldError) string {
	label := v.Humanize(fe.Field())

	switch fe.Tag() {
	case "required":
		return label + " can't be blank"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s is too long (maximum is %s characters)", label, fe.Param())
		}
		return fmt.Sprintf("%s must be less than or equal to %s", label, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s is too short (minimum is %s characters)", label, fe.Param())
		}
		return fmt.Sprintf("%s must be greater than or equal to %s", label, fe.Param())
	case "slug":
		return label + " may only contain lowercase letters, digits, '-' and '_'"
	default:
		return label + " is invalid"
	}
}
