// Package validation checks request payloads against declarative rule tables
// and reports every violated field at once.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field limits shared by the rule tables.
const (
	UsernameMinLen    = 3
	UsernameMaxLen    = 100
	PasswordMinLen    = 8
	PasswordMaxBytes  = 72 // bcrypt input limit
	MovieNameMaxLen   = 150
	DirectorMaxLen    = 100
	GenreMaxLen       = 50
	EarliestFilmYear  = 1888
	bcryptLengthTag   = "bcryptlen"
	nonBlankStringTag = "notblank"
)

// Violation describes one invalid field.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the set of violations for one payload. It is returned as an error.
type Errors []Violation

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, v := range e {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsErrors extracts validation errors from err.
func AsErrors(err error) (Errors, bool) {
	var ve Errors
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// rule binds a value to a validator tag string.
type rule struct {
	field string
	value any
	tag   string
}

// Validator runs rule tables through a go-playground validator instance.
// It is safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation(bcryptLengthTag, func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= PasswordMaxBytes
	})
	_ = v.RegisterValidation(nonBlankStringTag, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return &Validator{v: v}
}

// check evaluates rules in order and collects one violation per failing field.
func (val *Validator) check(rules []rule) error {
	var out Errors
	for _, r := range rules {
		err := val.v.Var(r.value, r.tag)
		if err == nil {
			continue
		}
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate %s: %w", r.field, err)
		}
		for _, fe := range fieldErrs {
			out = append(out, Violation{Field: r.field, Message: message(fe)})
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required", nonBlankStringTag:
		return "is required"
	case "min":
		if isString && fe.Param() == "1" {
			return "must not be empty"
		}
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "http_url":
		return "must be a valid http or https URL"
	case bcryptLengthTag:
		return fmt.Sprintf("must be at most %d bytes", PasswordMaxBytes)
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}
