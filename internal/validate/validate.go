// Package validate checks form input before it is sent to the API.
// It wraps go-playground/validator and turns its errors into the
// messages shown next to each field.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// TagNotBlank rejects strings made only of whitespace.
const TagNotBlank = "notblank"

// FieldError is the message for one invalid field.
type FieldError struct {
	Field   string // json name of the field
	Tag     string // failed rule
	Message string
}

// Errors lists invalid fields in declaration order.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// Field returns the message for the named field, if it is invalid.
func (e Errors) Field(name string) (string, bool) {
	for _, fe := range e {
		if fe.Field == name {
			return fe.Message, true
		}
	}
	return "", false
}

// Messager is implemented by forms that override the default message of a
// rule. Keys are "<field>.<tag>", e.g. "confirmPassword.required".
type Messager interface {
	Messages() map[string]string
}

// Validator validates form structs.
type Validator struct {
	validate *validator.Validate
}

var (
	std     *Validator
	stdOnce sync.Once
)

// Default returns the shared Validator.
func Default() *Validator {
	stdOnce.Do(func() { std = New() })
	return std
}

// Struct validates s with the shared Validator.
func Struct(s interface{}) error {
	return Default().Struct(s)
}

// New creates a Validator.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation(TagNotBlank, notBlank)

	return &Validator{validate: v}
}

// Struct validates s. It returns nil or Errors.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var overrides map[string]string
	if m, ok := s.(Messager); ok {
		overrides = m.Messages()
	}

	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := overrides[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = message(fe, label(t, fe.StructField()))
		}
		out = append(out, FieldError{Field: fe.Field(), Tag: fe.Tag(), Message: msg})
	}
	return out
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func label(t reflect.Type, field string) string {
	if t.Kind() == reflect.Struct {
		if f, ok := t.FieldByName(field); ok {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
		}
	}
	return field
}

func message(fe validator.FieldError, label string) string {
	switch fe.Tag() {
	case "required", TagNotBlank:
		return label + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "eqfield":
		return "Passwords do not match"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, fe.Param())
	default:
		return label + " is invalid"
	}
}
