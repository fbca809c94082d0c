// Package validation checks user input structs using validator/v10 tags.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid is matched by every error Validate returns for bad input.
var ErrInvalid = errors.New("invalid input")

// Error lists the offending fields, keyed by their JSON name.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + " " + e.Fields[name]
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *Error) Unwrap() error { return ErrInvalid }

// Validator wraps go-playground/validator and reports fields by JSON tag.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return &Validator{v: v}
}

// Validate checks s and returns an *Error describing every failed field.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &Error{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields[fieldPath(fe)] = friendlyMessage(fe)
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace, so nested
// fields read as "responses[0].text".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at least %s entries", e.Param())
		}
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "printascii":
		return "must contain printable characters only"
	case "excludesall":
		return "contains characters that are not allowed"
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "is invalid"
	}
}
