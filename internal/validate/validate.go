// Package validate turns request-binding failures into ordered field-level
// error descriptors. Rule sets are declared as binding tags on the request
// structs; this package only translates the outcome, so validation never
// panics and always reports every failed field, not just the first.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Fields converts a binding error into field errors in declaration order.
// Errors that are not validator failures (malformed JSON, wrong types)
// become a single body-level error.
func Fields(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "body", Message: "Invalid request body"}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   jsonName(fe.Field()),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	name := displayName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "email":
		return "Enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", name, fe.Param())
	case "gt":
		if fe.Param() == "0" {
			return fmt.Sprintf("%s must be a positive number", name)
		}
		return fmt.Sprintf("%s must be greater than %s", name, fe.Param())
	case "oneof":
		opts := strings.Fields(fe.Param())
		if len(opts) == 2 {
			return fmt.Sprintf("%s must be either %q or %q", name, opts[0], opts[1])
		}
		return fmt.Sprintf("%s must be one of %s", name, strings.Join(opts, ", "))
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}

// jsonName maps a Go struct field name to its JSON spelling, e.g.
// "EntryPrice" -> "entryPrice".
func jsonName(field string) string {
	if field == "" {
		return field
	}
	r := []rune(field)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// displayName renders a field name for humans, e.g. "EntryPrice" ->
// "Entry price".
func displayName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
