// Package validation checks form input before any backend call and turns failures
// into per-field messages for inline display.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	domainauth "github.com/debate-club/portal/internal/domain/auth"
)

// Validator wraps go-playground/validator with the portal's tags and field naming.
// Field errors are keyed by the field's JSON name, which is also its form field name.
type Validator struct {
	v *validator.Validate
}

//nolint:gochecknoglobals // read-only label overrides
var fieldLabels = map[string]string{
	"starts_at": "Start time",
	"ends_at":   "End time",
	"cover_url": "Cover image URL",
	"url":       "Image URL",
	"message":   "Message",
	"confirm":   "Password confirmation",
	"user_id":   "Member",
}

// New returns a Validator with the club_role tag registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	if err := v.RegisterValidation("club_role", validateClubRole); err != nil {
		panic(fmt.Sprintf("register club_role validation: %v", err))
	}
	return &Validator{v: v}
}

// Struct validates s and returns field name to message, or nil when s is valid.
func (val *Validator) Struct(s any) map[string]string {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return map[string]string{"_": "Invalid input."}
	}
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		name := fe.Field()
		if _, seen := out[name]; !seen {
			out[name] = message(fe)
		}
	}
	return out
}

// Var validates a single value against tag and returns the message for label, or "".
func (val *Validator) Var(label string, value any, tag string) string {
	err := val.v.Var(value, tag)
	if err == nil {
		return ""
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return messageFor(label, ve[0])
	}
	return label + " is invalid."
}

func validateClubRole(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	_, ok := domainauth.ParseRole(fl.Field().String())
	return ok
}

// fieldName reports a struct field by its JSON name, or its snake_case Go name when the
// field is not serialized.
func fieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name != "" && name != "-" {
		return name
	}
	return snake(f.Name)
}

func snake(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Label returns the display label for a field name.
func Label(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	words := strings.ReplaceAll(field, "_", " ")
	if words == "" {
		return "Value"
	}
	r := []rune(words)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func message(fe validator.FieldError) string {
	return messageFor(Label(fe.Field()), fe)
}

func messageFor(label string, fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "email":
		return "Enter a valid email address."
	case "url", "http_url":
		return "Enter a valid URL."
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s cannot exceed %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s cannot exceed %s.", label, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s.", label, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s.", label, fe.Param())
	case "eqfield":
		if fe.Param() == "Password" {
			return "Passwords do not match."
		}
		return fmt.Sprintf("%s must match %s.", label, Label(snake(fe.Param())))
	case "gtfield":
		return fmt.Sprintf("%s must be after %s.", label, strings.ToLower(Label(snake(fe.Param()))))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "club_role":
		return "Choose a valid role."
	case "e164|numeric":
		return "Enter a valid phone number."
	default:
		return label + " is invalid."
	}
}
