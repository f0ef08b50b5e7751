package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// FieldViolation describes a single failed field for response shaping
type FieldViolation struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// ValidateStruct validates a struct using go-playground/validator
func ValidateStruct(s interface{}) error {
	if s == nil {
		return nil
	}

	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return fmt.Errorf("validator: expected a struct, got %T", s)
	}

	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	if ve, ok := err.(validator.ValidationErrors); ok {
		msgs := make([]string, 0, len(ve))
		for _, e := range ve {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed validation: %s", fieldName(e), e.Tag()))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return fmt.Errorf("validation failed: %w", err)
}

// Violations validates a struct and returns per-field details instead of a
// joined error message.
func Violations(s interface{}) []FieldViolation {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldViolation{{Field: "", Tag: "invalid", Message: err.Error()}}
	}

	out := make([]FieldViolation, 0, len(ve))
	for _, e := range ve {
		out = append(out, FieldViolation{
			Field:   fieldName(e),
			Tag:     e.Tag(),
			Message: violationMessage(e),
		})
	}
	return out
}

func violationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fieldName(e))
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fieldName(e))
	case "min":
		return fmt.Sprintf("%s must be at least %s", fieldName(e), e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fieldName(e), e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fieldName(e), e.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fieldName(e), e.Tag())
	}
}

// fieldName prefers the json tag name over the Go struct field name
func fieldName(e validator.FieldError) string {
	return strings.ToLower(e.Field())
}
