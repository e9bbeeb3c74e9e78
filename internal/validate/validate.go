// Package validate holds the gateway-side form rules. Validation
// failures are resolved locally: a form that fails here never reaches
// the backend.
package validate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldState tracks a field through the render cycle:
// Untouched (never submitted) -> Invalid (rule violated, message set)
// -> Valid. The renderer shows the message and an error marker only in
// the Invalid state.
type FieldState int

const (
	Untouched FieldState = iota
	Invalid
	Valid
)

type Field struct {
	State   FieldState
	Message string
}

func (f Field) IsInvalid() bool { return f.State == Invalid }

var v = validator.New()

// fieldMessage converts a single rule violation into the message the
// page shows next to the field.
func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch field {
	case "latitude":
		if fe.Tag() == "gte" || fe.Tag() == "lte" {
			return "latitude must be between -90 and 90"
		}
	case "longitude":
		if fe.Tag() == "gte" || fe.Tag() == "lte" {
			return "longitude must be between -180 and 180"
		}
	case "rating":
		if fe.Tag() == "gte" || fe.Tag() == "lte" {
			return "rating must be between 1 and 5"
		}
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

// parseNumber parses a form value as a float, tolerating a decimal
// comma. ok is false for empty input.
func parseNumber(raw string) (float64, bool, error) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if s == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, true, err
}
