// Package validation wraps go-playground/validator for the usecase layer.
package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "gas-booking-service/pkg/errors"
)

// New returns a validator configured for request structs.
func New() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// Struct validates s and converts any failure into a ValidationError whose
// message lists every offending field, e.g. "Name is required, Phone is required".
func Struct(v *validator.Validate, s any) error {
	if err := v.Struct(s); err != nil {
		return Format(err)
	}
	return nil
}

// Format converts validator.ValidationErrors into a human-readable ValidationError.
func Format(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email", e.Field()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}

	field := ""
	if len(validationErrors) == 1 {
		field = validationErrors[0].Field()
	}
	return apperrors.NewValidationError(field, strings.Join(messages, ", "))
}
