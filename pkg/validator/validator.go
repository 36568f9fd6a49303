package validator

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// ISO8601Layout is the timestamp layout accepted and emitted by the API.
// Offsets are rendered without a colon (e.g. 2021-05-20T06:57:58+0000).
const ISO8601Layout = "2006-01-02T15:04:05-0700"

// Validator is a validator that validates the given struct.
type Validator interface {
	// Validate validates the given struct
	Validate(s any) error
}

type DefaultValidator struct {
	v *validator.Validate
}

// NewDefaultValidator creates a new default validator.
// It returns a new DefaultValidator and an error if the validator registration fails.
func NewDefaultValidator() (*DefaultValidator, error) {
	v := validator.New()

	if err := v.RegisterValidation("iso8601", validateISO8601); err != nil {
		return nil, fmt.Errorf("register iso8601 validator: %w", err)
	}

	return &DefaultValidator{v: v}, nil
}

func (v DefaultValidator) Validate(s any) error {
	return v.v.Struct(s)
}

// IsValidationError checks if the given error is a validation error
func IsValidationError(err error) bool {
	_, ok := err.(validator.ValidationErrors)
	return ok
}

func ValidationErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "uuid4":
		return "must be a valid v4 UUID"
	case "numeric":
		return "must be a numeric string"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "iso8601":
		return "must be an ISO-8601 timestamp"
	default:
		return "is invalid"
	}
}

func validateISO8601(fl validator.FieldLevel) bool {
	_, err := time.Parse(ISO8601Layout, fl.Field().String())
	return err == nil
}
