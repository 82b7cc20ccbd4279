// Package validation checks primitive values against validator tags and
// reports failures as apperror validation errors.
package validation

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"tenantpress/internal/core/apperror"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the process-wide validator.
// gin's binding engine uses its own instance with the same tag syntax.
func Validator() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
	})
	return instance
}

// Var validates a single value against tag, naming field in the error.
// String lengths are counted in runes.
func Var(field string, value any, tag string) error {
	err := Validator().Var(value, tag)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperror.NewFieldValidation(field, describe(fe)).
			WithDetail("rule", fe.Tag()).
			WithCause(err)
	}
	return apperror.NewFieldValidation(field, err.Error()).WithCause(err)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
}
