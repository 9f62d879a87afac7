package validation

import (
	"errors"
	"fmt"

	"github.com/iwvelando/car-cost-forecast/pkg/mathutil"
)

// ValidationError reports a single rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewError builds a ValidationError for the given field.
func NewError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// AsValidationError unwraps err into a *ValidationError if it carries one.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// Finite rejects NaN and infinite values.
func Finite(field string, value float64) error {
	if !mathutil.IsFinite(value) {
		return NewError(field, "value is not a finite number")
	}
	return nil
}

// NonNegative rejects non-finite and negative values.
func NonNegative(field string, value float64) error {
	if err := Finite(field, value); err != nil {
		return err
	}
	if value < 0 {
		return NewError(field, "must not be negative, got %g", value)
	}
	return nil
}

// GreaterThan rejects non-finite values and values at or below the exclusive bound.
func GreaterThan(field string, value, bound float64) error {
	if err := Finite(field, value); err != nil {
		return err
	}
	if value <= bound {
		return NewError(field, "must be greater than %g, got %g", bound, value)
	}
	return nil
}

// IntRange rejects integers outside [min, max].
func IntRange(field string, value, min, max int) error {
	if value < min || value > max {
		return NewError(field, "must be between %d and %d, got %d", min, max, value)
	}
	return nil
}

// First returns the first non-nil error, which keeps field checks readable when a
// caller wants to report only the earliest problem.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
