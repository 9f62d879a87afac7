package projection

import (
	"errors"

	"github.com/iwvelando/car-cost-forecast/pkg/loans"
	"github.com/iwvelando/car-cost-forecast/pkg/validation"
)

// Error kinds reported by ErrorKind.
const (
	KindValidation       = "validation"
	KindUnaffordableTerm = "unaffordable_term"
	KindNumericOverflow  = "numeric_overflow"
	KindInternal         = "internal"
)

// ErrorKind classifies an error returned by the projection core. A nil error
// has no kind.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	if _, ok := validation.AsValidationError(err); ok {
		return KindValidation
	}
	var unaffordable *loans.UnaffordableTermError
	if errors.As(err, &unaffordable) {
		return KindUnaffordableTerm
	}
	var overflow *loans.NumericOverflowError
	if errors.As(err, &overflow) {
		return KindNumericOverflow
	}
	return KindInternal
}
