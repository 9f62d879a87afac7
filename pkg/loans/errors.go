package loans

import "fmt"

// UnaffordableTermError means the term resolves to zero installments while the
// principal still exceeds the balloon payment, so the loan cannot be settled.
type UnaffordableTermError struct {
	Principal      float64
	BalloonPayment float64
}

func (e *UnaffordableTermError) Error() string {
	return fmt.Sprintf("unaffordable term: no installments to repay principal %.2f above balloon payment %.2f",
		e.Principal, e.BalloonPayment)
}

// NumericOverflowError means the amortization formula left the representable
// floating point range for the given rate and term.
type NumericOverflowError struct {
	AnnualInterestRate float64
	TermMonths         int
}

func (e *NumericOverflowError) Error() string {
	return fmt.Sprintf("numeric overflow computing payment for %g%% over %d months",
		e.AnnualInterestRate, e.TermMonths)
}
