// Package loans provides the fixed-rate amortization math used to finance a
// vehicle purchase, including balloon payments.
package loans

import (
	"fmt"
	"math"

	"github.com/iwvelando/car-cost-forecast/pkg/constants"
	"github.com/iwvelando/car-cost-forecast/pkg/costmodel"
	"github.com/iwvelando/car-cost-forecast/pkg/mathutil"
	"github.com/iwvelando/car-cost-forecast/pkg/validation"
	"go.uber.org/zap"
)

// Payment holds the values for a given month of the loan.
type Payment struct {
	Month              int     `json:"month"`
	Payment            float64 `json:"payment"`
	Principal          float64 `json:"principal"`
	Interest           float64 `json:"interest"`
	Balloon            float64 `json:"balloon,omitempty"`
	RemainingPrincipal float64 `json:"remainingPrincipal"`
}

// CalculateMonthlyPayment calculates the fixed monthly installment for a loan of
// principal over termYears at annualInterestRate percent. A balloon payment due
// with the last installment is discounted to present value and removed from the
// amortized amount; settling it is left to the caller.
func CalculateMonthlyPayment(principal, annualInterestRate float64, termYears int, balloonPayment float64) (float64, error) {
	if termYears <= 0 || principal < 0 {
		return 0, nil
	}
	if err := validation.First(
		validation.IntRange(costmodel.FieldFinancingYears, termYears, 0, constants.MaxYears),
		validation.Finite(costmodel.FieldPurchasePrice, principal),
		validation.NonNegative(costmodel.FieldInterestRate, annualInterestRate),
		validation.NonNegative(costmodel.FieldBalloonPayment, balloonPayment),
	); err != nil {
		return 0, err
	}

	periodicInterestRate := MonthlyRate(annualInterestRate)
	termMonths := termYears * constants.MonthsPerYear

	if termMonths == 0 {
		if principal <= balloonPayment {
			return 0, nil
		}
		return 0, &UnaffordableTermError{Principal: principal, BalloonPayment: balloonPayment}
	}

	effectivePrincipal := principal
	if balloonPayment > 0 {
		effectivePrincipal -= PresentValue(balloonPayment, periodicInterestRate, termMonths)
	}
	if effectivePrincipal <= 0 {
		return 0, nil
	}

	if periodicInterestRate == 0 {
		// For zero interest, simply divide the principal by term
		return normalize(effectivePrincipal / float64(termMonths)), nil
	}

	power := math.Pow(1.00+periodicInterestRate, float64(termMonths))
	overflow := &NumericOverflowError{AnnualInterestRate: annualInterestRate, TermMonths: termMonths}
	if math.IsInf(power, 0) || math.IsNaN(power) || power-1.00 == 0 {
		return 0, overflow
	}
	payment := effectivePrincipal * periodicInterestRate * power / (power - 1.00)
	if !mathutil.IsFinite(payment) {
		return 0, overflow
	}
	return normalize(payment), nil
}

// MonthlyRate converts an annual percentage rate into the monthly fraction.
func MonthlyRate(annualInterestRate float64) float64 {
	return annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// PresentValue discounts an amount due after the given number of months. An
// overflowing discount factor drives the present value to 0.
func PresentValue(amount, monthlyRate float64, months int) float64 {
	if monthlyRate <= 0 {
		return amount
	}
	return amount / math.Pow(1+monthlyRate, float64(months))
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, annualInterestRate float64) float64 {
	return remainingPrincipal * MonthlyRate(annualInterestRate)
}

func normalize(payment float64) float64 {
	if payment < constants.NegligiblePayment {
		return 0
	}
	return payment
}

// LoanConfig represents loan configuration parameters
type LoanConfig struct {
	Name           string
	Principal      float64
	InterestRate   float64
	TermYears      int
	BalloonPayment float64
}

// LoanConfigFromPlan builds a LoanConfig financing the vehicle's purchase price.
func LoanConfigFromPlan(name string, vehicle costmodel.Vehicle, plan costmodel.FinancingPlan) *LoanConfig {
	return &LoanConfig{
		Name:           name,
		Principal:      vehicle.PurchasePrice,
		InterestRate:   plan.AnnualInterestRatePercent,
		TermYears:      plan.DurationYears,
		BalloonPayment: plan.BalloonPayment,
	}
}

// AmortizationScheduleGenerator provides utilities for generating loan amortization schedules
type AmortizationScheduleGenerator struct {
	logger *zap.Logger
}

// NewAmortizationScheduleGenerator creates a new generator instance
func NewAmortizationScheduleGenerator(logger *zap.Logger) *AmortizationScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmortizationScheduleGenerator{logger: logger}
}

// GenerateSchedule creates a complete amortization schedule for a loan. The last
// installment also settles the balloon payment, leaving no remaining principal.
func (g *AmortizationScheduleGenerator) GenerateSchedule(loan *LoanConfig) ([]Payment, error) {
	if loan == nil {
		return nil, fmt.Errorf("loan cannot be nil")
	}

	monthlyPayment, err := CalculateMonthlyPayment(loan.Principal, loan.InterestRate, loan.TermYears, loan.BalloonPayment)
	if err != nil {
		return nil, err
	}

	termMonths := loan.TermYears * constants.MonthsPerYear
	if termMonths <= 0 || loan.Principal <= 0 {
		g.logger.Debug(fmt.Sprintf("loan %s has no installments", loan.Name),
			zap.String("op", "loans.GenerateSchedule"),
		)
		return nil, nil
	}

	schedule := make([]Payment, 0, termMonths)
	remaining := loan.Principal
	for month := 1; month <= termMonths; month++ {
		var current Payment
		current.Month = month
		current.Payment = monthlyPayment
		current.Interest = CalculateInterestPayment(remaining, loan.InterestRate)
		current.Principal = monthlyPayment - current.Interest

		if month == termMonths {
			// We will get machine error otherwise so just settle whatever is left.
			if loan.BalloonPayment > 0 {
				current.Balloon = loan.BalloonPayment
				current.Payment += loan.BalloonPayment
				g.logger.Debug(fmt.Sprintf("month %d: settling balloon payment %.2f for loan %s",
					month, loan.BalloonPayment, loan.Name),
					zap.String("op", "loans.GenerateSchedule"),
				)
			}
			current.Principal = remaining
			current.RemainingPrincipal = 0
		} else {
			current.RemainingPrincipal = remaining - current.Principal
		}

		schedule = append(schedule, current)
		remaining = current.RemainingPrincipal
	}

	g.logger.Debug(fmt.Sprintf("generated %d installments of %.2f for loan %s",
		len(schedule), monthlyPayment, loan.Name),
		zap.String("op", "loans.GenerateSchedule"),
	)
	return schedule, nil
}

// ScheduleTotals sums the amounts paid and the interest share of a schedule.
func ScheduleTotals(schedule []Payment) (totalPaid, totalInterest float64) {
	for _, payment := range schedule {
		totalPaid += payment.Payment
		totalInterest += payment.Interest
	}
	return mathutil.Round(totalPaid), mathutil.Round(totalInterest)
}
