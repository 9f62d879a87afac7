// Package projection turns the vehicle inputs and a monthly loan payment into a
// month-by-month cost breakdown and lifetime totals.
//
// Each MonthlyCostBreakdown share is rounded to cents and its Total is the sum
// of those rounded shares. Lifetime totals are accumulated in full precision
// and rounded once when the summary is returned, so TotalLifetimeCost can differ
// by a few cents from the sum of the monthly Total fields. The balloon payment
// is never part of a monthly Total but is counted once in the financing total.
package projection

import (
	"iter"

	"github.com/iwvelando/car-cost-forecast/pkg/constants"
	"github.com/iwvelando/car-cost-forecast/pkg/costmodel"
	"github.com/iwvelando/car-cost-forecast/pkg/mathutil"
	"github.com/iwvelando/car-cost-forecast/pkg/validation"
)

// FieldMonthlyPayment names the payment argument in validation errors.
const FieldMonthlyPayment = "monthlyPayment"

// month holds the unrounded values of a single projected month.
type month struct {
	number           int
	financingDisplay float64
	financingActual  float64
	operation        float64
	insurance        float64
	fuel             float64
}

func (m month) breakdown() costmodel.MonthlyCostBreakdown {
	b := costmodel.MonthlyCostBreakdown{
		Month:     m.number,
		Financing: mathutil.Round(m.financingDisplay),
		Operation: mathutil.Round(m.operation),
		Insurance: mathutil.Round(m.insurance),
		Fuel:      mathutil.Round(m.fuel),
	}
	b.Total = mathutil.Round(b.Financing + b.Operation + b.Insurance + b.Fuel)
	return b
}

func months(v costmodel.Vehicle, plan costmodel.FinancingPlan, ins costmodel.InsurancePolicy, usage costmodel.UsageProfile, monthlyPayment float64) iter.Seq[month] {
	return func(yield func(month) bool) {
		financedMonths := plan.DurationMonths()
		kmPerMonth := usage.KmPerMonth()
		for m := 1; m <= usage.LifetimeMonths(); m++ {
			factor := usage.InflationFactor(m)

			current := month{number: m}
			if m <= financedMonths {
				current.financingDisplay = monthlyPayment
			}
			current.financingActual = current.financingDisplay
			if m == financedMonths && plan.BalloonPayment > 0 {
				current.financingActual += plan.BalloonPayment
			}

			current.operation = v.MonthlyRunningCost * factor
			current.insurance = ins.MonthlyCost() * factor
			if v.FuelConsumptionPer100km > 0 && kmPerMonth > 0 {
				current.fuel = kmPerMonth / constants.KilometerBasis * v.FuelConsumptionPer100km * (usage.FuelPricePerLiter * factor)
			}

			if !yield(current) {
				return
			}
		}
	}
}

// Months lazily yields the monthly breakdowns of a projection. Inputs are not
// validated; call Validate first when they come from outside the process.
func Months(v costmodel.Vehicle, plan costmodel.FinancingPlan, ins costmodel.InsurancePolicy, usage costmodel.UsageProfile, monthlyPayment float64) iter.Seq[costmodel.MonthlyCostBreakdown] {
	return func(yield func(costmodel.MonthlyCostBreakdown) bool) {
		for m := range months(v, plan, ins, usage, monthlyPayment) {
			if !yield(m.breakdown()) {
				return
			}
		}
	}
}

// Validate checks the projection inputs and the monthly payment.
func Validate(v costmodel.Vehicle, plan costmodel.FinancingPlan, ins costmodel.InsurancePolicy, usage costmodel.UsageProfile, monthlyPayment float64) error {
	if err := costmodel.ValidateInputs(v, plan, ins, usage); err != nil {
		return err
	}
	return validation.NonNegative(FieldMonthlyPayment, monthlyPayment)
}

// Project computes the full lifetime cost summary.
func Project(v costmodel.Vehicle, plan costmodel.FinancingPlan, ins costmodel.InsurancePolicy, usage costmodel.UsageProfile, monthlyPayment float64) (costmodel.LifetimeCostSummary, error) {
	if err := Validate(v, plan, ins, usage, monthlyPayment); err != nil {
		return costmodel.LifetimeCostSummary{}, err
	}

	summary := costmodel.LifetimeCostSummary{
		MonthlyPayment:    mathutil.Round(monthlyPayment),
		MonthlyBreakdowns: make([]costmodel.MonthlyCostBreakdown, 0, usage.LifetimeMonths()),
	}

	var totals costmodel.ComponentTotals
	for m := range months(v, plan, ins, usage, monthlyPayment) {
		summary.MonthlyBreakdowns = append(summary.MonthlyBreakdowns, m.breakdown())
		totals.Financing += m.financingActual
		totals.Operation += m.operation
		totals.Insurance += m.insurance
		totals.Fuel += m.fuel
	}

	summary.TotalLifetimeCost = mathutil.Round(totals.Sum())
	summary.ComponentTotals = costmodel.ComponentTotals{
		Financing: mathutil.Round(totals.Financing),
		Operation: mathutil.Round(totals.Operation),
		Insurance: mathutil.Round(totals.Insurance),
		Fuel:      mathutil.Round(totals.Fuel),
	}
	return summary, nil
}
