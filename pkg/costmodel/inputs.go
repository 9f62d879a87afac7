// Package costmodel defines the immutable value types exchanged between the
// amortization engine, the cost projector and their callers.
package costmodel

import (
	"github.com/iwvelando/car-cost-forecast/pkg/constants"
	"github.com/iwvelando/car-cost-forecast/pkg/mathutil"
	"github.com/iwvelando/car-cost-forecast/pkg/validation"
)

// Field names used in validation errors and in persisted parameter records.
const (
	FieldPurchasePrice       = "purchasePrice"
	FieldMonthlyRunningCost  = "monthlyRunningCost"
	FieldFuelConsumption     = "fuelConsumption"
	FieldInterestRate        = "interestRate"
	FieldFinancingYears      = "financingYears"
	FieldBalloonPayment      = "balloonPayment"
	FieldInsuranceAnnualCost = "insuranceAnnualCost"
	FieldKmPerYear           = "kmPerYear"
	FieldFuelPrice           = "fuelPrice"
	FieldLifetimeYears       = "lifetimeYears"
	FieldInflationPercent    = "inflationPercent"
)

// Vehicle describes the car being evaluated.
type Vehicle struct {
	PurchasePrice           float64
	MonthlyRunningCost      float64
	FuelConsumptionPer100km float64
}

// Validate checks that all vehicle figures are finite and non-negative.
func (v Vehicle) Validate() error {
	return validation.First(
		validation.NonNegative(FieldPurchasePrice, v.PurchasePrice),
		validation.NonNegative(FieldMonthlyRunningCost, v.MonthlyRunningCost),
		validation.NonNegative(FieldFuelConsumption, v.FuelConsumptionPer100km),
	)
}

// FinancingPlan describes a fixed-rate loan on the purchase price.
type FinancingPlan struct {
	AnnualInterestRatePercent float64
	DurationYears             int
	BalloonPayment            float64
}

// Validate checks the financing plan. A balloon larger than the purchase price is
// allowed here; it only produces a configuration warning.
func (f FinancingPlan) Validate() error {
	return validation.First(
		validation.NonNegative(FieldInterestRate, f.AnnualInterestRatePercent),
		validation.IntRange(FieldFinancingYears, f.DurationYears, 0, constants.MaxYears),
		validation.NonNegative(FieldBalloonPayment, f.BalloonPayment),
	)
}

// DurationMonths is the number of regular installments.
func (f FinancingPlan) DurationMonths() int {
	return f.DurationYears * constants.MonthsPerYear
}

// InsurancePolicy holds the yearly insurance premium.
type InsurancePolicy struct {
	AnnualCost float64
}

// Validate checks that the premium is finite and non-negative.
func (i InsurancePolicy) Validate() error {
	return validation.NonNegative(FieldInsuranceAnnualCost, i.AnnualCost)
}

// MonthlyCost spreads the annual premium evenly over twelve months.
func (i InsurancePolicy) MonthlyCost() float64 {
	return i.AnnualCost / constants.MonthsPerYear
}

// UsageProfile describes how the vehicle is driven and for how long it is kept.
type UsageProfile struct {
	KmPerYear                     float64
	FuelPricePerLiter             float64
	LifetimeYears                 int
	OperatingCostInflationPercent float64
}

// Validate checks the usage profile. Inflation may be negative (deflation) but
// must stay above -100% so the yearly factor remains positive.
func (u UsageProfile) Validate() error {
	return validation.First(
		validation.NonNegative(FieldKmPerYear, u.KmPerYear),
		validation.NonNegative(FieldFuelPrice, u.FuelPricePerLiter),
		validation.IntRange(FieldLifetimeYears, u.LifetimeYears, 1, constants.MaxYears),
		validation.GreaterThan(FieldInflationPercent, u.OperatingCostInflationPercent, constants.MinInflationPercent),
	)
}

// KmPerMonth is the yearly distance spread over twelve months.
func (u UsageProfile) KmPerMonth() float64 {
	if u.KmPerYear <= 0 {
		return 0
	}
	return u.KmPerYear / constants.MonthsPerYear
}

// LifetimeMonths is the number of months projected.
func (u UsageProfile) LifetimeMonths() int {
	return u.LifetimeYears * constants.MonthsPerYear
}

// InflationFactor returns the price multiplier for a 1-based month. Inflation
// compounds once per completed 12-month block, so months 1-12 use 1.0.
func (u UsageProfile) InflationFactor(month int) float64 {
	if month < 1 {
		return 1
	}
	yearIndex := (month - 1) / constants.MonthsPerYear
	return mathutil.CompoundFactor(u.OperatingCostInflationPercent, yearIndex)
}
