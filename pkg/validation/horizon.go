package validation

import "fmt"

// ValidateFinancingHorizon warns when the financing term outlasts the planned
// holding period; months past the lifetime are never projected, so a balloon
// payment would never show up in the totals.
func ValidateFinancingHorizon(name string, financingYears, lifetimeYears int) string {
	if financingYears > lifetimeYears {
		return fmt.Sprintf("Scenario '%s' finances for %d years but is only held for %d - payments after year %d and any balloon are not projected",
			name, financingYears, lifetimeYears, lifetimeYears)
	}
	return ""
}

// ValidateBalloon warns when the balloon payment exceeds the purchase price.
// Installments still amortize whatever the discounted balloon leaves of the
// price, so they only drop to 0 when the rate is 0.
func ValidateBalloon(name string, balloonPayment, purchasePrice float64) string {
	if balloonPayment > purchasePrice {
		return fmt.Sprintf("Scenario '%s' balloon payment %.2f exceeds purchase price %.2f - regular installments only cover the price less the balloon's present value",
			name, balloonPayment, purchasePrice)
	}
	return ""
}
