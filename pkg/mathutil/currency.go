// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/car-cost-forecast/pkg/constants"
	"github.com/shopspring/decimal"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Halves round away from zero on the shortest decimal representation, so 1.005
// becomes 1.01 rather than falling victim to binary float error.
func Round(val float64) float64 {
	if !IsFinite(val) {
		return val
	}
	return decimal.NewFromFloat(val).Round(constants.DecimalPrecision).InexactFloat64()
}

// IsFinite reports whether a value is neither infinite nor NaN.
func IsFinite(val float64) bool {
	return !math.IsInf(val, 0) && !math.IsNaN(val)
}

// PercentToRate converts a percentage such as 3.5 into the fraction 0.035.
func PercentToRate(percent float64) float64 {
	return percent / constants.PercentageMultiplier
}

// CompoundFactor returns (1 + percent/100)^periods.
func CompoundFactor(percent float64, periods int) float64 {
	if periods == 0 {
		return 1
	}
	return math.Pow(1+PercentToRate(percent), float64(periods))
}
