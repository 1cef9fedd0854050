// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/loan-repayments/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for display and for making logical comparisons, never inside the
// amortization engine.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// IsFinite reports whether val is neither NaN nor an infinity.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// CeilDiv returns ceil(a / b) for positive b.
func CeilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// FromPercentage converts a percentage such as 5.5 into a fraction such as 0.055.
func FromPercentage(percentage float64) float64 {
	return percentage / constants.PercentageMultiplier
}
