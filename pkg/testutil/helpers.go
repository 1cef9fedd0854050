// Package testutil provides common utility functions for testing.
package testutil

import (
	"math"

	"github.com/iwvelando/loan-repayments/internal/calculator"
	"github.com/iwvelando/loan-repayments/pkg/constants"
)

// FindScenario finds a scenario by name in the results slice.
// Returns a pointer to the result if found, nil otherwise.
func FindScenario(results []calculator.ScenarioResult, name string) *calculator.ScenarioResult {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// CurrencyEqual reports whether two amounts agree to the cent.
func CurrencyEqual(a, b float64) bool {
	return math.Abs(a-b) <= constants.CurrencyTolerance
}
