// Package configprocessor provides shared configuration processing utilities.
package configprocessor

import (
	"fmt"

	"github.com/iwvelando/loan-repayments/pkg/currency"
)

// ScenarioInfo represents scenario configuration information
type ScenarioInfo struct {
	Name      string
	Active    bool
	HomeValue float64
	Deposit   float64
	Currency  string
}

// Processor handles configuration processing and validation
type Processor struct{}

// NewProcessor creates a new configuration processor
func NewProcessor() *Processor {
	return &Processor{}
}

// ValidateConfiguration inspects the scenarios and returns warnings for
// settings that are accepted but probably unintended.
func (p *Processor) ValidateConfiguration(defaultCurrency string, scenarios []ScenarioInfo) []string {
	var warnings []string

	if _, err := currency.Lookup(defaultCurrency); defaultCurrency != "" && err != nil {
		warnings = append(warnings, fmt.Sprintf("Default currency '%s' is not supported", defaultCurrency))
	}

	seen := make(map[string]bool)
	active := 0
	for _, scenario := range scenarios {
		if seen[scenario.Name] {
			warnings = append(warnings, fmt.Sprintf("Scenario name '%s' is used more than once", scenario.Name))
		}
		seen[scenario.Name] = true

		if !scenario.Active {
			continue // Skip inactive scenarios
		}
		active++

		if scenario.Deposit > scenario.HomeValue {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' deposit (%.2f) exceeds home value (%.2f); the payment will be negative",
				scenario.Name, scenario.Deposit, scenario.HomeValue))
		}
		if scenario.Currency != "" {
			if _, err := currency.Lookup(scenario.Currency); err != nil {
				warnings = append(warnings, fmt.Sprintf("Scenario '%s' currency '%s' is not supported", scenario.Name, scenario.Currency))
			}
		}
	}

	if len(scenarios) > 0 && active == 0 {
		warnings = append(warnings, "No active scenarios; nothing will be calculated")
	}

	if len(warnings) == 0 {
		return nil
	}
	return warnings
}
