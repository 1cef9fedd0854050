package testutil

import (
	"testing"

	"github.com/iwvelando/loan-repayments/internal/calculator"
	"github.com/iwvelando/loan-repayments/pkg/loans"
)

func TestFindScenario(t *testing.T) {
	results := []calculator.ScenarioResult{
		{Name: "Scenario A", Result: &loans.Result{Totals: loans.Totals{MonthlyPayment: 1000}}},
		{Name: "Scenario B", Result: &loans.Result{Totals: loans.Totals{MonthlyPayment: 2000}}},
		{Name: "Scenario B", Result: &loans.Result{Totals: loans.Totals{MonthlyPayment: 3000}}},
		{Name: "Scénario ü/ß", Result: &loans.Result{Totals: loans.Totals{MonthlyPayment: 4000}}},
	}

	tests := []struct {
		name        string
		searchName  string
		expectFound bool
		expected    float64
	}{
		{"Find existing scenario A", "Scenario A", true, 1000},
		{"First duplicate wins", "Scenario B", true, 2000},
		{"Special characters", "Scénario ü/ß", true, 4000},
		{"Case sensitive", "scenario a", false, 0},
		{"Non-existent scenario", "Non-existent", false, 0},
		{"Empty name", "", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindScenario(results, tt.searchName)
			if !tt.expectFound {
				if result != nil {
					t.Errorf("Expected nil for %q, got %s", tt.searchName, result.Name)
				}
				return
			}
			if result == nil {
				t.Fatalf("Expected to find scenario %q, got nil", tt.searchName)
			}
			if result.Totals.MonthlyPayment != tt.expected {
				t.Errorf("Expected payment %.2f, got %.2f", tt.expected, result.Totals.MonthlyPayment)
			}
		})
	}
}

func TestFindScenarioEmptyResults(t *testing.T) {
	if FindScenario(nil, "any") != nil {
		t.Error("Expected nil for nil results")
	}
	if FindScenario([]calculator.ScenarioResult{}, "any") != nil {
		t.Error("Expected nil for empty results")
	}
}

func TestFindScenarioReturnsPointer(t *testing.T) {
	results := []calculator.ScenarioResult{{Name: "Test"}}

	found := FindScenario(results, "Test")
	if found == nil {
		t.Fatal("Expected to find scenario")
	}
	found.Cached = true
	if !results[0].Cached {
		t.Error("Expected FindScenario to return a pointer into the slice")
	}
}

func TestCurrencyEqual(t *testing.T) {
	tests := []struct {
		a, b float64
		want bool
	}{
		{100, 100, true},
		{100, 100.005, true},
		{100, 100.02, false},
		{-5, 5, false},
	}
	for _, tt := range tests {
		if got := CurrencyEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("CurrencyEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
