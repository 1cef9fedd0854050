// Package output provides utilities for formatting and displaying loan
// calculation results.
package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/iwvelando/loan-repayments/internal/calculator"
	"github.com/iwvelando/loan-repayments/pkg/format"
	"github.com/iwvelando/loan-repayments/pkg/mathutil"
)

const barWidth = 40

// PrettyFormat outputs a human-readable summary and yearly chart per scenario.
func PrettyFormat(w io.Writer, results []calculator.ScenarioResult) {
	for i, result := range results {
		symbol := result.Currency.Symbol
		fmt.Fprintf(w, "--- Results for scenario %s (%s) ---\n", result.Name, result.Currency.Code)
		fmt.Fprintf(w, "Home Value: %s | Deposit: %s | Loan Amount: %s\n",
			format.WholeCurrency(result.HomeValue, symbol),
			format.WholeCurrency(result.Deposit, symbol),
			format.WholeCurrency(result.Inputs.Principal, symbol))
		fmt.Fprintf(w, "Monthly Repayments: %s\n", format.Currency(result.Totals.MonthlyPayment, symbol))
		fmt.Fprintf(w, "Total Repayments:   %s\n", format.WholeCurrency(result.Totals.TotalPaid, symbol))
		fmt.Fprintf(w, "Total Interest:     %s\n", format.WholeCurrency(result.Totals.TotalInterest, symbol))
		fmt.Fprintf(w, "\n")

		chart := BuildYearlyChart(result.Result, symbol)
		maxBalance := 0.0
		for _, bar := range chart.Bars {
			maxBalance = math.Max(maxBalance, math.Abs(bar.RemainingBalance))
		}

		fmt.Fprintf(w, "Year | Remaining Balance | Interest Remaining | Repayment Remaining |\n")
		fmt.Fprintf(w, "____ | _________________ | __________________ | ___________________ |\n")
		for _, bar := range chart.Bars {
			fmt.Fprintf(w, "%4d | %17s | %18s | %19s | %s\n",
				bar.Year,
				format.Currency(bar.RemainingBalance, symbol),
				format.TruncatedCurrency(bar.InterestRemaining, symbol),
				format.TruncatedCurrency(bar.RepaymentRemaining, symbol),
				strings.Repeat("#", barLength(bar.RemainingBalance, maxBalance)))
		}
		if i < len(results)-1 {
			fmt.Fprintf(w, "\n")
		}
	}
}

func barLength(value, largest float64) int {
	if largest == 0 {
		return 0
	}
	return int(math.Round(math.Abs(value) / largest * barWidth))
}

var csvHeader = []string{"Scenario", "Currency", "Month", "Date", "Payment", "Principal", "Interest", "Remaining Balance", "Total Interest Paid", "Year"}

// CsvFormat outputs the full monthly schedule of every scenario in
// comma-separated value format. Amounts are rounded to cents.
func CsvFormat(w io.Writer, results []calculator.ScenarioResult) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, result := range results {
		for _, period := range result.Schedule {
			record := []string{
				result.Name,
				result.Currency.Code,
				strconv.Itoa(period.Index),
				period.Date,
				cents(period.Payment),
				cents(period.Principal),
				cents(period.Interest),
				cents(period.RemainingBalance),
				cents(period.CumulativeInterest),
				strconv.Itoa(period.Year),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// CsvString returns the CSV representation of the results.
func CsvString(results []calculator.ScenarioResult) string {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, results); err != nil {
		return ""
	}
	return buf.String()
}

func cents(val float64) string {
	s := strconv.FormatFloat(mathutil.Round(val), 'f', 2, 64)
	if s == "-0.00" {
		return "0.00"
	}
	return s
}
