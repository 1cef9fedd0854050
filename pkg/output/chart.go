package output

import (
	"fmt"

	"github.com/iwvelando/loan-repayments/pkg/format"
	"github.com/iwvelando/loan-repayments/pkg/loans"
)

// ChartBar is one year of the payment schedule chart.
type ChartBar struct {
	Year               int     `json:"year"`
	RemainingBalance   float64 `json:"remainingBalance"`
	InterestPaid       float64 `json:"interestPaid"`
	InterestRemaining  float64 `json:"interestRemaining"`
	RepaymentRemaining float64 `json:"repaymentRemaining"`
	HoverText          string  `json:"hoverText"`
}

// Chart is the yearly remaining-balance bar chart.
type Chart struct {
	Title      string     `json:"title"`
	XAxisTitle string     `json:"xAxisTitle"`
	YAxisTitle string     `json:"yAxisTitle"`
	Bars       []ChartBar `json:"bars"`
}

// BuildYearlyChart turns the yearly summaries into chart bars. The interest
// still to pay is measured against the loan's total interest.
func BuildYearlyChart(result *loans.Result, symbol string) Chart {
	chart := Chart{
		Title:      "Payment Schedule by Year",
		XAxisTitle: "Year",
		YAxisTitle: fmt.Sprintf("Amount (%s)", symbol),
		Bars:       make([]ChartBar, 0, len(result.YearlySummaries)),
	}

	for _, summary := range result.YearlySummaries {
		interestRemaining := result.Totals.TotalInterest - summary.MaxCumulativeInterest
		repaymentRemaining := summary.MinRemainingBalance + interestRemaining
		chart.Bars = append(chart.Bars, ChartBar{
			Year:               summary.Year,
			RemainingBalance:   summary.MinRemainingBalance,
			InterestPaid:       summary.MaxCumulativeInterest,
			InterestRemaining:  interestRemaining,
			RepaymentRemaining: repaymentRemaining,
			HoverText: fmt.Sprintf("Interest Remaining: %s<br>Total Repayment Remaining: %s",
				format.TruncatedCurrency(interestRemaining, symbol),
				format.TruncatedCurrency(repaymentRemaining, symbol)),
		})
	}
	return chart
}
