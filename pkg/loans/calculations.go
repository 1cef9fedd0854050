// Package loans provides the fixed-rate amortization calculations: input
// normalization, the payment schedule itself and its yearly aggregation.
package loans

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/iwvelando/loan-repayments/pkg/constants"
	"github.com/iwvelando/loan-repayments/pkg/datetime"
	"github.com/iwvelando/loan-repayments/pkg/mathutil"
	"go.uber.org/zap"
)

// ErrInvalidInput is returned when calculation inputs fall outside their domain.
var ErrInvalidInput = errors.New("invalid loan input")

// LoanInputs holds the normalized parameters of a single calculation.
type LoanInputs struct {
	Principal    float64
	PeriodicRate float64
	NumPeriods   int
}

// PaymentPeriod holds the values for a given payment.
type PaymentPeriod struct {
	Index              int     `json:"month"`
	Date               string  `json:"date,omitempty"`
	Payment            float64 `json:"payment"`
	Principal          float64 `json:"principal"`
	Interest           float64 `json:"interest"`
	RemainingBalance   float64 `json:"remainingBalance"`
	CumulativeInterest float64 `json:"totalInterestPaid"`
	Year               int     `json:"year"`
}

// YearlySummary reduces the payment periods of one loan year.
type YearlySummary struct {
	Year                  int     `json:"year"`
	MinRemainingBalance   float64 `json:"remainingBalance"`
	MaxCumulativeInterest float64 `json:"totalInterestPaid"`
}

// Totals holds the headline figures of a loan.
type Totals struct {
	MonthlyPayment float64 `json:"monthlyPayment"`
	TotalPaid      float64 `json:"totalRepayments"`
	TotalInterest  float64 `json:"totalInterest"`
}

// Result is the full output of one calculation.
type Result struct {
	Inputs          LoanInputs      `json:"inputs"`
	Totals          Totals          `json:"totals"`
	Schedule        []PaymentPeriod `json:"schedule"`
	YearlySummaries []YearlySummary `json:"yearlySummaries"`
}

// NormalizeInputs derives the loan principal, monthly rate and number of
// payments from the values a borrower enters. A deposit larger than the home
// value is not rejected; the resulting negative principal is passed through.
func NormalizeInputs(homeValue, deposit, annualRatePercent float64, termYears int) (LoanInputs, error) {
	for _, field := range []struct {
		name string
		val  float64
	}{
		{"home value", homeValue},
		{"deposit", deposit},
		{"interest rate", annualRatePercent},
	} {
		if !mathutil.IsFinite(field.val) {
			return LoanInputs{}, fmt.Errorf("%w: %s must be a finite number", ErrInvalidInput, field.name)
		}
	}
	if homeValue < 0 {
		return LoanInputs{}, fmt.Errorf("%w: home value must not be negative, got %.2f", ErrInvalidInput, homeValue)
	}
	if deposit < 0 {
		return LoanInputs{}, fmt.Errorf("%w: deposit must not be negative, got %.2f", ErrInvalidInput, deposit)
	}
	if annualRatePercent < 0 {
		return LoanInputs{}, fmt.Errorf("%w: interest rate must not be negative, got %.4f", ErrInvalidInput, annualRatePercent)
	}
	if termYears < 1 {
		return LoanInputs{}, fmt.Errorf("%w: loan term must be at least 1 year, got %d", ErrInvalidInput, termYears)
	}
	if termYears > constants.MaxLoanTermYears {
		return LoanInputs{}, fmt.Errorf("%w: loan term must not exceed %d years, got %d", ErrInvalidInput, constants.MaxLoanTermYears, termYears)
	}

	return LoanInputs{
		Principal:    homeValue - deposit,
		PeriodicRate: mathutil.FromPercentage(annualRatePercent) / constants.MonthsPerYear,
		NumPeriods:   termYears * constants.MonthsPerYear,
	}, nil
}

// CalculateMonthlyPayment calculates the monthly payment for a loan using the standard amortization formula.
func CalculateMonthlyPayment(inputs LoanInputs) float64 {
	if inputs.PeriodicRate == 0 {
		// For zero interest, simply divide the principal by term
		return inputs.Principal / float64(inputs.NumPeriods)
	}

	power := math.Pow(1.00+inputs.PeriodicRate, float64(inputs.NumPeriods))
	return inputs.Principal * (inputs.PeriodicRate * power) / (power - 1.00)
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingBalance, periodicRate float64) float64 {
	return remainingBalance * periodicRate
}

// GenerateSchedule returns the fixed payment and one PaymentPeriod per month
// of the term, in order. No rounding is applied.
func GenerateSchedule(inputs LoanInputs) (float64, []PaymentPeriod) {
	payment := CalculateMonthlyPayment(inputs)
	schedule := make([]PaymentPeriod, inputs.NumPeriods)

	balance := inputs.Principal
	cumulativeInterest := 0.0
	for i := 1; i <= inputs.NumPeriods; i++ {
		interest := CalculateInterestPayment(balance, inputs.PeriodicRate)
		principal := payment - interest
		if inputs.PeriodicRate == 0 {
			// Scaling keeps the final balance at exactly zero.
			balance = inputs.Principal * float64(inputs.NumPeriods-i) / float64(inputs.NumPeriods)
		} else {
			balance -= principal
		}
		cumulativeInterest += interest

		schedule[i-1] = PaymentPeriod{
			Index:              i,
			Payment:            payment,
			Principal:          principal,
			Interest:           interest,
			RemainingBalance:   balance,
			CumulativeInterest: cumulativeInterest,
			Year:               mathutil.CeilDiv(i, constants.MonthsPerYear),
		}
	}

	return payment, schedule
}

// CalculateTotals derives the headline figures from the fixed payment.
func CalculateTotals(inputs LoanInputs, payment float64) Totals {
	totalPaid := payment * float64(inputs.NumPeriods)
	return Totals{
		MonthlyPayment: payment,
		TotalPaid:      totalPaid,
		TotalInterest:  totalPaid - inputs.Principal,
	}
}

// SummarizeByYear groups the schedule by loan year keeping the lowest balance
// and the highest cumulative interest seen in each year. Years need not hold
// twelve periods.
func SummarizeByYear(schedule []PaymentPeriod) []YearlySummary {
	byYear := make(map[int]*YearlySummary)
	for _, period := range schedule {
		summary, ok := byYear[period.Year]
		if !ok {
			byYear[period.Year] = &YearlySummary{
				Year:                  period.Year,
				MinRemainingBalance:   period.RemainingBalance,
				MaxCumulativeInterest: period.CumulativeInterest,
			}
			continue
		}
		summary.MinRemainingBalance = math.Min(summary.MinRemainingBalance, period.RemainingBalance)
		summary.MaxCumulativeInterest = math.Max(summary.MaxCumulativeInterest, period.CumulativeInterest)
	}

	summaries := make([]YearlySummary, 0, len(byYear))
	for _, summary := range byYear {
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Year < summaries[j].Year
	})
	return summaries
}

// Summarize reduces a generated schedule into its yearly summaries and totals.
func Summarize(inputs LoanInputs, payment float64, schedule []PaymentPeriod) ([]YearlySummary, Totals) {
	return SummarizeByYear(schedule), CalculateTotals(inputs, payment)
}

// ComputeSchedule runs a complete calculation for the given borrower inputs.
func ComputeSchedule(homeValue, deposit, annualRatePercent float64, termYears int) (*Result, error) {
	inputs, err := NormalizeInputs(homeValue, deposit, annualRatePercent, termYears)
	if err != nil {
		return nil, err
	}

	if payment := CalculateMonthlyPayment(inputs); !mathutil.IsFinite(payment) {
		return nil, fmt.Errorf("%w: inputs produce a non-finite payment", ErrInvalidInput)
	}

	payment, schedule := GenerateSchedule(inputs)
	yearly, totals := Summarize(inputs, payment, schedule)
	return &Result{
		Inputs:          inputs,
		Totals:          totals,
		Schedule:        schedule,
		YearlySummaries: yearly,
	}, nil
}

// Request describes one loan as entered by a borrower.
type Request struct {
	Name         string
	HomeValue    float64
	Deposit      float64
	InterestRate float64 // annual percentage
	TermYears    int
	StartDate    string // optional YYYY-MM of the first payment
}

// AmortizationScheduleGenerator provides utilities for generating loan amortization schedules
type AmortizationScheduleGenerator struct {
	logger *zap.Logger
}

// NewAmortizationScheduleGenerator creates a new generator instance
func NewAmortizationScheduleGenerator(logger *zap.Logger) *AmortizationScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmortizationScheduleGenerator{logger: logger}
}

// Generate computes the schedule for req and, when a start date is given,
// labels each period with its calendar month.
func (g *AmortizationScheduleGenerator) Generate(req Request) (*Result, error) {
	result, err := ComputeSchedule(req.HomeValue, req.Deposit, req.InterestRate, req.TermYears)
	if err != nil {
		return nil, fmt.Errorf("loan %s: %w", req.Name, err)
	}

	if req.StartDate != "" {
		labels, err := datetime.MonthLabels(req.StartDate, len(result.Schedule))
		if err != nil {
			return nil, fmt.Errorf("loan %s: %w", req.Name, err)
		}
		for i := range result.Schedule {
			result.Schedule[i].Date = labels[i]
		}
	}

	g.logger.Debug(fmt.Sprintf("generated %d payments for loan %s", len(result.Schedule), req.Name),
		zap.String("op", "loans.Generate"),
		zap.Float64("monthlyPayment", result.Totals.MonthlyPayment),
	)
	return result, nil
}
