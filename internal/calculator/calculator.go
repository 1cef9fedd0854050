// Package calculator runs loan calculations for the CLI and the HTTP API. It
// applies currency conversion, consults the schedule cache and records
// metrics around the pure calculations in pkg/loans.
package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/loan-repayments/internal/cache"
	"github.com/iwvelando/loan-repayments/internal/config"
	"github.com/iwvelando/loan-repayments/internal/metrics"
	"github.com/iwvelando/loan-repayments/pkg/currency"
	"github.com/iwvelando/loan-repayments/pkg/loans"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Request is one calculation as entered by a borrower. HomeValue and Deposit
// are in US dollars; they are converted into Currency before calculation.
type Request struct {
	Name         string
	HomeValue    float64
	Deposit      float64
	InterestRate float64 // annual percentage
	TermYears    int
	Currency     string
	StartDate    string
}

// ScenarioResult is a calculation together with what the presentation layer
// needs to display it.
type ScenarioResult struct {
	Name      string            `json:"name"`
	Currency  currency.Currency `json:"currency"`
	HomeValue float64           `json:"homeValue"`
	Deposit   float64           `json:"deposit"`
	Cached    bool              `json:"cached"`
	*loans.Result
}

// Calculator is safe for concurrent use.
type Calculator struct {
	logger    *zap.Logger
	generator *loans.AmortizationScheduleGenerator
	cache     cache.Cache
	cacheTTL  time.Duration
	metrics   *metrics.Recorder
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithCache stores computed schedules in c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(calc *Calculator) {
		calc.cache = c
		calc.cacheTTL = ttl
	}
}

// WithMetrics records calculation metrics on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(calc *Calculator) {
		calc.metrics = r
	}
}

// New creates a Calculator.
func New(logger *zap.Logger, opts ...Option) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Calculator{
		logger:    logger,
		generator: loans.NewAmortizationScheduleGenerator(logger),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calculate converts the request into its currency and computes the schedule.
func (c *Calculator) Calculate(ctx context.Context, req Request) (ScenarioResult, error) {
	cur, err := currency.Lookup(currencyCode(req.Currency))
	if err != nil {
		c.metrics.ObserveCalculation(metrics.OutcomeInvalid, 0)
		return ScenarioResult{}, fmt.Errorf("%w: %v", loans.ErrInvalidInput, err)
	}

	result := ScenarioResult{
		Name:      req.Name,
		Currency:  cur,
		HomeValue: cur.Convert(req.HomeValue),
		Deposit:   cur.Convert(req.Deposit),
	}

	key := cache.Key(cur.Code, req.HomeValue, req.Deposit, req.InterestRate, req.TermYears, req.StartDate)
	if cached, ok := c.lookup(ctx, key); ok {
		result.Result = cached
		result.Cached = true
		c.warnNegativePrincipal(result)
		return result, nil
	}

	start := time.Now()
	computed, err := c.generator.Generate(loans.Request{
		Name:         req.Name,
		HomeValue:    result.HomeValue,
		Deposit:      result.Deposit,
		InterestRate: req.InterestRate,
		TermYears:    req.TermYears,
		StartDate:    req.StartDate,
	})
	elapsed := time.Since(start)
	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, loans.ErrInvalidInput) {
			outcome = metrics.OutcomeInvalid
		}
		c.metrics.ObserveCalculation(outcome, elapsed)
		return ScenarioResult{}, err
	}
	c.metrics.ObserveCalculation(metrics.OutcomeSuccess, elapsed)

	c.logger.Debug(fmt.Sprintf("calculated scenario %s", req.Name),
		zap.String("op", "calculator.Calculate"),
		zap.String("currency", cur.Code),
		zap.Float64("monthlyPayment", computed.Totals.MonthlyPayment),
		zap.Duration("duration", elapsed),
	)

	c.store(ctx, key, computed)
	result.Result = computed
	c.warnNegativePrincipal(result)
	return result, nil
}

// warnNegativePrincipal flags results whose deposit exceeds the home value.
// Such results are still returned, cached or not.
func (c *Calculator) warnNegativePrincipal(result ScenarioResult) {
	if result.Inputs.Principal >= 0 {
		return
	}
	c.logger.Warn(fmt.Sprintf("deposit exceeds home value for scenario %s, principal is negative", result.Name),
		zap.String("op", "calculator.Calculate"),
		zap.Float64("principal", result.Inputs.Principal),
		zap.Bool("cached", result.Cached),
	)
}

// CalculateScenarios computes every active scenario of conf concurrently and
// returns the results in configuration order. The first failure cancels the
// remaining work.
func (c *Calculator) CalculateScenarios(ctx context.Context, conf config.Configuration) ([]ScenarioResult, error) {
	active := conf.ActiveScenarios()
	results := make([]ScenarioResult, len(active))

	g, ctx := errgroup.WithContext(ctx)
	for i, scenario := range active {
		i, scenario := i, scenario
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cur, err := conf.CurrencyFor(scenario)
			if err != nil {
				return fmt.Errorf("scenario %s: %w", scenario.Name, err)
			}
			result, err := c.Calculate(ctx, Request{
				Name:         scenario.Name,
				HomeValue:    scenario.HomeValue,
				Deposit:      scenario.Deposit,
				InterestRate: scenario.InterestRate,
				TermYears:    scenario.LoanTerm,
				Currency:     cur.Code,
				StartDate:    scenario.StartDate,
			})
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.logger.Info("scenarios calculated",
		zap.String("op", "calculator.CalculateScenarios"),
		zap.Int("scenarios", len(results)),
	)
	return results, nil
}

func (c *Calculator) lookup(ctx context.Context, key string) (*loans.Result, bool) {
	if c.cache == nil {
		return nil, false
	}

	data, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("schedule cache lookup failed",
			zap.String("op", "calculator.lookup"),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, false
	}
	if !ok {
		c.metrics.ObserveCacheLookup(false)
		return nil, false
	}

	var result loans.Result
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn("discarding undecodable cached schedule",
			zap.String("op", "calculator.lookup"),
			zap.String("key", key),
			zap.Error(err),
		)
		c.metrics.ObserveCacheLookup(false)
		return nil, false
	}
	c.metrics.ObserveCacheLookup(true)
	return &result, true
}

func (c *Calculator) store(ctx context.Context, key string, result *loans.Result) {
	if c.cache == nil {
		return
	}

	data, err := json.Marshal(result)
	if err == nil {
		err = c.cache.Set(ctx, key, data, c.cacheTTL)
	}
	if err != nil {
		c.logger.Warn("failed to cache schedule",
			zap.String("op", "calculator.store"),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

func currencyCode(code string) string {
	if code == "" {
		return "USD"
	}
	return code
}
