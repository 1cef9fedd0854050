package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/loan-repayments/internal/calculator"
	"github.com/iwvelando/loan-repayments/internal/metrics"
	"github.com/iwvelando/loan-repayments/pkg/constants"
	"github.com/iwvelando/loan-repayments/pkg/currency"
	"github.com/iwvelando/loan-repayments/pkg/loans"
	"github.com/iwvelando/loan-repayments/pkg/output"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request id on requests and responses.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

type handler struct {
	logger      *zap.Logger
	calc        *calculator.Calculator
	metrics     *metrics.Recorder
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the schedule API. The
// metrics endpoint is mounted only when recorder is non-nil.
func NewHandler(logger *zap.Logger, calc *calculator.Calculator, recorder *metrics.Recorder, maxBodySize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if calc == nil {
		calc = calculator.New(logger, calculator.WithMetrics(recorder))
	}
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		calc:        calc,
		metrics:     recorder,
		maxBodySize: maxBodySize,
		version:     trimmedVersion,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/schedule", h.handleSchedule)
	mux.HandleFunc("/api/currencies", h.handleCurrencies)
	mux.HandleFunc("/api/version", h.handleVersion)
	if recorder != nil {
		mux.Handle("/metrics", recorder.Handler())
	}

	return h.withRequestID(mux)
}

type scheduleRequest struct {
	Name         string   `json:"name"`
	HomeValue    *float64 `json:"homeValue"`
	Deposit      *float64 `json:"deposit"`
	InterestRate *float64 `json:"interestRate"`
	LoanTerm     *int     `json:"loanTerm"`
	Currency     string   `json:"currency"`
	StartDate    string   `json:"startDate"`
}

// toCalculation fills omitted fields with the calculator defaults.
func (s scheduleRequest) toCalculation() calculator.Request {
	req := calculator.Request{
		Name:         s.Name,
		HomeValue:    constants.DefaultHomeValue,
		Deposit:      constants.DefaultDeposit,
		InterestRate: constants.DefaultInterestRate,
		TermYears:    constants.DefaultLoanTerm,
		Currency:     s.Currency,
		StartDate:    s.StartDate,
	}
	if req.Name == "" {
		req.Name = "request"
	}
	if s.HomeValue != nil {
		req.HomeValue = *s.HomeValue
	}
	if s.Deposit != nil {
		req.Deposit = *s.Deposit
	}
	if s.InterestRate != nil {
		req.InterestRate = *s.InterestRate
	}
	if s.LoanTerm != nil {
		req.TermYears = *s.LoanTerm
	}
	return req
}

type scheduleResponse struct {
	Name            string                `json:"name"`
	Currency        currency.Currency     `json:"currency"`
	HomeValue       float64               `json:"homeValue"`
	Deposit         float64               `json:"deposit"`
	LoanAmount      float64               `json:"loanAmount"`
	Totals          loans.Totals          `json:"totals"`
	Schedule        []loans.PaymentPeriod `json:"schedule"`
	YearlySummaries []loans.YearlySummary `json:"yearlySummaries"`
	Chart           output.Chart          `json:"chart"`
	CSV             string                `json:"csv"`
	Cached          bool                  `json:"cached"`
	Duration        string                `json:"duration"`
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedule"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var payload scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return
		}
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}

	result, err := h.calc.Calculate(r.Context(), payload.toCalculation())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, loans.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		h.respondErrorWithOp(w, r, status, err.Error(), op)
		return
	}

	elapsed := time.Since(start)
	response := scheduleResponse{
		Name:            result.Name,
		Currency:        result.Currency,
		HomeValue:       result.HomeValue,
		Deposit:         result.Deposit,
		LoanAmount:      result.Inputs.Principal,
		Totals:          result.Totals,
		Schedule:        result.Schedule,
		YearlySummaries: result.YearlySummaries,
		Chart:           output.BuildYearlyChart(result.Result, result.Currency.Symbol),
		CSV:             output.CsvString([]calculator.ScenarioResult{result}),
		Cached:          result.Cached,
		Duration:        elapsed.String(),
	}

	h.requestLogger(r).Info("schedule computed",
		zap.String("op", op),
		zap.String("currency", result.Currency.Code),
		zap.Int("periods", len(result.Schedule)),
		zap.Bool("cached", result.Cached),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, r, http.StatusOK, response)
}

func (h *handler) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string][]currency.Currency{
		"currencies": currency.All(),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	logger := h.requestLogger(r)
	fields := []zap.Field{
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("schedule request failed", fields...)
	} else {
		logger.Warn("schedule request rejected", fields...)
	}

	h.writeJSON(w, r, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.requestLogger(r).Error("failed to write JSON response", zap.Error(err))
	}
}

// withRequestID tags every request with an id, echoes it on the response and
// counts the request once it has been served. A well-formed incoming id is kept.
func (h *handler) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
		h.metrics.ObserveRequest(metricsPath(r.URL.Path), strconv.Itoa(rec.status))
	})
}

func (h *handler) requestLogger(r *http.Request) *zap.Logger {
	if id, ok := RequestID(r.Context()); ok {
		return h.logger.With(zap.String("requestId", id))
	}
	return h.logger
}

// RequestID returns the id assigned to the request carrying ctx.
func RequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}

// metricsPath bounds the path label to the routes the server knows.
func metricsPath(path string) string {
	switch path {
	case "/api/schedule", "/api/currencies", "/api/version", "/metrics":
		return path
	default:
		return "other"
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}
