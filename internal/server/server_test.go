package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/loan-repayments/internal/cache"
	"github.com/iwvelando/loan-repayments/internal/calculator"
	"github.com/iwvelando/loan-repayments/internal/metrics"
	"github.com/iwvelando/loan-repayments/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, recorder *metrics.Recorder) http.Handler {
	t.Helper()
	calc := calculator.New(zap.NewNop(),
		calculator.WithCache(cache.NewMemoryCache(16), time.Minute),
		calculator.WithMetrics(recorder),
	)
	return NewHandler(zap.NewNop(), calc, recorder, constants.DefaultMaxBodySizeBytes, "1.2.3")
}

func postSchedule(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/schedule", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestHandleScheduleDefaults(t *testing.T) {
	rr := postSchedule(t, newTestHandler(t, nil), `{}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp scheduleResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.Equal(t, "USD", resp.Currency.Code)
	assert.Equal(t, 400000.0, resp.LoanAmount)
	assert.InDelta(t, 2271.16, resp.Totals.MonthlyPayment, 0.01)
	assert.InDelta(t, 817616.16, resp.Totals.TotalPaid, 1)
	assert.Len(t, resp.Schedule, 360)
	assert.Len(t, resp.YearlySummaries, 30)
	assert.Len(t, resp.Chart.Bars, 30)
	assert.True(t, strings.HasPrefix(resp.CSV, "Scenario,Currency,Month"))
	assert.NotEmpty(t, resp.Duration)
	assert.False(t, resp.Cached)
}

func TestHandleScheduleCurrencyAndCache(t *testing.T) {
	handler := newTestHandler(t, nil)
	body := `{"homeValue": 500000, "deposit": 100000, "interestRate": 5.5, "loanTerm": 30, "currency": "inr", "startDate": "2026-01"}`

	rr := postSchedule(t, handler, body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var first scheduleResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &first))
	assert.Equal(t, "₹", first.Currency.Symbol)
	assert.Equal(t, 33200000.0, first.LoanAmount)
	assert.Equal(t, "2026-01", first.Schedule[0].Date)
	assert.Equal(t, "2055-12", first.Schedule[359].Date)
	assert.Contains(t, first.Chart.Bars[0].HoverText, "Interest Remaining: ₹")

	rr = postSchedule(t, handler, body)
	require.Equal(t, http.StatusOK, rr.Code)

	var second scheduleResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &second))
	assert.True(t, second.Cached)
	assert.Equal(t, first.Totals, second.Totals)
	assert.Equal(t, first.Schedule[359].Date, second.Schedule[359].Date)
}

func TestHandleScheduleErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"zero term", `{"loanTerm": 0}`, http.StatusBadRequest, "invalid loan input"},
		{"term past the limit", `{"loanTerm": 101}`, http.StatusBadRequest, "loan term must not exceed 100 years"},
		{"term overflowing the schedule", `{"loanTerm": 1537228672809129301}`, http.StatusBadRequest, "loan term must not exceed"},
		{"negative rate", `{"interestRate": -1}`, http.StatusBadRequest, "interest rate must not be negative"},
		{"unknown currency", `{"currency": "GBP"}`, http.StatusBadRequest, "unsupported currency"},
		{"malformed", `{"homeValue": `, http.StatusBadRequest, "failed to decode request"},
		{"wrong type", `{"loanTerm": "thirty"}`, http.StatusBadRequest, "failed to decode request"},
	}

	handler := newTestHandler(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postSchedule(t, handler, tt.body)
			assert.Equal(t, tt.status, rr.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Contains(t, resp["error"], tt.message)
		})
	}
}

func TestHandleScheduleBodyTooLarge(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, nil, 16, "")
	rr := postSchedule(t, handler, `{"name": "`+strings.Repeat("x", 64)+`"}`)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Contains(t, rr.Body.String(), "exceeds limit of 16 bytes")
}

func TestHandleScheduleMethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/schedule", nil)
	rr := httptest.NewRecorder()
	newTestHandler(t, nil).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHandleCurrencies(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/currencies", nil)
	rr := httptest.NewRecorder()
	newTestHandler(t, nil).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Currencies []struct {
			Code       string  `json:"code"`
			Symbol     string  `json:"symbol"`
			Multiplier float64 `json:"multiplier"`
		} `json:"currencies"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Currencies, 3)
	assert.Equal(t, "AED", resp.Currencies[0].Code)
	assert.Equal(t, "INR", resp.Currencies[1].Code)
	assert.Equal(t, 83.0, resp.Currencies[1].Multiplier)
	assert.Equal(t, "$", resp.Currencies[2].Symbol)
}

func TestHandleVersion(t *testing.T) {
	for version, want := range map[string]string{"1.2.3": "1.2.3", "  ": "dev"} {
		handler := NewHandler(zap.NewNop(), nil, nil, 0, version)
		req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, want, resp["version"])
	}
}

func TestRequestIDHeader(t *testing.T) {
	handler := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	generated := rr.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)

	incoming := uuid.NewString()
	req = httptest.NewRequest(http.MethodGet, "/api/version", nil)
	req.Header.Set(RequestIDHeader, incoming)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, incoming, rr.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/api/version", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.NotEqual(t, "not-a-uuid", rr.Header().Get(RequestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	recorder := metrics.NewRecorder()
	handler := newTestHandler(t, recorder)

	require.Equal(t, http.StatusOK, postSchedule(t, handler, `{}`).Code)
	require.Equal(t, http.StatusBadRequest, postSchedule(t, handler, `{"loanTerm": 0}`).Code)

	notFound := httptest.NewRecorder()
	handler.ServeHTTP(notFound, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, notFound.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, `loancalc_http_requests_total{code="200",path="/api/schedule"} 1`)
	assert.Contains(t, body, `loancalc_http_requests_total{code="400",path="/api/schedule"} 1`)
	assert.Contains(t, body, `loancalc_http_requests_total{code="404",path="other"} 1`)
	assert.Contains(t, body, `loancalc_calculations_total{outcome="success"} 1`)
	assert.Contains(t, body, `loancalc_calculations_total{outcome="invalid"} 1`)
	assert.Contains(t, body, `loancalc_cache_lookups_total{result="miss"} 2`)
}

func TestMetricsEndpointDisabled(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	newTestHandler(t, nil).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
