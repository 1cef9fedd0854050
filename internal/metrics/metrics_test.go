package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrapeMetrics(t *testing.T, r *Recorder) string {
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestObserveCalculation(t *testing.T) {
	r := NewRecorder()
	r.ObserveCalculation(OutcomeSuccess, time.Millisecond)
	r.ObserveCalculation(OutcomeSuccess, 2*time.Millisecond)
	r.ObserveCalculation(OutcomeInvalid, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.calculations.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.calculations.WithLabelValues(OutcomeInvalid)))

	output := scrapeMetrics(t, r)
	assert.Contains(t, output, "loancalc_calculation_duration_seconds_count 2")
}

func TestObserveCacheLookup(t *testing.T) {
	r := NewRecorder()
	r.ObserveCacheLookup(true)
	r.ObserveCacheLookup(false)
	r.ObserveCacheLookup(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("miss")))
}

func TestObserveRequest(t *testing.T) {
	r := NewRecorder()
	r.ObserveRequest("/api/schedule", "200")

	output := scrapeMetrics(t, r)
	assert.Contains(t, output, `loancalc_http_requests_total{code="200",path="/api/schedule"} 1`)
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveCalculation(OutcomeError, time.Second)
		r.ObserveCacheLookup(true)
		r.ObserveRequest("/", "404")
	})
}
