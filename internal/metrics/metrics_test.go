package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordAnalysisRun(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(AnalysisRunsTotal.WithLabelValues("success"))

	RecordAnalysisRun("success")
	assert.Equal(t, before+1, testutil.ToFloat64(AnalysisRunsTotal.WithLabelValues("success")))
}

func TestAnalysisStarted(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(AnalysesInFlight)

	done := AnalysisStarted()
	assert.Equal(t, before+1, testutil.ToFloat64(AnalysesInFlight))
	done()
	assert.Equal(t, before, testutil.ToFloat64(AnalysesInFlight))
}

func TestRecordSimulatedPaths(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(SimulatedPathsTotal.WithLabelValues("individual"))

	RecordSimulatedPaths("individual", 900)
	assert.Equal(t, before+900, testutil.ToFloat64(SimulatedPathsTotal.WithLabelValues("individual")))
}

func TestRecordDataFetch(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(DataFetchErrorsTotal.WithLabelValues("yahoo"))

	RecordDataFetch("yahoo", 0.2, nil)
	assert.Equal(t, before, testutil.ToFloat64(DataFetchErrorsTotal.WithLabelValues("yahoo")))

	RecordDataFetch("yahoo", 0.2, errors.New("timeout"))
	assert.Equal(t, before+1, testutil.ToFloat64(DataFetchErrorsTotal.WithLabelValues("yahoo")))
}

func TestRecordCacheLookup(t *testing.T) {
	InitRegistry()
	hits := testutil.ToFloat64(PriceCacheHitsTotal)
	misses := testutil.ToFloat64(PriceCacheMissesTotal)

	RecordCacheLookup(true)
	RecordCacheLookup(false)
	RecordCacheLookup(false)

	assert.Equal(t, hits+1, testutil.ToFloat64(PriceCacheHitsTotal))
	assert.Equal(t, misses+2, testutil.ToFloat64(PriceCacheMissesTotal))
}

func TestRecordOptimization(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordOptimization("bfgs", 17)
		RecordOptimizerFailure("IterationLimit")
		RecordStageDuration("optimize", 0.05)
		RecordUndefinedMetric("beta")
		RecordCircuitBreakerTrip()
	})
}

func TestHandler(t *testing.T) {
	InitRegistry()
	RecordAnalysisRun("failure")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "risk_tracker_analysis_runs_total")
}
