package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthAndLive(t *testing.T) {
	s := NewServer(Config{ServiceName: "risk-tracker", Version: "1.0.0"})
	h := s.Handler()

	rec := get(t, h, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.0.0", resp.Version)

	assert.Equal(t, http.StatusOK, get(t, h, "/live").Code)
}

func TestReadyReflectsStateAndChecks(t *testing.T) {
	s := NewServer(Config{
		ServiceName: "risk-tracker",
		Checks: map[string]Pinger{
			"database": stubPinger{},
			"redis":    stubPinger{err: errors.New("connection refused")},
		},
	})
	h := s.Handler()

	rec := get(t, h, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	s.SetReady(true)
	rec = get(t, h, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Checks["service"])
	assert.Equal(t, "ok", resp.Checks["database"])
	assert.Contains(t, resp.Checks["redis"], "connection refused")
}

func TestReadyOK(t *testing.T) {
	s := NewServer(Config{ServiceName: "risk-tracker", Checks: map[string]Pinger{"database": stubPinger{}}})
	s.SetReady(true)

	rec := get(t, s.Handler(), "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleMountsRoutes(t *testing.T) {
	s := NewServer(Config{})
	s.Handle("/metrics", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	assert.Equal(t, http.StatusTeapot, get(t, s.Handler(), "/metrics").Code)
	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/missing").Code)
}

func TestShutdownWithoutStart(t *testing.T) {
	assert.NoError(t, NewServer(Config{}).Shutdown())
}
