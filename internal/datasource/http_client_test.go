package datasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHTTPConfig() HTTPClientConfig {
	cfg := DefaultHTTPClientConfig()
	cfg.Timeout = 2 * time.Second
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 5 * time.Millisecond
	cfg.RateLimit = 1000
	cfg.Burst = 100
	return cfg
}

func TestRateLimitedHTTPClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewRateLimitedHTTPClient(testHTTPConfig(), nil)
	defer client.Close()

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRateLimitedHTTPClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewRateLimitedHTTPClient(testHTTPConfig(), nil)
	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRateLimitedHTTPClientCircuitBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	cfg := testHTTPConfig()
	cfg.MaxRetries = 0
	cfg.CircuitBreakerMax = 2
	client := NewRateLimitedHTTPClient(cfg, nil)

	for i := 0; i < 2; i++ {
		_, err := client.Get(context.Background(), url)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCircuitOpen)
	}

	_, err := client.Get(context.Background(), url)
	assert.ErrorIs(t, err, ErrCircuitOpen)

	client.Reset()
	_, err = client.Get(context.Background(), url)
	assert.NotErrorIs(t, err, ErrCircuitOpen)
}

func TestRateLimitedHTTPClientCancelledContext(t *testing.T) {
	cfg := testHTTPConfig()
	cfg.RateLimit = 0.001
	cfg.Burst = 1
	client := NewRateLimitedHTTPClient(cfg, nil)

	// drain the single token
	client.limiter.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Get(ctx, "http://127.0.0.1:1")
	assert.Error(t, err)
}
