package metrics

import "github.com/prometheus/client_golang/prometheus"

// Price data retrieval metrics
var (
	DataFetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "data_fetch_duration_seconds",
		Help:      "Latency of price data fetches by provider",
		Buckets:   prometheus.DefBuckets,
	}, []string{"provider"})
	DataFetchErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "data_fetch_errors_total",
		Help:      "Total number of failed price fetches by provider",
	}, []string{"provider"})
	PriceCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_cache_hits_total",
		Help:      "Total number of price cache hits",
	})
	PriceCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_cache_misses_total",
		Help:      "Total number of price cache misses",
	})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of data provider circuit breaker trips",
	})
)

// RecordDataFetch records a price fetch and its outcome.
func RecordDataFetch(provider string, durationSeconds float64, err error) {
	DataFetchDuration.WithLabelValues(provider).Observe(durationSeconds)
	if err != nil {
		DataFetchErrorsTotal.WithLabelValues(provider).Inc()
	}
}

// RecordCacheLookup records a price cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		PriceCacheHitsTotal.Inc()
		return
	}
	PriceCacheMissesTotal.Inc()
}

// RecordCircuitBreakerTrip records a circuit breaker trip event.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}
