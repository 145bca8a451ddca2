// Package metrics holds the Prometheus collectors the client library
// records into. They are not registered anywhere until Register is called.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// CacheOpsTotal counts cache adapter operations by backend, op and result
	// (hit | miss | error | ok).
	CacheOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mumin_cache_operations_total",
			Help: "Cache adapter operations by backend, operation and result.",
		},
		[]string{"backend", "op", "result"},
	)

	// UpstreamAttemptsTotal counts every HTTP attempt against the hadith API
	// by outcome kind ("ok" on success).
	UpstreamAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mumin_upstream_attempts_total",
			Help: "HTTP attempts against the hadith API by outcome kind.",
		},
		[]string{"kind"},
	)

	// UpstreamRetriesTotal counts backoff waits taken before a retry.
	UpstreamRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mumin_upstream_retries_total",
			Help: "Retries issued against the hadith API.",
		},
	)

	// UpstreamDuration observes one logical request including retries.
	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mumin_upstream_request_duration_seconds",
			Help:    "Duration of logical hadith API requests, retries included.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "outcome"},
	)
)

// Collectors returns every collector the library records into.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		CacheOpsTotal,
		UpstreamAttemptsTotal,
		UpstreamRetriesTotal,
		UpstreamDuration,
	}
}

// Register adds the collectors to reg, or to the default registerer when
// reg is nil. Collectors already registered with reg are skipped, so it is
// safe to call more than once.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range Collectors() {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) && are.ExistingCollector == c {
				continue
			}
			return err
		}
	}
	return nil
}
