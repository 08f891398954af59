package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	repositoryRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "feetracker",
		Subsystem: "repository",
		Name:      "operations_total",
		Help:      "Count of repository operations.",
	}, []string{"backend", "operation", "status"})
	repositoryRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "feetracker",
		Subsystem: "repository",
		Name:      "operation_duration_seconds",
		Help:      "Duration of repository operations.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"backend", "operation", "status"})
	repositoryCacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "feetracker",
		Subsystem: "repository",
		Name:      "cache_lookups_total",
		Help:      "Count of cache lookups split by result.",
	}, []string{"backend", "result"})
)

// Repository tracks metrics for storage operations of a single backend.
type Repository struct {
	backend string
}

// NewRepository creates a Repository metrics collector for the named backend.
func NewRepository(backend string) *Repository {
	if backend == "" {
		backend = "unknown"
	}
	return &Repository{backend: backend}
}

// Observe records duration and status of a repository operation.
func (m Repository) Observe(operation string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}

	repositoryRequestsTotal.WithLabelValues(m.backend, operation, status).Inc()
	repositoryRequestDuration.WithLabelValues(m.backend, operation, status).Observe(time.Since(started).Seconds())
}

// ObserveLookup records cache hits and misses.
func (m Repository) ObserveLookup(hits, misses int) {
	repositoryCacheLookupsTotal.WithLabelValues(m.backend, "hit").Add(float64(hits))
	repositoryCacheLookupsTotal.WithLabelValues(m.backend, "miss").Add(float64(misses))
}
