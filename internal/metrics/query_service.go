package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queryOnDemandTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "feetracker",
		Subsystem: "query_service",
		Name:      "on_demand_total",
		Help:      "Count of on-demand fetch rounds for hashes missing locally.",
	}, []string{"status"})

	queryOnDemandHashes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "feetracker",
		Subsystem: "query_service",
		Name:      "on_demand_hashes_total",
		Help:      "Count of hashes fetched on demand by outcome.",
	}, []string{"outcome"})

	queryOnDemandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "feetracker",
		Subsystem: "query_service",
		Name:      "on_demand_duration_seconds",
		Help:      "Duration of on-demand fetch rounds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})
)

// QueryService tracks metrics for on-demand fetches triggered by reads.
type QueryService struct{}

// NewQueryService creates a QueryService metrics collector.
func NewQueryService() *QueryService {
	return &QueryService{}
}

// ObserveOnDemand records one on-demand round.
func (m QueryService) ObserveOnDemand(err error, fetched, failed int, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	queryOnDemandTotal.WithLabelValues(status).Inc()
	queryOnDemandDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
	queryOnDemandHashes.WithLabelValues("fetched").Add(float64(fetched))
	queryOnDemandHashes.WithLabelValues("failed").Add(float64(failed))
}
