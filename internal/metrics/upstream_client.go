package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "feetracker",
		Subsystem: "upstream_client",
		Name:      "operations_total",
		Help:      "Count of upstream API operations.",
	}, []string{"source", "operation", "status"})
	upstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "feetracker",
		Subsystem: "upstream_client",
		Name:      "operation_duration_seconds",
		Help:      "Duration of upstream API operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source", "operation", "status"})
)

// UpstreamClient tracks metrics for calls to an external data source.
type UpstreamClient struct {
	source string
}

// NewUpstreamClient constructs a metrics collector for the named source.
func NewUpstreamClient(source string) *UpstreamClient {
	if source == "" {
		source = "unknown"
	}
	return &UpstreamClient{source: source}
}

// Observe records a single upstream call outcome and duration.
func (m UpstreamClient) Observe(operation string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}

	upstreamRequestsTotal.WithLabelValues(m.source, operation, status).Inc()
	upstreamRequestDuration.WithLabelValues(m.source, operation, status).Observe(time.Since(started).Seconds())
}
