package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ingestorEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "feetracker",
		Subsystem: "transaction_ingestor",
		Name:      "events_total",
		Help:      "Count of transfer events handled by outcome.",
	}, []string{"outcome"})

	ingestorBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "feetracker",
		Subsystem: "transaction_ingestor",
		Name:      "build_duration_seconds",
		Help:      "Duration of building transactions from events.",
		Buckets:   prometheus.DefBuckets,
	})

	ingestorFetchSingleTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "feetracker",
		Subsystem: "transaction_ingestor",
		Name:      "fetch_single_total",
		Help:      "Count of single transaction lookups against the node.",
	}, []string{"status"})
)

// TransactionIngestor tracks metrics for building transactions.
type TransactionIngestor struct{}

// NewTransactionIngestor creates a TransactionIngestor metrics collector.
func NewTransactionIngestor() *TransactionIngestor {
	return &TransactionIngestor{}
}

// ObserveBuild records how many events became transactions and how many were dropped.
func (m TransactionIngestor) ObserveBuild(built, duplicates, dropped int, started time.Time) {
	ingestorEventsTotal.WithLabelValues("built").Add(float64(built))
	ingestorEventsTotal.WithLabelValues("duplicate").Add(float64(duplicates))
	ingestorEventsTotal.WithLabelValues("dropped_no_price").Add(float64(dropped))
	ingestorBuildDuration.Observe(time.Since(started).Seconds())
}

// ObserveFetchSingle records one on-demand transaction lookup.
func (m TransactionIngestor) ObserveFetchSingle(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ingestorFetchSingleTotal.WithLabelValues(status).Inc()
}
