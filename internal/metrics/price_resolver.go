package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	priceResolveTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "feetracker",
		Subsystem: "price_resolver",
		Name:      "resolve_total",
		Help:      "Count of price resolutions.",
	}, []string{"status"})

	priceResolveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "feetracker",
		Subsystem: "price_resolver",
		Name:      "resolve_duration_seconds",
		Help:      "Duration of price resolutions.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})

	priceResolveTimestamps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "feetracker",
		Subsystem: "price_resolver",
		Name:      "timestamps_total",
		Help:      "Count of timestamps by where their price came from.",
	}, []string{"source"})

	priceChunkTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "feetracker",
		Subsystem: "price_resolver",
		Name:      "chunks_total",
		Help:      "Count of upstream chunk fetches.",
	}, []string{"status"})

	priceChunkSamples = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "feetracker",
		Subsystem: "price_resolver",
		Name:      "chunk_samples",
		Help:      "Number of samples returned per chunk.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 11), // 1..1024
	})
)

// PriceResolver tracks metrics for price resolution.
type PriceResolver struct{}

// NewPriceResolver creates a PriceResolver metrics collector.
func NewPriceResolver() *PriceResolver {
	return &PriceResolver{}
}

// ObserveResolve records one resolution split into stored, fetched and unresolved timestamps.
func (m PriceResolver) ObserveResolve(err error, requested, stored, fetched int, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	priceResolveTotal.WithLabelValues(status).Inc()
	priceResolveDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
	priceResolveTimestamps.WithLabelValues("store").Add(float64(stored))
	priceResolveTimestamps.WithLabelValues("upstream").Add(float64(fetched))
	if missing := requested - stored - fetched; missing > 0 {
		priceResolveTimestamps.WithLabelValues("unresolved").Add(float64(missing))
	}
}

// ObserveChunk records one upstream chunk fetch.
func (m PriceResolver) ObserveChunk(err error, samples int) {
	status := "success"
	if err != nil {
		status = "error"
	}
	priceChunkTotal.WithLabelValues(status).Inc()
	priceChunkSamples.Observe(float64(samples))
}
