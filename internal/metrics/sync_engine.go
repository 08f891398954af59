package metrics

import (
	"time"

	"github.com/goodnatureofminers/blockinsight7000-feetracker/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncCyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "feetracker",
		Subsystem: "sync_engine",
		Name:      "cycles_total",
		Help:      "Count of stream sync cycles.",
	}, []string{"stream", "status"})

	syncCycleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "feetracker",
		Subsystem: "sync_engine",
		Name:      "cycle_duration_seconds",
		Help:      "Duration of a stream sync cycle.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"stream", "status"})

	syncRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "feetracker",
		Subsystem: "sync_engine",
		Name:      "records_total",
		Help:      "Count of records newly persisted by sync cycles.",
	}, []string{"stream"})

	syncWatermark = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "feetracker",
		Subsystem: "sync_engine",
		Name:      "watermark_timestamp_seconds",
		Help:      "Unix time of the last committed watermark.",
	}, []string{"stream"})
)

type SyncEngine struct{}

func NewSyncEngine() *SyncEngine {
	return &SyncEngine{}
}

func (m SyncEngine) ObserveCycle(stream model.Stream, err error, records int, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	syncCyclesTotal.WithLabelValues(string(stream), status).Inc()
	syncCycleDuration.WithLabelValues(string(stream), status).
		Observe(time.Since(started).Seconds())
	if records > 0 {
		syncRecordsTotal.WithLabelValues(string(stream)).Add(float64(records))
	}
}

func (m SyncEngine) ObserveWatermark(stream model.Stream, ts time.Time) {
	syncWatermark.WithLabelValues(string(stream)).Set(float64(ts.Unix()))
}
