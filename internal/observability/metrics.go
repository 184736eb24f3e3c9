package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for the gate-operations pipeline.
type Metrics struct {
	RowsIngested      *prometheus.CounterVec // labels: reservoir
	RowsDropped       *prometheus.CounterVec // labels: reservoir, reason={bad_time,bad_date,bad_elevation}
	ObservationsBuilt *prometheus.CounterVec // labels: reservoir
	RatingFallbacks   *prometheus.CounterVec // labels: reservoir
	DuplicateStamps   *prometheus.CounterVec // labels: reservoir
	RecordsWritten    *prometheus.CounterVec // labels: reservoir, sink
	PipelineRunning   prometheus.Gauge

	ReservoirDuration prometheus.Histogram
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gateops_etl",
			Name:      "rows_ingested_total",
			Help:      "Raw gate-log rows read per reservoir after schema repair.",
		}, []string{"reservoir"}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gateops_etl",
			Name:      "rows_dropped_total",
			Help:      "Rows dropped during observation building, by reason.",
		}, []string{"reservoir", "reason"}),
		ObservationsBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gateops_etl",
			Name:      "observations_built_total",
			Help:      "Validated observations produced per reservoir.",
		}, []string{"reservoir"}),
		RatingFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gateops_etl",
			Name:      "rating_fallbacks_total",
			Help:      "Rating-curve lookups resolved by nearest-match fallback.",
		}, []string{"reservoir"}),
		DuplicateStamps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gateops_etl",
			Name:      "duplicate_timestamps_total",
			Help:      "Timestamps shared by more than one retained observation.",
		}, []string{"reservoir"}),
		RecordsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gateops_etl",
			Name:      "records_written_total",
			Help:      "Flow records handed to each sink.",
		}, []string{"reservoir", "sink"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gateops_etl",
			Name:      "pipeline_running",
			Help:      "1 while a pipeline pass is active, 0 otherwise.",
		}),
		ReservoirDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gateops_etl",
			Name:      "reservoir_processing_duration_seconds",
			Help:      "Duration of a complete extract-transform-load pass for one reservoir.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsIngested,
		m.RowsDropped,
		m.ObservationsBuilt,
		m.RatingFallbacks,
		m.DuplicateStamps,
		m.RecordsWritten,
		m.PipelineRunning,
		m.ReservoirDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics so parallel tests avoid
// "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
