package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"GradeConsolidator/internal/ports"
)

const namespace = "grades"

// Recorder exposes ingestion metrics on a private registry.
type Recorder struct {
	registry     *prometheus.Registry
	files        *prometheus.CounterVec
	rows         prometheus.Counter
	runs         *prometheus.CounterVec
	runDuration  prometheus.Histogram
	lastRowCount prometheus.Gauge
}

var _ ports.IngestMetrics = (*Recorder)(nil)

// NewRecorder registers the ingestion collectors plus the Go runtime collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_processed_total",
			Help:      "Source files handled by ingestion, by outcome.",
		}, []string{"outcome"}),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_emitted_total",
			Help:      "Normalized records emitted by ingestion.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_runs_total",
			Help:      "Ingestion runs, by outcome.",
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_run_duration_seconds",
			Help:      "Wall time of ingestion runs.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		lastRowCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_file_records",
			Help:      "Records emitted by the most recently processed file.",
		}),
	}

	r.registry.MustRegister(
		r.files,
		r.rows,
		r.runs,
		r.runDuration,
		r.lastRowCount,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// FileProcessed counts one source file and the records it produced.
func (r *Recorder) FileProcessed(outcome string, rows int) {
	r.files.WithLabelValues(outcome).Inc()
	if outcome == ports.OutcomeOK {
		r.rows.Add(float64(rows))
		r.lastRowCount.Set(float64(rows))
	}
}

// RunFinished counts one run and observes its duration.
func (r *Recorder) RunFinished(outcome string, d time.Duration) {
	r.runs.WithLabelValues(outcome).Inc()
	r.runDuration.Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
