package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "resume_screener"

// Run collects the metrics of one screening run. It satisfies the recorder
// interfaces of the screening and filtering packages.
type Run struct {
	registry *prometheus.Registry

	documents          *prometheus.CounterVec
	extractionDuration prometheus.Histogram
	candidatesRanked   prometheus.Gauge
	filterDropped      *prometheus.CounterVec
}

func NewRun(runID string) *Run {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"run_id": runID}

	documents := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "documents_total",
			Help:        "Resumes processed by decode status.",
			ConstLabels: constLabels,
		},
		[]string{"status"},
	)
	extractionDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "extraction_duration_seconds",
			Help:        "Time spent extracting attributes from one resume.",
			Buckets:     []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			ConstLabels: constLabels,
		},
	)
	candidatesRanked := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "candidates_ranked",
			Help:        "Candidates in the last ranking.",
			ConstLabels: constLabels,
		},
	)
	filterDropped := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "filter_dropped_total",
			Help:        "Candidates removed by filter step.",
			ConstLabels: constLabels,
		},
		[]string{"step"},
	)

	registry.MustRegister(documents, extractionDuration, candidatesRanked, filterDropped)

	return &Run{
		registry:           registry,
		documents:          documents,
		extractionDuration: extractionDuration,
		candidatesRanked:   candidatesRanked,
		filterDropped:      filterDropped,
	}
}

func (r *Run) DocumentDecoded() {
	r.documents.WithLabelValues("decoded").Inc()
}

func (r *Run) DocumentFailed() {
	r.documents.WithLabelValues("failed").Inc()
}

func (r *Run) ObserveExtraction(d time.Duration) {
	r.extractionDuration.Observe(d.Seconds())
}

func (r *Run) CandidatesRanked(n int) {
	r.candidatesRanked.Set(float64(n))
}

func (r *Run) FilterDropped(step string, n int) {
	if n <= 0 {
		return
	}
	r.filterDropped.WithLabelValues(step).Add(float64(n))
}

func (r *Run) Registry() *prometheus.Registry {
	return r.registry
}

// WriteToTextfile stores the metrics in the node_exporter textfile format.
func (r *Run) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
