// Package metrics records export counters with Prometheus and writes them
// in the node_exporter textfile format for CI runners.
package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "exo2pdf"

// Recorder collects per-document and per-run metrics.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry    *prom.Registry
	documents   *prom.CounterVec
	docDuration prom.Histogram
	pdfPages    *prom.HistogramVec
	pdfBytes    *prom.CounterVec
	runDuration prom.Gauge
	lastRun     prom.Gauge
}

// NewRecorder registers the export metrics on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prom.NewRegistry(),
		documents: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents processed by final state and bucket",
		}, []string{"state", "bucket"}),
		docDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "document_duration_seconds",
			Help:      "Time spent on both passes of one document",
			Buckets:   prom.DefBuckets,
		}),
		pdfPages: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "pdf_pages",
			Help:      "Page count of written PDFs",
			Buckets:   []float64{1, 2, 4, 8, 16, 32},
		}, []string{"bucket"}),
		pdfBytes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pdf_bytes_total",
			Help:      "Bytes of PDF written per bucket",
		}, []string{"bucket"}),
		runDuration: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last export run",
		}),
		lastRun: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last export run finished",
		}),
	}
	r.registry.MustRegister(r.documents, r.docDuration, r.pdfPages, r.pdfBytes, r.runDuration, r.lastRun)
	return r
}

// ObserveDocument counts one finished document.
func (r *Recorder) ObserveDocument(state, bucket string, d time.Duration) {
	if r == nil {
		return
	}
	r.documents.WithLabelValues(state, bucket).Inc()
	r.docDuration.Observe(d.Seconds())
}

// ObservePDF records one written PDF. A negative page count means it
// could not be determined and only the size is recorded.
func (r *Recorder) ObservePDF(bucket string, pages, size int) {
	if r == nil {
		return
	}
	if pages >= 0 {
		r.pdfPages.WithLabelValues(bucket).Observe(float64(pages))
	}
	r.pdfBytes.WithLabelValues(bucket).Add(float64(size))
}

// ObserveRun records the run duration and completion time.
func (r *Recorder) ObserveRun(d time.Duration, finished time.Time) {
	if r == nil {
		return
	}
	r.runDuration.Set(d.Seconds())
	r.lastRun.Set(float64(finished.Unix()))
}

// Gatherer exposes the registry for tests and custom exporters.
func (r *Recorder) Gatherer() prom.Gatherer {
	return r.registry
}

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prom.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
