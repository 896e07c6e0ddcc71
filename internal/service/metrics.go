package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ExtractionMetrics holds the prometheus collectors for the extraction pipeline.
// A nil *ExtractionMetrics records nothing.
type ExtractionMetrics struct {
	extractions    *prometheus.CounterVec
	pages          *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	mirrorFailures prometheus.Counter
}

// NewExtractionMetrics registers the extraction collectors on reg.
func NewExtractionMetrics(reg prometheus.Registerer) (*ExtractionMetrics, error) {
	m := &ExtractionMetrics{
		extractions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "extractions_total",
				Help: "Total number of extraction attempts by backend and result.",
			},
			[]string{"backend", "result"},
		),
		pages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "extraction_pages_total",
				Help: "Total number of pages extracted.",
			},
			[]string{"backend"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "extraction_duration_seconds",
				Help:    "Time spent extracting text from a document.",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"backend"},
		),
		mirrorFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mirror_failures_total",
			Help: "Total number of artifacts that could not be mirrored.",
		}),
	}

	for _, c := range []prometheus.Collector{m.extractions, m.pages, m.duration, m.mirrorFailures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *ExtractionMetrics) observeSuccess(backend string, pages int, took time.Duration) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(backend, "ok").Inc()
	m.pages.WithLabelValues(backend).Add(float64(pages))
	m.duration.WithLabelValues(backend).Observe(took.Seconds())
}

func (m *ExtractionMetrics) observeFailure(backend string, result string) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(backend, result).Inc()
}

func (m *ExtractionMetrics) observeMirrorFailure() {
	if m == nil {
		return
	}
	m.mirrorFailures.Inc()
}
