// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters for one run. They live on a private registry
// so that each run, and each test, starts from zero. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Downloads counts download attempts by status (saved, invalid, failed).
	Downloads *prometheus.CounterVec

	// Extractions counts extraction attempts by status (ok, service, parse).
	Extractions *prometheus.CounterVec

	// ExtractionDuration observes per-document extraction time in seconds.
	ExtractionDuration prometheus.Histogram

	// Artifacts counts rendered artifacts by kind (keywords, figures, links).
	Artifacts *prometheus.CounterVec
}

// NewMetrics creates the metric set under the given namespace.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Downloads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "Download attempts by status",
		}, []string{"status"}),
		Extractions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Document extractions by status",
		}, []string{"status"}),
		ExtractionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Duration of a single document extraction in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}),
		Artifacts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_rendered_total",
			Help:      "Rendered visualization artifacts by kind",
		}, []string{"kind"}),
	}
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordDownload counts one download attempt.
func (m *Metrics) RecordDownload(status string) {
	if m == nil {
		return
	}
	m.Downloads.WithLabelValues(status).Inc()
}

// RecordExtraction counts one extraction attempt and its duration.
func (m *Metrics) RecordExtraction(status string, seconds float64) {
	if m == nil {
		return
	}
	m.Extractions.WithLabelValues(status).Inc()
	m.ExtractionDuration.Observe(seconds)
}

// RecordArtifact counts one rendered artifact.
func (m *Metrics) RecordArtifact(kind string) {
	if m == nil {
		return
	}
	m.Artifacts.WithLabelValues(kind).Inc()
}

// WriteTextfile writes all metrics to path in the Prometheus text format,
// suitable for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
