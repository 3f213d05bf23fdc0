// SPDX-License-Identifier: MPL-2.0

// Package metrics records per-invocation fetch statistics with Prometheus
// collectors on a private registry. The CLI can export them in the node
// exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gi"

// Request kinds.
const (
	KindCatalog  = "catalog"
	KindTemplate = "template"
)

// Recorder holds the collectors for one invocation. A nil *Recorder is valid
// and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	results         *prometheus.CounterVec
	fallbacks       *prometheus.CounterVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "network_requests_total",
			Help:      "Network requests issued, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "network_request_duration_seconds",
			Help:      "Duration of network requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		results: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_results_total",
			Help:      "Fetch results per requested template, by origin and outcome.",
		}, []string{"origin", "outcome"}),
		fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_fallbacks_total",
			Help:      "Stale cache records served because the network failed.",
		}, []string{"kind"}),
	}
}

// ObserveRequest records one network attempt.
func (r *Recorder) ObserveRequest(kind string, d time.Duration, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.requests.WithLabelValues(kind, outcome).Inc()
	r.requestDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveResult records one per-template fetch result. origin is empty for
// failures.
func (r *Recorder) ObserveResult(origin string, err error) {
	if r == nil {
		return
	}
	outcome := "fetched"
	if err != nil {
		outcome = "failed"
		origin = "none"
	}
	r.results.WithLabelValues(origin, outcome).Inc()
}

// ObserveFallback records that a stale cached copy of kind was served.
func (r *Recorder) ObserveFallback(kind string) {
	if r == nil {
		return
	}
	r.fallbacks.WithLabelValues(kind).Inc()
}

// Gatherer exposes the registry so collected series can be inspected.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes all metrics to path in the Prometheus text format.
// The file is written atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
