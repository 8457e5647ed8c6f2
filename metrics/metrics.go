// Package metrics holds the Prometheus collectors of the schema builder and
// its data fetchers. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gqlv"

// Metrics holds Prometheus metrics for schema construction and field
// resolution.
type Metrics struct {
	fetcherInvocations *prometheus.CounterVec // By fetcher kind (get, set, invoke, ...)
	fetcherErrors      *prometheus.CounterVec // By fetcher kind
	vetoes             *prometheus.CounterVec // By veto kind (hidden, disabled, invalid, not_found)
	fetcherDuration    *prometheus.HistogramVec

	schemaBuildSeconds prometheus.Gauge
	schemaTypes        prometheus.Gauge
}

// New creates the collectors and registers them with reg. A nil reg
// disables metrics and yields a nil *Metrics.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil // Metrics disabled
	}

	m := &Metrics{
		fetcherInvocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetcher",
			Name:      "invocations_total",
			Help:      "Total number of data fetcher invocations",
		}, []string{"kind"}),

		fetcherErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetcher",
			Name:      "errors_total",
			Help:      "Total number of data fetcher invocations that failed",
		}, []string{"kind"}),

		vetoes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetcher",
			Name:      "vetoes_total",
			Help:      "Total number of interactions vetoed by the metamodel",
		}, []string{"kind"}),

		fetcherDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fetcher",
			Name:      "duration_seconds",
			Help:      "Data fetcher duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"kind"}),

		schemaBuildSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "schema",
			Name:      "build_seconds",
			Help:      "Duration of the last schema build in seconds",
		}),

		schemaTypes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "schema",
			Name:      "types",
			Help:      "Number of GraphQL types generated by the last schema build",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.fetcherInvocations,
		m.fetcherErrors,
		m.vetoes,
		m.fetcherDuration,
		m.schemaBuildSeconds,
		m.schemaTypes,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveFetch records one fetcher invocation of kind that started at start.
func (m *Metrics) ObserveFetch(kind string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.fetcherInvocations.WithLabelValues(kind).Inc()
	m.fetcherDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		m.fetcherErrors.WithLabelValues(kind).Inc()
	}
}

// RecordVeto counts a vetoed interaction.
func (m *Metrics) RecordVeto(kind string) {
	if m == nil {
		return
	}
	m.vetoes.WithLabelValues(kind).Inc()
}

// RecordSchemaBuild records the outcome of a schema build.
func (m *Metrics) RecordSchemaBuild(d time.Duration, types int) {
	if m == nil {
		return
	}
	m.schemaBuildSeconds.Set(d.Seconds())
	m.schemaTypes.Set(float64(types))
}
