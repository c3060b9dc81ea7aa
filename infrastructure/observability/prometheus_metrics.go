// Package observability provides event sinks and metrics collectors that
// surface what the STAR calculator does: Prometheus metrics, structured
// logs, and OpenTelemetry span events.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-star/internal/ports"
)

// Metric names understood by PrometheusMetrics. Other names fall through to
// the generic event counter, gauge, and latency vectors.
const (
	MetricElections     = "elections_total"
	MetricSeats         = "seats_total"
	MetricTiebreakSteps = "tiebreak_steps_total"
	MetricTieSize       = "tie_size"
	MetricUpsets        = "upsets_total"
)

const namespace = "star"

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It tracks tallied elections, seat outcomes, tiebreak activity,
// and calculation latency.
type PrometheusMetrics struct {
	elections        *prometheus.CounterVec
	seats            *prometheus.CounterVec
	tiebreakSteps    *prometheus.CounterVec
	upsets           prometheus.Counter
	tieSize          *prometheus.HistogramVec
	executionLatency *prometheus.HistogramVec
	eventCounter     *prometheus.CounterVec
	systemGauges     *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance and registers
// its metrics with reg. A nil reg registers with the default registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		elections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      MetricElections,
				Help:      "Elections tallied, by status.",
			},
			[]string{"status"},
		),
		seats: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      MetricSeats,
				Help:      "Seats processed, by outcome.",
			},
			[]string{"outcome"},
		),
		tiebreakSteps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      MetricTiebreakSteps,
				Help:      "Tiebreak cascade steps that narrowed a tie, by step.",
			},
			[]string{"step"},
		),
		upsets: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      MetricUpsets,
				Help:      "Seats won by the seed with the lower scoring-round total.",
			},
		),
		tieSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      MetricTieSize,
				Help:      "Number of candidates in a detected or unresolved tie.",
				Buckets:   prometheus.LinearBuckets(2, 1, 8),
			},
			[]string{"kind"},
		),
		executionLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "execution_duration_seconds",
				Help:      "Execution time of tally operations.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		eventCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Detail events emitted by the calculator, by kind.",
			},
			[]string{"kind"},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "system_state",
				Help:      "Current values reported by the batch runner.",
			},
			[]string{"metric"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(operation string, duration time.Duration, _ map[string]string) {
	pm.executionLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(metric string, value float64, labels map[string]string) {
	switch metric {
	case MetricElections:
		pm.elections.WithLabelValues(labelOr(labels, "status")).Add(value)
	case MetricSeats:
		pm.seats.WithLabelValues(labelOr(labels, "outcome")).Add(value)
	case MetricTiebreakSteps:
		pm.tiebreakSteps.WithLabelValues(labelOr(labels, "step")).Add(value)
	case MetricUpsets:
		pm.upsets.Add(value)
	default:
		pm.eventCounter.WithLabelValues(metric).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(metric string, value float64, _ map[string]string) {
	pm.systemGauges.WithLabelValues(metric).Set(value)
}

// RecordHistogram implements the MetricsCollector interface. Tie sizes go
// to their own histogram; anything else is treated as a latency in seconds.
func (pm *PrometheusMetrics) RecordHistogram(metric string, value float64, labels map[string]string) {
	if metric == MetricTieSize {
		pm.tieSize.WithLabelValues(labelOr(labels, "kind")).Observe(value)
		return
	}
	pm.executionLatency.WithLabelValues(metric).Observe(value)
}

// WriteTextfile writes every metric gathered from g to path in the text
// exposition format read by node_exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return ports.NewMetricsError(namespace, "write_textfile", err)
	}
	return nil
}

func labelOr(labels map[string]string, key string) string {
	if v := labels[key]; v != "" {
		return v
	}
	return "unknown"
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
